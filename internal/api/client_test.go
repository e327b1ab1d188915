package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, hooks Hooks) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, func() string { return "test-token" }, hooks)
}

func TestDoDecodesSuccessResponse(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/ping", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Write([]byte(`{"value":"pong"}`))
	}), Hooks{})

	var out struct {
		Value string `json:"value"`
	}
	require.NoError(t, client.Get(context.Background(), "/ping", &out))
	require.Equal(t, "pong", out.Value)
}

func TestWithoutAuthOmitsToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}), Hooks{})

	require.NoError(t, client.Get(context.Background(), "/public", nil, WithoutAuth()))
}

func TestWithQueryAppendsParams(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "10", r.URL.Query().Get("skip"))
		require.Equal(t, "20", r.URL.Query().Get("limit"))
		w.Write([]byte(`{}`))
	}), Hooks{})

	q := url.Values{}
	q.Set("skip", "10")
	q.Set("limit", "20")
	require.NoError(t, client.Get(context.Background(), "/items", nil, WithQuery(q)))
}

func TestSessionExpiredTriggersHookOnce(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		var fired int
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}), Hooks{SessionExpired: func() { fired++ }})

		err := client.Get(context.Background(), "/me", nil)
		require.ErrorIs(t, err, ErrSessionExpired)
		require.Equal(t, 1, fired, "会话失效副作用应只触发一次")

		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, status, apiErr.Status)
	}
}

func TestBalanceExhaustedKeepsSession(t *testing.T) {
	t.Parallel()

	var expired, exhausted int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}), Hooks{
		SessionExpired:   func() { expired++ },
		BalanceExhausted: func() { exhausted++ },
	})

	err := client.Post(context.Background(), "/chat/send", map[string]string{"content": "你好"}, nil)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.Equal(t, 1, exhausted)
	require.Zero(t, expired, "余额耗尽不应触发会话清除")
}

func TestErrorMessageExtraction(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want string
	}{
		{"detail字段", `{"detail":"会话不存在"}`, "会话不存在"},
		{"message字段", `{"message":"参数错误"}`, "参数错误"},
		{"detail优先", `{"detail":"优先","message":"次之"}`, "优先"},
		{"无法解析", `<html>oops</html>`, ErrRequestFailed.Error()},
		{"空响应体", ``, ErrRequestFailed.Error()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tc.body))
			}), Hooks{})

			err := client.Get(context.Background(), "/x", nil)
			require.ErrorIs(t, err, ErrRequestFailed)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tc.want, apiErr.Message)
		})
	}
}

func TestNetworkErrorClassification(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // 立即关闭，制造传输层失败

	client := New(srv.URL, func() string { return "" }, Hooks{})
	err := client.Get(context.Background(), "/ping", nil)
	require.ErrorIs(t, err, ErrNetwork)
}

func TestMalformedSuccessBody(t *testing.T) {
	t.Parallel()

	var fired int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not-json`))
	}), Hooks{SessionExpired: func() { fired++ }})

	var out map[string]any
	err := client.Get(context.Background(), "/broken", &out)
	require.ErrorIs(t, err, ErrRequestFailed)
	require.Zero(t, fired, "响应格式错误不应触发会话副作用")
}

func TestUploadSendsMultipart(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "avatar.png", header.Filename)

		w.Write([]byte(`{"avatar_url":"https://cdn.example.com/a.png"}`))
	}), Hooks{})

	var out struct {
		AvatarURL string `json:"avatar_url"`
	}
	err := client.Upload(context.Background(), "/user/upload-avatar", "file", "avatar.png", strings.NewReader("fake-image"), &out)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/a.png", out.AvatarURL)
}
