package bazi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/purpose168/bazichat/internal/api"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.Handler) Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(api.New(srv.URL, func() string { return "tok" }, api.Hooks{}))
}

func TestLoadReplacesProfiles(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/bazi/profiles", r.URL.Path)
		json.NewEncoder(w).Encode([]Profile{{ID: "p1", Name: "张三"}})
	}))

	profiles, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	require.Equal(t, "张三", svc.Profiles()[0].Name)
}

func TestCalculatePrependsProfile(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/bazi/profiles":
			json.NewEncoder(w).Encode([]Profile{{ID: "p1", Name: "张三"}})
		case "/api/v1/bazi/calculate":
			var params CalculateParams
			require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
			json.NewEncoder(w).Encode(Profile{
				ID:         "p2",
				Name:       params.Name,
				BaziResult: Result{Bazi: "甲子 乙丑 丙寅 丁卯"},
			})
		}
	}))

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	profile, err := svc.Calculate(context.Background(), CalculateParams{
		Name: "李四", Gender: "男", Calendar: "solar",
		Year: 1990, Month: 6, Day: 15, Hour: 8, BirthCity: "北京",
	})
	require.NoError(t, err)
	require.Equal(t, "p2", profile.ID)

	// 新档案插入集合头部
	local := svc.Profiles()
	require.Len(t, local, 2)
	require.Equal(t, "p2", local[0].ID)
}

func TestDeleteRemovesProfile(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode([]Profile{{ID: "p1"}, {ID: "p2"}})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "p1"))
	local := svc.Profiles()
	require.Len(t, local, 1)
	require.Equal(t, "p2", local[0].ID)
}

func TestCurrentProfileSelection(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode([]Profile{{ID: "p1", Name: "张三"}, {ID: "p2", Name: "李四"}})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	_, ok := svc.Current()
	require.False(t, ok)
	require.False(t, svc.SetCurrent("ghost"), "选中不存在的档案应失败")

	require.True(t, svc.SetCurrent("p1"))
	current, ok := svc.Current()
	require.True(t, ok)
	require.Equal(t, "张三", current.Name)

	// 删除当前选中的档案时一并清除选中状态
	require.NoError(t, svc.Delete(context.Background(), "p1"))
	_, ok = svc.Current()
	require.False(t, ok)
}

func TestDeleteFailureKeepsProfiles(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode([]Profile{{ID: "p1"}})
		case http.MethodDelete:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail":"删除失败"}`))
		}
	}))

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "p1")
	require.ErrorIs(t, err, api.ErrRequestFailed)
	require.Len(t, svc.Profiles(), 1)
}
