// Package api 提供统一的请求管线
// 每个出站调用都经过这里：附加认证令牌、分类响应状态，并触发
// 会话失效、余额耗尽等一次性副作用；本层不做任何自动重试
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/purpose168/bazichat/internal/version"
	"github.com/tidwall/gjson"
)

// apiPrefix 所有后端接口的公共路径前缀
const apiPrefix = "/api/v1"

// maxBodySize 响应体的最大读取长度
const maxBodySize = 8 << 20

// TokenFunc 返回当前会话的认证令牌，未登录时返回空字符串
type TokenFunc func() string

// Hooks 响应分类触发的副作用回调
// 每次失败调用至多触发一次；回调自身必须是幂等的，
// 多个在途调用并发触发时重复执行应为空操作
type Hooks struct {
	// SessionExpired 收到 401/403 时触发，应清除会话并引导重新登录
	SessionExpired func()
	// BalanceExhausted 收到 402 时触发，应引导用户充值；不清除会话
	BalanceExhausted func()
}

// Client 请求管线客户端
type Client struct {
	baseURL string       // 后端服务地址
	http    *http.Client // 底层 HTTP 客户端
	token   TokenFunc    // 认证令牌来源
	hooks   Hooks        // 副作用回调
}

// New 创建请求管线客户端
func New(baseURL string, token TokenFunc, hooks Hooks) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		token: token,
		hooks: hooks,
	}
}

// requestOptions 单次请求的可选项
type requestOptions struct {
	noAuth bool       // 不附加认证令牌
	query  url.Values // 查询参数
}

// Option 配置单次请求的函数式选项
type Option func(*requestOptions)

// WithoutAuth 本次请求不附加认证令牌（由调用方承担风险）
func WithoutAuth() Option {
	return func(o *requestOptions) { o.noAuth = true }
}

// WithQuery 为本次请求附加查询参数
func WithQuery(q url.Values) Option {
	return func(o *requestOptions) { o.query = q }
}

// Do 执行一次请求并将 2xx 响应体反序列化到 out
// body 为 nil 时不发送请求体；out 为 nil 时丢弃响应体
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...Option) error {
	options := requestOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	// 序列化请求体
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, reader, options)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// Get 发起 GET 请求
func (c *Client) Get(ctx context.Context, path string, out any, opts ...Option) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post 发起 POST 请求
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...Option) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put 发起 PUT 请求
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...Option) error {
	return c.Do(ctx, http.MethodPut, path, body, out, opts...)
}

// Delete 发起 DELETE 请求
func (c *Client) Delete(ctx context.Context, path string, opts ...Option) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, opts...)
}

// Upload 以 multipart 形式上传单个文件
// field 为表单字段名，filename 为文件名
func (c *Client) Upload(ctx context.Context, path, field, filename string, file io.Reader, out any) error {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("构建上传表单失败: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("读取上传文件失败: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("构建上传表单失败: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, buf, requestOptions{})
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.send(req, out)
}

// newRequest 构建带公共头部的 HTTP 请求
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, options requestOptions) (*http.Request, error) {
	target := c.baseURL + apiPrefix + path
	if len(options.query) > 0 {
		target += "?" + options.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}

	req.Header.Set("User-Agent", "bazichat/"+version.Version)
	req.Header.Set("X-Request-ID", uuid.New().String())

	// 附加认证令牌；令牌缺失时以未认证方式继续
	if !options.noAuth {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}

// send 发送请求并分类响应
// 副作用（会话清除、充值引导）在此处按失败调用至多触发一次
func (c *Client) send(req *http.Request, out any) error {
	slog.Debug("API请求", "method", req.Method, "url", req.URL.String())

	resp, err := c.http.Do(req)
	if err != nil {
		// 传输层失败：未接触服务端，本地状态不发生任何变化
		slog.Error("网络错误", "method", req.Method, "url", req.URL.String(), "error", err)
		return &Error{Kind: ErrNetwork, Message: ErrNetwork.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &Error{Kind: ErrNetwork, Message: ErrNetwork.Error()}
	}

	slog.Debug("API响应", "status", resp.StatusCode, "url", req.URL.String())

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			// 响应结构与约定不符：按请求失败处理，不触发会话副作用
			slog.Error("响应格式不正确", "url", req.URL.String(), "error", err)
			return &Error{Kind: ErrRequestFailed, Status: resp.StatusCode, Message: "响应格式不正确"}
		}
		return nil
	}

	return c.classify(resp.StatusCode, data)
}

// classify 将非 2xx 状态码映射到错误分类并触发对应副作用
func (c *Client) classify(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		// 会话失效：清除会话并引导重新登录，调用方不得自动重试
		if c.hooks.SessionExpired != nil {
			c.hooks.SessionExpired()
		}
		return &Error{Kind: ErrSessionExpired, Status: status, Message: ErrSessionExpired.Error()}
	case http.StatusPaymentRequired:
		// 余额耗尽：会话保持有效，引导用户充值
		if c.hooks.BalanceExhausted != nil {
			c.hooks.BalanceExhausted()
		}
		return &Error{Kind: ErrInsufficientBalance, Status: status, Message: ErrInsufficientBalance.Error()}
	default:
		// 尝试从响应体中提取错误信息
		message := extractMessage(body)
		slog.Error("API错误", "status", status, "message", message)
		return &Error{Kind: ErrRequestFailed, Status: status, Message: message}
	}
}

// extractMessage 从任意响应体中提取人类可读的错误信息
// 依次尝试 detail、message 字段，都不存在时返回通用消息
func extractMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "detail"); msg.Type == gjson.String && msg.Str != "" {
		return msg.Str
	}
	if msg := gjson.GetBytes(body, "message"); msg.Type == gjson.String && msg.Str != "" {
		return msg.Str
	}
	return ErrRequestFailed.Error()
}
