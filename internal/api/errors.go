package api

import (
	"errors"
	"fmt"
)

// 请求管线的错误分类哨兵
// 调用方通过 errors.Is 判断分类，不做自动重试
var (
	// ErrSessionExpired 会话已失效（401/403），当前会话终止，需要重新登录
	ErrSessionExpired = errors.New("登录已过期，请重新登录")
	// ErrInsufficientBalance Token 余额不足（402），会话仍然有效
	ErrInsufficientBalance = errors.New("Token余额不足")
	// ErrRequestFailed 服务端拒绝了本次操作，本地状态未改变
	ErrRequestFailed = errors.New("请求失败")
	// ErrNetwork 未能与服务端建立联系，本地状态未改变，可手动重试
	ErrNetwork = errors.New("网络错误")
)

// Error 携带单次调用分类结果的错误
type Error struct {
	Kind    error  // 分类哨兵（上方四者之一）
	Status  int    // HTTP 状态码，网络错误时为 0
	Message string // 面向用户的错误消息
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

// Unwrap 暴露分类哨兵，支持 errors.Is 判断
func (e *Error) Unwrap() error {
	return e.Kind
}

// String 返回带状态码的调试描述
func (e *Error) String() string {
	return fmt.Sprintf("api: %s (status=%d)", e.Error(), e.Status)
}
