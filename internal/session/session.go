// Package session 提供凭证与会话状态的管理
// 该包持有当前认证令牌和用户信息（含 Token 余额），跨进程重启持久化；
// 登录态的建立与销毁都经过这里
package session

import (
	"context"
	"io"
	"log/slog"

	"github.com/purpose168/bazichat/internal/api"
	"github.com/purpose168/bazichat/internal/csync"
	"github.com/purpose168/bazichat/internal/pubsub"
	"github.com/purpose168/bazichat/internal/storage"
)

// Service 会话服务接口，定义了凭证与用户状态的核心操作
type Service interface {
	pubsub.Subscriber[User]
	// Init 从本地存储恢复会话状态
	Init()
	// LoggedIn 判断当前是否已登录
	LoggedIn() bool
	// Token 返回当前认证令牌，未登录时返回空字符串
	Token() string
	// User 返回当前用户信息
	User() (User, bool)
	// Login 原子地设置令牌和用户信息并持久化
	Login(token string, user User)
	// WxLogin 通过微信登录码交换会话凭证
	WxLogin(ctx context.Context, code string) (User, bool, error)
	// Logout 清除内存与持久化的会话状态，重复调用安全
	Logout()
	// Refresh 从服务端拉取用户信息并整体替换本地状态
	Refresh(ctx context.Context) (User, error)
	// UpdateProfile 提交用户信息补丁，以服务端返回值整体替换本地状态
	UpdateProfile(ctx context.Context, patch map[string]any) (User, error)
	// UploadAvatar 上传头像文件并更新本地头像地址
	UploadAvatar(ctx context.Context, filename string, file io.Reader) (string, error)
	// DeductBalance 本地立即扣减展示余额，不与服务端协商
	DeductBalance(amount int64)
	// Settings 获取用户聊天设置
	Settings(ctx context.Context) (Settings, error)
	// UpdateSettings 更新用户聊天设置
	UpdateSettings(ctx context.Context, settings Settings) error
}

// service 会话服务的具体实现
type service struct {
	*pubsub.Broker[User]
	client *api.Client
	store  *storage.Store
	state  *csync.Value[Session]
}

// NewService 创建新的会话服务实例
func NewService(client *api.Client, store *storage.Store) Service {
	return &service{
		Broker: pubsub.NewBroker[User](),
		client: client,
		store:  store,
		state:  csync.NewValue(Session{}),
	}
}

// Init 从本地存储恢复会话状态
// 令牌或用户信息缺失时保持登出状态
func (s *service) Init() {
	var token string
	if ok, err := s.store.Get(storage.KeyAuthToken, &token); err != nil || !ok {
		return
	}

	var user User
	ok, err := s.store.Get(storage.KeyUserInfo, &user)
	if err != nil || !ok {
		return
	}

	s.state.Set(Session{Token: token, User: user, HasUser: true})
}

// LoggedIn 判断当前是否已登录
func (s *service) LoggedIn() bool {
	return s.state.Get().LoggedIn()
}

// Token 返回当前认证令牌
func (s *service) Token() string {
	return s.state.Get().Token
}

// User 返回当前用户信息
func (s *service) User() (User, bool) {
	state := s.state.Get()
	return state.User, state.HasUser
}

// Login 原子地设置令牌和用户信息并持久化
// 只有两者都写入后才观察得到"已登录"
func (s *service) Login(token string, user User) {
	s.state.Set(Session{Token: token, User: user, HasUser: true})
	s.persist(token, user)
	s.Publish(pubsub.CreatedEvent, user)
}

// WxLogin 通过微信登录码交换会话凭证
// 交换成功后建立登录态；返回用户信息和是否为新注册用户
func (s *service) WxLogin(ctx context.Context, code string) (User, bool, error) {
	var resp wxLoginResponse
	err := s.client.Post(ctx, "/auth/wx-login", map[string]string{"code": code}, &resp, api.WithoutAuth())
	if err != nil {
		return User{}, false, err
	}

	s.Login(resp.Token, resp.User)
	return resp.User, resp.IsNewUser, nil
}

// Logout 清除内存与持久化的会话状态
// 判断与清除在同一临界区内完成：并发调用时只有一个执行清除并
// 发布事件，其余为空操作
func (s *service) Logout() {
	var prev Session
	cleared := false
	s.state.Update(func(state Session) Session {
		if !state.LoggedIn() {
			return state
		}
		prev = state
		cleared = true
		return Session{}
	})
	if !cleared {
		return
	}

	if err := s.store.Clear(); err != nil {
		slog.Warn("清除本地会话状态失败", "error", err)
	}
	s.Publish(pubsub.DeletedEvent, prev.User)
}

// Refresh 从服务端拉取用户信息并整体替换本地状态
// 管线返回错误时本地状态保持不变
func (s *service) Refresh(ctx context.Context) (User, error) {
	var user User
	if err := s.client.Get(ctx, "/user/profile", &user); err != nil {
		return User{}, err
	}

	s.setUser(user)
	return user, nil
}

// UpdateProfile 提交用户信息补丁
// 本地以服务端返回的完整用户信息整体替换，不做合并
func (s *service) UpdateProfile(ctx context.Context, patch map[string]any) (User, error) {
	var user User
	if err := s.client.Put(ctx, "/user/profile", patch, &user); err != nil {
		return User{}, err
	}

	s.setUser(user)
	return user, nil
}

// UploadAvatar 上传头像文件并更新本地头像地址
func (s *service) UploadAvatar(ctx context.Context, filename string, file io.Reader) (string, error) {
	var resp uploadAvatarResponse
	if err := s.client.Upload(ctx, "/user/upload-avatar", "file", filename, file, &resp); err != nil {
		return "", err
	}

	state := s.state.Get()
	if state.HasUser {
		state.User.AvatarURL = resp.AvatarURL
		s.setUser(state.User)
	}
	return resp.AvatarURL, nil
}

// DeductBalance 本地立即扣减展示余额
// 该扣减相对服务端账本是乐观的，仅用于保持展示余额的即时性；
// 展示值不会为负，下次 Refresh 时以服务端余额为准
func (s *service) DeductBalance(amount int64) {
	state := s.state.Update(func(state Session) Session {
		if !state.HasUser {
			return state
		}
		state.User.TokenBalance = max(0, state.User.TokenBalance-amount)
		return state
	})

	if state.HasUser {
		if err := s.store.Set(storage.KeyUserInfo, state.User); err != nil {
			slog.Warn("持久化用户信息失败", "error", err)
		}
		s.Publish(pubsub.UpdatedEvent, state.User)
	}
}

// Settings 获取用户聊天设置并写入本地缓存
func (s *service) Settings(ctx context.Context) (Settings, error) {
	var settings Settings
	if err := s.client.Get(ctx, "/user/settings", &settings); err != nil {
		return Settings{}, err
	}

	if err := s.store.Set(storage.KeySettings, settings); err != nil {
		slog.Warn("缓存聊天设置失败", "error", err)
	}
	return settings, nil
}

// UpdateSettings 更新用户聊天设置
// 服务端确认后同步更新本地缓存
func (s *service) UpdateSettings(ctx context.Context, settings Settings) error {
	if err := s.client.Put(ctx, "/user/settings", settings, nil); err != nil {
		return err
	}

	if err := s.store.Set(storage.KeySettings, settings); err != nil {
		slog.Warn("缓存聊天设置失败", "error", err)
	}
	return nil
}

// setUser 整体替换当前用户信息并持久化
func (s *service) setUser(user User) {
	s.state.Update(func(state Session) Session {
		state.User = user
		state.HasUser = true
		return state
	})

	if err := s.store.Set(storage.KeyUserInfo, user); err != nil {
		slog.Warn("持久化用户信息失败", "error", err)
	}
	s.Publish(pubsub.UpdatedEvent, user)
}

// persist 将令牌和用户信息写入本地存储
func (s *service) persist(token string, user User) {
	if err := s.store.Set(storage.KeyAuthToken, token); err != nil {
		slog.Warn("持久化认证令牌失败", "error", err)
	}
	if err := s.store.Set(storage.KeyUserInfo, user); err != nil {
		slog.Warn("持久化用户信息失败", "error", err)
	}
}
