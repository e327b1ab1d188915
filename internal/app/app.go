// Package app 负责连接各服务并管理应用程序生命周期
// 会话存储、请求管线、会话目录和八字档案在这里装配成一个
// 显式持有的进程级上下文对象，而不是散落的环境单例
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/purpose168/bazichat/internal/api"
	"github.com/purpose168/bazichat/internal/bazi"
	"github.com/purpose168/bazichat/internal/chat"
	"github.com/purpose168/bazichat/internal/config"
	"github.com/purpose168/bazichat/internal/db"
	"github.com/purpose168/bazichat/internal/pubsub"
	"github.com/purpose168/bazichat/internal/session"
	"github.com/purpose168/bazichat/internal/storage"
	"golang.org/x/sync/errgroup"
)

// 认证信号的事件类型
const (
	// SessionExpiredEvent 会话已失效，UI 层应跳转到登录入口
	SessionExpiredEvent pubsub.EventType = "session_expired"
	// BalanceExhaustedEvent 余额耗尽，UI 层应提供充值路径
	BalanceExhaustedEvent pubsub.EventType = "balance_exhausted"
)

// AuthSignal 请求管线触发的认证相关信号
type AuthSignal struct {
	Status int // 触发信号的 HTTP 状态码
}

// App 应用程序实例，持有全部服务
type App struct {
	Sessions session.Service
	Chat     chat.Service
	Bazi     bazi.Service
	Client   *api.Client

	config     *config.Config
	authBroker *pubsub.Broker[AuthSignal]

	conn         *sql.DB
	cleanupFuncs []func(context.Context) error
}

// New 初始化一个新的应用程序实例
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store := storage.New(cfg.DataDir)

	conn, err := db.Connect(ctx, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("初始化本地缓存失败: %w", err)
	}
	q := db.New(conn)

	authBroker := pubsub.NewBroker[AuthSignal]()

	// 会话服务与请求管线相互依赖：管线从会话取令牌，
	// 会话失效副作用又要清除会话状态，这里通过闭包延迟绑定
	var sessions session.Service
	client := api.New(cfg.BaseURL, func() string {
		if sessions == nil {
			return ""
		}
		return sessions.Token()
	}, api.Hooks{
		SessionExpired: func() {
			// Logout 幂等：多个在途调用并发触发时重复清除为空操作
			sessions.Logout()
			authBroker.Publish(SessionExpiredEvent, AuthSignal{Status: 401})
		},
		BalanceExhausted: func() {
			authBroker.Publish(BalanceExhaustedEvent, AuthSignal{Status: 402})
		},
	})

	sessions = session.NewService(client, store)
	sessions.Init()

	app := &App{
		Sessions:   sessions,
		Chat:       chat.NewService(client, sessions, q),
		Bazi:       bazi.NewService(client),
		Client:     client,
		config:     cfg,
		authBroker: authBroker,
		conn:       conn,
	}

	app.cleanupFuncs = append(app.cleanupFuncs,
		func(context.Context) error { return conn.Close() },
		func(context.Context) error { authBroker.Shutdown(); return nil },
	)

	return app, nil
}

// SubscribeAuth 订阅认证相关信号（会话失效、余额耗尽）
func (a *App) SubscribeAuth(ctx context.Context) <-chan pubsub.Event[AuthSignal] {
	return a.authBroker.Subscribe(ctx)
}

// Warmup 并发预拉取会话目录和八字档案列表
// 未登录时为空操作；单项失败只记录日志，不中断另一项
func (a *App) Warmup(ctx context.Context) {
	if !a.Sessions.LoggedIn() {
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := a.Chat.Load(ctx, 0, 0); err != nil {
			slog.Warn("预拉取会话目录失败", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		if _, err := a.Bazi.Load(ctx); err != nil {
			slog.Warn("预拉取八字档案失败", "error", err)
		}
		return nil
	})
	_ = g.Wait()
}

// Shutdown 关闭应用程序，依次执行清理函数
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	for _, cleanup := range a.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
