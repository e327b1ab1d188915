// Package bazi 提供八字档案的管理
// 档案的排盘计算在服务端完成，本包只负责发起计算请求并维护本地档案集合
package bazi

import (
	"context"

	"github.com/purpose168/bazichat/internal/api"
	"github.com/purpose168/bazichat/internal/csync"
	"github.com/purpose168/bazichat/internal/pubsub"
)

// BirthInfo 出生信息
type BirthInfo struct {
	Calendar    string `json:"calendar"`               // 历法（公历/农历）
	Year        int    `json:"year"`                   // 出生年
	Month       int    `json:"month"`                  // 出生月
	Day         int    `json:"day"`                    // 出生日
	Hour        int    `json:"hour"`                   // 出生时
	Minute      int    `json:"minute"`                 // 出生分
	BirthCity   string `json:"birth_city"`             // 出生城市
	CurrentCity string `json:"current_city,omitempty"` // 现居城市
}

// Result 排盘结果
type Result struct {
	Bazi            string `json:"bazi"`             // 八字
	JieqiInfo       string `json:"jieqi_info"`       // 节气信息
	DayunInfo       string `json:"dayun_info"`       // 大运信息
	FormattedOutput string `json:"formatted_output"` // 格式化输出
}

// Profile 八字档案
type Profile struct {
	ID         string    `json:"id"`          // 档案ID
	UserID     string    `json:"user_id"`     // 所属用户ID
	Name       string    `json:"name"`        // 姓名
	Gender     string    `json:"gender"`      // 性别
	BirthInfo  BirthInfo `json:"birth_info"`  // 出生信息
	BaziResult Result    `json:"bazi_result"` // 排盘结果
	CreatedAt  string    `json:"created_at"`  // 创建时间
}

// CalculateParams 排盘计算的参数结构体
type CalculateParams struct {
	Name        string `json:"name"`                   // 姓名
	Gender      string `json:"gender"`                 // 性别
	Calendar    string `json:"calendar"`               // 历法
	Year        int    `json:"year"`                   // 出生年
	Month       int    `json:"month"`                  // 出生月
	Day         int    `json:"day"`                    // 出生日
	Hour        int    `json:"hour"`                   // 出生时
	Minute      int    `json:"minute"`                 // 出生分
	BirthCity   string `json:"birth_city"`             // 出生城市
	CurrentCity string `json:"current_city,omitempty"` // 现居城市
}

// Service 八字档案服务接口
type Service interface {
	pubsub.Subscriber[Profile]
	// Profiles 返回本地档案集合的快照
	Profiles() []Profile
	// Load 从服务端刷新档案列表，整体替换本地集合
	Load(ctx context.Context) ([]Profile, error)
	// Get 获取档案详情
	Get(ctx context.Context, id string) (Profile, error)
	// Calculate 提交排盘计算；服务端返回档案后插入集合头部
	Calculate(ctx context.Context, params CalculateParams) (Profile, error)
	// Delete 删除档案；服务端确认后移出本地集合
	Delete(ctx context.Context, id string) error
	// Current 返回当前选中的档案
	Current() (Profile, bool)
	// SetCurrent 选中本地集合中的档案，不存在时返回 false
	SetCurrent(id string) bool
}

// service 八字档案服务的具体实现
type service struct {
	*pubsub.Broker[Profile]
	client    *api.Client
	profiles  *csync.Slice[Profile]
	currentID *csync.Value[string]
}

// NewService 创建新的八字档案服务实例
func NewService(client *api.Client) Service {
	return &service{
		Broker:    pubsub.NewBroker[Profile](),
		client:    client,
		profiles:  csync.NewSlice[Profile](),
		currentID: csync.NewValue(""),
	}
}

// Profiles 返回本地档案集合的快照
func (s *service) Profiles() []Profile {
	return s.profiles.Copy()
}

// Load 从服务端刷新档案列表
func (s *service) Load(ctx context.Context) ([]Profile, error) {
	var profiles []Profile
	if err := s.client.Get(ctx, "/bazi/profiles", &profiles); err != nil {
		return nil, err
	}

	s.profiles.SetSlice(profiles)
	return profiles, nil
}

// Get 获取档案详情
func (s *service) Get(ctx context.Context, id string) (Profile, error) {
	var profile Profile
	if err := s.client.Get(ctx, "/bazi/profiles/"+id, &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Calculate 提交排盘计算
// 非乐观操作：服务端返回档案后才插入本地集合头部
func (s *service) Calculate(ctx context.Context, params CalculateParams) (Profile, error) {
	var profile Profile
	if err := s.client.Post(ctx, "/bazi/calculate", params, &profile); err != nil {
		return Profile{}, err
	}

	s.profiles.Prepend(profile)
	s.Publish(pubsub.CreatedEvent, profile)
	return profile, nil
}

// Delete 删除档案
// 删除当前选中的档案时一并清除选中状态；档案被会话软引用，
// 删除档案不会级联删除引用它的会话
func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/bazi/profiles/"+id); err != nil {
		return err
	}

	var deleted Profile
	s.profiles.DeleteFunc(func(p Profile) bool {
		if p.ID == id {
			deleted = p
			return true
		}
		return false
	})
	s.currentID.Update(func(current string) string {
		if current == id {
			return ""
		}
		return current
	})
	s.Publish(pubsub.DeletedEvent, deleted)
	return nil
}

// Current 返回当前选中的档案
func (s *service) Current() (Profile, bool) {
	id := s.currentID.Get()
	if id == "" {
		return Profile{}, false
	}
	for p := range s.profiles.Seq() {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// SetCurrent 选中本地集合中的档案
func (s *service) SetCurrent(id string) bool {
	for p := range s.profiles.Seq() {
		if p.ID == id {
			s.currentID.Set(id)
			return true
		}
	}
	return false
}
