package session

import "encoding/json"

// User 用户信息
// token_balance 是门控助手回复的唯一资源，由服务端权威维护
type User struct {
	ID           string          `json:"id"`                   // 用户ID
	OpenID       string          `json:"openid,omitempty"`     // 微信 openid
	Nickname     string          `json:"nickname,omitempty"`   // 昵称
	AvatarURL    string          `json:"avatar_url,omitempty"` // 头像地址
	Gender       string          `json:"gender,omitempty"`     // 性别
	BirthInfo    json.RawMessage `json:"birth_info,omitempty"` // 出生信息
	TokenBalance int64           `json:"token_balance"`        // Token 余额
	CreatedAt    string          `json:"created_at"`           // 创建时间
}

// Settings 用户聊天设置
// 该设置不随账号清除而丢失（见 storage.Clear）
type Settings struct {
	ContextSize  int64  `json:"context_size"`  // 上下文长度
	AIStyle      string `json:"ai_style"`      // AI 回复风格
	StreamOutput bool   `json:"stream_output"` // 是否启用流式输出
}

// Session 当前会话状态
// 不变量：已登录 ⇔ Token 与 User 同时存在
type Session struct {
	Token   string // 认证令牌，未登录时为空
	User    User   // 当前用户信息
	HasUser bool   // 用户信息是否存在
}

// LoggedIn 判断会话是否处于已登录状态
func (s Session) LoggedIn() bool {
	return s.Token != "" && s.HasUser
}

// wxLoginResponse 微信登录接口的响应结构
type wxLoginResponse struct {
	Token     string `json:"token"`       // 认证令牌
	User      User   `json:"user"`        // 用户信息
	IsNewUser bool   `json:"is_new_user"` // 是否为新注册用户
}

// uploadAvatarResponse 头像上传接口的响应结构
type uploadAvatarResponse struct {
	AvatarURL string `json:"avatar_url"` // 新头像地址
	Message   string `json:"message"`    // 提示信息
}
