package chat

import "strings"

// Role 消息角色
type Role string

// 消息角色常量定义
const (
	RoleUser      Role = "user"      // 用户消息
	RoleAssistant Role = "assistant" // 助手消息
	RoleSystem    Role = "system"    // 系统消息
)

// provisionalPrefix 临时消息ID的公共前缀
// 临时ID由本地生成，仅在服务端确认真实ID之前使用
const provisionalPrefix = "temp_"

// Message 一条对话消息
// ID 存在两种形态：服务端分配的全局唯一ID，以及本地生成的临时ID
type Message struct {
	ID             string `json:"id"`              // 消息ID
	ConversationID string `json:"conversation_id"` // 所属会话ID
	Role           Role   `json:"role"`            // 消息角色
	Content        string `json:"content"`         // 消息内容（流式回复时增量累积）
	TokenCost      int64  `json:"token_cost"`      // Token 消耗
	CreatedAt      string `json:"created_at"`      // 创建时间
}

// Provisional 判断消息是否仍持有临时ID
func (m Message) Provisional() bool {
	return strings.HasPrefix(m.ID, provisionalPrefix)
}

// Conversation 会话摘要
// ID 由服务端分配；本地创建的会话在服务端返回真实ID之前不会出现在目录中
type Conversation struct {
	ID            string `json:"id"`                        // 会话ID
	UserID        string `json:"user_id"`                   // 所属用户ID
	Title         string `json:"title"`                     // 会话标题
	BaziProfileID string `json:"bazi_profile_id,omitempty"` // 关联的八字档案ID（软引用）
	ContextSize   int64  `json:"context_size"`              // 上下文长度
	AIStyle       string `json:"ai_style"`                  // AI 回复风格
	CreatedAt     string `json:"created_at"`                // 创建时间
	UpdatedAt     string `json:"updated_at,omitempty"`      // 更新时间
}

// CreateParams 创建会话的参数结构体
type CreateParams struct {
	Title         string `json:"title,omitempty"`           // 会话标题
	BaziProfileID string `json:"bazi_profile_id,omitempty"` // 关联的八字档案ID
	ContextSize   int64  `json:"context_size,omitempty"`    // 上下文长度
	AIStyle       string `json:"ai_style,omitempty"`        // AI 回复风格
}

// sharePage 扫码后进入的落地页，经会话列表打开目标会话
const sharePage = "pages/session/index"

// ShareCode 指向会话的小程序分享码
type ShareCode struct {
	ImageBase64    string `json:"image_base64"`    // 码图片（base64 编码的 PNG）
	ConversationID string `json:"conversation_id"` // 目标会话ID
}

// sendResponse 发送消息接口的响应结构
type sendResponse struct {
	MessageID string `json:"message_id"` // 助手消息的真实ID
	Content   string `json:"content"`    // 助手回复内容
	TokenCost int64  `json:"token_cost"` // 本次回复的 Token 消耗
}

// historyResponse 会话历史接口的响应结构
type historyResponse struct {
	Conversation Conversation `json:"conversation"` // 会话摘要
	Messages     []Message    `json:"messages"`     // 消息列表
	Total        int64        `json:"total"`        // 消息总数
}
