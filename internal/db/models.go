package db

import "database/sql"

// Conversation 会话缓存记录
type Conversation struct {
	ID            string         `json:"id"`              // 会话ID
	UserID        string         `json:"user_id"`         // 所属用户ID
	Title         string         `json:"title"`           // 会话标题
	BaziProfileID sql.NullString `json:"bazi_profile_id"` // 关联的八字档案ID
	ContextSize   int64          `json:"context_size"`    // 上下文长度
	AiStyle       string         `json:"ai_style"`        // AI 回复风格
	CreatedAt     string         `json:"created_at"`      // 创建时间
	UpdatedAt     sql.NullString `json:"updated_at"`      // 更新时间
}

// Message 消息缓存记录
type Message struct {
	ID             string `json:"id"`              // 消息ID
	ConversationID string `json:"conversation_id"` // 所属会话ID
	Role           string `json:"role"`            // 消息角色
	Content        string `json:"content"`         // 消息内容
	TokenCost      int64  `json:"token_cost"`      // Token 消耗
	CreatedAt      string `json:"created_at"`      // 创建时间
}
