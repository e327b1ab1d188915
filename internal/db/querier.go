// 由 sqlc 自动生成的代码。请勿编辑。
// 版本信息:
//   sqlc v1.30.0

package db

import (
	"context"
)

// Querier 定义缓存层的全部查询操作
type Querier interface {
	// DeleteConversation 删除指定会话的缓存记录
	DeleteConversation(ctx context.Context, id string) error
	// DeleteConversationMessages 删除指定会话的全部消息缓存
	DeleteConversationMessages(ctx context.Context, conversationID string) error
	// ListConversations 列出缓存中的全部会话，按更新时间降序排列
	ListConversations(ctx context.Context) ([]Conversation, error)
	// ListMessagesByConversation 列出指定会话的消息缓存，按创建时间升序排列
	ListMessagesByConversation(ctx context.Context, conversationID string) ([]Message, error)
	// UpsertConversation 插入或更新会话缓存记录
	UpsertConversation(ctx context.Context, arg UpsertConversationParams) (Conversation, error)
	// UpsertMessage 插入或更新消息缓存记录
	UpsertMessage(ctx context.Context, arg UpsertMessageParams) (Message, error)
}

var _ Querier = (*Queries)(nil)
