// 由 sqlc 自动生成的代码。请勿编辑。
// 版本信息:
//   sqlc v1.30.0
// 源文件: messages.sql

package db

import (
	"context"
)

const deleteConversationMessages = `-- 名称: DeleteConversationMessages :exec
DELETE FROM messages
WHERE conversation_id = ?
`

// DeleteConversationMessages 删除指定会话的全部消息缓存
func (q *Queries) DeleteConversationMessages(ctx context.Context, conversationID string) error {
	_, err := q.exec(ctx, q.deleteConversationMessagesStmt, deleteConversationMessages, conversationID)
	return err
}

const listMessagesByConversation = `-- 名称: ListMessagesByConversation :many
SELECT id, conversation_id, role, content, token_cost, created_at
FROM messages
WHERE conversation_id = ?
ORDER BY created_at ASC
`

// ListMessagesByConversation 列出指定会话的消息缓存，按创建时间升序排列
func (q *Queries) ListMessagesByConversation(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := q.query(ctx, q.listMessagesByConversationStmt, listMessagesByConversation, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Message{}
	for rows.Next() {
		var i Message
		if err := rows.Scan(
			&i.ID,
			&i.ConversationID,
			&i.Role,
			&i.Content,
			&i.TokenCost,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertMessage = `-- 名称: UpsertMessage :one
INSERT INTO messages (
    id,
    conversation_id,
    role,
    content,
    token_cost,
    created_at
) VALUES (
    ?,
    ?,
    ?,
    ?,
    ?,
    ?
)
ON CONFLICT (id) DO UPDATE SET
    conversation_id = excluded.conversation_id,
    role = excluded.role,
    content = excluded.content,
    token_cost = excluded.token_cost,
    created_at = excluded.created_at
RETURNING id, conversation_id, role, content, token_cost, created_at
`

// UpsertMessageParams 插入或更新消息缓存的参数结构体
type UpsertMessageParams struct {
	ID             string `json:"id"`              // 消息ID
	ConversationID string `json:"conversation_id"` // 所属会话ID
	Role           string `json:"role"`            // 消息角色
	Content        string `json:"content"`         // 消息内容
	TokenCost      int64  `json:"token_cost"`      // Token 消耗
	CreatedAt      string `json:"created_at"`      // 创建时间
}

// UpsertMessage 插入或更新消息缓存记录
func (q *Queries) UpsertMessage(ctx context.Context, arg UpsertMessageParams) (Message, error) {
	row := q.queryRow(ctx, q.upsertMessageStmt, upsertMessage,
		arg.ID,
		arg.ConversationID,
		arg.Role,
		arg.Content,
		arg.TokenCost,
		arg.CreatedAt,
	)
	var i Message
	err := row.Scan(
		&i.ID,
		&i.ConversationID,
		&i.Role,
		&i.Content,
		&i.TokenCost,
		&i.CreatedAt,
	)
	return i, err
}
