// 由 sqlc 自动生成的代码。请勿编辑。
// 版本信息:
//   sqlc v1.30.0
// 源文件: conversations.sql

package db

import (
	"context"
	"database/sql"
)

const deleteConversation = `-- 名称: DeleteConversation :exec
DELETE FROM conversations
WHERE id = ?
`

// DeleteConversation 删除指定会话的缓存记录
func (q *Queries) DeleteConversation(ctx context.Context, id string) error {
	_, err := q.exec(ctx, q.deleteConversationStmt, deleteConversation, id)
	return err
}

const listConversations = `-- 名称: ListConversations :many
SELECT id, user_id, title, bazi_profile_id, context_size, ai_style, created_at, updated_at
FROM conversations
ORDER BY COALESCE(updated_at, created_at) DESC
`

// ListConversations 列出缓存中的全部会话，按更新时间降序排列
func (q *Queries) ListConversations(ctx context.Context) ([]Conversation, error) {
	rows, err := q.query(ctx, q.listConversationsStmt, listConversations)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Conversation{}
	for rows.Next() {
		var i Conversation
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Title,
			&i.BaziProfileID,
			&i.ContextSize,
			&i.AiStyle,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const upsertConversation = `-- 名称: UpsertConversation :one
INSERT INTO conversations (
    id,
    user_id,
    title,
    bazi_profile_id,
    context_size,
    ai_style,
    created_at,
    updated_at
) VALUES (
    ?,
    ?,
    ?,
    ?,
    ?,
    ?,
    ?,
    ?
)
ON CONFLICT (id) DO UPDATE SET
    user_id = excluded.user_id,
    title = excluded.title,
    bazi_profile_id = excluded.bazi_profile_id,
    context_size = excluded.context_size,
    ai_style = excluded.ai_style,
    created_at = excluded.created_at,
    updated_at = excluded.updated_at
RETURNING id, user_id, title, bazi_profile_id, context_size, ai_style, created_at, updated_at
`

// UpsertConversationParams 插入或更新会话缓存的参数结构体
type UpsertConversationParams struct {
	ID            string         `json:"id"`              // 会话ID
	UserID        string         `json:"user_id"`         // 所属用户ID
	Title         string         `json:"title"`           // 会话标题
	BaziProfileID sql.NullString `json:"bazi_profile_id"` // 关联的八字档案ID
	ContextSize   int64          `json:"context_size"`    // 上下文长度
	AiStyle       string         `json:"ai_style"`        // AI 回复风格
	CreatedAt     string         `json:"created_at"`      // 创建时间
	UpdatedAt     sql.NullString `json:"updated_at"`      // 更新时间
}

// UpsertConversation 插入或更新会话缓存记录
func (q *Queries) UpsertConversation(ctx context.Context, arg UpsertConversationParams) (Conversation, error) {
	row := q.queryRow(ctx, q.upsertConversationStmt, upsertConversation,
		arg.ID,
		arg.UserID,
		arg.Title,
		arg.BaziProfileID,
		arg.ContextSize,
		arg.AiStyle,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i Conversation
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Title,
		&i.BaziProfileID,
		&i.ContextSize,
		&i.AiStyle,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
