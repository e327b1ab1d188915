// 由 sqlc 自动生成的代码。请勿编辑。
// 版本信息:
//   sqlc v1.30.0

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX 定义数据库事务接口，封装了数据库操作的核心方法
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// New 创建并返回一个新的 Queries 实例
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Prepare 预编译所有 SQL 查询语句并返回 Queries 实例
func Prepare(ctx context.Context, db DBTX) (*Queries, error) {
	q := Queries{db: db}
	var err error
	if q.deleteConversationStmt, err = db.PrepareContext(ctx, deleteConversation); err != nil {
		return nil, fmt.Errorf("准备查询 DeleteConversation 时出错: %w", err)
	}
	if q.deleteConversationMessagesStmt, err = db.PrepareContext(ctx, deleteConversationMessages); err != nil {
		return nil, fmt.Errorf("准备查询 DeleteConversationMessages 时出错: %w", err)
	}
	if q.listConversationsStmt, err = db.PrepareContext(ctx, listConversations); err != nil {
		return nil, fmt.Errorf("准备查询 ListConversations 时出错: %w", err)
	}
	if q.listMessagesByConversationStmt, err = db.PrepareContext(ctx, listMessagesByConversation); err != nil {
		return nil, fmt.Errorf("准备查询 ListMessagesByConversation 时出错: %w", err)
	}
	if q.upsertConversationStmt, err = db.PrepareContext(ctx, upsertConversation); err != nil {
		return nil, fmt.Errorf("准备查询 UpsertConversation 时出错: %w", err)
	}
	if q.upsertMessageStmt, err = db.PrepareContext(ctx, upsertMessage); err != nil {
		return nil, fmt.Errorf("准备查询 UpsertMessage 时出错: %w", err)
	}
	return &q, nil
}

// Close 关闭所有预编译的 SQL 语句
func (q *Queries) Close() error {
	var err error
	if q.deleteConversationStmt != nil {
		if cerr := q.deleteConversationStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 deleteConversationStmt 时出错: %w", cerr)
		}
	}
	if q.deleteConversationMessagesStmt != nil {
		if cerr := q.deleteConversationMessagesStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 deleteConversationMessagesStmt 时出错: %w", cerr)
		}
	}
	if q.listConversationsStmt != nil {
		if cerr := q.listConversationsStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 listConversationsStmt 时出错: %w", cerr)
		}
	}
	if q.listMessagesByConversationStmt != nil {
		if cerr := q.listMessagesByConversationStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 listMessagesByConversationStmt 时出错: %w", cerr)
		}
	}
	if q.upsertConversationStmt != nil {
		if cerr := q.upsertConversationStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 upsertConversationStmt 时出错: %w", cerr)
		}
	}
	if q.upsertMessageStmt != nil {
		if cerr := q.upsertMessageStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 upsertMessageStmt 时出错: %w", cerr)
		}
	}
	return err
}

// exec 执行 SQL 语句
func (q *Queries) exec(ctx context.Context, stmt *sql.Stmt, query string, args ...interface{}) (sql.Result, error) {
	switch {
	case stmt != nil && q.tx != nil:
		return q.tx.StmtContext(ctx, stmt).ExecContext(ctx, args...)
	case stmt != nil:
		return stmt.ExecContext(ctx, args...)
	default:
		return q.db.ExecContext(ctx, query, args...)
	}
}

// query 执行查询并返回多行结果
func (q *Queries) query(ctx context.Context, stmt *sql.Stmt, query string, args ...interface{}) (*sql.Rows, error) {
	switch {
	case stmt != nil && q.tx != nil:
		return q.tx.StmtContext(ctx, stmt).QueryContext(ctx, args...)
	case stmt != nil:
		return stmt.QueryContext(ctx, args...)
	default:
		return q.db.QueryContext(ctx, query, args...)
	}
}

// queryRow 执行查询并返回单行结果
func (q *Queries) queryRow(ctx context.Context, stmt *sql.Stmt, query string, args ...interface{}) *sql.Row {
	switch {
	case stmt != nil && q.tx != nil:
		return q.tx.StmtContext(ctx, stmt).QueryRowContext(ctx, args...)
	case stmt != nil:
		return stmt.QueryRowContext(ctx, args...)
	default:
		return q.db.QueryRowContext(ctx, query, args...)
	}
}

// Queries 保存数据库连接和所有预编译的 SQL 语句
type Queries struct {
	db                             DBTX
	tx                             *sql.Tx
	deleteConversationStmt         *sql.Stmt
	deleteConversationMessagesStmt *sql.Stmt
	listConversationsStmt          *sql.Stmt
	listMessagesByConversationStmt *sql.Stmt
	upsertConversationStmt         *sql.Stmt
	upsertMessageStmt              *sql.Stmt
}

// WithTx 返回一个在给定事务中执行的 Queries 实例
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{
		db:                             tx,
		tx:                             tx,
		deleteConversationStmt:         q.deleteConversationStmt,
		deleteConversationMessagesStmt: q.deleteConversationMessagesStmt,
		listConversationsStmt:          q.listConversationsStmt,
		listMessagesByConversationStmt: q.listMessagesByConversationStmt,
		upsertConversationStmt:         q.upsertConversationStmt,
		upsertMessageStmt:              q.upsertMessageStmt,
	}
}
