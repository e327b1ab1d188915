// Package db 提供会话目录和消息的本地只读缓存
// 缓存由聊天服务在服务端响应到达时写入，永远不作为权威数据源；
// 它只用于离线时展示会话列表和最近的消息
package db

import "embed"

// 使用 embed 指令将 migrations 目录下的所有 .sql 文件嵌入到程序中
//
//go:embed migrations/*.sql
var FS embed.FS
