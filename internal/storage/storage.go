// Package storage 提供本地键值状态的持久化
// 该包负责在进程重启之间保存认证令牌、用户信息和设置等客户端状态
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// stateFileName 定义状态文件的名称常量
const stateFileName = "state.json"

// 持久化状态使用的稳定键名
const (
	KeyAuthToken = "auth_token"    // 认证令牌
	KeyUserInfo  = "user_info"     // 用户信息
	KeySettings  = "chat_settings" // 聊天设置（不随账号清除）
)

// Store 基于单个 JSON 文件的键值存储
// 所有方法都是线程安全的
type Store struct {
	path string     // 状态文件的完整路径
	mu   sync.Mutex // 保护文件读写的互斥锁
}

// New 创建一个新的存储实例，状态文件位于 dataDir 下
func New(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, stateFileName)}
}

// load 从磁盘读取全部键值对
// 文件不存在时返回空映射而不是错误
func (s *Store) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}

	state := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return state, nil
}

// save 将全部键值对写入磁盘
// 自动创建必要的目录结构
func (s *Store) save(state map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o600)
}

// Get 读取指定键的值并反序列化到 v
// 返回键是否存在
func (s *Store) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return false, err
	}

	raw, ok := state[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

// Set 序列化 v 并写入指定键
func (s *Store) Set(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	state[key] = raw
	return s.save(state)
}

// Delete 删除指定键
// 键不存在时为空操作
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := state[key]; !ok {
		return nil
	}
	delete(state, key)
	return s.save(state)
}

// Clear 清空全部账号相关状态
// 非账号范围的设置键（KeySettings）会尽力保留，跨账号清除仍然有效
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		// 状态文件损坏时直接整体清除
		return os.RemoveAll(s.path)
	}

	next := map[string]json.RawMessage{}
	if settings, ok := state[KeySettings]; ok {
		next[KeySettings] = settings
	}
	return s.save(next)
}
