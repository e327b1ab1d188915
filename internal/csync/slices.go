package csync

import (
	"iter"
	"sync"
)

// Slice 是一个线程安全的切片实现，提供并发访问能力。
type Slice[T any] struct {
	inner []T
	mu    sync.RWMutex
}

// NewSlice 创建一个新的线程安全切片。
func NewSlice[T any]() *Slice[T] {
	return &Slice[T]{
		inner: make([]T, 0),
	}
}

// Append 在切片末尾添加一个或多个元素。
func (s *Slice[T]) Append(items ...T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner = append(s.inner, items...)
}

// Prepend 在切片头部插入一个元素。
func (s *Slice[T]) Prepend(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner = append([]T{item}, s.inner...)
}

// Len 返回切片中元素的数量。
func (s *Slice[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.inner)
}

// SetSlice 用新的切片整体替换内部切片。
func (s *Slice[T]) SetSlice(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner = make([]T, len(items))
	copy(s.inner, items)
}

// DeleteFunc 删除所有满足 del 的元素。
func (s *Slice[T]) DeleteFunc(del func(T) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.inner[:0]
	for _, v := range s.inner {
		if !del(v) {
			kept = append(kept, v)
		}
	}
	s.inner = kept
}

// UpdateFunc 对第一个满足 match 的元素应用 update，并返回是否找到。
// 匹配与替换在同一临界区内完成。
func (s *Slice[T]) UpdateFunc(match func(T) bool, update func(T) T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.inner {
		if match(v) {
			s.inner[i] = update(v)
			return true
		}
	}
	return false
}

// Seq 返回一个迭代器，用于从切片的副本中产出元素。
func (s *Slice[T]) Seq() iter.Seq[T] {
	items := s.Copy()
	return func(yield func(T) bool) {
		for _, v := range items {
			if !yield(v) {
				return
			}
		}
	}
}

// Copy 返回内部切片的副本。
func (s *Slice[T]) Copy() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]T, len(s.inner))
	copy(items, s.inner)
	return items
}
