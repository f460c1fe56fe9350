package lib

import (
	"sync"

	"golang.org/x/exp/slices"
)

type subscriber[V any] struct {
	id      uint64
	handler func(V)
}

// Listener 事件监听器，按注册顺序依次通知
type Listener[V any] struct {
	mu       sync.RWMutex
	seq      uint64
	handlers []subscriber[V]
}

func NewListener[V any]() *Listener[V] {
	return &Listener[V]{}
}

// Register 注册监听函数，返回的 id 用于 UnRegister
func (m *Listener[V]) Register(handler func(V)) uint64 {
	if handler == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.handlers = append(m.handlers, subscriber[V]{id: m.seq, handler: handler})
	return m.seq
}

func (m *Listener[V]) UnRegister(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	index := slices.IndexFunc(m.handlers, func(s subscriber[V]) bool {
		return s.id == id
	})
	if index < 0 {
		return
	}
	m.handlers = slices.Delete(m.handlers, index, index+1)
}

func (m *Listener[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers)
}

// Notify 通知所有监听者；回调在锁外执行，允许回调内再次注册
func (m *Listener[V]) Notify(param V) {
	m.mu.RLock()
	handlers := slices.Clone(m.handlers)
	m.mu.RUnlock()
	for _, s := range handlers {
		s.handler(param)
	}
}
