// Package lib
// @Description: 无锁消息队列（多生产者单消费者）

package lib

import (
	"sync/atomic"
)

type node[T any] struct {
	next atomic.Pointer[node[T]]
	val  T
}

// Mpsc 多生产者单消费者队列
// Push 可并发调用，Pop/Empty 只能由唯一的消费者调用
type Mpsc[T any] struct {
	head atomic.Pointer[node[T]]
	tail *node[T]
	size atomic.Int64
}

func NewMpsc[T any]() *Mpsc[T] {
	q := &Mpsc[T]{}
	stub := &node[T]{}
	q.head.Store(stub)
	q.tail = stub
	return q
}

func (q *Mpsc[T]) Push(x T) {
	n := &node[T]{val: x}
	prev := q.head.Swap(n)
	q.size.Add(1)
	prev.next.Store(n)
}

// Pop 弹出队首元素，队列为空时 ok 为 false
func (q *Mpsc[T]) Pop() (v T, ok bool) {
	next := q.tail.next.Load()
	if next == nil {
		return v, false
	}
	q.tail = next
	v = next.val
	var zero T
	next.val = zero
	q.size.Add(-1)
	return v, true
}

func (q *Mpsc[T]) Empty() bool {
	return q.tail.next.Load() == nil
}

// Len 队列长度，并发场景下为近似值
func (q *Mpsc[T]) Len() int {
	return int(q.size.Load())
}
