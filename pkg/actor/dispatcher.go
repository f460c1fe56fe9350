// Package actor
// @Description: 执行上下文（调度器）

package actor

import (
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
)

var _ IDispatcher = GoroutineDispatcher{}
var _ IDispatcher = (*PoolDispatcher)(nil)

// GoroutineDispatcher 每个消息循环独占一个协程
type GoroutineDispatcher struct{}

func NewGoroutineDispatcher() GoroutineDispatcher {
	return GoroutineDispatcher{}
}

func (GoroutineDispatcher) Schedule(fn func(), recoverFun func(err interface{})) error {
	go try(fn, recoverFun)
	return nil
}

// PoolDispatcher 基于 ants 协程池，多个 actor 共享同一组 worker
// 消息循环会一直占用 worker 直到 actor 停止，size 即可同时运行的 actor 上限
type PoolDispatcher struct {
	pool       *ants.Pool
	panicCount atomic.Uint64
}

type PoolOption func(*ants.Options)

// WithNonblocking 池满时 Schedule 立即返回错误而不是等待
func WithNonblocking(nonblocking bool) PoolOption {
	return func(o *ants.Options) {
		o.Nonblocking = nonblocking
	}
}

// WithMaxBlockingTasks 阻塞模式下最多等待的提交数，0 为不限
func WithMaxBlockingTasks(n int) PoolOption {
	return func(o *ants.Options) {
		o.MaxBlockingTasks = n
	}
}

func NewPoolDispatcher(size int, opts ...PoolOption) (*PoolDispatcher, error) {
	options := ants.Options{}
	for _, opt := range opts {
		opt(&options)
	}
	pool, err := ants.NewPool(size, ants.WithOptions(options))
	if err != nil {
		return nil, errors.Wrap(err, "actor: create dispatcher pool")
	}
	return &PoolDispatcher{pool: pool}, nil
}

func (d *PoolDispatcher) Schedule(fn func(), recoverFun func(err interface{})) error {
	err := d.pool.Submit(func() {
		try(fn, func(r interface{}) {
			d.panicCount.Add(1)
			if recoverFun != nil {
				recoverFun(r)
			}
		})
	})
	if err != nil {
		return errors.Wrap(err, "actor: schedule on pool")
	}
	return nil
}

// Running 正在运行的 worker 数
func (d *PoolDispatcher) Running() int {
	return d.pool.Running()
}

func (d *PoolDispatcher) Cap() int {
	return d.pool.Cap()
}

func (d *PoolDispatcher) PanicCount() uint64 {
	return d.panicCount.Load()
}

// Release 关闭协程池，应在所有 actor 停止后调用
func (d *PoolDispatcher) Release() {
	d.pool.Release()
}

func try(fn func(), recoverFun func(err interface{})) {
	defer func() {
		if err := recover(); err != nil {
			if recoverFun != nil {
				recoverFun(err)
			}
		}
	}()
	fn()
}
