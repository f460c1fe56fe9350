package actor

import (
	"context"
	"sync/atomic"
)

const (
	resultPending int32 = iota
	resultWriting
	resultCompleted
)

// Result 一次性结果通道，Complete/Fail 合计只能成功调用一次
type Result struct {
	state atomic.Int32
	done  chan struct{}
	value interface{}
	err   error
}

func NewResult() *Result {
	return &Result{done: make(chan struct{})}
}

// Complete 以成功值完成
func (r *Result) Complete(value interface{}) error {
	return r.resolve(value, nil)
}

// Fail 以错误完成
func (r *Result) Fail(err error) error {
	if err == nil {
		return ErrNilFailure
	}
	return r.resolve(nil, err)
}

func (r *Result) resolve(value interface{}, err error) error {
	if !r.state.CompareAndSwap(resultPending, resultWriting) {
		return ErrResultCompleted
	}
	r.value, r.err = value, err
	r.state.Store(resultCompleted)
	close(r.done)
	return nil
}

// Done 完成后关闭
func (r *Result) Done() <-chan struct{} {
	return r.done
}

func (r *Result) IsCompleted() bool {
	return r.state.Load() == resultCompleted
}

// Wait 阻塞直到完成或 ctx 结束
func (r *Result) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-r.done:
		return r.value, r.err
	case <-ctx.Done():
		// 同时就绪时以结果为准
		select {
		case <-r.done:
			return r.value, r.err
		default:
		}
		return nil, ctx.Err()
	}
}
