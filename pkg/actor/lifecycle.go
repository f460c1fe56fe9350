package actor

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// State actor 生命周期状态
//
//	Created -> Running -> Stopping -> Stopped
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Fault 消息循环异常退出的信息
type Fault struct {
	ID  uint64
	Msg IMessage
	Err error
}

// lifecycle 状态机与完成信号
// mu 保护状态迁移；投递方持读锁检查状态后入队，保证状态离开 Running 之后不会再有普通消息进入邮箱
type lifecycle struct {
	mu       sync.RWMutex
	state    atomic.Int32
	done     chan struct{}
	doneOnce sync.Once
	fault    error
}

func newLifecycle() lifecycle {
	return lifecycle{done: make(chan struct{})}
}

func (l *lifecycle) State() State {
	return State(l.state.Load())
}

func (l *lifecycle) isRunning() bool {
	return l.State() == StateRunning
}

// transit 从 from 迁移到 to，成功返回 true
func (l *lifecycle) transit(from, to State) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.CompareAndSwap(int32(from), int32(to))
}

// markStopped 强制进入终态，返回之前的状态
func (l *lifecycle) markStopped() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State(l.state.Swap(int32(StateStopped)))
}

// Done 消息循环退出后关闭
func (l *lifecycle) Done() <-chan struct{} {
	return l.done
}

// Err 消息循环因致命错误退出时返回该错误
func (l *lifecycle) Err() error {
	select {
	case <-l.done:
		return l.fault
	default:
		return nil
	}
}

// complete 设置完成信号，只生效一次
func (l *lifecycle) complete(fault error) {
	l.doneOnce.Do(func() {
		l.fault = fault
		close(l.done)
	})
}
