package actor

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type (
	// Handler 消息处理函数，返回值只对 query 消息有意义
	Handler func(ctx IContext, msg IMessage) (interface{}, error)

	// IReceiver 能接收消息的对象，Tell/Ask 的目标必须实现它
	IReceiver interface {
		Receive(ctx context.Context, msg IMessage) error
	}

	// IActor 完整的 actor 生命周期接口
	IActor interface {
		IReceiver
		ID() uint64
		Start() error
		Stop() error
		State() State
		Done() <-chan struct{}
		Err() error
	}

	// IDispatcher 执行上下文，负责调度 actor 的消息循环
	IDispatcher interface {
		Schedule(fn func(), recoverFun func(err interface{})) error
	}

	// IContext 传给 handler 的上下文，只在 handler 执行期间有效
	IContext interface {
		context.Context
		ID() uint64
		Self() IActor
		Message() IMessage
		Logger() *zap.Logger
		// Tell 发送单向消息，目标可以是自己
		Tell(target interface{}, msg IMessage) error
		// Ask 向其它 actor 发起请求；向自己发起会返回 ErrSelfAsk
		Ask(target interface{}, msg IMessage) (interface{}, error)
		// AfterFunc 延迟 d 后把 msg 投递给自己
		AfterFunc(d time.Duration, msg IMessage) Cancel
	}

	// Cancel 取消延迟投递，已经投递时返回 false
	Cancel func() bool
)
