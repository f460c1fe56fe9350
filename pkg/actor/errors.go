package actor

import (
	"fmt"

	"github.com/pkg/errors"
)

// 投递相关错误
var (
	// ErrTargetType 目标没有实现 IReceiver
	ErrTargetType = errors.New("actor: target is not a receiver")
	// ErrNotQuery Ask 只接受 query 消息
	ErrNotQuery = errors.New("actor: ask requires a query message")
	// ErrMessageIsNil 消息为空
	ErrMessageIsNil = errors.New("actor: message is nil")
	// ErrActorStopped actor 已停止，拒绝普通消息
	ErrActorStopped = errors.New("actor: actor is not running")
	// ErrInboxFull 非阻塞投递时邮箱已满
	ErrInboxFull = errors.New("actor: inbox is full")
	// ErrSelfAsk handler 内向自己发起 Ask 会死锁
	ErrSelfAsk = errors.New("actor: ask to self from inside a handler")
	// ErrUnexpectedReply 回复的类型与期望不符
	ErrUnexpectedReply = errors.New("actor: unexpected reply type")
)

// 生命周期相关错误
var (
	// ErrAlreadyStarted Start 只能调用一次
	ErrAlreadyStarted = errors.New("actor: already started")
	// ErrRegisterAfterStart 启动后不允许注册 handler
	ErrRegisterAfterStart = errors.New("actor: cannot register handler after start")
	// ErrHandlerAlreadyRegistered 同一种消息只能有一个 handler
	ErrHandlerAlreadyRegistered = errors.New("actor: handler already registered")
	// ErrHandlerIsNil handler 为空
	ErrHandlerIsNil = errors.New("actor: handler is nil")
	// ErrHandlerNotFound 消息没有对应的 handler
	ErrHandlerNotFound = errors.New("actor: handler not found")
	// ErrHandlerExecution handler 执行失败
	ErrHandlerExecution = errors.New("actor: handler execution failed")
)

// 结果相关错误
var (
	// ErrResultCompleted 结果只能写入一次
	ErrResultCompleted = errors.New("actor: result already completed")
	// ErrNilFailure Fail 必须带上错误
	ErrNilFailure = errors.New("actor: fail called with nil error")
)

// HandlerNotFoundError 消息类型没有注册 handler，属于配置错误，会终止消息循环
type HandlerNotFoundError struct {
	Kind Kind
}

func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("actor: handler not found for kind %q", e.Kind)
}

func (e *HandlerNotFoundError) Is(target error) bool {
	return target == ErrHandlerNotFound
}

// HandlerExecutionError handler 返回了错误或发生 panic
type HandlerExecutionError struct {
	Kind  Kind
	Err   error
	Panic interface{}
}

func (e *HandlerExecutionError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("actor: handler for kind %q panicked: %v", e.Kind, e.Panic)
	}
	return fmt.Sprintf("actor: handler for kind %q failed: %v", e.Kind, e.Err)
}

func (e *HandlerExecutionError) Unwrap() error {
	return e.Err
}

func (e *HandlerExecutionError) Is(target error) bool {
	return target == ErrHandlerExecution
}

func errTargetType(target interface{}) error {
	return errors.Wrapf(ErrTargetType, "got %T", target)
}

func errNotQuery(msg IMessage) error {
	return errors.Wrapf(ErrNotQuery, "got kind %q", msg.Kind())
}

func errUnexpectedReply(want string, got interface{}) error {
	return errors.Wrapf(ErrUnexpectedReply, "want %s, got %T", want, got)
}
