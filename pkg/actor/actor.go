package actor

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/dzm2020/cleveland/pkg/glog"
	"github.com/dzm2020/cleveland/pkg/lib"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	uniqId atomic.Uint64
)

var _ IActor = (*BaseActor)(nil)

// BaseActor 基于邮箱的 actor，handler 在同一个消息循环中串行执行
type BaseActor struct {
	lifecycle
	id         uint64
	dispatcher IDispatcher
	inbox      *inbox
	handlers   map[Kind]Handler
	opts       *Options
	log        *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	faults     *lib.Listener[Fault]
}

// New 创建 actor，dispatcher 决定消息循环运行在哪里
func New(dispatcher IDispatcher, options ...Option) *BaseActor {
	if dispatcher == nil {
		panic("actor: dispatcher is nil")
	}
	opts := loadOptions(options...)
	id := uniqId.Add(1)
	logger := opts.Logger
	if logger == nil {
		logger = glog.Named("actor")
	}
	ctx, cancel := context.WithCancel(opts.Context)
	a := &BaseActor{
		lifecycle:  newLifecycle(),
		id:         id,
		dispatcher: dispatcher,
		inbox:      newInbox(opts.MaxInboxSize),
		handlers:   make(map[Kind]Handler),
		opts:       opts,
		log:        logger.With(zap.Uint64("actor", id)),
		ctx:        ctx,
		cancel:     cancel,
		faults:     lib.NewListener[Fault](),
	}
	for _, h := range opts.FaultHandlers {
		a.faults.Register(h)
	}
	return a
}

func (a *BaseActor) ID() uint64 {
	return a.id
}

// InboxLen 邮箱中等待处理的消息数
func (a *BaseActor) InboxLen() int {
	return a.inbox.Len()
}

// RegisterHandler 绑定消息类型与 handler，只能在 Start 之前调用
func (a *BaseActor) RegisterHandler(kind Kind, fn Handler) error {
	if fn == nil {
		return errors.Wrapf(ErrHandlerIsNil, "kind %q", kind)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.State() != StateCreated {
		return ErrRegisterAfterStart
	}
	if _, ok := a.handlers[kind]; ok || kind == KindStop {
		return errors.Wrapf(ErrHandlerAlreadyRegistered, "kind %q", kind)
	}
	a.handlers[kind] = fn
	return nil
}

// OnFault 订阅致命错误，返回值用于 RemoveFaultHandler
func (a *BaseActor) OnFault(handler func(Fault)) uint64 {
	return a.faults.Register(handler)
}

func (a *BaseActor) RemoveFaultHandler(id uint64) {
	a.faults.UnRegister(id)
}

// Start 启动消息循环，只能调用一次
func (a *BaseActor) Start() error {
	if !a.transit(StateCreated, StateRunning) {
		if a.State() == StateStopped {
			return ErrActorStopped
		}
		return ErrAlreadyStarted
	}
	a.opts.Metrics.ActorStarted()
	if err := a.dispatcher.Schedule(a.run, a.onLoopPanic); err != nil {
		a.log.Error("schedule dispatch loop", zap.Error(err))
		a.exit(nil, err)
		return err
	}
	a.log.Debug("actor started")
	return nil
}

// Stop 关闭 actor 并等待消息循环退出
// 停止前已经进入邮箱的消息会被处理完；重复调用返回相同结果
// 不能在自身的 handler 中调用，否则会等待自己
func (a *BaseActor) Stop() error {
transition:
	for {
		switch a.State() {
		case StateCreated:
			if !a.transit(StateCreated, StateStopped) {
				continue
			}
			a.cancel()
			a.runShutdownHook()
			a.complete(nil)
			a.log.Debug("actor stopped before start")
		case StateRunning:
			if !a.transit(StateRunning, StateStopping) {
				continue
			}
			a.runShutdownHook()
			a.inbox.push(&StopMessage{}, false)
		}
		break transition
	}
	<-a.done
	return a.fault
}

// Receive 投递消息；未运行时只接受 StopMessage
func (a *BaseActor) Receive(ctx context.Context, msg IMessage) error {
	if a == nil {
		return errTargetType(a)
	}
	if msg == nil {
		return ErrMessageIsNil
	}
	if isStop(msg) {
		a.inbox.push(msg, false)
		return nil
	}
	if !a.isRunning() {
		return ErrActorStopped
	}
	if err := a.inbox.acquire(ctx, a.done); err != nil {
		return err
	}
	return a.enqueue(msg)
}

// tryReceive 非阻塞投递，邮箱已满时返回 ErrInboxFull
func (a *BaseActor) tryReceive(msg IMessage) error {
	if msg == nil {
		return ErrMessageIsNil
	}
	if isStop(msg) {
		a.inbox.push(msg, false)
		return nil
	}
	if !a.isRunning() {
		return ErrActorStopped
	}
	if !a.inbox.tryAcquire() {
		return ErrInboxFull
	}
	return a.enqueue(msg)
}

func (a *BaseActor) enqueue(msg IMessage) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.isRunning() {
		a.inbox.release()
		return ErrActorStopped
	}
	a.inbox.push(msg, true)
	a.opts.Metrics.InboxDepth(a.id, a.inbox.Len())
	return nil
}

func (a *BaseActor) run() {
	var (
		fault    error
		faultMsg IMessage
	)
	defer func() {
		if r := recover(); r != nil {
			fault = errors.Errorf("actor: dispatch loop panicked: %v", r)
		}
		a.exit(faultMsg, fault)
	}()

	throughput := a.opts.Throughput
	var processed int
	for {
		msg := a.inbox.get()
		a.opts.Metrics.InboxDepth(a.id, a.inbox.Len())
		if err := a.dispatch(msg); err != nil {
			fault, faultMsg = err, msg
			return
		}
		if isStop(msg) {
			return
		}
		if throughput > 0 {
			processed++
			if processed >= throughput {
				processed = 0
				runtime.Gosched()
			}
		}
	}
}

// dispatch 处理一条消息；返回错误表示消息循环必须终止
func (a *BaseActor) dispatch(msg IMessage) error {
	kind := msg.Kind()
	query, isQuery := msg.(IQuery)
	h, ok := a.handler(msg)
	if !ok {
		err := &HandlerNotFoundError{Kind: kind}
		if isQuery {
			_ = query.bindResult().Fail(err)
		}
		return err
	}

	timer := a.opts.Metrics.MessageDuration(kind)
	response, err := a.invoke(h, msg)
	timer.ObserveDuration()
	a.opts.Metrics.MessageProcessed(kind, err == nil)

	if isQuery {
		result := query.bindResult()
		var werr error
		if err != nil {
			werr = result.Fail(err)
		} else {
			werr = result.Complete(response)
		}
		if werr != nil {
			a.log.Warn("query result already completed", zap.String("kind", string(kind)))
		}
		return nil
	}
	if err != nil {
		a.report(msg, err)
	}
	return nil
}

func (a *BaseActor) invoke(h Handler, msg IMessage) (response interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.opts.Metrics.MessagePanic(msg.Kind())
			a.log.Error("handler panicked",
				zap.String("kind", string(msg.Kind())),
				zap.Any("recovered", r),
				zap.Stack("stack"))
			response = nil
			err = &HandlerExecutionError{Kind: msg.Kind(), Err: errors.Errorf("panic: %v", r), Panic: r}
		}
	}()
	response, err = h(newContext(a, msg), msg)
	if err != nil {
		err = &HandlerExecutionError{Kind: msg.Kind(), Err: err}
	}
	return response, err
}

// report 单向消息的失败只记录，不影响消息循环
func (a *BaseActor) report(msg IMessage, err error) {
	a.log.Warn("unhandled error from handler",
		zap.String("kind", string(msg.Kind())),
		zap.Error(err))
	if a.opts.ErrorReporter != nil {
		a.opts.ErrorReporter(a.id, msg, err)
	}
}

func (a *BaseActor) exit(msg IMessage, fault error) {
	a.markStopped()
	a.cancel()
	a.drain()
	a.opts.Metrics.ActorStopped(a.id, fault != nil)
	a.complete(fault)
	if fault == nil {
		a.log.Debug("actor stopped")
		return
	}
	a.log.Error("dispatch loop terminated", zap.Error(fault))
	a.faults.Notify(Fault{ID: a.id, Msg: msg, Err: fault})
}

// drain 丢弃退出后残留的消息，等待中的 query 以 ErrActorStopped 结束
func (a *BaseActor) drain() {
	for {
		msg, ok := a.inbox.tryGet()
		if !ok {
			return
		}
		if query, ok := msg.(IQuery); ok {
			_ = query.bindResult().Fail(ErrActorStopped)
		}
	}
}

func (a *BaseActor) runShutdownHook() {
	if a.opts.ShutdownHook == nil {
		return
	}
	if err := a.opts.ShutdownHook(); err != nil {
		a.log.Warn("shutdown hook", zap.Error(err))
	}
}

func (a *BaseActor) onLoopPanic(err interface{}) {
	a.log.Error("dispatch loop panic escaped", zap.Any("recovered", err))
}

// handler 查找消息对应的 handler，只有 StopMessage 会路由到停止 handler
// 其它声明为 KindStop 的消息视为没有 handler
func (a *BaseActor) handler(msg IMessage) (Handler, bool) {
	if isStop(msg) {
		return a.stopMessageHandler, true
	}
	kind := msg.Kind()
	if kind == KindStop {
		return nil, false
	}
	h, ok := a.handlers[kind]
	return h, ok
}

func (a *BaseActor) stopMessageHandler(_ IContext, _ IMessage) (interface{}, error) {
	// 只负责唤醒阻塞的邮箱并切换状态
	a.transit(StateRunning, StateStopping)
	return nil, nil
}
