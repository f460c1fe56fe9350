package actor

import (
	"context"

	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	// Context 传给 handler 的根 context，actor 退出时被取消
	Context context.Context
	// MaxInboxSize 邮箱容量，0 表示不限
	MaxInboxSize int
	// Throughput 连续处理多少条消息后让出 CPU，0 表示不主动让出
	Throughput int
	Logger     *zap.Logger
	Metrics    Metrics
	// ShutdownHook 在 Stop 发起关闭时调用一次
	ShutdownHook func() error
	// ErrorReporter 单向消息处理失败时回调
	ErrorReporter func(id uint64, msg IMessage, err error)
	// FaultHandlers 消息循环因致命错误退出时回调
	FaultHandlers []func(Fault)
}

func loadOptions(options ...Option) *Options {
	opts := &Options{}
	for _, option := range options {
		if option != nil {
			option(opts)
		}
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.MaxInboxSize < 0 {
		opts.MaxInboxSize = 0
	}
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics()
	}
	return opts
}

func WithContext(ctx context.Context) Option {
	return func(op *Options) {
		op.Context = ctx
	}
}

func WithMaxInboxSize(size int) Option {
	return func(op *Options) {
		op.MaxInboxSize = size
	}
}

func WithThroughput(n int) Option {
	return func(op *Options) {
		op.Throughput = n
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(op *Options) {
		op.Logger = logger
	}
}

func WithMetrics(m Metrics) Option {
	return func(op *Options) {
		op.Metrics = m
	}
}

func WithShutdownHook(hook func() error) Option {
	return func(op *Options) {
		op.ShutdownHook = hook
	}
}

func WithErrorReporter(reporter func(id uint64, msg IMessage, err error)) Option {
	return func(op *Options) {
		op.ErrorReporter = reporter
	}
}

// WithFaultHandler 可多次调用，按顺序通知
func WithFaultHandler(handler func(Fault)) Option {
	return func(op *Options) {
		if handler != nil {
			op.FaultHandlers = append(op.FaultHandlers, handler)
		}
	}
}
