package cleveland

import (
	"context"
	"net/http"

	"github.com/dzm2020/cleveland/internal/config"
	"github.com/dzm2020/cleveland/internal/errs"
	"github.com/dzm2020/cleveland/pkg/actor"
	"github.com/dzm2020/cleveland/pkg/glog"
	metricsProm "github.com/dzm2020/cleveland/pkg/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Runtime 由配置装配出的执行上下文：日志、调度器、指标和 actor group
type Runtime struct {
	cfg        *config.Config
	dispatcher actor.IDispatcher
	pool       *actor.PoolDispatcher
	group      *actor.Group
	metrics    actor.Metrics
	registry   *prometheus.Registry
}

// Init 读取配置文件并创建 Runtime
func Init(path string) (*Runtime, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// New 按配置创建 Runtime，cfg 为空时使用默认配置
func New(cfg *config.Config) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	glog.Init(&cfg.Glog)

	rt := &Runtime{
		cfg:     cfg,
		group:   actor.NewGroup(),
		metrics: actor.NopMetrics(),
	}

	switch cfg.Actor.Dispatcher.Type {
	case config.DispatcherPool:
		pool, err := actor.NewPoolDispatcher(cfg.Actor.Dispatcher.PoolSize,
			actor.WithNonblocking(cfg.Actor.Dispatcher.Nonblocking))
		if err != nil {
			return nil, errs.ErrCreateDispatcherFailed(err)
		}
		rt.pool = pool
		rt.dispatcher = pool
	default:
		rt.dispatcher = actor.NewGoroutineDispatcher()
	}

	if cfg.Metrics.Enabled {
		rt.registry = prometheus.NewRegistry()
		rt.metrics = metricsProm.NewActorMetrics(rt.registry, cfg.Metrics.Namespace)
	}

	glog.Info("runtime created",
		zap.String("dispatcher", cfg.Actor.Dispatcher.Type),
		zap.Int("maxInboxSize", cfg.Actor.MaxInboxSize),
		zap.Bool("metrics", cfg.Metrics.Enabled))
	return rt, nil
}

func (rt *Runtime) Config() *config.Config {
	return rt.cfg
}

func (rt *Runtime) Dispatcher() actor.IDispatcher {
	return rt.dispatcher
}

func (rt *Runtime) Group() *actor.Group {
	return rt.group
}

// NewActor 使用配置中的默认参数创建 actor 并加入 group，opts 可覆盖默认值
func (rt *Runtime) NewActor(opts ...actor.Option) *actor.BaseActor {
	defaults := []actor.Option{
		actor.WithMaxInboxSize(rt.cfg.Actor.MaxInboxSize),
		actor.WithThroughput(rt.cfg.Actor.Throughput),
		actor.WithMetrics(rt.metrics),
	}
	a := actor.New(rt.dispatcher, append(defaults, opts...)...)
	rt.group.Add(a)
	return a
}

// MetricsHandler 指标未启用时返回 nil
func (rt *Runtime) MetricsHandler() http.Handler {
	if rt.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{})
}

// Shutdown 停止 group 中所有 actor，ctx 结束时不再等待
func (rt *Runtime) Shutdown(ctx context.Context) error {
	defer glog.Stop()

	done := make(chan error, 1)
	go func() {
		done <- rt.group.StopAll()
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		return errs.ErrShutdownTimeout(ctx.Err())
	}
	if rt.pool != nil {
		rt.pool.Release()
	}
	glog.Info("runtime shutdown", zap.Error(err))
	return err
}
