package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dzm2020/cleveland"
	"github.com/dzm2020/cleveland/internal/config"
	"github.com/dzm2020/cleveland/pkg/actor"
	"github.com/dzm2020/cleveland/pkg/glog"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "配置文件路径，为空时使用默认配置")
	serve      = flag.Bool("serve", false, "演示结束后继续提供 /metrics，直到收到退出信号")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			glog.Fatal("load config", zap.String("path", *configPath), zap.Error(err))
		}
		cfg = loaded
	}

	if dump, err := cfg.Dump(); err == nil {
		glog.Debugf("effective config:\n%s", dump)
	}

	rt, err := cleveland.New(cfg)
	if err != nil {
		glog.Fatal("create runtime", zap.Error(err))
	}

	var server *http.Server
	if handler := rt.MetricsHandler(); handler != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		server = &http.Server{Addr: cfg.Metrics.Address, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				glog.Error("metrics server", zap.Error(err))
			}
		}()
		glog.Info("metrics server listening", zap.String("address", cfg.Metrics.Address))
	}

	if err := run(rt); err != nil {
		glog.Error("demo failed", zap.Error(err))
	}

	if *serve {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if server != nil {
		_ = server.Shutdown(ctx)
	}
	if err := rt.Shutdown(ctx); err != nil {
		glog.Error("shutdown", zap.Error(err))
		os.Exit(1)
	}
}

func run(rt *cleveland.Runtime) error {
	ctx := context.Background()

	counter, err := NewStatefulActor(rt, []int{1, 2, 3})
	if err != nil {
		return err
	}
	if err = counter.Start(); err != nil {
		return err
	}

	state, err := actor.AskAs[[]int](ctx, counter, NewGetMessage())
	if err != nil {
		return err
	}
	glog.Info("initial state", zap.Ints("state", state))

	if err = actor.Tell(ctx, counter, NewUpdateMessage([]int{-1, -1, -1})); err != nil {
		return err
	}
	state, err = actor.AskAs[[]int](ctx, counter, NewGetMessage())
	if err != nil {
		return err
	}
	glog.Info("updated state", zap.Ints("state", state))

	// Update 不是 query，Ask 会被拒绝
	if _, err = actor.Ask(ctx, counter, NewUpdateMessage([]int{0})); err != nil {
		glog.Info("ask with a plain message", zap.Error(err))
	}

	if err = counter.Stop(); err != nil {
		return err
	}
	if err = actor.Tell(ctx, counter, NewUpdateMessage([]int{2})); errors.Is(err, actor.ErrActorStopped) {
		glog.Info("tell after stop", zap.Error(err))
	}
	return nil
}
