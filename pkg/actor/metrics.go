package actor

import "github.com/dzm2020/cleveland/pkg/metrics"

// Metrics actor 运行指标，实现必须并发安全
type Metrics interface {
	MessageDuration(kind Kind) metrics.Timer
	MessageProcessed(kind Kind, success bool)
	MessagePanic(kind Kind)
	InboxDepth(id uint64, depth int)
	ActorStarted()
	// ActorStopped 消息循环退出，之后不会再上报该 id 的指标
	ActorStopped(id uint64, faulted bool)
}

type nopMetrics struct{}

func (nopMetrics) MessageDuration(Kind) metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) MessageProcessed(Kind, bool)        {}
func (nopMetrics) MessagePanic(Kind)                  {}
func (nopMetrics) InboxDepth(uint64, int)             {}
func (nopMetrics) ActorStarted()                      {}
func (nopMetrics) ActorStopped(uint64, bool)          {}

func NopMetrics() Metrics { return nopMetrics{} }
