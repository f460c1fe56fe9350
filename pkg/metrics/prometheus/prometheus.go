// Package prometheus actor 指标的 Prometheus 实现
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dzm2020/cleveland/pkg/actor"
	"github.com/dzm2020/cleveland/pkg/metrics"
)

// 延迟指标的默认分桶（秒）
var defaultBuckets = []float64{
	.0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5,
}

type timer struct {
	h     prometheus.Observer
	start time.Time
}

func newTimer(h prometheus.Observer) metrics.Timer {
	return &timer{h: h, start: time.Now()}
}

func (t *timer) ObserveDuration() {
	t.h.Observe(time.Since(t.start).Seconds())
}

var _ actor.Metrics = (*ActorMetrics)(nil)

type ActorMetrics struct {
	messageDuration *prometheus.HistogramVec
	messagesTotal   *prometheus.CounterVec
	panicTotal      *prometheus.CounterVec
	inboxDepth      *prometheus.GaugeVec
	actorsRunning   prometheus.Gauge
	stoppedTotal    *prometheus.CounterVec
}

// NewActorMetrics 创建并注册指标，namespace 为空时使用 cleveland
func NewActorMetrics(reg prometheus.Registerer, namespace string) *ActorMetrics {
	if namespace == "" {
		namespace = "cleveland"
	}
	m := &ActorMetrics{
		messageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "actor_message_duration_seconds",
			Help:      "Message handling time in seconds",
			Buckets:   defaultBuckets,
		}, []string{"kind"}),

		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_messages_total",
			Help:      "Total number of messages processed",
		}, []string{"kind", "success"}),

		panicTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_handler_panics_total",
			Help:      "Total number of recovered handler panics",
		}, []string{"kind"}),

		inboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actor_inbox_depth",
			Help:      "Messages waiting in the inbox",
		}, []string{"actor_id"}),

		actorsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actors_running",
			Help:      "Number of actors whose dispatch loop is running",
		}),

		stoppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actors_stopped_total",
			Help:      "Total number of actors whose dispatch loop exited",
		}, []string{"faulted"}),
	}

	reg.MustRegister(
		m.messageDuration,
		m.messagesTotal,
		m.panicTotal,
		m.inboxDepth,
		m.actorsRunning,
		m.stoppedTotal,
	)
	return m
}

func (m *ActorMetrics) MessageDuration(kind actor.Kind) metrics.Timer {
	return newTimer(m.messageDuration.WithLabelValues(string(kind)))
}

func (m *ActorMetrics) MessageProcessed(kind actor.Kind, success bool) {
	m.messagesTotal.WithLabelValues(string(kind), strconv.FormatBool(success)).Inc()
}

func (m *ActorMetrics) MessagePanic(kind actor.Kind) {
	m.panicTotal.WithLabelValues(string(kind)).Inc()
}

func (m *ActorMetrics) InboxDepth(id uint64, depth int) {
	m.inboxDepth.WithLabelValues(strconv.FormatUint(id, 10)).Set(float64(depth))
}

func (m *ActorMetrics) ActorStarted() {
	m.actorsRunning.Inc()
}

func (m *ActorMetrics) ActorStopped(id uint64, faulted bool) {
	m.actorsRunning.Dec()
	m.inboxDepth.DeleteLabelValues(strconv.FormatUint(id, 10))
	m.stoppedTotal.WithLabelValues(strconv.FormatBool(faulted)).Inc()
}
