// Package metrics 抽象的指标接口，核心包不依赖具体的指标后端
package metrics

// Timer 计时器，操作结束时调用 ObserveDuration 记录耗时
//
//	defer m.MessageDuration(kind).ObserveDuration()
type Timer interface {
	ObserveDuration()
}

type nopTimer struct{}

func (nopTimer) ObserveDuration() {}

func NopTimer() Timer { return nopTimer{} }
