package lib

import (
	"time"

	"github.com/RussellLuo/timingwheel"
)

var (
	tw = timingwheel.NewTimingWheel(1*time.Millisecond, 3600)
)

// Timer 时间轮定时器
type Timer struct {
	*timingwheel.Timer
}

func init() {
	tw.Start()
}

// AfterFunc 注册一次性定时器，到期后在时间轮协程中执行回调
// 回调应尽快返回，耗时逻辑请投递到 actor 邮箱
func AfterFunc(duration time.Duration, callback func()) *Timer {
	t := tw.AfterFunc(duration, func() {
		if callback != nil {
			callback()
		}
	})
	return &Timer{Timer: t}
}

// Stop 取消定时器，定时器已触发或已取消时返回 false
func (t *Timer) Stop() bool {
	if t == nil || t.Timer == nil {
		return false
	}
	return t.Timer.Stop()
}
