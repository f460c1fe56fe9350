package actor

import (
	"context"
	"time"

	"github.com/dzm2020/cleveland/pkg/lib"
	"go.uber.org/zap"
)

var _ IContext = (*actorContext)(nil)

type actorContext struct {
	context.Context
	actor *BaseActor
	msg   IMessage
}

func newContext(a *BaseActor, msg IMessage) *actorContext {
	return &actorContext{
		Context: a.ctx,
		actor:   a,
		msg:     msg,
	}
}

func (c *actorContext) ID() uint64 {
	return c.actor.id
}

func (c *actorContext) Self() IActor {
	return c.actor
}

func (c *actorContext) Message() IMessage {
	return c.msg
}

func (c *actorContext) Logger() *zap.Logger {
	return c.actor.log
}

// Tell 发给自己时不等待邮箱容量，避免消息循环等待自己
func (c *actorContext) Tell(target interface{}, msg IMessage) error {
	if c.isSelf(target) {
		return c.actor.tryReceive(msg)
	}
	return Tell(c, target, msg)
}

func (c *actorContext) Ask(target interface{}, msg IMessage) (interface{}, error) {
	if c.isSelf(target) {
		return nil, ErrSelfAsk
	}
	return Ask(c, target, msg)
}

// AfterFunc 定时器在时间轮协程中触发，投递失败只记录日志
func (c *actorContext) AfterFunc(d time.Duration, msg IMessage) Cancel {
	a := c.actor
	if msg == nil {
		return func() bool { return false }
	}
	timer := lib.AfterFunc(d, func() {
		if err := a.tryReceive(msg); err != nil {
			a.log.Warn("deliver delayed message",
				zap.String("kind", string(msg.Kind())),
				zap.Error(err))
		}
	})
	return timer.Stop
}

// isSelf 嵌入 BaseActor 的业务 actor 同样能识别
func (c *actorContext) isSelf(target interface{}) bool {
	a, ok := target.(interface{ ID() uint64 })
	return ok && a.ID() == c.actor.id
}
