package actor

import (
	"context"

	"github.com/dzm2020/cleveland/pkg/lib"
)

type envelope struct {
	msg IMessage
	// slotted 占用了容量配额，出队时归还
	slotted bool
}

// inbox FIFO 邮箱，多生产者单消费者
type inbox struct {
	queue  *lib.Mpsc[envelope]
	notify chan struct{}
	slots  chan struct{} // 不限容量时为 nil
}

func newInbox(capacity int) *inbox {
	b := &inbox{
		queue:  lib.NewMpsc[envelope](),
		notify: make(chan struct{}, 1),
	}
	if capacity > 0 {
		b.slots = make(chan struct{}, capacity)
	}
	return b
}

func (b *inbox) bounded() bool {
	return b.slots != nil
}

// acquire 占用一个容量配额，邮箱已满时阻塞
func (b *inbox) acquire(ctx context.Context, closed <-chan struct{}) error {
	if b.slots == nil {
		return nil
	}
	select {
	case b.slots <- struct{}{}:
		return nil
	default:
	}
	select {
	case b.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-closed:
		return ErrActorStopped
	}
}

// tryAcquire 非阻塞地占用配额
func (b *inbox) tryAcquire() bool {
	if b.slots == nil {
		return true
	}
	select {
	case b.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (b *inbox) release() {
	if b.slots != nil {
		<-b.slots
	}
}

// push 入队，调用前必须已通过 acquire，或者是不占配额的停止消息
func (b *inbox) push(msg IMessage, slotted bool) {
	b.queue.Push(envelope{msg: msg, slotted: slotted && b.slots != nil})
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// get 阻塞直到取到消息，只能由消息循环调用
func (b *inbox) get() IMessage {
	for {
		if msg, ok := b.tryGet(); ok {
			return msg
		}
		<-b.notify
	}
}

func (b *inbox) tryGet() (IMessage, bool) {
	e, ok := b.queue.Pop()
	if !ok {
		return nil, false
	}
	if e.slotted {
		b.release()
	}
	return e.msg, true
}

func (b *inbox) Len() int {
	return b.queue.Len()
}
