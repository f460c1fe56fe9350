package actor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const waitTimeout = 3 * time.Second

type updateMessage struct {
	Message
}

func (*updateMessage) Kind() Kind { return "update" }

type getMessage struct {
	QueryMessage
}

func (*getMessage) Kind() Kind { return "get" }

type unknownMessage struct {
	Message
}

func (*unknownMessage) Kind() Kind { return "unknown" }

type unknownQuery struct {
	QueryMessage
}

func (*unknownQuery) Kind() Kind { return "unknown-query" }

// statefulActor 状态只在消息循环里读写
type statefulActor struct {
	*BaseActor
	state interface{}
}

func newStatefulActor(t *testing.T, state interface{}, opts ...Option) *statefulActor {
	t.Helper()
	s := &statefulActor{BaseActor: newTestActor(t, opts...), state: state}
	require.NoError(t, s.RegisterHandler("update", func(_ IContext, msg IMessage) (interface{}, error) {
		s.state = msg.GetPayload()
		return nil, nil
	}))
	require.NoError(t, s.RegisterHandler("get", func(IContext, IMessage) (interface{}, error) {
		return s.state, nil
	}))
	return s
}

func newTestActor(t *testing.T, opts ...Option) *BaseActor {
	t.Helper()
	opts = append([]Option{WithLogger(zap.NewNop())}, opts...)
	return New(NewGoroutineDispatcher(), opts...)
}

func waitDone(t *testing.T, a IActor) {
	t.Helper()
	select {
	case <-a.Done():
	case <-time.After(waitTimeout):
		t.Fatal("actor did not stop in time")
	}
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	t.Cleanup(cancel)
	return ctx
}

func TestStartStop(t *testing.T) {
	a := newStatefulActor(t, []int{1, 2, 3})
	require.Equal(t, StateCreated, a.State())
	require.NoError(t, a.Start())
	require.Equal(t, StateRunning, a.State())
	require.Equal(t, []int{1, 2, 3}, a.state)

	require.NoError(t, a.Stop())
	require.Equal(t, StateStopped, a.State())
	waitDone(t, a)
	require.NoError(t, a.Err())
}

func TestAskTellRoundTrip(t *testing.T) {
	ctx := testContext(t)
	a := newStatefulActor(t, []int{1, 2, 3})
	require.NoError(t, a.Start())
	defer a.Stop()

	state, err := Ask(ctx, a, &getMessage{})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, state)

	require.NoError(t, Tell(ctx, a, &updateMessage{Message{Payload: []int{-1, -1, -1}}}))
	typed, err := AskAs[[]int](ctx, a, &getMessage{})
	require.NoError(t, err)
	require.Equal(t, []int{-1, -1, -1}, typed)
}

func TestTellChangesStateAfterDrain(t *testing.T) {
	ctx := testContext(t)
	a := newStatefulActor(t, []int{1, 2, 3})
	require.NoError(t, a.Start())

	require.NoError(t, Tell(ctx, a, &updateMessage{Message{Payload: []int{-1, -1, -1}}}))
	require.NoError(t, a.Stop())
	require.Equal(t, []int{-1, -1, -1}, a.state)
}

func TestActorsAreIsolated(t *testing.T) {
	ctx := testContext(t)
	a1 := newStatefulActor(t, []int{1})
	a2 := newStatefulActor(t, []int{2})
	require.NoError(t, a1.Start())
	require.NoError(t, a2.Start())

	type reply struct {
		state interface{}
		err   error
	}
	r1, r2 := make(chan reply, 1), make(chan reply, 1)
	go func() {
		state, err := Ask(ctx, a1, &getMessage{})
		r1 <- reply{state, err}
	}()
	go func() {
		state, err := Ask(ctx, a2, &getMessage{})
		r2 <- reply{state, err}
	}()
	s1, s2 := <-r1, <-r2
	require.NoError(t, s1.err)
	require.NoError(t, s2.err)
	require.Equal(t, []int{1}, s1.state)
	require.Equal(t, []int{2}, s2.state)

	require.NoError(t, a1.Stop())
	require.NoError(t, a2.Stop())
}

func TestFIFOOrder(t *testing.T) {
	ctx := testContext(t)
	a := newTestActor(t)
	var seen []int
	require.NoError(t, a.RegisterHandler(KindMessage, func(_ IContext, msg IMessage) (interface{}, error) {
		seen = append(seen, msg.GetPayload().(int))
		return nil, nil
	}))
	require.NoError(t, a.RegisterHandler(KindQuery, func(IContext, IMessage) (interface{}, error) {
		return append([]int(nil), seen...), nil
	}))
	require.NoError(t, a.Start())
	defer a.Stop()

	want := make([]int, 0, 100)
	for i := 0; i < 100; i++ {
		require.NoError(t, Tell(ctx, a, NewMessage(i)))
		want = append(want, i)
	}
	got, err := AskAs[[]int](ctx, a, NewQueryMessage(nil))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestConcurrentProducers(t *testing.T) {
	ctx := testContext(t)
	a := newTestActor(t, WithMaxInboxSize(8))
	var count int
	require.NoError(t, a.RegisterHandler(KindMessage, func(IContext, IMessage) (interface{}, error) {
		count++
		return nil, nil
	}))
	require.NoError(t, a.Start())

	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = Tell(ctx, a, NewMessage(i))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, a.Stop())
	require.Equal(t, 800, count)
}

func TestStopIsIdempotent(t *testing.T) {
	a := newTestActor(t)
	require.NoError(t, a.Start())
	require.NoError(t, a.Stop())
	require.NoError(t, a.Stop())
	waitDone(t, a)
}

func TestConcurrentStop(t *testing.T) {
	a := newTestActor(t)
	require.NoError(t, a.Start())

	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() { results <- a.Stop() }()
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, <-results)
	}
	require.Equal(t, StateStopped, a.State())
}

func TestStopBeforeStart(t *testing.T) {
	var hooks atomic.Int32
	a := newTestActor(t, WithShutdownHook(func() error {
		hooks.Add(1)
		return nil
	}))
	require.NoError(t, a.Stop())
	require.Equal(t, StateStopped, a.State())
	waitDone(t, a)
	require.Equal(t, int32(1), hooks.Load())
	require.ErrorIs(t, a.Start(), ErrActorStopped)
}

func TestShutdownHookRunsOnce(t *testing.T) {
	var hooks atomic.Int32
	a := newTestActor(t, WithShutdownHook(func() error {
		hooks.Add(1)
		return errors.New("hook failed")
	}))
	require.NoError(t, a.Start())
	require.NoError(t, a.Stop())
	require.NoError(t, a.Stop())
	require.Equal(t, int32(1), hooks.Load())
}

func TestStartTwice(t *testing.T) {
	a := newTestActor(t)
	require.NoError(t, a.Start())
	require.ErrorIs(t, a.Start(), ErrAlreadyStarted)
	require.NoError(t, a.Stop())
	require.ErrorIs(t, a.Start(), ErrActorStopped)
}

func TestTalkToStoppedActor(t *testing.T) {
	ctx := testContext(t)
	a := newStatefulActor(t, 1)
	require.NoError(t, a.Start())
	require.NoError(t, a.Stop())

	require.ErrorIs(t, Tell(ctx, a, &updateMessage{Message{Payload: 2}}), ErrActorStopped)
	_, err := Ask(ctx, a, &getMessage{})
	require.ErrorIs(t, err, ErrActorStopped)
}

func TestTellBeforeStart(t *testing.T) {
	a := newStatefulActor(t, 1)
	require.ErrorIs(t, Tell(testContext(t), a, &updateMessage{}), ErrActorStopped)
	require.NoError(t, a.Stop())
}

func TestStopMessageStopsLoop(t *testing.T) {
	a := newTestActor(t)
	require.NoError(t, a.Start())
	require.NoError(t, a.Receive(context.Background(), &StopMessage{}))
	waitDone(t, a)
	require.Equal(t, StateStopped, a.State())
	require.NoError(t, a.Err())
	require.NoError(t, a.Stop())

	// 停止后仍然接受 StopMessage
	require.NoError(t, a.Receive(context.Background(), &StopMessage{}))
	require.NoError(t, Tell(context.Background(), a, &StopMessage{}))
}

func TestStopKindWithoutStopMessage(t *testing.T) {
	a := newTestActor(t)
	require.NoError(t, a.Start())

	// 业务消息的 Kind 恰好是 stop，不能当作 StopMessage 处理
	require.NoError(t, Tell(testContext(t), a, &kindMessage{kind: KindStop}))
	waitDone(t, a)
	require.ErrorIs(t, a.Err(), ErrHandlerNotFound)

	stopped := make(chan error, 1)
	go func() { stopped <- a.Stop() }()
	select {
	case err := <-stopped:
		require.ErrorIs(t, err, ErrHandlerNotFound)
	case <-time.After(waitTimeout):
		t.Fatalf("stop blocked, state=%s", a.State())
	}
}

func TestStopDrainsQueuedMessages(t *testing.T) {
	ctx := testContext(t)
	a := newTestActor(t)
	started := make(chan struct{})
	release := make(chan struct{})
	var handled atomic.Int32
	require.NoError(t, a.RegisterHandler("block", func(IContext, IMessage) (interface{}, error) {
		close(started)
		<-release
		return nil, nil
	}))
	require.NoError(t, a.RegisterHandler(KindMessage, func(IContext, IMessage) (interface{}, error) {
		handled.Add(1)
		return nil, nil
	}))
	require.NoError(t, a.Start())

	require.NoError(t, Tell(ctx, a, &kindMessage{kind: "block"}))
	<-started
	for i := 0; i < 5; i++ {
		require.NoError(t, Tell(ctx, a, NewMessage(i)))
	}

	stopped := make(chan error, 1)
	go func() { stopped <- a.Stop() }()
	require.Eventually(t, func() bool { return a.State() == StateStopping }, waitTimeout, time.Millisecond)
	require.ErrorIs(t, Tell(ctx, a, NewMessage(99)), ErrActorStopped)

	close(release)
	require.NoError(t, <-stopped)
	require.Equal(t, int32(5), handled.Load())
}

func TestHandlerNotFoundEscalates(t *testing.T) {
	faults := make(chan Fault, 1)
	a := newTestActor(t, WithFaultHandler(func(f Fault) { faults <- f }))
	require.NoError(t, a.Start())

	require.NoError(t, Tell(testContext(t), a, &unknownMessage{}))
	waitDone(t, a)

	require.ErrorIs(t, a.Err(), ErrHandlerNotFound)
	var notFound *HandlerNotFoundError
	require.ErrorAs(t, a.Err(), &notFound)
	require.Equal(t, Kind("unknown"), notFound.Kind)

	select {
	case f := <-faults:
		require.Equal(t, a.ID(), f.ID)
		require.ErrorIs(t, f.Err, ErrHandlerNotFound)
		require.IsType(t, &unknownMessage{}, f.Msg)
	case <-time.After(waitTimeout):
		t.Fatal("fault handler was not called")
	}

	require.ErrorIs(t, a.Stop(), ErrHandlerNotFound)
	require.ErrorIs(t, a.Stop(), ErrHandlerNotFound)
}

func TestHandlerNotFoundFailsQueries(t *testing.T) {
	ctx := testContext(t)
	a := newStatefulActor(t, 1)
	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, a.RegisterHandler("block", func(IContext, IMessage) (interface{}, error) {
		close(started)
		<-release
		return nil, nil
	}))
	require.NoError(t, a.Start())

	require.NoError(t, Tell(ctx, a, &kindMessage{kind: "block"}))
	<-started

	offending := make(chan error, 1)
	go func() {
		_, err := Ask(ctx, a, &unknownQuery{})
		offending <- err
	}()
	require.Eventually(t, func() bool { return a.InboxLen() == 1 }, waitTimeout, time.Millisecond)

	queued := make(chan error, 1)
	go func() {
		_, err := Ask(ctx, a, &getMessage{})
		queued <- err
	}()
	require.Eventually(t, func() bool { return a.InboxLen() == 2 }, waitTimeout, time.Millisecond)

	close(release)
	require.ErrorIs(t, <-offending, ErrHandlerNotFound)
	require.ErrorIs(t, <-queued, ErrActorStopped)
	require.ErrorIs(t, a.Stop(), ErrHandlerNotFound)
}

func TestFaultListenerMayStop(t *testing.T) {
	a := newTestActor(t)
	stopped := make(chan error, 1)
	a.OnFault(func(Fault) { stopped <- a.Stop() })
	removed := a.OnFault(func(Fault) { t.Error("removed fault handler called") })
	a.RemoveFaultHandler(removed)
	require.NoError(t, a.Start())

	require.NoError(t, Tell(testContext(t), a, &unknownMessage{}))
	select {
	case err := <-stopped:
		require.ErrorIs(t, err, ErrHandlerNotFound)
	case <-time.After(waitTimeout):
		t.Fatal("stop from fault listener blocked")
	}
}

func TestAskRequiresQuery(t *testing.T) {
	ctx := testContext(t)
	a := newStatefulActor(t, 1)
	require.NoError(t, a.Start())
	defer a.Stop()

	_, err := Ask(ctx, a, &updateMessage{Message{Payload: 2}})
	require.ErrorIs(t, err, ErrNotQuery)

	state, err := Ask(ctx, a, &getMessage{})
	require.NoError(t, err)
	require.Equal(t, 1, state)
}

func TestTargetType(t *testing.T) {
	ctx := testContext(t)
	require.ErrorIs(t, Tell(ctx, "not an actor", NewMessage(1)), ErrTargetType)
	_, err := Ask(ctx, 42, NewQueryMessage(nil))
	require.ErrorIs(t, err, ErrTargetType)
	require.ErrorIs(t, Tell(ctx, nil, NewMessage(1)), ErrTargetType)
	require.ErrorIs(t, Tell(ctx, newTestActor(t), nil), ErrMessageIsNil)

	var typedNil *BaseActor
	require.ErrorIs(t, Tell(ctx, typedNil, NewMessage(1)), ErrTargetType)
	_, err = Ask(ctx, typedNil, NewQueryMessage(nil))
	require.ErrorIs(t, err, ErrTargetType)
}

func TestAskAsUnexpectedReply(t *testing.T) {
	ctx := testContext(t)
	a := newStatefulActor(t, "text")
	require.NoError(t, a.Start())
	defer a.Stop()

	_, err := AskAs[int](ctx, a, &getMessage{})
	require.ErrorIs(t, err, ErrUnexpectedReply)
}

func TestQueryHandlerError(t *testing.T) {
	ctx := testContext(t)
	errBoom := errors.New("boom")
	a := newTestActor(t)
	require.NoError(t, a.RegisterHandler(KindQuery, func(IContext, IMessage) (interface{}, error) {
		return nil, errBoom
	}))
	require.NoError(t, a.Start())
	defer a.Stop()

	_, err := Ask(ctx, a, NewQueryMessage(nil))
	require.ErrorIs(t, err, errBoom)
	require.ErrorIs(t, err, ErrHandlerExecution)
	require.Equal(t, StateRunning, a.State())
}

func TestHandlerPanicIsContained(t *testing.T) {
	ctx := testContext(t)
	a := newTestActor(t)
	require.NoError(t, a.RegisterHandler(KindQuery, func(_ IContext, msg IMessage) (interface{}, error) {
		if msg.GetPayload() == "panic" {
			panic("handler exploded")
		}
		return "ok", nil
	}))
	require.NoError(t, a.Start())
	defer a.Stop()

	_, err := Ask(ctx, a, NewQueryMessage("panic"))
	require.ErrorIs(t, err, ErrHandlerExecution)
	var execErr *HandlerExecutionError
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, "handler exploded", execErr.Panic)

	reply, err := Ask(ctx, a, NewQueryMessage("again"))
	require.NoError(t, err)
	require.Equal(t, "ok", reply)
}

func TestTellHandlerErrorIsReported(t *testing.T) {
	ctx := testContext(t)
	errBoom := errors.New("boom")
	reported := make(chan error, 1)
	a := newTestActor(t, WithErrorReporter(func(id uint64, msg IMessage, err error) {
		reported <- err
	}))
	require.NoError(t, a.RegisterHandler(KindMessage, func(IContext, IMessage) (interface{}, error) {
		return nil, errBoom
	}))
	require.NoError(t, a.RegisterHandler(KindQuery, func(IContext, IMessage) (interface{}, error) {
		return "alive", nil
	}))
	require.NoError(t, a.Start())
	defer a.Stop()

	require.NoError(t, Tell(ctx, a, NewMessage(nil)))
	select {
	case err := <-reported:
		require.ErrorIs(t, err, errBoom)
	case <-time.After(waitTimeout):
		t.Fatal("error reporter was not called")
	}

	reply, err := Ask(ctx, a, NewQueryMessage(nil))
	require.NoError(t, err)
	require.Equal(t, "alive", reply)
}

func TestBoundedInboxBackPressure(t *testing.T) {
	a := newTestActor(t, WithMaxInboxSize(1))
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	require.NoError(t, a.RegisterHandler(KindMessage, func(IContext, IMessage) (interface{}, error) {
		started <- struct{}{}
		<-release
		return nil, nil
	}))
	require.NoError(t, a.Start())

	require.NoError(t, Tell(context.Background(), a, NewMessage(1)))
	<-started
	require.NoError(t, Tell(context.Background(), a, NewMessage(2)))
	require.Equal(t, 1, a.InboxLen())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, Tell(ctx, a, NewMessage(3)), context.DeadlineExceeded)
	require.ErrorIs(t, a.tryReceive(NewMessage(4)), ErrInboxFull)

	close(release)
	require.NoError(t, a.Stop())
}

func TestRegisterHandlerRules(t *testing.T) {
	a := newTestActor(t)
	noop := func(IContext, IMessage) (interface{}, error) { return nil, nil }

	require.NoError(t, a.RegisterHandler(KindMessage, noop))
	require.ErrorIs(t, a.RegisterHandler(KindMessage, noop), ErrHandlerAlreadyRegistered)
	require.ErrorIs(t, a.RegisterHandler(KindStop, noop), ErrHandlerAlreadyRegistered)
	require.ErrorIs(t, a.RegisterHandler(KindQuery, nil), ErrHandlerIsNil)

	require.NoError(t, a.Start())
	require.ErrorIs(t, a.RegisterHandler(KindQuery, noop), ErrRegisterAfterStart)
	require.NoError(t, a.Stop())
}

func TestSelfAsk(t *testing.T) {
	ctx := testContext(t)
	a := newTestActor(t)
	require.NoError(t, a.RegisterHandler("get", func(IContext, IMessage) (interface{}, error) {
		return 1, nil
	}))
	require.NoError(t, a.RegisterHandler(KindQuery, func(ctx IContext, _ IMessage) (interface{}, error) {
		return ctx.Ask(ctx.Self(), &getMessage{})
	}))
	require.NoError(t, a.Start())
	defer a.Stop()

	_, err := Ask(ctx, a, NewQueryMessage(nil))
	require.ErrorIs(t, err, ErrSelfAsk)
}

func TestHandlerContext(t *testing.T) {
	ctx := testContext(t)
	peer := newStatefulActor(t, "peer")
	require.NoError(t, peer.Start())
	defer peer.Stop()

	var (
		handlerCtx IContext
		handlerMsg IMessage
		selfTell   error
		selfSeen   = make(chan struct{})
	)
	a := newTestActor(t)
	require.NoError(t, a.RegisterHandler(KindMessage, func(IContext, IMessage) (interface{}, error) {
		close(selfSeen)
		return nil, nil
	}))
	require.NoError(t, a.RegisterHandler(KindQuery, func(c IContext, msg IMessage) (interface{}, error) {
		handlerCtx, handlerMsg = c, msg
		selfTell = c.Tell(c.Self(), NewMessage("self"))
		return c.Ask(peer, &getMessage{})
	}))
	require.NoError(t, a.Start())

	query := NewQueryMessage(nil)
	reply, err := Ask(ctx, a, query)
	require.NoError(t, err)
	require.Equal(t, "peer", reply)
	<-selfSeen

	require.NoError(t, a.Stop())
	require.NoError(t, selfTell)
	require.Equal(t, a.ID(), handlerCtx.ID())
	require.Same(t, a, handlerCtx.Self())
	require.Same(t, query, handlerMsg)
	require.Same(t, query, handlerCtx.Message())
	require.NotNil(t, handlerCtx.Logger())
	require.Error(t, handlerCtx.Err())
}

func TestAfterFunc(t *testing.T) {
	ctx := testContext(t)
	ticks := make(chan interface{}, 1)
	var cancelled atomic.Bool
	a := newTestActor(t)
	require.NoError(t, a.RegisterHandler("tick", func(_ IContext, msg IMessage) (interface{}, error) {
		ticks <- msg.GetPayload()
		return nil, nil
	}))
	require.NoError(t, a.RegisterHandler(KindMessage, func(c IContext, _ IMessage) (interface{}, error) {
		c.AfterFunc(10*time.Millisecond, &kindMessage{kind: "tick", payload: "later"})
		cancel := c.AfterFunc(time.Hour, &kindMessage{kind: "tick", payload: "never"})
		cancelled.Store(cancel())
		return nil, nil
	}))
	require.NoError(t, a.Start())
	defer a.Stop()

	require.NoError(t, Tell(ctx, a, NewMessage(nil)))
	select {
	case payload := <-ticks:
		require.Equal(t, "later", payload)
	case <-time.After(waitTimeout):
		t.Fatal("delayed message was not delivered")
	}
	require.True(t, cancelled.Load())
}

func TestPoolDispatcher(t *testing.T) {
	ctx := testContext(t)
	pool, err := NewPoolDispatcher(16)
	require.NoError(t, err)
	defer pool.Release()

	actors := make([]*BaseActor, 0, 10)
	for i := 0; i < 10; i++ {
		a := New(pool, WithLogger(zap.NewNop()))
		id := i
		require.NoError(t, a.RegisterHandler(KindQuery, func(IContext, IMessage) (interface{}, error) {
			return id, nil
		}))
		require.NoError(t, a.Start())
		actors = append(actors, a)
	}
	require.Eventually(t, func() bool { return pool.Running() == 10 }, waitTimeout, time.Millisecond)

	for i, a := range actors {
		reply, err := AskAs[int](ctx, a, NewQueryMessage(nil))
		require.NoError(t, err)
		require.Equal(t, i, reply)
	}
	for _, a := range actors {
		require.NoError(t, a.Stop())
	}
	require.Zero(t, pool.PanicCount())
}

func TestPoolDispatcherSaturated(t *testing.T) {
	pool, err := NewPoolDispatcher(1, WithNonblocking(true))
	require.NoError(t, err)
	defer pool.Release()

	first := New(pool, WithLogger(zap.NewNop()))
	require.NoError(t, first.Start())

	second := New(pool, WithLogger(zap.NewNop()))
	require.Error(t, second.Start())
	waitDone(t, second)
	require.Equal(t, StateStopped, second.State())

	require.NoError(t, first.Stop())
}

func TestNewWithNilDispatcher(t *testing.T) {
	require.Panics(t, func() { New(nil) })
}

func TestUniqueIDs(t *testing.T) {
	a := newTestActor(t)
	b := newTestActor(t)
	require.NotEqual(t, a.ID(), b.ID())
}

func TestStateString(t *testing.T) {
	require.Equal(t, "created", StateCreated.String())
	require.Equal(t, "running", StateRunning.String())
	require.Equal(t, "stopping", StateStopping.String())
	require.Equal(t, "stopped", StateStopped.String())
	require.Equal(t, "state(9)", State(9).String())
}

// kindMessage 测试用的任意类型消息
type kindMessage struct {
	kind    Kind
	payload interface{}
}

func (m *kindMessage) Kind() Kind              { return m.kind }
func (m *kindMessage) GetPayload() interface{} { return m.payload }
