package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/NordCoder/nodeping/internal/domain/node"
	"github.com/NordCoder/nodeping/internal/domain/notification"
	"github.com/NordCoder/nodeping/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSender struct {
	name string
	err  error

	mu   sync.Mutex
	got  []notification.Event
	hook func()
}

func (s *recordingSender) Name() string { return s.name }

func (s *recordingSender) Send(_ context.Context, ev notification.Event) error {
	s.mu.Lock()
	s.got = append(s.got, ev)
	s.mu.Unlock()
	if s.hook != nil {
		s.hook()
	}
	return s.err
}

func (s *recordingSender) events() []notification.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.Event(nil), s.got...)
}

func event(k notification.Kind, name string, st node.Status) notification.Event {
	return notification.Event{Kind: k, Node: node.Snapshot{Name: name, Addr: "10.0.0.1", Status: st}}
}

func TestDispatch_FailingTargetDoesNotBlockOthers(t *testing.T) {
	t1 := &recordingSender{name: "t1", err: errors.New("503 from webhook")}
	t2 := &recordingSender{name: "t2"}
	r := New(zap.NewNop(), queue.New[notification.Event](), []notification.Sender{t1, t2})

	ev := event(notification.KindDown, "A", node.StatusDown)
	failed := r.Dispatch(context.Background(), ev)

	assert.Equal(t, 1, failed)
	require.Len(t, t1.events(), 1)
	require.Len(t, t2.events(), 1)
	assert.Equal(t, ev, t2.events()[0])
}

func TestDispatch_TargetsCalledInOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	mk := func(name string) *recordingSender {
		s := &recordingSender{name: name}
		s.hook = func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
		return s
	}
	r := New(zap.NewNop(), queue.New[notification.Event](), []notification.Sender{mk("a"), mk("b"), mk("c")})

	r.Dispatch(context.Background(), event(notification.KindPending, "A", node.StatusPending))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRun_FIFOUntilClosed(t *testing.T) {
	q := queue.New[notification.Event]()
	s := &recordingSender{name: "rec"}
	r := New(zap.NewNop(), q, []notification.Sender{s})

	want := []notification.Event{
		event(notification.KindPending, "A", node.StatusPending),
		event(notification.KindPending, "B", node.StatusPending),
		event(notification.KindDown, "A", node.StatusDown),
		event(notification.KindBackUp, "B", node.StatusUp),
	}
	for _, ev := range want {
		require.NoError(t, q.Push(ev))
	}
	q.Close()

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, want, s.events())
}

func TestRun_FailuresDoNotStopLoop(t *testing.T) {
	q := queue.New[notification.Event]()
	bad := &recordingSender{name: "bad", err: errors.New("boom")}
	good := &recordingSender{name: "good"}
	r := New(zap.NewNop(), q, []notification.Sender{bad, good})

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Push(event(notification.KindPending, "A", node.StatusPending)))
	}
	q.Close()

	require.NoError(t, r.Run(context.Background()))
	assert.Len(t, bad.events(), 3)
	assert.Len(t, good.events(), 3)
}

func TestRun_DetachesOnCancel(t *testing.T) {
	q := queue.New[notification.Event]()
	r := New(zap.NewNop(), q, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("notifier did not stop")
	}

	assert.ErrorIs(t, q.Push(event(notification.KindDown, "A", node.StatusDown)), queue.ErrReceiverGone)
}

func TestRun_DeliversWhileProducerRuns(t *testing.T) {
	q := queue.New[notification.Event]()
	got := make(chan notification.Event, 1)
	s := &recordingSender{name: "rec"}
	s.hook = func() { got <- s.events()[len(s.events())-1] }
	r := New(zap.NewNop(), q, []notification.Sender{s})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	ev := event(notification.KindBackUp, "A", node.StatusUp)
	require.NoError(t, q.Push(ev))
	select {
	case e := <-got:
		assert.Equal(t, ev, e)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}
