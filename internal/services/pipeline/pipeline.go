package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/NordCoder/nodeping/internal/domain/node"
	"github.com/NordCoder/nodeping/internal/domain/notification"
	"github.com/NordCoder/nodeping/internal/obs"
	"github.com/NordCoder/nodeping/internal/queue"
	"github.com/NordCoder/nodeping/internal/services/checker"
	"github.com/NordCoder/nodeping/internal/services/notifier"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrTaskExited is returned when a loop stops on its own while the pipeline should still be running.
var ErrTaskExited = errors.New("pipeline: task exited")

type Task interface {
	Run(ctx context.Context) error
}

type Config struct {
	Checker checker.Config
	Nodes   []*node.Node
	Prober  node.Prober
	Senders []notification.Sender
}

type Pipeline struct {
	log *zap.Logger
	cfg Config

	running atomic.Int32
	// producerDone is set before the queue is closed, so the notifier draining a closed
	// queue is never mistaken for the failure that stopped the checker.
	producerDone atomic.Bool
}

// closeTracker marks the producer as finished before closing the queue.
type closeTracker struct {
	*queue.Queue[notification.Event]
	done *atomic.Bool
}

func (c closeTracker) Close() {
	c.done.Store(true)
	c.Queue.Close()
}

func New(log *zap.Logger, cfg Config) *Pipeline {
	return &Pipeline{log: obs.Component(log, "pipeline"), cfg: cfg}
}

// Alive reports whether both loops are running. It backs the /healthz endpoint.
func (p *Pipeline) Alive() bool { return p.running.Load() == 2 }

// Run wires the checker to the notifier through a fresh queue and blocks until both have stopped.
// Cancelling ctx is a normal shutdown and yields nil.
func (p *Pipeline) Run(ctx context.Context) error {
	q := queue.New[notification.Event]()
	c := checker.New(p.log, p.cfg.Checker, p.cfg.Nodes, p.cfg.Prober, closeTracker{Queue: q, done: &p.producerDone})
	n := notifier.New(p.log, q, p.cfg.Senders)
	return p.run(ctx, c, n)
}

func (p *Pipeline) run(ctx context.Context, checkerTask, notifierTask Task) error {
	g, gctx := errgroup.WithContext(ctx)
	p.running.Add(2)
	g.Go(func() error { return p.supervise(ctx, gctx, "checker", checkerTask) })
	g.Go(func() error { return p.supervise(ctx, gctx, "notifier", notifierTask) })

	err := g.Wait()
	if err != nil {
		p.log.Error("pipeline failed", zap.Error(err))
		return err
	}
	p.log.Info("pipeline stopped")
	return nil
}

// supervise runs one loop under the group context. parent is the caller's context and tells
// a requested shutdown apart from a sibling failure.
func (p *Pipeline) supervise(parent, gctx context.Context, name string, t Task) error {
	err := t.Run(gctx)
	p.running.Add(-1)

	switch {
	case err == nil && name == "notifier" && p.producerDone.Load():
		return nil
	case err == nil && parent.Err() == nil && gctx.Err() == nil:
		p.log.Error("task exited", zap.String("task", name))
		return fmt.Errorf("%s: %w", name, ErrTaskExited)
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		if gctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%s: %w", name, err)
	default:
		p.log.Error("task died", zap.String("task", name), zap.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
}
