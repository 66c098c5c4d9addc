package checker

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/NordCoder/nodeping/internal/domain/node"
	"github.com/NordCoder/nodeping/internal/domain/notification"
	"github.com/NordCoder/nodeping/internal/obs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Config struct {
	Interval     time.Duration
	SweepJitter  time.Duration
	NodeJitter   time.Duration
	ProbeTimeout time.Duration
}

// Publisher is the producer side of the event queue.
type Publisher interface {
	Push(ev notification.Event) error
	Close()
}

var (
	mSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nodeping", Name: "sweeps_total", Help: "Completed sweeps over all nodes",
	})
	mProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nodeping", Name: "probes_total", Help: "Probe outcomes",
	}, []string{"result"})
	mProbeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nodeping", Name: "probe_errors_total", Help: "Probes that could not be attempted",
	})
	mEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nodeping", Name: "events_emitted_total", Help: "Notification events handed to the notifier",
	}, []string{"kind"})
	mSweepDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nodeping", Name: "sweep_duration_seconds", Help: "Duration of one sweep",
		Buckets: prometheus.DefBuckets,
	})
	mNodeStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "nodeping", Name: "node_status", Help: "Current status per node (0 unknown, 1 up, 2 pending, 3 down)",
	}, []string{"node"})
)

// Runner owns the node set. Nothing else reads or writes it; the notifier only sees snapshots.
type Runner struct {
	log    *zap.Logger
	cfg    Config
	nodes  []*node.Node
	prober node.Prober
	out    Publisher

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	rnd   func() float64
}

func New(log *zap.Logger, cfg Config, nodes []*node.Node, prober node.Prober, out Publisher) *Runner {
	return &Runner{
		log:    obs.Component(log, "checker"),
		cfg:    cfg,
		nodes:  nodes,
		prober: prober,
		out:    out,
		now:    func() time.Time { return time.Now().UTC() },
		sleep:  sleepCtx,
		rnd:    rand.Float64,
	}
}

// Run sweeps forever. It returns only when ctx is done or the notifier is gone,
// and closes the publisher on the way out.
func (r *Runner) Run(ctx context.Context) error {
	defer r.out.Close()

	r.log.Info("checker started",
		zap.Int("nodes", len(r.nodes)),
		zap.Duration("interval", r.cfg.Interval),
		zap.Duration("probe_timeout", r.cfg.ProbeTimeout),
	)

	for {
		if err := r.Sweep(ctx); err != nil {
			return err
		}

		wait := Jittered(r.cfg.Interval, r.cfg.SweepJitter, r.rnd)
		r.log.Info("done checking nodes", zap.Duration("next_in", wait))
		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Sweep probes every node once, in configured order.
func (r *Runner) Sweep(ctx context.Context) error {
	start := time.Now()
	ctx, span := obs.Tracer("checker").Start(ctx, "checker.sweep",
		trace.WithAttributes(attribute.Int("sweep.nodes", len(r.nodes))),
	)
	defer span.End()

	r.log.Info("checking nodes")

	emitted := 0
	for i, n := range r.nodes {
		if i > 0 {
			if err := r.sleep(ctx, Spread(r.cfg.NodeJitter, r.rnd)); err != nil {
				return err
			}
		}

		ok, err := r.check(ctx, n)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "sweep aborted")
			return err
		}
		if ok {
			emitted++
		}
	}

	span.SetAttributes(attribute.Int("sweep.events", emitted))
	mSweeps.Inc()
	mSweepDur.Observe(time.Since(start).Seconds())
	return nil
}

// check probes one node and enqueues an event when the transition is worth announcing.
// Only a cancelled context or a dead notifier is returned as an error.
func (r *Runner) check(ctx context.Context, n *node.Node) (bool, error) {
	log := obs.WithTrace(ctx, r.log).With(zap.String("node", n.Name()), zap.String("addr", n.Addr()))

	out, err := r.prober.Probe(ctx, n.Addr(), r.cfg.ProbeTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		mProbeErrors.Inc()
		log.Warn("probe failed", zap.Stringer("status", n.Status()), zap.Error(err))
		return false, nil
	}
	mProbes.WithLabelValues(out.String()).Inc()

	prev, next := n.Apply(out)
	mNodeStatus.WithLabelValues(n.Name()).Set(float64(next))
	if prev != next {
		log.Debug("status changed", zap.Stringer("from", prev), zap.Stringer("to", next))
	}

	kind, emit := notification.Decide(prev, next)
	if !emit {
		return false, nil
	}

	ev := notification.Event{Kind: kind, Node: n.Snapshot(), At: r.now()}
	if err := r.out.Push(ev); err != nil {
		log.Error("notifier unreachable", zap.Stringer("kind", kind), zap.Error(err))
		return false, fmt.Errorf("enqueue %s event for %s: %w", kind, n.Name(), err)
	}
	mEvents.WithLabelValues(kind.String()).Inc()
	return true, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
