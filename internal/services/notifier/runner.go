package notifier

import (
	"context"
	"errors"
	"time"

	"github.com/NordCoder/nodeping/internal/domain/notification"
	"github.com/NordCoder/nodeping/internal/obs"
	"github.com/NordCoder/nodeping/internal/queue"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var (
	mDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nodeping",
		Name:      "deliveries_total",
		Help:      "Alert deliveries by target and result",
	}, []string{"target", "result"})
	mDeliveryDur = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nodeping",
		Name:      "delivery_duration_seconds",
		Help:      "Time spent delivering one alert to one target",
		Buckets:   prometheus.DefBuckets,
	}, []string{"target"})
	mBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "nodeping",
		Name:      "queue_backlog",
		Help:      "Events waiting in the queue after the last pop",
	})
)

// Source is the consuming end of the event queue.
type Source interface {
	Pop(ctx context.Context) (notification.Event, error)
	Detach()
	Len() int
}

type Runner struct {
	log     *zap.Logger
	src     Source
	senders []notification.Sender
}

func New(log *zap.Logger, src Source, senders []notification.Sender) *Runner {
	return &Runner{
		log:     obs.Component(log, "notifier"),
		src:     src,
		senders: senders,
	}
}

// Run delivers events until the queue is closed and drained or ctx is done.
// The queue is always detached on return so the producer sees the receiver is gone.
func (r *Runner) Run(ctx context.Context) error {
	defer r.src.Detach()

	r.log.Info("notifier started", zap.Int("targets", len(r.senders)))
	for {
		ev, err := r.src.Pop(ctx)
		if errors.Is(err, queue.ErrClosed) {
			r.log.Info("queue closed, notifier stopping")
			return nil
		}
		if err != nil {
			return err
		}
		mBacklog.Set(float64(r.src.Len()))
		r.Dispatch(ctx, ev)
	}
}

// Dispatch hands ev to every sender in order. It returns the number of failed deliveries.
func (r *Runner) Dispatch(ctx context.Context, ev notification.Event) int {
	failed := 0
	for _, s := range r.senders {
		if err := r.deliver(ctx, s, ev); err != nil {
			failed++
		}
	}
	return failed
}

func (r *Runner) deliver(ctx context.Context, s notification.Sender, ev notification.Event) error {
	target := s.Name()
	ctx, span := obs.Tracer("notifier").Start(ctx, "notifier.deliver")
	span.SetAttributes(
		attribute.String("target", target),
		attribute.String("kind", ev.Kind.String()),
		attribute.String("node", ev.Node.Name),
	)
	defer span.End()

	log := obs.WithTrace(ctx, r.log).With(
		zap.String("target", target),
		zap.String("kind", ev.Kind.String()),
		zap.String("node", ev.Node.Name),
	)

	start := time.Now()
	err := s.Send(ctx, ev)
	mDeliveryDur.WithLabelValues(target).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		mDeliveries.WithLabelValues(target, "error").Inc()
		log.Error("delivery failed", zap.Error(err))
		return err
	}
	mDeliveries.WithLabelValues(target, "ok").Inc()
	log.Debug("alert delivered", zap.Duration("elapsed", time.Since(start)))
	return nil
}
