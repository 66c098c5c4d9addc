package node

import (
	"context"
	"time"
)

// Prober performs a single reachability attempt against addr and must not block past timeout.
// A non-nil error means the attempt could not be made at all.
type Prober interface {
	Probe(ctx context.Context, addr string, timeout time.Duration) (Outcome, error)
}

type ProberFunc func(ctx context.Context, addr string, timeout time.Duration) (Outcome, error)

func (f ProberFunc) Probe(ctx context.Context, addr string, timeout time.Duration) (Outcome, error) {
	return f(ctx, addr, timeout)
}
