package notification

import (
	"context"
	"time"
)

// Sender renders an event in its target's format and delivers it once.
type Sender interface {
	Name() string
	Send(ctx context.Context, ev Event) error
}

type Journal interface {
	Create(ctx context.Context, r *Record) error
	ListRecent(ctx context.Context, limit int) ([]*Record, error)
}

type Clock interface {
	Now() time.Time
}
