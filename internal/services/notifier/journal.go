package notifier

import (
	"context"
	"fmt"

	"github.com/NordCoder/nodeping/internal/domain/notification"
)

// Journal records each alert in the alert journal instead of sending it anywhere.
type Journal struct {
	name  string
	store notification.Journal
	clock notification.Clock
}

func NewJournal(name string, store notification.Journal, clock notification.Clock) *Journal {
	return &Journal{name: name, store: store, clock: clock}
}

func (j *Journal) Name() string { return j.name }

func (j *Journal) Send(ctx context.Context, ev notification.Event) error {
	rec := &notification.Record{
		Target:   j.name,
		Kind:     ev.Kind.String(),
		NodeName: ev.Node.Name,
		NodeAddr: ev.Node.Addr,
		Status:   ev.Node.Status.String(),
		SentAt:   j.clock.Now().UTC(),
		Payload:  ev.Description(),
	}
	if err := j.store.Create(ctx, rec); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	return nil
}
