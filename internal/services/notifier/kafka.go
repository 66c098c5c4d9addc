package notifier

import (
	"context"

	"github.com/NordCoder/nodeping/internal/domain/notification"
	kafkax "github.com/NordCoder/nodeping/internal/repository/kafka"
)

type AlertPublisher interface {
	PublishAlert(ctx context.Context, a kafkax.Alert) error
}

type Kafka struct {
	name   string
	source string
	pub    AlertPublisher
}

func NewKafka(name, source string, pub AlertPublisher) *Kafka {
	return &Kafka{name: name, source: source, pub: pub}
}

func (k *Kafka) Name() string { return k.name }

func (k *Kafka) Send(ctx context.Context, ev notification.Event) error {
	return k.pub.PublishAlert(ctx, kafkax.Alert{
		Kind:        ev.Kind.String(),
		Title:       ev.Title(),
		Description: ev.Description(),
		Node:        ev.Node.Name,
		Addr:        ev.Node.Addr,
		Status:      ev.Node.Status.String(),
		At:          ev.At.UTC(),
		Source:      k.source,
	})
}
