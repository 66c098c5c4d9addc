package kafka

import (
	"context"
	"time"
)

// Alert is the JSON document published for every notification event.
type Alert struct {
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Node        string    `json:"node"`
	Addr        string    `json:"addr"`
	Status      string    `json:"status"`
	At          time.Time `json:"at"`
	Source      string    `json:"source,omitempty"`
}

type AlertEvents struct {
	p *Producer
}

func NewAlertEvents(p *Producer) *AlertEvents { return &AlertEvents{p: p} }

// PublishAlert keys the message by node name so alerts for one node stay on one partition, in order.
func (e *AlertEvents) PublishAlert(ctx context.Context, a Alert) error {
	return e.p.PublishJSON(ctx, []byte(a.Node), a)
}
