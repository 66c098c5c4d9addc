package notification

import (
	"fmt"
	"time"

	"github.com/NordCoder/nodeping/internal/domain/node"
)

// Kind is the alert-worthy transition an event describes.
type Kind int

const (
	KindPending Kind = iota + 1
	KindDown
	KindBackUp
)

func (k Kind) String() string {
	switch k {
	case KindPending:
		return "pending"
	case KindDown:
		return "down"
	case KindBackUp:
		return "back_up"
	default:
		return "unknown"
	}
}

func (k Kind) Title() string {
	switch k {
	case KindPending:
		return "Node Pending"
	case KindDown:
		return "Node Down"
	case KindBackUp:
		return "Node Back Up"
	default:
		return "Node Status"
	}
}

// Describe renders a one-line human readable summary for the named node.
func (k Kind) Describe(name string) string {
	switch k {
	case KindPending:
		return fmt.Sprintf("The Node %q has failed at least one ping and is now pending", name)
	case KindDown:
		return fmt.Sprintf("The Node %q has failed multiple pings and is considered down/unreachable", name)
	case KindBackUp:
		return fmt.Sprintf("The Node %q is now back up", name)
	default:
		return fmt.Sprintf("The Node %q changed status", name)
	}
}

// Event is handed from the checker to the notifier by value.
type Event struct {
	Kind Kind
	Node node.Snapshot
	At   time.Time
}

func (e Event) Title() string       { return e.Kind.Title() }
func (e Event) Description() string { return e.Kind.Describe(e.Node.Name) }

// Decide reports whether moving from prev to next is worth announcing.
// Repeated identical statuses after the first never produce an event.
func Decide(prev, next node.Status) (Kind, bool) {
	switch next {
	case node.StatusPending:
		return KindPending, true
	case node.StatusDown:
		if prev != node.StatusDown {
			return KindDown, true
		}
	case node.StatusUp:
		if prev == node.StatusDown || prev == node.StatusPending {
			return KindBackUp, true
		}
	}
	return 0, false
}

// Record is one delivered alert as kept by the journal target.
type Record struct {
	ID       int64     `json:"id"`
	Target   string    `json:"target"`
	Kind     string    `json:"kind"`
	NodeName string    `json:"node_name"`
	NodeAddr string    `json:"node_addr"`
	Status   string    `json:"status"`
	SentAt   time.Time `json:"sent_at"`
	Payload  string    `json:"payload"`
}
