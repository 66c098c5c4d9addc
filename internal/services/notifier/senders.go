package notifier

import (
	"fmt"
	"os"
	"time"

	"github.com/NordCoder/nodeping/internal/domain/notification"
)

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Deps carries the shared resources that targets are built from.
// Fields only need to be set when a target of the matching kind is configured.
type Deps struct {
	Mail     MailSender
	Kafka    func(t notification.Target) AlertPublisher
	Journal  notification.Journal
	Clock    notification.Clock
	Hostname string
}

// BuildSenders turns target descriptors into senders, keeping their order.
func BuildSenders(targets []notification.Target, d Deps) ([]notification.Sender, error) {
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.Hostname == "" {
		d.Hostname, _ = os.Hostname()
	}

	out := make([]notification.Sender, 0, len(targets))
	for i, t := range targets {
		name := t.Label()
		switch t.Kind {
		case notification.TargetDiscordWebhook:
			out = append(out, NewDiscord(name, t.URL, t.Username, NewHTTPClient(t.Timeout)))
		case notification.TargetSlackWebhook:
			out = append(out, NewSlack(name, t.URL, t.Username, NewHTTPClient(t.Timeout)))
		case notification.TargetEmail:
			if d.Mail == nil {
				return nil, fmt.Errorf("target %d (%s): no mailer configured", i, name)
			}
			out = append(out, NewEmail(name, t.To, d.Mail))
		case notification.TargetKafka:
			if d.Kafka == nil {
				return nil, fmt.Errorf("target %d (%s): no kafka producer factory", i, name)
			}
			out = append(out, NewKafka(name, d.Hostname, d.Kafka(t)))
		case notification.TargetJournal:
			if d.Journal == nil {
				return nil, fmt.Errorf("target %d (%s): no journal store", i, name)
			}
			out = append(out, NewJournal(name, d.Journal, d.Clock))
		default:
			return nil, fmt.Errorf("target %d: unknown kind %q", i, t.Kind)
		}
	}
	return out, nil
}
