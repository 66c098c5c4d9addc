package notification

import "time"

// TargetKind selects the variant of a notification target.
type TargetKind string

const (
	TargetDiscordWebhook TargetKind = "discord_webhook"
	TargetSlackWebhook   TargetKind = "slack_webhook"
	TargetEmail          TargetKind = "email"
	TargetKafka          TargetKind = "kafka"
	TargetJournal        TargetKind = "journal"
)

func (k TargetKind) Valid() bool {
	switch k {
	case TargetDiscordWebhook, TargetSlackWebhook, TargetEmail, TargetKafka, TargetJournal:
		return true
	}
	return false
}

// Target describes one configured destination. Only the fields of its Kind are meaningful.
type Target struct {
	Kind TargetKind
	Name string

	// webhooks
	URL      string
	Username string
	Timeout  time.Duration

	// email
	To []string

	// kafka
	Brokers []string
	Topic   string
}

// Label is used in logs and metrics.
func (t Target) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return string(t.Kind)
}
