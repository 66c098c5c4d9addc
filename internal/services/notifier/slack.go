package notifier

import (
	"context"
	"net/http"

	"github.com/NordCoder/nodeping/internal/domain/notification"
)

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text"`
	Fields []slackField `json:"fields"`
	Ts     int64        `json:"ts,omitempty"`
}

type slackMessage struct {
	Username    string            `json:"username,omitempty"`
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

type Slack struct {
	name     string
	url      string
	username string
	client   *http.Client
}

func NewSlack(name, url, username string, client *http.Client) *Slack {
	if username == "" {
		username = BotName()
	}
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &Slack{name: name, url: url, username: username, client: client}
}

func (s *Slack) Name() string { return s.name }

func (s *Slack) Send(ctx context.Context, ev notification.Event) error {
	return postJSON(ctx, s.client, s.url, slackPayload(s.username, ev))
}

func slackColor(k notification.Kind) string {
	switch k {
	case notification.KindDown:
		return "danger"
	case notification.KindPending:
		return "warning"
	default:
		return "good"
	}
}

func slackPayload(username string, ev notification.Event) slackMessage {
	var ts int64
	if !ev.At.IsZero() {
		ts = ev.At.Unix()
	}
	return slackMessage{
		Username: username,
		Text:     ev.Title() + ": " + ev.Node.Name,
		Attachments: []slackAttachment{{
			Color: slackColor(ev.Kind),
			Title: ev.Title(),
			Text:  ev.Description(),
			Fields: []slackField{
				{Title: "Name", Value: ev.Node.Name, Short: true},
				{Title: "IP", Value: ev.Node.Addr, Short: true},
				{Title: "Status", Value: ev.Node.Status.String(), Short: true},
			},
			Ts: ts,
		}},
	}
}
