package notifier

import (
	"context"
	"fmt"
	"net/http"

	"github.com/NordCoder/nodeping/internal/domain/notification"
)

type discordField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Fields      []discordField `json:"fields,omitempty"`
}

type discordMessage struct {
	Username string         `json:"username"`
	Embeds   []discordEmbed `json:"embeds"`
}

type Discord struct {
	name     string
	url      string
	username string
	client   *http.Client
}

func NewDiscord(name, url, username string, client *http.Client) *Discord {
	if username == "" {
		username = BotName()
	}
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &Discord{name: name, url: url, username: username, client: client}
}

func (d *Discord) Name() string { return d.name }

func (d *Discord) Send(ctx context.Context, ev notification.Event) error {
	return postJSON(ctx, d.client, d.url, discordPayload(d.username, ev))
}

func discordPayload(username string, ev notification.Event) discordMessage {
	return discordMessage{
		Username: username,
		Embeds: []discordEmbed{
			{Title: ev.Title(), Description: ev.Description()},
			{
				Title: "Node Info",
				Fields: []discordField{
					{Name: "Name", Value: fmt.Sprintf("%q", ev.Node.Name)},
					{Name: "IP", Value: ev.Node.Addr},
					{Name: "Status", Value: ev.Node.Status.String()},
				},
			},
		},
	}
}
