package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NordCoder/nodeping/internal/domain/node"
	"github.com/NordCoder/nodeping/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureServer(t *testing.T, status int, into *[]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		*into = b
		w.WriteHeader(status)
		_, _ = w.Write([]byte("rate limited"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDiscord_Payload(t *testing.T) {
	var body []byte
	srv := captureServer(t, http.StatusNoContent, &body)
	d := NewDiscord("discord", srv.URL, "Node-Up-Bot [test]", srv.Client())

	ev := notification.Event{
		Kind: notification.KindDown,
		Node: node.Snapshot{Name: "db-1", Addr: "10.0.0.9", Status: node.StatusDown},
	}
	require.NoError(t, d.Send(context.Background(), ev))

	var msg discordMessage
	require.NoError(t, json.Unmarshal(body, &msg))
	assert.Equal(t, "Node-Up-Bot [test]", msg.Username)
	require.Len(t, msg.Embeds, 2)
	assert.Equal(t, "Node Down", msg.Embeds[0].Title)
	assert.Contains(t, msg.Embeds[0].Description, `"db-1"`)
	assert.Equal(t, "Node Info", msg.Embeds[1].Title)
	assert.Equal(t, []discordField{
		{Name: "Name", Value: `"db-1"`},
		{Name: "IP", Value: "10.0.0.9"},
		{Name: "Status", Value: "Down"},
	}, msg.Embeds[1].Fields)
}

func TestDiscord_Non2xxIsError(t *testing.T) {
	var body []byte
	srv := captureServer(t, http.StatusTooManyRequests, &body)
	d := NewDiscord("discord", srv.URL, "bot", srv.Client())

	err := d.Send(context.Background(), notification.Event{Kind: notification.KindPending})
	require.Error(t, err)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Equal(t, "rate limited", se.Body)
}

func TestDiscord_UnreachableIsError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	d := NewDiscord("discord", url, "bot", NewHTTPClient(time.Second))
	assert.Error(t, d.Send(context.Background(), notification.Event{Kind: notification.KindDown}))
}

func TestSlack_Payload(t *testing.T) {
	var body []byte
	srv := captureServer(t, http.StatusOK, &body)
	s := NewSlack("slack", srv.URL, "", srv.Client())

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	ev := notification.Event{
		Kind: notification.KindBackUp,
		Node: node.Snapshot{Name: "web", Addr: "192.168.1.4", Status: node.StatusUp},
		At:   at,
	}
	require.NoError(t, s.Send(context.Background(), ev))

	var msg slackMessage
	require.NoError(t, json.Unmarshal(body, &msg))
	assert.Equal(t, BotName(), msg.Username)
	assert.Equal(t, "Node Back Up: web", msg.Text)
	require.Len(t, msg.Attachments, 1)
	a := msg.Attachments[0]
	assert.Equal(t, "good", a.Color)
	assert.Equal(t, at.Unix(), a.Ts)
	assert.Len(t, a.Fields, 3)
}

func TestBotName(t *testing.T) {
	n := BotName()
	assert.Regexp(t, `^Node-Up-Bot \[.+\]$`, n)
}
