package notifier

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	config "github.com/NordCoder/nodeping/internal/config/nodeping"
	"github.com/NordCoder/nodeping/internal/domain/node"
	"github.com/NordCoder/nodeping/internal/domain/notification"
	"github.com/NordCoder/nodeping/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// silentRelay accepts connections and never sends a greeting.
func silentRelay(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var mu sync.Mutex
	var conns []net.Conn
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	return ln.Addr().String()
}

// fakeRelay speaks just enough SMTP to accept one message and hands the DATA section to got.
func fakeRelay(t *testing.T, got chan<- string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		r := bufio.NewReader(c)
		reply := func(s string) { _, _ = c.Write([]byte(s + "\r\n")) }

		reply("220 fake ESMTP")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				reply("250 fake")
			case strings.HasPrefix(cmd, "DATA"):
				reply("354 go ahead")
				var data strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if strings.TrimRight(l, "\r\n") == "." {
						break
					}
					data.WriteString(l)
				}
				got <- data.String()
				reply("250 queued")
			case strings.HasPrefix(cmd, "QUIT"):
				reply("221 bye")
				return
			default:
				reply("250 OK")
			}
		}
	}()
	return ln.Addr().String()
}

func TestMailer_SilentRelayTimesOut(t *testing.T) {
	m := NewMailer(config.SMTP{
		Addr:    silentRelay(t),
		From:    "nodeping@example.com",
		Timeout: 200 * time.Millisecond,
	}).WithLogger(zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- m.Send(context.Background(), []string{"ops@example.com"}, "Node Down: db-1", "body") }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("send blocked past the smtp timeout")
	}
}

func TestMailer_SilentRelayHonoursContext(t *testing.T) {
	m := NewMailer(config.SMTP{
		Addr:    silentRelay(t),
		From:    "nodeping@example.com",
		Timeout: time.Minute,
	}).WithLogger(zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := m.Send(ctx, []string{"ops@example.com"}, "Node Down: db-1", "body")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestMailer_PlainDelivery(t *testing.T) {
	got := make(chan string, 1)
	m := NewMailer(config.SMTP{
		Addr:       fakeRelay(t, got),
		From:       "nodeping@example.com",
		Timeout:    2 * time.Second,
		SubjPrefix: "[nodeping]",
	}).WithLogger(zap.NewNop())

	require.NoError(t, m.Send(context.Background(), []string{"ops@example.com"}, "Node Down: db-1", "db-1 is down"))

	select {
	case data := <-got:
		assert.Contains(t, data, "Subject: [nodeping] Node Down: db-1")
		assert.Contains(t, data, "db-1 is down")
	case <-time.After(2 * time.Second):
		t.Fatal("relay got no message")
	}
}

func TestDispatch_StuckRelayDoesNotBlockNextTarget(t *testing.T) {
	m := NewMailer(config.SMTP{Addr: silentRelay(t), From: "nodeping@example.com", Timeout: 200 * time.Millisecond})
	email := NewEmail("oncall", []string{"ops@example.com"}, m.WithLogger(zap.NewNop()))
	next := &recordingSender{name: "next"}
	r := New(zap.NewNop(), queue.New[notification.Event](), []notification.Sender{email, next})

	ev := event(notification.KindDown, "db-1", node.StatusDown)
	done := make(chan int, 1)
	go func() { done <- r.Dispatch(context.Background(), ev) }()

	select {
	case failed := <-done:
		assert.Equal(t, 1, failed)
	case <-time.After(3 * time.Second):
		t.Fatal("dispatch stuck on the email target")
	}
	require.Len(t, next.events(), 1)
}
