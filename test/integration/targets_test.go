//go:build integration

package integration

import (
	"context"
	"strings"
	"testing"
	"time"

	nodeping_config "github.com/NordCoder/nodeping/internal/config/nodeping"
	"github.com/NordCoder/nodeping/internal/domain/node"
	"github.com/NordCoder/nodeping/internal/domain/notification"
	kafkax "github.com/NordCoder/nodeping/internal/repository/kafka"
	pg "github.com/NordCoder/nodeping/internal/repository/postgres"
	"github.com/NordCoder/nodeping/internal/services/notifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func downEvent(name string) notification.Event {
	return notification.Event{
		Kind: notification.KindDown,
		Node: node.Snapshot{Name: name, Addr: "10.20.30.40", Status: node.StatusDown},
		At:   time.Now().UTC().Truncate(time.Second),
	}
}

func TestKafkaTarget_PublishesAlert(t *testing.T) {
	cfg := LoadCfg()
	WaitTCP(t, "kafka", cfg.KafkaBootstrap, 60*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	prod := kafkax.BootstrapProducer(ctx, []string{cfg.KafkaBootstrap}, cfg.AlertTopic, zap.NewNop())
	defer func() { _ = prod.Close() }()
	sender := notifier.NewKafka("bus", "it-host", kafkax.NewAlertEvents(prod))

	name := UniqueName("kafka-node")
	ev := downEvent(name)
	require.NoError(t, sender.Send(ctx, ev))

	var got kafkax.Alert
	var key string
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) && got.Node != name {
		var ok bool
		key, ok = ReadOneJSON(t, cfg.KafkaBootstrap, cfg.AlertTopic, UniqueName("it"), 10*time.Second, &got)
		require.True(t, ok, "no alert on %s", cfg.AlertTopic)
	}
	assert.Equal(t, name, key)
	assert.Equal(t, "down", got.Kind)
	assert.Equal(t, "Down", got.Status)
	assert.Equal(t, "it-host", got.Source)
}

func TestJournalTarget_StoresAlert(t *testing.T) {
	cfg := LoadCfg()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := pg.Connect(ctx, pg.Config{DSN: cfg.DBDSN, QueryTimeout: 5 * time.Second}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	repo := pg.NewAlertRepo(db)
	sender := notifier.NewJournal("audit", repo, notifier.SystemClock{})

	name := UniqueName("journal-node")
	require.NoError(t, sender.Send(ctx, downEvent(name)))

	sqlDB := DBOpen(t, cfg.DBDSN)
	defer sqlDB.Close()
	ok, payload := FindAlert(t, sqlDB, name, "down")
	require.True(t, ok, "alert not stored")
	assert.Contains(t, payload, name)

	recent, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, recent)
	assert.Equal(t, name, recent[0].NodeName)

	got, err := repo.Get(ctx, recent[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "audit", got.Target)

	_, err = repo.Get(ctx, -1)
	assert.ErrorIs(t, err, pg.ErrNotFound)
}

func TestEmailTarget_SendsMail(t *testing.T) {
	cfg := LoadCfg()
	WaitTCP(t, "smtp", cfg.SMTPAddr, 30*time.Second)
	MailhogPurge(t, cfg.MailhogAPI)

	mailer := notifier.NewMailer(nodeping_config.SMTP{
		Addr:       cfg.SMTPAddr,
		From:       "nodeping@example.com",
		Timeout:    5 * time.Second,
		SubjPrefix: "[nodeping]",
	}).WithLogger(zap.NewNop())
	sender := notifier.NewEmail("oncall", []string{"ops@example.com"}, mailer)

	name := UniqueName("mail-node")
	require.NoError(t, sender.Send(context.Background(), downEvent(name)))

	rep := WaitMailhogCount(t, cfg.MailhogAPI, 1, 25*time.Second)
	require.NotEmpty(t, rep.Items, "no mail")
	subj := ""
	if v := rep.Items[0].Content.Headers["Subject"]; len(v) > 0 {
		subj = v[0]
	}
	assert.True(t, strings.HasPrefix(subj, "[nodeping] Node Down"), "subject %q", subj)
	assert.Contains(t, rep.Items[0].Content.Body, "10.20.30.40")
}
