package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/NordCoder/nodeping/internal/config/nodeping"
	"github.com/NordCoder/nodeping/internal/domain/node"
	"github.com/NordCoder/nodeping/internal/domain/notification"
	"github.com/NordCoder/nodeping/internal/obs"
	"github.com/NordCoder/nodeping/internal/probe"
	"github.com/NordCoder/nodeping/internal/repository/kafka"
	pg "github.com/NordCoder/nodeping/internal/repository/postgres"
	"github.com/NordCoder/nodeping/internal/services/checker"
	"github.com/NordCoder/nodeping/internal/services/notifier"
	"github.com/NordCoder/nodeping/internal/services/pipeline"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	path := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*path); err != nil {
		fmt.Fprintln(os.Stderr, "nodeping:", err)
		os.Exit(1)
	}
}

func run(path string) error {
	// init
	root, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// logger
	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig(version))
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = l.Sync() }()
	zap.ReplaceGlobals(l)

	// otel
	otelCloser, err := obs.SetupOTel(root, cfg.OTEL.AsOTELConfig())
	if err != nil {
		return fmt.Errorf("otel init: %w", err)
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// prober
	prober, err := probe.New(cfg.Check.ProbeMode, cfg.Check.TCPPort)
	if err != nil {
		return fmt.Errorf("prober: %w", err)
	}

	// targets
	deps := notifier.Deps{
		Mail:  notifier.NewMailer(cfg.SMTP).WithLogger(l),
		Clock: notifier.SystemClock{},
	}
	if cfg.NeedsDB() {
		db, err := pg.Connect(root, cfg.DB, l)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer db.Close()
		deps.Journal = pg.NewAlertRepo(db)
	}
	var producers []*kafka.Producer
	defer func() {
		for _, p := range producers {
			_ = p.Close()
		}
	}()
	deps.Kafka = func(t notification.Target) notifier.AlertPublisher {
		p := kafka.BootstrapProducer(root, t.Brokers, t.Topic, l)
		producers = append(producers, p)
		return kafka.NewAlertEvents(p)
	}

	senders, err := notifier.BuildSenders(cfg.AsTargets(), deps)
	if err != nil {
		return fmt.Errorf("targets: %w", err)
	}
	if len(senders) == 0 {
		l.Warn("no notify targets configured, alerts will only be logged")
	}

	nodes := make([]*node.Node, 0, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		nodes = append(nodes, node.New(n.Name, n.Addr))
	}

	p := pipeline.New(l, pipeline.Config{
		Checker: checker.Config{
			Interval:     cfg.Interval(),
			SweepJitter:  cfg.Check.SweepJitter,
			NodeJitter:   cfg.Check.NodeJitter,
			ProbeTimeout: cfg.Check.ProbeTimeout,
		},
		Nodes:   nodes,
		Prober:  prober,
		Senders: senders,
	})

	// metrics
	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(context.Context) error {
		if !p.Alive() {
			return errors.New("pipeline not running")
		}
		return nil
	}, l)
	defer func() {
		if ms == nil {
			return
		}
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = ms.Shutdown(shCtx)
	}()

	// start
	l.Info("nodeping starting",
		zap.Int("nodes", len(nodes)),
		zap.Int("targets", len(senders)),
		zap.String("probe_mode", cfg.Check.ProbeMode),
	)
	err = p.Run(root)
	l.Info("bye")
	return err
}
