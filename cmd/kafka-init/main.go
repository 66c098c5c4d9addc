package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NordCoder/nodeping/internal/obs"
	"github.com/NordCoder/nodeping/internal/obs/retry"
	kafkax "github.com/NordCoder/nodeping/internal/repository/kafka"
	"go.uber.org/zap"
)

// kafka-init pre-creates the alert topics used by kafka notify targets.
func main() {
	brokers := splitList(env("KAFKA_BROKERS", "kafka:9092"))
	topics := splitList(env("KAFKA_TOPICS", "nodeping.alerts"))
	partitions := envInt("KAFKA_PARTITIONS", 1)
	rf := envInt("KAFKA_RF", 1)

	log, err := obs.NewLogger(obs.LogConfig{Level: env("LOG_LEVEL", "info"), App: "nodeping-kafka-init"})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for _, t := range topics {
		spec := kafkax.TopicSpec{
			Name:              t,
			NumPartitions:     partitions,
			ReplicationFactor: rf,
			MaxWait:           30 * time.Second,
		}
		err := retry.Do(ctx, func(ctx context.Context) error {
			return kafkax.EnsureTopic(ctx, brokers, spec, log)
		}, retry.StartupPolicy("kafka_topic", log))
		if err != nil {
			log.Fatal("ensure topic", zap.String("topic", t), zap.Error(err))
		}
	}
	log.Info("kafka-init ok", zap.Strings("topics", topics))
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, _ := strconv.Atoi(v); n > 0 {
			return n
		}
	}
	return def
}
