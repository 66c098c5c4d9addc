package kafka

import (
	"context"
	"time"

	"github.com/NordCoder/nodeping/internal/obs/retry"
	"go.uber.org/zap"
)

// BootstrapProducer makes sure the topic exists and returns a producer for it.
// A broker that stays unreachable is logged; the producer is still returned so
// that later deliveries fail and get reported per alert instead of at startup.
func BootstrapProducer(ctx context.Context, brokers []string, topic string, log *zap.Logger) *Producer {
	spec := TopicSpec{
		Name:              topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
		MaxWait:           5 * time.Second,
	}
	err := retry.Do(ctx, func(ctx context.Context) error {
		return EnsureTopic(ctx, brokers, spec, log)
	}, retry.StartupPolicy("kafka_topic", log))
	if err != nil && log != nil {
		log.Warn("kafka topic not ensured", zap.String("topic", topic), zap.Error(err))
	}

	return NewProducer(brokers, topic).WithLogger(log)
}
