package nodeping_config

import (
	"fmt"
	"strings"

	"github.com/NordCoder/nodeping/internal/domain/notification"
	"github.com/spf13/viper"
)

const DefaultPingInterval = 30

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetDefault("ping_interval", DefaultPingInterval)

	v.SetDefault("check.probe_timeout", "250ms")
	v.SetDefault("check.node_jitter", "200ms")
	v.SetDefault("check.sweep_jitter", "2s")
	v.SetDefault("check.probe_mode", "icmp")
	v.SetDefault("check.tcp_port", 80)

	v.SetDefault("smtp.addr", "localhost:1025")
	v.SetDefault("smtp.from", "noreply@nodeping.dev")
	v.SetDefault("smtp.use_tls", false)
	v.SetDefault("smtp.timeout", "5s")
	v.SetDefault("smtp.subj_prefix", "[nodeping]")

	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("db.max_conn_lifetime", "30m")
	v.SetDefault("db.max_conn_idle_time", "10m")
	v.SetDefault("db.health_check_period", "30s")
	v.SetDefault("db.query_timeout", "2s")

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.service_name", "nodeping")
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("otel.otlp_endpoint", "localhost:4317")

	v.SetDefault("server.metrics_addr", ":8085")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Nodes) == 0 {
		return fmt.Errorf("%w: no nodes configured", ErrConfig)
	}
	seen := make(map[string]struct{}, len(c.Nodes))
	for i, n := range c.Nodes {
		if strings.TrimSpace(n.Name) == "" {
			return fmt.Errorf("%w: nodes[%d]: empty name", ErrConfig, i)
		}
		if strings.TrimSpace(n.Addr) == "" {
			return fmt.Errorf("%w: nodes[%d] %q: empty addr", ErrConfig, i, n.Name)
		}
		if _, dup := seen[n.Name]; dup {
			return fmt.Errorf("%w: nodes[%d]: duplicate name %q", ErrConfig, i, n.Name)
		}
		seen[n.Name] = struct{}{}
	}

	if c.PingInterval <= 0 {
		return fmt.Errorf("%w: ping_interval must be positive", ErrConfig)
	}
	if c.Check.ProbeTimeout <= 0 {
		return fmt.Errorf("%w: check.probe_timeout must be positive", ErrConfig)
	}
	switch c.Check.ProbeMode {
	case "icmp", "udp", "tcp":
	default:
		return fmt.Errorf("%w: check.probe_mode: unknown mode %q", ErrConfig, c.Check.ProbeMode)
	}

	for i, t := range c.Targets {
		kind := notification.TargetKind(t.Kind)
		if !kind.Valid() {
			return fmt.Errorf("%w: notify_targets[%d]: unknown kind %q", ErrConfig, i, t.Kind)
		}
		switch kind {
		case notification.TargetDiscordWebhook, notification.TargetSlackWebhook:
			if t.URL == "" {
				return fmt.Errorf("%w: notify_targets[%d]: %s needs url", ErrConfig, i, t.Kind)
			}
		case notification.TargetEmail:
			if len(t.To) == 0 {
				return fmt.Errorf("%w: notify_targets[%d]: email needs at least one recipient", ErrConfig, i)
			}
		case notification.TargetKafka:
			if len(t.Kafka.Brokers) == 0 || t.Kafka.Topic == "" {
				return fmt.Errorf("%w: notify_targets[%d]: kafka needs brokers and topic", ErrConfig, i)
			}
		case notification.TargetJournal:
			if c.DB.DSN == "" {
				return fmt.Errorf("%w: notify_targets[%d]: journal needs db.dsn", ErrConfig, i)
			}
		}
	}
	return nil
}

// AsTargets converts the configured targets into domain descriptors, keeping their order.
func (c *Config) AsTargets() []notification.Target {
	out := make([]notification.Target, 0, len(c.Targets))
	for _, t := range c.Targets {
		out = append(out, notification.Target{
			Kind:     notification.TargetKind(t.Kind),
			Name:     t.Name,
			URL:      t.URL,
			Username: t.Username,
			Timeout:  t.Timeout,
			To:       t.To,
			Brokers:  t.Kafka.Brokers,
			Topic:    t.Kafka.Topic,
		})
	}
	return out
}
