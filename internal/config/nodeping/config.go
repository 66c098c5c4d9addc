package nodeping_config

import (
	"errors"
	"time"

	"github.com/NordCoder/nodeping/internal/obs"
	pginfra "github.com/NordCoder/nodeping/internal/repository/postgres"
)

type Node struct {
	Name string `mapstructure:"name"`
	Addr string `mapstructure:"addr"`
}

type KafkaOut struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Target struct {
	Kind     string        `mapstructure:"kind"`
	Name     string        `mapstructure:"name"`
	URL      string        `mapstructure:"url"`
	Username string        `mapstructure:"username"`
	Timeout  time.Duration `mapstructure:"timeout"`
	To       []string      `mapstructure:"to"`
	Kafka    KafkaOut      `mapstructure:"kafka"`
}

type SMTP struct {
	Addr       string        `mapstructure:"addr"`
	From       string        `mapstructure:"from"`
	User       string        `mapstructure:"user"`
	Password   string        `mapstructure:"password"`
	UseTLS     bool          `mapstructure:"use_tls"`
	Timeout    time.Duration `mapstructure:"timeout"`
	SubjPrefix string        `mapstructure:"subj_prefix"`
}

type Check struct {
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	NodeJitter   time.Duration `mapstructure:"node_jitter"`
	SweepJitter  time.Duration `mapstructure:"sweep_jitter"`
	ProbeMode    string        `mapstructure:"probe_mode"`
	TCPPort      int           `mapstructure:"tcp_port"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
	Env    string `mapstructure:"env"`
}

func (lc *Log) AsLoggerConfig(version string) obs.LogConfig {
	return obs.LogConfig{
		Level:  lc.Level,
		Pretty: lc.Pretty,
		App:    "nodeping",
		Env:    lc.Env,
		Ver:    version,
	}
}

type Config struct {
	Nodes        []Node         `mapstructure:"nodes"`
	Targets      []Target       `mapstructure:"notify_targets"`
	PingInterval int            `mapstructure:"ping_interval"`
	Check        Check          `mapstructure:"check"`
	SMTP         SMTP           `mapstructure:"smtp"`
	DB           pginfra.Config `mapstructure:"db"`
	Server       Server         `mapstructure:"server"`
	OTEL         OTEL           `mapstructure:"otel"`
	Log          Log            `mapstructure:"log"`
}

// Interval is the base delay between two sweeps.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.PingInterval) * time.Second
}

// NeedsDB reports whether any target writes to the alert journal.
func (c *Config) NeedsDB() bool {
	for _, t := range c.Targets {
		if t.Kind == "journal" {
			return true
		}
	}
	return false
}

// ErrConfig wraps every validation failure.
var ErrConfig = errors.New("invalid config")
