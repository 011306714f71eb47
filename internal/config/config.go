package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	TransportNone    = "none"
	TransportChannel = "channel"
	TransportRedis   = "redis"
	TransportKafka   = "kafka"

	JournalMemory   = "memory"
	JournalPostgres = "postgres"
	JournalSQLite   = "sqlite"
)

type Config struct {
	ServiceName string
	LogLevel    string
	LogFile     string

	HTTPAddr        string
	ShutdownTimeout time.Duration

	EventTransport string
	RedisAddr      string
	RedisPassword  string
	KafkaBrokers   []string

	JournalDriver string
	JournalDSN    string

	Tracing string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "go-fleet")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "5s")
	v.SetDefault("EVENT_TRANSPORT", TransportChannel)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("JOURNAL_DRIVER", JournalMemory)
	v.SetDefault("JOURNAL_DSN", "")
	v.SetDefault("TRACING", "none")
}

// Load reads the environment, after merging any of envFiles that exist
// (".env" when none are given). Variables already set win over the files.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		ServiceName:    cast.ToString(v.Get("SERVICE_NAME")),
		LogLevel:       strings.ToLower(cast.ToString(v.Get("LOG_LEVEL"))),
		LogFile:        cast.ToString(v.Get("LOG_FILE")),
		HTTPAddr:       cast.ToString(v.Get("HTTP_ADDR")),
		EventTransport: strings.ToLower(cast.ToString(v.Get("EVENT_TRANSPORT"))),
		RedisAddr:      cast.ToString(v.Get("REDIS_ADDR")),
		RedisPassword:  cast.ToString(v.Get("REDIS_PASSWORD")),
		KafkaBrokers:   splitList(cast.ToString(v.Get("KAFKA_BROKERS"))),
		JournalDriver:  strings.ToLower(cast.ToString(v.Get("JOURNAL_DRIVER"))),
		JournalDSN:     cast.ToString(v.Get("JOURNAL_DSN")),
		Tracing:        strings.ToLower(cast.ToString(v.Get("TRACING"))),
	}

	timeout, err := cast.ToDurationE(v.Get("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout = timeout

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.EventTransport {
	case TransportNone, TransportChannel, TransportRedis, TransportKafka:
	default:
		return fmt.Errorf("EVENT_TRANSPORT: unknown transport %q", c.EventTransport)
	}
	if c.EventTransport == TransportKafka && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS: at least one broker is required")
	}

	switch c.JournalDriver {
	case JournalMemory:
	case JournalPostgres, JournalSQLite:
		if c.JournalDSN == "" {
			return fmt.Errorf("JOURNAL_DSN is required for the %s journal", c.JournalDriver)
		}
	default:
		return fmt.Errorf("JOURNAL_DRIVER: unknown driver %q", c.JournalDriver)
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
