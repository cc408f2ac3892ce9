package connector

import "time"

// Config describes the PostgreSQL store the repositories run against.
type Config struct {
	Host           string            `koanf:"host" validate:"required,hostname|ip"`
	Port           int               `koanf:"port" validate:"gt=0,lte=65535"`
	Database       string            `koanf:"database" validate:"required"`
	Username       string            `koanf:"username"`
	Password       string            `koanf:"password"`
	SSLMode        string            `koanf:"ssl_mode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	Params         map[string]string `koanf:"params"`
	Pool           PoolConfig        `koanf:"pool"`
	ConnectTimeout time.Duration     `koanf:"connect_timeout"`
	QueryTimeout   time.Duration     `koanf:"query_timeout"`
	Retry          RetryConfig       `koanf:"retry"`
}

// PoolConfig defines connection pool settings.
type PoolConfig struct {
	MaxOpen         int           `koanf:"max_open" validate:"gte=0"`
	MaxIdle         int           `koanf:"max_idle" validate:"gte=0"`
	MaxLifetime     time.Duration `koanf:"max_lifetime"`
	MaxIdleTime     time.Duration `koanf:"max_idle_time"`
	HealthCheckFreq time.Duration `koanf:"health_check_freq"`
}

// RetryConfig defines connection retry behavior. MaxRetries of zero means a
// single attempt.
type RetryConfig struct {
	MaxRetries int           `koanf:"max_retries" validate:"gte=0"`
	BaseDelay  time.Duration `koanf:"base_delay"`
	MaxDelay   time.Duration `koanf:"max_delay"`
	Backoff    float64       `koanf:"backoff" validate:"omitempty,gte=1"`
}

// DefaultConfig returns settings for a local development database.
func DefaultConfig() Config {
	return Config{
		Host:           "localhost",
		Port:           5432,
		Database:       "registrar",
		SSLMode:        "prefer",
		ConnectTimeout: 10 * time.Second,
		QueryTimeout:   30 * time.Second,
		Pool: PoolConfig{
			MaxOpen:     10,
			MaxIdle:     2,
			MaxLifetime: time.Hour,
			MaxIdleTime: 30 * time.Minute,
		},
		Retry: RetryConfig{
			MaxRetries: 5,
			BaseDelay:  time.Second,
			MaxDelay:   30 * time.Second,
			Backoff:    2,
		},
	}
}

// DSN builds the connection URL for cfg. It is empty when cfg has no
// usable address.
func (cfg Config) DSN() string {
	u, err := cfg.connURL()
	if err != nil {
		return ""
	}
	return u.String()
}

// RedactedDSN is DSN with the password masked, for logs.
func (cfg Config) RedactedDSN() string {
	u, err := cfg.connURL()
	if err != nil {
		return ""
	}
	return u.Redacted()
}
