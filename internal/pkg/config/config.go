// Package config loads process-wide settings from the environment. Values are
// read once at startup and never re-read per request.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// MinSecretLength is the smallest accepted HS256 signing secret, in bytes.
const MinSecretLength = 32

type Config struct {
	Port     string `env:"PORT, default=8080"`
	Env      string `env:"ENV, default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT      JWTConfig
	Security SecurityConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Reminder ReminderConfig
	SMTP     SMTPConfig
	Kafka    KafkaConfig
	Admin    AdminConfig
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET"`
	TTL    time.Duration `env:"JWT_TTL, default=24h"`
	Issuer string        `env:"JWT_ISSUER, default=task-manager"`
}

type SecurityConfig struct {
	BcryptCost      int `env:"BCRYPT_COST, default=10"`
	HashConcurrency int `env:"HASH_CONCURRENCY, default=0"`
	// RevocationFailClosed drops a token when the revocation store cannot be reached.
	RevocationFailClosed bool `env:"REVOCATION_FAIL_CLOSED, default=true"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB, default=task_manager"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type ReminderConfig struct {
	Workers   int `env:"REMINDER_WORKERS, default=3"`
	QueueSize int `env:"REMINDER_QUEUE_SIZE, default=50"`
	Hour      int `env:"REMINDER_HOUR, default=8"`
}

type SMTPConfig struct {
	Addr     string `env:"SMTP_ADDR"`
	From     string `env:"SMTP_FROM, default=noreply@task-manager.local"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
}

type KafkaConfig struct {
	Brokers    []string `env:"KAFKA_BROKERS"`
	AuditTopic string   `env:"KAFKA_AUDIT_TOPIC, default=user_events"`
}

// AdminConfig describes the account created on first start. Leaving
// Username or Password empty disables the bootstrap.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("config: load .env file: %w", err)
		}
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom processes the configuration from lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first setting that would make the service unsafe or
// unable to start.
func (c *Config) Validate() error {
	switch {
	case len(c.JWT.Secret) < MinSecretLength:
		return fmt.Errorf("config: JWT_SECRET must be at least %d bytes", MinSecretLength)
	case c.JWT.TTL <= 0:
		return errors.New("config: JWT_TTL must be positive")
	case c.Reminder.Hour < 0 || c.Reminder.Hour > 23:
		return fmt.Errorf("config: REMINDER_HOUR must be between 0 and 23, got %d", c.Reminder.Hour)
	case c.Reminder.Workers < 1:
		return errors.New("config: REMINDER_WORKERS must be at least 1")
	case c.Reminder.QueueSize < c.Reminder.Workers:
		return errors.New("config: REMINDER_QUEUE_SIZE must be at least REMINDER_WORKERS")
	case c.Admin.Username != "" && c.Admin.Password == "":
		return errors.New("config: ADMIN_PASSWORD is required when ADMIN_USERNAME is set")
	}
	return nil
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev" || env == "local"
}
