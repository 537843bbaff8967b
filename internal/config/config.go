// Package config assembles the runtime configuration of the portal.
//
// Values are layered in this order, later layers winning:
//
//  1. built-in defaults (Default),
//  2. an optional YAML file (CONFIG_FILE),
//  3. environment variables, optionally seeded from a .env file.
//
// Secrets are never read from the YAML file. The file only names the
// environment variable that holds each secret (the *_env keys).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"newsportal/internal/infra/db"
	"newsportal/internal/infra/worker"
	validate "newsportal/internal/pkg/config"
	env "newsportal/pkg/config"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	Mail     MailConfig     `yaml:"mail"`
	Social   SocialConfig   `yaml:"social"`
	Newsroom NewsroomConfig `yaml:"newsroom"`
	Notify   NotifyConfig   `yaml:"notify"`
	Version  string         `yaml:"-"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
	// AuthRatePerMinute bounds /auth/* requests per client IP.
	AuthRatePerMinute int `yaml:"auth_rate_per_minute"`
}

// DatabaseConfig selects the store. An empty URL runs the API on the
// in-memory store, which is only meant for local development.
type DatabaseConfig struct {
	URL         string        `yaml:"url"`
	AutoMigrate bool          `yaml:"auto_migrate"`
	Pool        db.PoolConfig `yaml:"pool"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type AuthConfig struct {
	SecretEnv  string        `yaml:"secret_env"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`

	Secret string `yaml:"-"`
}

// MailConfig configures the SMTP transport for approval emails.
type MailConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Username    string        `yaml:"username"`
	PasswordEnv string        `yaml:"password_env"`
	From        string        `yaml:"from"`
	Timeout     time.Duration `yaml:"timeout"`

	Password string `yaml:"-"`
}

// SocialConfig configures the external social feed broadcaster. The client
// secret is resolved from the environment variable named by ClientSecretEnv.
type SocialConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Endpoint        string        `yaml:"endpoint"`
	TokenURL        string        `yaml:"token_url"`
	ClientID        string        `yaml:"client_id"`
	ClientSecretEnv string        `yaml:"client_secret_env"`
	Scopes          []string      `yaml:"scopes"`
	RatePerMinute   int           `yaml:"rate_per_minute"`
	MaxRetries      int           `yaml:"max_retries"`
	Timeout         time.Duration `yaml:"timeout"`

	ClientSecret string `yaml:"-"`
}

// NewsroomConfig configures the optional editorial Slack desk alert.
type NewsroomConfig struct {
	Enabled       bool          `yaml:"enabled"`
	WebhookURLEnv string        `yaml:"webhook_url_env"`
	Channel       string        `yaml:"channel"`
	Timeout       time.Duration `yaml:"timeout"`

	WebhookURL string `yaml:"-"`
}

// NotifyConfig sizes the approval event dispatcher and the outbox sweeper.
type NotifyConfig struct {
	Workers      int                  `yaml:"workers"`
	EventTimeout time.Duration        `yaml:"event_timeout"`
	BufferSize   int                  `yaml:"buffer_size"`
	Sweep        worker.SweeperConfig `yaml:"sweep"`
}

const minSecretLength = 32

// Default returns a configuration suitable for local development.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			MaxBodyBytes:      1 << 20,
			AuthRatePerMinute: 10,
		},
		Database: DatabaseConfig{AutoMigrate: true, Pool: db.DefaultPoolConfig()},
		Log:      LogConfig{Level: "info"},
		Auth: AuthConfig{
			SecretEnv:  "JWT_SECRET",
			TokenTTL:   time.Hour,
			BcryptCost: 12,
		},
		Mail: MailConfig{
			Host:        "localhost",
			Port:        25,
			PasswordEnv: "SMTP_PASSWORD",
			From:        "no-reply@newsportal.com",
			Timeout:     10 * time.Second,
		},
		Social: SocialConfig{
			ClientSecretEnv: "SOCIAL_CLIENT_SECRET",
			RatePerMinute:   30,
			MaxRetries:      3,
			Timeout:         10 * time.Second,
		},
		Newsroom: NewsroomConfig{
			WebhookURLEnv: "NEWSROOM_SLACK_WEBHOOK_URL",
			Timeout:       5 * time.Second,
		},
		Notify: NotifyConfig{
			Workers:      4,
			EventTimeout: 30 * time.Second,
			BufferSize:   256,
			Sweep:        worker.DefaultSweeperConfig(),
		},
		Version: "dev",
	}
}

// Load builds the configuration. path may be empty, in which case
// CONFIG_FILE is consulted; a missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	cfg.resolveSecrets()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) mergeFile(path string) error {
	// #nosec G304 -- path comes from the operator (flag or CONFIG_FILE)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = env.GetEnvString("HTTP_ADDR", c.Server.Addr)
	c.Server.ShutdownTimeout = env.GetEnvDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.AuthRatePerMinute = env.GetEnvInt("AUTH_RATE_PER_MINUTE", c.Server.AuthRatePerMinute)

	c.Database.URL = env.GetEnvString("DATABASE_URL", c.Database.URL)
	c.Database.AutoMigrate = env.GetEnvBool("DB_AUTO_MIGRATE", c.Database.AutoMigrate)
	c.Database.Pool.MaxOpenConns = env.GetEnvInt("DB_MAX_OPEN_CONNS", c.Database.Pool.MaxOpenConns)
	c.Database.Pool.MaxIdleConns = env.GetEnvInt("DB_MAX_IDLE_CONNS", c.Database.Pool.MaxIdleConns)
	c.Database.Pool.ConnMaxLifetime = env.GetEnvDuration("DB_CONN_MAX_LIFETIME", c.Database.Pool.ConnMaxLifetime)
	c.Database.Pool.ConnMaxIdleTime = env.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", c.Database.Pool.ConnMaxIdleTime)

	c.Log.Level = env.GetEnvString("LOG_LEVEL", c.Log.Level)
	c.Version = env.GetEnvString("VERSION", c.Version)

	c.Auth.TokenTTL = env.GetEnvDuration("TOKEN_TTL", c.Auth.TokenTTL)
	c.Auth.BcryptCost = env.GetEnvInt("BCRYPT_COST", c.Auth.BcryptCost)

	c.Mail.Enabled = env.GetEnvBool("SMTP_ENABLED", c.Mail.Enabled)
	c.Mail.Host = env.GetEnvString("SMTP_HOST", c.Mail.Host)
	c.Mail.Port = env.GetEnvInt("SMTP_PORT", c.Mail.Port)
	c.Mail.Username = env.GetEnvString("SMTP_USERNAME", c.Mail.Username)
	c.Mail.From = env.GetEnvString("MAIL_FROM", c.Mail.From)

	c.Social.Enabled = env.GetEnvBool("SOCIAL_ENABLED", c.Social.Enabled)
	c.Social.Endpoint = env.GetEnvString("SOCIAL_ENDPOINT", c.Social.Endpoint)
	c.Social.TokenURL = env.GetEnvString("SOCIAL_TOKEN_URL", c.Social.TokenURL)
	c.Social.ClientID = env.GetEnvString("SOCIAL_CLIENT_ID", c.Social.ClientID)
	c.Social.Scopes = env.GetEnvStringList("SOCIAL_SCOPES", c.Social.Scopes)

	c.Newsroom.Enabled = env.GetEnvBool("NEWSROOM_ENABLED", c.Newsroom.Enabled)
	c.Newsroom.Channel = env.GetEnvString("NEWSROOM_CHANNEL", c.Newsroom.Channel)

	c.Notify.Workers = env.GetEnvInt("NOTIFY_MAX_CONCURRENT", c.Notify.Workers)
	c.Notify.EventTimeout = env.GetEnvDuration("NOTIFY_EVENT_TIMEOUT", c.Notify.EventTimeout)
	c.Notify.Sweep.Schedule = env.GetEnvString("OUTBOX_SWEEP_SCHEDULE", c.Notify.Sweep.Schedule)
	c.Notify.Sweep.Timezone = env.GetEnvString("OUTBOX_SWEEP_TIMEZONE", c.Notify.Sweep.Timezone)
	c.Notify.Sweep.Grace = env.GetEnvDuration("OUTBOX_SWEEP_GRACE", c.Notify.Sweep.Grace)
	c.Notify.Sweep.MaxAttempts = env.GetEnvInt("OUTBOX_MAX_ATTEMPTS", c.Notify.Sweep.MaxAttempts)
}

func (c *Config) resolveSecrets() {
	c.Auth.Secret = os.Getenv(c.Auth.SecretEnv)
	c.Mail.Password = os.Getenv(c.Mail.PasswordEnv)
	c.Social.ClientSecret = os.Getenv(c.Social.ClientSecretEnv)
	c.Newsroom.WebhookURL = os.Getenv(c.Newsroom.WebhookURLEnv)
}

// Validate reports every problem at once, joined with errors.Join.
func (c *Config) Validate() error {
	var errs []error
	add := func(field string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	if c.Server.Addr == "" {
		add("server.addr", errors.New("cannot be empty"))
	}
	add("server.read_header_timeout", validate.ValidatePositiveDuration(c.Server.ReadHeaderTimeout))
	add("server.shutdown_timeout", validate.ValidateDuration(c.Server.ShutdownTimeout, time.Second, 5*time.Minute))
	add("server.auth_rate_per_minute", validate.ValidateIntRange(c.Server.AuthRatePerMinute, 1, 10000))
	if c.Server.MaxBodyBytes <= 0 {
		add("server.max_body_bytes", errors.New("must be positive"))
	}

	add("auth.secret", validateSecret(c.Auth.SecretEnv, c.Auth.Secret))
	add("auth.token_ttl", validate.ValidateDuration(c.Auth.TokenTTL, time.Minute, 7*24*time.Hour))
	add("auth.bcrypt_cost", validate.ValidateIntRange(c.Auth.BcryptCost, 4, 31))

	if c.Mail.Enabled {
		if c.Mail.Host == "" {
			add("mail.host", errors.New("cannot be empty when mail is enabled"))
		}
		add("mail.port", validate.ValidateIntRange(c.Mail.Port, 1, 65535))
		add("mail.timeout", validate.ValidatePositiveDuration(c.Mail.Timeout))
	}
	if c.Mail.From == "" {
		add("mail.from", errors.New("cannot be empty"))
	}

	if c.Social.Enabled {
		add("social.endpoint", validate.ValidateHTTPURL(c.Social.Endpoint))
		add("social.token_url", validate.ValidateHTTPURL(c.Social.TokenURL))
		if c.Social.ClientID == "" {
			add("social.client_id", errors.New("cannot be empty when social publishing is enabled"))
		}
		if c.Social.ClientSecret == "" {
			add("social.client_secret", fmt.Errorf("environment variable %s is not set", c.Social.ClientSecretEnv))
		}
		add("social.rate_per_minute", validate.ValidateIntRange(c.Social.RatePerMinute, 1, 6000))
		add("social.max_retries", validate.ValidateIntRange(c.Social.MaxRetries, 0, 10))
		add("social.timeout", validate.ValidatePositiveDuration(c.Social.Timeout))
	}

	if c.Newsroom.Enabled {
		add("newsroom.webhook_url", validate.ValidateHTTPURL(c.Newsroom.WebhookURL))
		add("newsroom.timeout", validate.ValidatePositiveDuration(c.Newsroom.Timeout))
	}

	add("notify.workers", validate.ValidateIntRange(c.Notify.Workers, 1, 100))
	add("notify.event_timeout", validate.ValidateDuration(c.Notify.EventTimeout, time.Second, 10*time.Minute))
	add("notify.buffer_size", validate.ValidateIntRange(c.Notify.BufferSize, 0, 100000))
	add("notify.sweep", c.Notify.Sweep.Validate())
	// An event still in flight must not be re-published by the sweeper.
	if c.Notify.Sweep.Grace > 0 && c.Notify.Sweep.Grace <= c.Notify.EventTimeout {
		add("notify.sweep.grace", fmt.Errorf("must exceed notify.event_timeout (%s), got %s",
			c.Notify.EventTimeout, c.Notify.Sweep.Grace))
	}

	return errors.Join(errs...)
}

func validateSecret(envName, secret string) error {
	if secret == "" {
		return fmt.Errorf("environment variable %s must be set", envName)
	}
	if len(secret) < minSecretLength {
		return fmt.Errorf("must be at least %d characters", minSecretLength)
	}
	if strings.Count(secret, secret[:1]) == len(secret) {
		return errors.New("must not repeat a single character")
	}
	return nil
}

// UsesMemoryStore reports whether no database URL is configured.
func (c *Config) UsesMemoryStore() bool {
	return c.Database.URL == ""
}
