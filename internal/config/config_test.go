package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "no-reply@newsportal.com", cfg.Mail.From)
	assert.Equal(t, testSecret, cfg.Auth.Secret)
	assert.True(t, cfg.UsesMemoryStore())
	assert.False(t, cfg.Social.Enabled)
}

func TestLoad_FileThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORTAL_SOCIAL_SECRET", "s3cr3t")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("DB_MAX_OPEN_CONNS", "40")

	path := writeFile(t, `
server:
  addr: ":9090"
database:
  pool:
    max_open_conns: 12
    conn_max_lifetime: 2h
mail:
  enabled: true
  host: smtp.internal
  port: 25
social:
  enabled: true
  endpoint: https://social.example.com/api/posts
  token_url: https://social.example.com/oauth/token
  client_id: portal
  client_secret_env: PORTAL_SOCIAL_SECRET
notify:
  workers: 8
  event_timeout: 45s
  sweep:
    schedule: "@every 1m"
    timezone: UTC
    grace: 90s
    max_attempts: 3
    batch_size: 10
    run_timeout: 20s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2525, cfg.Mail.Port, "env overrides file")
	assert.Equal(t, 40, cfg.Database.Pool.MaxOpenConns)
	assert.Equal(t, 2*time.Hour, cfg.Database.Pool.ConnMaxLifetime)
	assert.Equal(t, 10, cfg.Database.Pool.MaxIdleConns, "defaults survive partial pool section")
	assert.Equal(t, "s3cr3t", cfg.Social.ClientSecret)
	assert.Equal(t, 8, cfg.Notify.Workers)
	assert.Equal(t, 45*time.Second, cfg.Notify.EventTimeout)
	assert.Equal(t, "@every 1m", cfg.Notify.Sweep.Schedule)
	assert.Equal(t, 90*time.Second, cfg.Notify.Sweep.Grace)
}

func TestLoad_SecretIsNeverReadFromFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "")

	path := writeFile(t, "auth:\n  secret: "+testSecret+"\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be set")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", testSecret)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config file")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET="+testSecret+"\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("JWT_SECRET") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.Auth.Secret)
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := Default()
	cfg.Auth.Secret = "short"
	cfg.Notify.Workers = 0
	cfg.Social.Enabled = true
	cfg.Newsroom.Enabled = true

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, field := range []string{
		"auth.secret", "notify.workers", "social.endpoint", "social.token_url",
		"social.client_id", "social.client_secret", "newsroom.webhook_url",
	} {
		assert.True(t, strings.Contains(msg, field), "missing %s in %q", field, msg)
	}
}

func TestValidate_SecretRules(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{"ok", testSecret, false},
		{"empty", "", true},
		{"too short", "abc", true},
		{"single character", strings.Repeat("a", 40), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSecret("JWT_SECRET", tt.secret)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidate_MailOnlyCheckedWhenEnabled(t *testing.T) {
	cfg := Default()
	cfg.Auth.Secret = testSecret
	cfg.Mail.Host = ""
	require.NoError(t, cfg.Validate())

	cfg.Mail.Enabled = true
	assert.ErrorContains(t, cfg.Validate(), "mail.host")
}

// スイープの猶予は配信タイムアウトより長くなければならない
func TestValidate_SweepGraceExceedsEventTimeout(t *testing.T) {
	tests := []struct {
		name    string
		grace   time.Duration
		wantErr bool
	}{
		{"longer", 31 * time.Second, false},
		{"equal", 30 * time.Second, true},
		{"shorter", 10 * time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Auth.Secret = testSecret
			cfg.Notify.EventTimeout = 30 * time.Second
			cfg.Notify.Sweep.Grace = tt.grace

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorContains(t, err, "notify.sweep.grace")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoad_RejectsGraceShorterThanEventTimeout(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("NOTIFY_EVENT_TIMEOUT", "5m")
	t.Setenv("OUTBOX_SWEEP_GRACE", "2m")

	_, err := Load(writeFile(t, "server:\n  addr: \":8080\"\n"))
	assert.ErrorContains(t, err, "must exceed notify.event_timeout")
}
