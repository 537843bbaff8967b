package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSweeperConfig_IsValid(t *testing.T) {
	require.NoError(t, DefaultSweeperConfig().Validate())
}

func TestSweeperConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *SweeperConfig)
		wantErr string
	}{
		{"bad schedule", func(c *SweeperConfig) { c.Schedule = "every minute" }, "schedule"},
		{"empty timezone", func(c *SweeperConfig) { c.Timezone = "" }, "timezone"},
		{"zero grace", func(c *SweeperConfig) { c.Grace = 0 }, "grace"},
		{"zero attempts", func(c *SweeperConfig) { c.MaxAttempts = 0 }, "max_attempts"},
		{"huge batch", func(c *SweeperConfig) { c.BatchSize = 1_000_000 }, "batch_size"},
		{"short run timeout", func(c *SweeperConfig) { c.RunTimeout = time.Millisecond }, "run_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSweeperConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSweeperConfig_Validate_AggregatesErrors(t *testing.T) {
	cfg := SweeperConfig{}
	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"schedule", "timezone", "grace", "max_attempts", "batch_size", "run_timeout"} {
		assert.Contains(t, err.Error(), field)
	}
}
