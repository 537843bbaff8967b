package worker

import (
	"errors"
	"fmt"
	"time"

	"newsportal/internal/pkg/config"
)

// SweeperConfig controls the outbox sweeper that re-publishes approval
// events whose notification was never marked delivered.
type SweeperConfig struct {
	// Schedule is a five-field cron expression or a descriptor ("@every 1m").
	Schedule string `yaml:"schedule"`

	// Timezone is the IANA zone the schedule is evaluated in.
	Timezone string `yaml:"timezone"`

	// Grace is how old an undelivered event must be before it is re-published,
	// so events still in flight on the bus are left alone.
	Grace time.Duration `yaml:"grace"`

	// MaxAttempts stops re-publishing an event after this many failed deliveries.
	MaxAttempts int `yaml:"max_attempts"`

	// BatchSize bounds the events re-published by a single run.
	BatchSize int `yaml:"batch_size"`

	// RunTimeout bounds a single sweep run.
	RunTimeout time.Duration `yaml:"run_timeout"`
}

// DefaultSweeperConfig returns the defaults used when nothing is configured.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Schedule:    "*/5 * * * *",
		Timezone:    "UTC",
		Grace:       2 * time.Minute,
		MaxAttempts: 5,
		BatchSize:   100,
		RunTimeout:  time.Minute,
	}
}

// Validate returns every invalid field joined into one error.
func (c SweeperConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.Grace); err != nil {
		errs = append(errs, fmt.Errorf("grace: %w", err))
	}
	if err := config.ValidateIntRange(c.MaxAttempts, 1, 100); err != nil {
		errs = append(errs, fmt.Errorf("max_attempts: %w", err))
	}
	if err := config.ValidateIntRange(c.BatchSize, 1, 10000); err != nil {
		errs = append(errs, fmt.Errorf("batch_size: %w", err))
	}
	if err := config.ValidateDuration(c.RunTimeout, time.Second, time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("run_timeout: %w", err))
	}

	return errors.Join(errs...)
}
