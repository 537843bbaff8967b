// Package circuitbreaker wraps sony/gobreaker with the portal's presets.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// breakerState is 0 closed, 1 half-open, 2 open (gobreaker's ordering).
var breakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
	},
	[]string{"circuit"},
)

// Config holds the breaker settings.
type Config struct {
	Name string

	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state after which counts reset.
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration

	// FailureThreshold is the failure ratio (0-1) that trips the breaker.
	FailureThreshold float64

	// MinRequests is the request count required before the ratio is evaluated.
	MinRequests uint32
}

// SMTPConfig guards the mail relay. It tolerates short outages since
// undelivered approval emails are retried by the outbox sweeper.
func SMTPConfig() Config {
	return Config{
		Name:             "smtp",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          2 * time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      3,
	}
}

// SocialConfig guards the external social feed.
func SocialConfig() Config {
	return Config{
		Name:             "social-feed",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          5 * time.Minute,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// NewsroomConfig guards the newsroom Slack webhook.
func NewsroomConfig() Config {
	return Config{
		Name:             "newsroom-slack",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          5 * time.Minute,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// CircuitBreaker is a named gobreaker instance.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerState.WithLabelValues(name).Set(float64(to))
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}
	breakerState.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))
	return &CircuitBreaker{breaker: gobreaker.NewCircuitBreaker(settings), name: cfg.Name}
}

// Execute runs fn through the breaker. While open it returns
// gobreaker.ErrOpenState without calling fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// Do is Execute for calls without a result.
func (cb *CircuitBreaker) Do(fn func() error) error {
	_, err := cb.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
