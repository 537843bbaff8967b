package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("burst is served immediately", func(t *testing.T) {
		limiter := NewRateLimiter(1.0, 3)
		start := time.Now()
		for i := 0; i < 3; i++ {
			assert.NoError(t, limiter.Allow(context.Background()))
		}
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("exhausted bucket honours context deadline", func(t *testing.T) {
		limiter := NewRateLimiter(1.0, 1)
		assert.NoError(t, limiter.Allow(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		assert.Error(t, limiter.Allow(ctx))
	})

	t.Run("canceled context", func(t *testing.T) {
		limiter := NewRateLimiter(0.01, 1)
		assert.NoError(t, limiter.Allow(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, limiter.Allow(ctx))
	})
}
