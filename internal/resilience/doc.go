// Package resilience groups the fault tolerance helpers used around outbound
// calls: circuit breakers (sony/gobreaker) for the SMTP relay, the social
// feed, the newsroom webhook and the database pool, and retry with
// exponential backoff and jitter.
//
//	cb := circuitbreaker.New(circuitbreaker.SocialConfig())
//	err := cb.Do(func() error {
//	    return retry.WithBackoff(ctx, retry.SocialConfig(), post)
//	})
package resilience
