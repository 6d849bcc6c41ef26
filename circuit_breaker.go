package reql

import (
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/pior/reql/ql2"
)

// CircuitBreaker wraps a submission. Implemented by
// gobreaker.CircuitBreaker[*ql2.Response].
type CircuitBreaker interface {
	Execute(func() (*ql2.Response, error)) (*ql2.Response, error)
}

// NewCircuitBreakerConfig returns a factory for Config.NewCircuitBreaker.
// This is a helper for common use cases.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func() CircuitBreaker {
	return func() CircuitBreaker {
		settings := gobreaker.Settings{
			Name:        "reql",
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		}
		return gobreaker.NewCircuitBreaker[*ql2.Response](settings)
	}
}
