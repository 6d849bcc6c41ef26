package reql

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/reql/ql2"
)

func TestNewCircuitBreakerConfig(t *testing.T) {
	factory := NewCircuitBreakerConfig(1, time.Minute, time.Minute)
	breaker := factory()

	resp := &ql2.Response{Type: ql2.ResponseSuccessAtom, Token: 2}
	got, err := breaker.Execute(func() (*ql2.Response, error) {
		return resp, nil
	})
	require.NoError(t, err)
	assert.Same(t, resp, got)
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	factory := NewCircuitBreakerConfig(1, time.Minute, time.Minute)
	breaker := factory()

	boom := errors.New("dial failed")
	for i := 0; i < 5; i++ {
		_, _ = breaker.Execute(func() (*ql2.Response, error) {
			return nil, boom
		})
	}

	// Past the failure-ratio threshold the breaker rejects without calling
	// the submission at all.
	called := false
	_, err := breaker.Execute(func() (*ql2.Response, error) {
		called = true
		return nil, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, called)
}
