package reql

import (
	"log/slog"
	"net"
	"time"

	"github.com/pior/reql/encoding"
	"github.com/pior/reql/ql2"
)

const (
	// DefaultTimeout is the per-request deadline applied when Config.Timeout
	// is zero.
	DefaultTimeout = 30 * time.Second

	// DefaultConnectTimeout bounds the whole endpoint walk in Connect.
	DefaultConnectTimeout = 30 * time.Second
)

// DatumDecoder maps a response datum onto a user value.
type DatumDecoder interface {
	Decode(d *ql2.Datum, out any) error
}

// Config holds configuration for a connection.
type Config struct {
	// Endpoints is the list of host:port candidates, tried in order.
	// Hostnames resolve to one or more addresses, each tried in returned
	// order. Required: must be non-empty.
	Endpoints []string

	// Database, when set, is applied to every START query as the default
	// database.
	Database string

	// Timeout is the per-request deadline, measured from the moment a
	// submission begins. Zero means DefaultTimeout.
	Timeout time.Duration

	// ConnectTimeout bounds Connect across all endpoint candidates.
	// Zero means DefaultConnectTimeout.
	ConnectTimeout time.Duration

	// Dialer is the net.Dialer used to open the TCP connection.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// Resolver resolves hostname endpoints. If nil, net.DefaultResolver.
	Resolver *net.Resolver

	// Logger receives connection-level events. If nil, slog.Default().
	Logger *slog.Logger

	// Decoder converts response datums to user values. Set before Connect;
	// the connection treats it as immutable afterwards. If nil, the default
	// mapstructure-based decoder is used.
	Decoder DatumDecoder

	// NewCircuitBreaker creates a circuit breaker wrapping every submission
	// on the connection. If nil, no circuit breaker is used.
	NewCircuitBreaker func() CircuitBreaker
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Dialer == nil {
		c.Dialer = &net.Dialer{}
	}
	if c.Resolver == nil {
		c.Resolver = net.DefaultResolver
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Decoder == nil {
		c.Decoder = &encoding.Decoder{}
	}
	return c
}
