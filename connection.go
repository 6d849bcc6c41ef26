package reql

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/pior/reql/ql2"
)

// Connection is a single multiplexed connection to a server. Any number of
// goroutines may submit queries concurrently; responses are correlated by
// token, so they need not arrive in submission order.
type Connection struct {
	conn     net.Conn
	id       uuid.UUID
	logger   *slog.Logger
	decoder  DatumDecoder
	breaker  CircuitBreaker
	timeout  time.Duration
	database string

	tokens  *tokenSource
	pending pendingTable

	// writePermit serializes frame writes. It is held only across the two
	// writes of one frame, never across a read.
	writePermit *semaphore.Weighted

	closed     atomic.Bool
	readerDone chan struct{}

	stats *connStatsCollector
}

// Connect opens a connection to the first reachable endpoint. Hostname
// endpoints are resolved and every returned address is tried in order. The
// whole walk is bounded by Config.ConnectTimeout.
func Connect(ctx context.Context, config Config) (*Connection, error) {
	config = config.withDefaults()
	if len(config.Endpoints) == 0 {
		return nil, fmt.Errorf("reql: no endpoints provided")
	}

	ctx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()

	var lastErr error
	for _, endpoint := range config.Endpoints {
		addrs, err := resolveEndpoint(ctx, config.Resolver, endpoint)
		if err != nil {
			lastErr = err
			continue
		}
		for _, addr := range addrs {
			conn, err := config.Dialer.DialContext(ctx, "tcp", addr)
			if err != nil {
				lastErr = err
				continue
			}
			if err := sendVersion(ctx, conn, ql2.Version); err != nil {
				conn.Close()
				lastErr = err
				continue
			}
			return newConnection(conn, config), nil
		}
	}

	if err := ctx.Err(); err != nil {
		// An explicit cancel by the caller is not a connect timeout.
		if !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrConnectTimeout, lastErr)
		}
		return nil, ErrConnectTimeout
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: last attempt: %v", ErrNoConnectableAddress, lastErr)
	}
	return nil, ErrNoConnectableAddress
}

// resolveEndpoint expands one host:port entry into dialable addresses.
// IP literals pass through; hostnames resolve to every returned address.
func resolveEndpoint(ctx context.Context, resolver *net.Resolver, endpoint string) ([]string, error) {
	host, port, err := net.SplitHostPort(endpoint)
	if err != nil {
		return nil, fmt.Errorf("reql: invalid endpoint %q: %w", endpoint, err)
	}
	if ip := net.ParseIP(host); ip != nil {
		return []string{endpoint}, nil
	}
	hosts, err := resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("reql: resolving %q: %w", host, err)
	}
	addrs := make([]string, len(hosts))
	for i, h := range hosts {
		addrs[i] = net.JoinHostPort(h, port)
	}
	return addrs, nil
}

func newConnection(conn net.Conn, config Config) *Connection {
	c := &Connection{
		conn:        conn,
		id:          uuid.New(),
		logger:      config.Logger,
		decoder:     config.Decoder,
		timeout:     config.Timeout,
		database:    config.Database,
		tokens:      newTokenSource(),
		writePermit: semaphore.NewWeighted(1),
		readerDone:  make(chan struct{}),
		stats:       newConnStatsCollector(),
	}
	if config.NewCircuitBreaker != nil {
		c.breaker = config.NewCircuitBreaker()
	}
	go c.readLoop()
	return c
}

// Close shuts the connection down. The reader goroutine observes the closed
// socket, completes every pending submission with ErrConnectionClosed, and
// is joined before Close returns. Safe to call multiple times.
func (c *Connection) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		if err := c.conn.Close(); err != nil {
			c.logger.Debug("ignoring socket close error", "conn", c.id, "error", err)
		}
	}
	<-c.readerDone
	return nil
}

// Stats returns a snapshot of connection statistics.
func (c *Connection) Stats() ConnStats {
	return c.stats.snapshot()
}

// readLoop owns the read half for the life of the connection: it reads one
// frame at a time, parses it, and hands the response to the pending slot
// registered under its token.
func (c *Connection) readLoop() {
	defer close(c.readerDone)

	reader := bufio.NewReader(c.conn)
	for {
		payload, err := readFrame(reader)
		if err != nil {
			if !c.closed.Load() {
				c.logger.Debug("reader terminated", "conn", c.id, "error", err)
			}
			break
		}
		resp, err := ql2.UnmarshalResponse(payload)
		if err != nil {
			c.logger.Warn("malformed response frame", "conn", c.id, "error", err)
			break
		}
		slot, ok := c.pending.take(resp.Token)
		if !ok {
			// The submitter timed out or was cancelled after the query hit
			// the wire. The server answered anyway; drop it.
			c.stats.recordOrphan()
			c.logger.Debug("dropping response for unknown token", "conn", c.id, "token", resp.Token)
			continue
		}
		slot.deliver(resp, nil)
	}

	if c.closed.CompareAndSwap(false, true) {
		_ = c.conn.Close()
	}
	for _, slot := range c.pending.drain() {
		slot.deliver(nil, ErrConnectionClosed)
	}
}

// startQuery submits a START for the given term and returns the first
// response along with the token, which a cursor reuses for CONTINUE.
func (c *Connection) startQuery(ctx context.Context, term *ql2.Term) (*ql2.Response, uint64, error) {
	token := c.tokens.Next()
	q := &ql2.Query{Type: ql2.QueryStart, Token: token, Term: term}
	if c.database != "" {
		q.GlobalOptArgs = []ql2.TermPair{{
			Key: "db",
			Val: &ql2.Term{Type: ql2.TermDB, Args: []*ql2.Term{ql2.DatumTerm(ql2.String(c.database))}},
		}}
	}
	resp, err := c.exec(ctx, q)
	return resp, token, err
}

// continueQuery requests the next batch for a streaming query. The term is
// sent only on START; CONTINUE references the query by token alone.
func (c *Connection) continueQuery(ctx context.Context, token uint64) (*ql2.Response, error) {
	return c.exec(ctx, &ql2.Query{Type: ql2.QueryContinue, Token: token})
}

// stopQuery tells the server to abandon a streaming query.
func (c *Connection) stopQuery(ctx context.Context, token uint64) (*ql2.Response, error) {
	return c.exec(ctx, &ql2.Query{Type: ql2.QueryStop, Token: token})
}

func (c *Connection) exec(ctx context.Context, q *ql2.Query) (*ql2.Response, error) {
	c.stats.recordQuery(q.Type)

	var resp *ql2.Response
	var err error
	if c.breaker != nil {
		resp, err = c.breaker.Execute(func() (*ql2.Response, error) {
			return c.submit(ctx, q)
		})
	} else {
		resp, err = c.submit(ctx, q)
	}
	if err != nil {
		c.stats.recordError()
		return nil, err
	}
	return resp, nil
}

// submit performs one request-response cycle: install a pending slot, write
// the frame, and wait for the reader to deliver the response, bounded by the
// per-request timeout and the caller's context.
func (c *Connection) submit(ctx context.Context, q *ql2.Query) (*ql2.Response, error) {
	if c.closed.Load() {
		return nil, ErrConnectionClosed
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	payload, err := ql2.MarshalQuery(q)
	if err != nil {
		return nil, err
	}

	slot := newPendingSlot()
	if err := c.pending.install(q.Token, slot); err != nil {
		return nil, err
	}

	if err := c.sendFrame(ctx, payload); err != nil {
		c.pending.take(q.Token)
		return nil, err
	}

	select {
	case res := <-slot.done:
		return res.resp, res.err
	case <-ctx.Done():
		return c.abandon(q.Token, slot, ctx.Err())
	case <-timer.C:
		c.stats.recordTimeout()
		return c.abandon(q.Token, slot, ErrRequestTimeout)
	}
}

// abandon resolves the race between a cancelled submitter and the reader.
// If the slot is still registered, no response arrived and cause wins; any
// later response for the token is dropped as an orphan. If the reader
// already took the slot, its delivery is committed and is accepted even
// though the deadline fired.
func (c *Connection) abandon(token uint64, slot *pendingSlot, cause error) (*ql2.Response, error) {
	if _, ok := c.pending.take(token); ok {
		return nil, cause
	}
	res := <-slot.done
	return res.resp, res.err
}

// sendFrame writes one whole frame under the write permit, so concurrent
// submitters never interleave a length prefix with another frame's bytes.
// The context applies only to acquiring the permit; the two writes of the
// frame itself run to completion so the permit is never released with a
// frame partially on the wire.
func (c *Connection) sendFrame(ctx context.Context, payload []byte) error {
	if err := c.writePermit.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.writePermit.Release(1)
	return writeFrame(c.conn, payload)
}
