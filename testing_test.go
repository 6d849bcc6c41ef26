package reql

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pior/reql/ql2"
)

// testSession is the server side of one accepted connection, after the
// version handshake has been consumed.
type testSession struct {
	t    *testing.T
	conn net.Conn
	br   *bufio.Reader
}

// readQuery reads and parses the next query frame.
func (s *testSession) readQuery() (*ql2.Query, error) {
	payload, err := readFrame(s.br)
	if err != nil {
		return nil, err
	}
	return ql2.UnmarshalQuery(payload)
}

// mustReadQuery reads the next query or fails the test.
func (s *testSession) mustReadQuery() *ql2.Query {
	q, err := s.readQuery()
	require.NoError(s.t, err)
	return q
}

// send writes one response frame.
func (s *testSession) send(resp *ql2.Response) {
	payload, err := ql2.MarshalResponse(resp)
	require.NoError(s.t, err)
	require.NoError(s.t, writeFrame(s.conn, payload))
}

// startTestServer runs a scriptable in-process server. Each accepted
// connection has its version handshake verified, then is handed to handle on
// its own goroutine.
func startTestServer(t *testing.T, handle func(s *testSession)) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				var version [4]byte
				if _, err := io.ReadFull(conn, version[:]); err != nil {
					return
				}
				if binary.LittleEndian.Uint32(version[:]) != ql2.Version {
					return
				}
				handle(&testSession{t: t, conn: conn, br: bufio.NewReader(conn)})
			}()
		}
	}()

	return ln.Addr().String()
}

// testConnect dials the test server with short timeouts and quiet logging.
func testConnect(t *testing.T, addr string, mutate ...func(*Config)) *Connection {
	t.Helper()

	config := Config{
		Endpoints:      []string{addr},
		Timeout:        2 * time.Second,
		ConnectTimeout: 2 * time.Second,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, m := range mutate {
		m(&config)
	}

	conn, err := Connect(context.Background(), config)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// atomResponse builds a single-datum success response.
func atomResponse(token uint64, d *ql2.Datum) *ql2.Response {
	return &ql2.Response{Type: ql2.ResponseSuccessAtom, Token: token, Responses: []*ql2.Datum{d}}
}

func numberBatch(values ...float64) []*ql2.Datum {
	batch := make([]*ql2.Datum, len(values))
	for i, v := range values {
		batch[i] = ql2.Number(v)
	}
	return batch
}
