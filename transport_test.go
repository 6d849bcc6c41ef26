package reql

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
)

// recordingConn is a write-only net.Conn capturing the outbound byte stream.
type recordingConn struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *recordingConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *recordingConn) bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.buf.Bytes()...)
}

func (c *recordingConn) Read(p []byte) (int, error)         { return 0, io.EOF }
func (c *recordingConn) Close() error                       { return nil }
func (c *recordingConn) LocalAddr() net.Addr                { return &net.TCPAddr{} }
func (c *recordingConn) RemoteAddr() net.Addr               { return &net.TCPAddr{} }
func (c *recordingConn) SetDeadline(t time.Time) error      { return nil }
func (c *recordingConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *recordingConn) SetWriteDeadline(t time.Time) error { return nil }

func TestWriteFrameLittleEndianPrefix(t *testing.T) {
	conn := &recordingConn{}
	require.NoError(t, writeFrame(conn, []byte("abc")))

	assert.Equal(t, []byte{0x03, 0x00, 0x00, 0x00, 'a', 'b', 'c'}, conn.bytes())
}

func TestReadFrame(t *testing.T) {
	stream := bytes.NewReader([]byte{0x03, 0x00, 0x00, 0x00, 'a', 'b', 'c'})

	payload, err := readFrame(stream)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), payload)

	// The stream is exhausted: the next read reports closure.
	_, err = readFrame(stream)
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestReadFrameShortPayload(t *testing.T) {
	stream := bytes.NewReader([]byte{0x0a, 0x00, 0x00, 0x00, 'a', 'b'})

	_, err := readFrame(stream)
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestReadFrameOversizedLength(t *testing.T) {
	stream := bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff})

	_, err := readFrame(stream)
	var perr *ProtocolError
	assert.ErrorAs(t, err, &perr)
}

func TestSendVersionLittleEndian(t *testing.T) {
	conn := &recordingConn{}
	require.NoError(t, sendVersion(context.Background(), conn, 0x3f61ba36))

	assert.Equal(t, []byte{0x36, 0xba, 0x61, 0x3f}, conn.bytes())
}

// TestSendFrameAtomicity drives many concurrent submitters through the write
// permit and verifies the recorded stream is a concatenation of whole
// frames: no length prefix interleaved with another frame's bytes.
func TestSendFrameAtomicity(t *testing.T) {
	const goroutines = 8
	const perGoroutine = 25

	conn := &recordingConn{}
	c := &Connection{
		conn:        conn,
		writePermit: semaphore.NewWeighted(1),
	}

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				payload := fmt.Appendf(nil, "frame-%d-%d", g, i)
				assert.NoError(t, c.sendFrame(context.Background(), payload))
			}
		}(g)
	}
	wg.Wait()

	stream := bytes.NewReader(conn.bytes())
	frames := map[string]bool{}
	for stream.Len() > 0 {
		payload, err := readFrame(stream)
		require.NoError(t, err)
		frames[string(payload)] = true
	}

	assert.Len(t, frames, goroutines*perGoroutine)
	for g := 0; g < goroutines; g++ {
		for i := 0; i < perGoroutine; i++ {
			assert.True(t, frames[fmt.Sprintf("frame-%d-%d", g, i)])
		}
	}
}

func TestSendFrameCancelledContext(t *testing.T) {
	c := &Connection{
		conn:        &recordingConn{},
		writePermit: semaphore.NewWeighted(1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.sendFrame(ctx, []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
