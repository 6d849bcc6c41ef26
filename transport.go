package reql

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/dolmen-go/contextio"
)

const frameHeaderSize = 4

// maxFrameSize bounds inbound frames. A length prefix beyond it means the
// stream is out of sync and cannot be recovered.
const maxFrameSize = 64 << 20

// readFrame reads one length-prefixed message: a 4-byte little-endian length
// followed by that many payload bytes. Byte order is fixed regardless of the
// host's.
func readFrame(r io.Reader) ([]byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, closedError(err)
	}
	length := binary.LittleEndian.Uint32(header[:])
	if length > maxFrameSize {
		return nil, &ProtocolError{Message: fmt.Sprintf("frame length %d exceeds limit", length)}
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, closedError(err)
	}
	return payload, nil
}

// writeFrame writes one length-prefixed message. The caller must hold the
// connection's write permit so the header and payload land adjacently.
// The writes are deliberately not cancelable: once a frame has started, it
// must land whole, or the stream carries a dangling prefix no reader can
// recover from.
func writeFrame(conn net.Conn, payload []byte) error {
	var header [frameHeaderSize]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := conn.Write(header[:]); err != nil {
		return closedError(err)
	}
	if _, err := conn.Write(payload); err != nil {
		return closedError(err)
	}
	return nil
}

// sendVersion writes the protocol version sentinel. It is the only message
// sent without a length prefix.
func sendVersion(ctx context.Context, conn net.Conn, version uint32) error {
	w := contextio.NewWriter(ctx, conn)
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], version)
	if _, err := w.Write(buf[:]); err != nil {
		return closedError(err)
	}
	return nil
}

// closedError maps end-of-stream and closed-socket conditions to
// ErrConnectionClosed, keeping the cause in the chain. Context errors pass
// through so cancellation is distinguishable from peer closure.
func closedError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrConnectionClosed, err)
}
