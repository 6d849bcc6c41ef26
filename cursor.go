package reql

import (
	"context"

	"github.com/pior/reql/ql2"
)

type cursorState int

const (
	cursorFresh cursorState = iota
	cursorStreaming
	cursorExhausted
	cursorFailed
	cursorClosed
)

// Cursor is a forward-only iterator over a server-side sequence. Batches are
// fetched lazily: the START goes out on the first Next, and CONTINUE frames
// (reusing the original token) fetch further batches as each one drains.
//
// A cursor is single-consumer; concurrent Next calls are not supported.
//
//	cur := reql.RunCursor[Doc](conn, query)
//	for cur.Next(ctx) {
//	    use(cur.Current())
//	}
//	if err := cur.Err(); err != nil {
//	    return err
//	}
type Cursor[T any] struct {
	conn  *Connection
	term  *ql2.Term
	token uint64

	batch     []*ql2.Datum
	batchType ql2.ResponseType
	index     int

	state   cursorState
	current T
	valid   bool
	err     error
}

// RunCursor builds a cursor for a sequence query. No I/O happens until the
// first Next.
func RunCursor[T any](c *Connection, q Term) *Cursor[T] {
	cur := &Cursor[T]{conn: c}
	cur.term, cur.err = q.build()
	if cur.err != nil {
		cur.state = cursorFailed
	}
	return cur
}

// Next advances the cursor, fetching the next batch from the server when the
// current one is drained. It returns false when the sequence is exhausted or
// an error occurred; check Err to tell the two apart.
func (cur *Cursor[T]) Next(ctx context.Context) bool {
	switch cur.state {
	case cursorExhausted, cursorFailed, cursorClosed:
		return false
	case cursorFresh:
		resp, token, err := cur.conn.startQuery(ctx, cur.term)
		if err != nil {
			return cur.fail(err)
		}
		cur.token = token
		if !cur.loadBatch(resp) {
			return false
		}
		cur.state = cursorStreaming
	}

	for {
		if cur.index < len(cur.batch) {
			var out T
			if err := cur.conn.decoder.Decode(cur.batch[cur.index], &out); err != nil {
				return cur.fail(err)
			}
			cur.current = out
			cur.valid = true
			cur.index++
			return true
		}
		if cur.batchType != ql2.ResponseSuccessPartial {
			cur.state = cursorExhausted
			return false
		}
		resp, err := cur.conn.continueQuery(ctx, cur.token)
		if err != nil {
			return cur.fail(err)
		}
		if !cur.loadBatch(resp) {
			return false
		}
	}
}

// loadBatch installs a response as the current batch. An atom carrying an
// array is flattened into its elements so callers iterate uniformly.
func (cur *Cursor[T]) loadBatch(resp *ql2.Response) bool {
	switch resp.Type {
	case ql2.ResponseSuccessPartial, ql2.ResponseSuccessSequence:
		cur.batch = resp.Responses
		cur.batchType = resp.Type
	case ql2.ResponseSuccessAtom:
		if len(resp.Responses) == 1 && resp.Responses[0].Type == ql2.DatumArray {
			cur.batch = resp.Responses[0].Array
		} else {
			cur.batch = resp.Responses
		}
		cur.batchType = ql2.ResponseSuccessSequence
	case ql2.ResponseClientError, ql2.ResponseCompileError, ql2.ResponseRuntimeError:
		cur.conn.stats.recordError()
		return cur.fail(responseError(resp))
	default:
		cur.conn.stats.recordError()
		return cur.fail(&ProtocolError{Message: "unexpected response type for a cursor batch"})
	}
	cur.index = 0
	return true
}

func (cur *Cursor[T]) fail(err error) bool {
	cur.state = cursorFailed
	cur.err = err
	return false
}

// Current returns the value produced by the last successful Next. Calling it
// before the first successful advance is a programmer error.
func (cur *Cursor[T]) Current() T {
	if !cur.valid {
		panic("reql: Cursor.Current called before a successful Next")
	}
	return cur.current
}

// Err returns the error that stopped iteration, or nil after a clean
// exhaustion.
func (cur *Cursor[T]) Err() error {
	return cur.err
}

// Close releases the cursor. If the server still holds an open stream, a
// best-effort STOP is sent so it can drop the query context; failures to do
// so are ignored. Closing an exhausted or failed cursor is a no-op.
func (cur *Cursor[T]) Close(ctx context.Context) error {
	if cur.state == cursorStreaming && cur.batchType == ql2.ResponseSuccessPartial {
		_, _ = cur.conn.stopQuery(ctx, cur.token)
	}
	cur.state = cursorClosed
	return nil
}
