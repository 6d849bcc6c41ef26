package reql

import (
	"context"

	"github.com/google/uuid"

	"github.com/pior/reql/ql2"
)

// Run executes a query expected to produce a single value and decodes it
// into T. A SUCCESS_ATOM or single-batch SUCCESS_SEQUENCE with exactly one
// datum qualifies; anything else is an error.
func Run[T any](ctx context.Context, c *Connection, q Term) (T, error) {
	var zero T

	term, err := q.build()
	if err != nil {
		return zero, err
	}

	resp, _, err := c.startQuery(ctx, term)
	if err != nil {
		return zero, err
	}

	switch resp.Type {
	case ql2.ResponseSuccessAtom, ql2.ResponseSuccessSequence:
		if len(resp.Responses) != 1 {
			c.stats.recordError()
			return zero, &UnexpectedResponseError{Type: resp.Type, Count: len(resp.Responses)}
		}
		var out T
		if err := c.decoder.Decode(resp.Responses[0], &out); err != nil {
			return zero, err
		}
		return out, nil
	case ql2.ResponseClientError, ql2.ResponseCompileError, ql2.ResponseRuntimeError:
		c.stats.recordError()
		return zero, responseError(resp)
	default:
		c.stats.recordError()
		return zero, &ProtocolError{Message: "unexpected response type for a single-value query"}
	}
}

// WriteResult is the acknowledgement returned by insert, update, replace and
// delete queries.
type WriteResult struct {
	Inserted      uint64      `reql:"inserted"`
	Replaced      uint64      `reql:"replaced"`
	Unchanged     uint64      `reql:"unchanged"`
	Skipped       uint64      `reql:"skipped"`
	Deleted       uint64      `reql:"deleted"`
	Errors        uint64      `reql:"errors"`
	FirstError    string      `reql:"first_error"`
	GeneratedKeys []uuid.UUID `reql:"generated_keys"`
}

// RunWrite executes a write query and decodes its acknowledgement. On the
// wire this is an ordinary single-value query; only the result shape
// differs.
func (c *Connection) RunWrite(ctx context.Context, q Term) (WriteResult, error) {
	return Run[WriteResult](ctx, c, q)
}
