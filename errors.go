package reql

import (
	"errors"
	"fmt"

	"github.com/pior/reql/ql2"
)

var (
	// ErrConnectionClosed reports that the remote closed the connection or
	// that it was disposed locally while requests were pending.
	ErrConnectionClosed = errors.New("reql: connection closed")

	// ErrRequestTimeout reports that the per-request deadline elapsed before
	// a response arrived.
	ErrRequestTimeout = errors.New("reql: request timed out")

	// ErrConnectTimeout reports that the overall connect deadline elapsed
	// before any endpoint accepted.
	ErrConnectTimeout = errors.New("reql: connect deadline exceeded")

	// ErrNoConnectableAddress reports that every resolved endpoint failed.
	ErrNoConnectableAddress = errors.New("reql: no connectable address")

	// errDuplicateToken indicates a token was installed twice, which is a
	// bug in the token allocator or its caller.
	errDuplicateToken = errors.New("reql: token already pending")
)

// ClientQueryError is reported by the server when the client sent a
// malformed or unsupported query.
type ClientQueryError struct {
	Message   string
	Backtrace []ql2.Frame
}

func (e *ClientQueryError) Error() string {
	return "reql: client error: " + e.Message
}

// CompileError is reported by the server when the query tree failed to
// compile.
type CompileError struct {
	Message   string
	Backtrace []ql2.Frame
}

func (e *CompileError) Error() string {
	return "reql: compile error: " + e.Message
}

// RuntimeError is reported by the server when the query failed during
// execution.
type RuntimeError struct {
	Message   string
	Backtrace []ql2.Frame
}

func (e *RuntimeError) Error() string {
	return "reql: runtime error: " + e.Message
}

// ProtocolError reports a violation of the wire contract: an unknown
// response type, a malformed frame, or a response where none was legal.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return "reql: protocol: " + e.Message
}

// UnexpectedResponseError reports a success response whose batch size did
// not match what the operation required.
type UnexpectedResponseError struct {
	Type  ql2.ResponseType
	Count int
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("reql: unexpected response shape: %d results where one was required", e.Count)
}

// responseError maps a server error response to its typed error.
// The caller has already established resp.Type.IsError().
func responseError(resp *ql2.Response) error {
	msg := resp.ErrorMessage()
	switch resp.Type {
	case ql2.ResponseClientError:
		return &ClientQueryError{Message: msg, Backtrace: resp.Backtrace}
	case ql2.ResponseCompileError:
		return &CompileError{Message: msg, Backtrace: resp.Backtrace}
	default:
		return &RuntimeError{Message: msg, Backtrace: resp.Backtrace}
	}
}
