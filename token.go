package reql

import "sync/atomic"

// tokenSource hands out request tokens for one connection. Tokens are
// strictly increasing so a response can never be mistaken for an earlier
// request's.
type tokenSource struct {
	last atomic.Uint64
}

func newTokenSource() *tokenSource {
	ts := &tokenSource{}
	ts.last.Store(1)
	return ts
}

// Next returns the next token. The counter increments before returning, so
// the first token issued is 2.
func (ts *tokenSource) Next() uint64 {
	return ts.last.Add(1)
}
