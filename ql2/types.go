package ql2

// Datum is the tagged-union value carried inside responses and inside query
// terms of type TermDatum. Only the arm selected by Type is meaningful.
type Datum struct {
	Type   DatumType
	Bool   bool
	Num    float64
	Str    string
	Array  []*Datum
	Object []DatumPair
}

// DatumPair is one key/value entry of an object datum. Object entries keep
// their wire order.
type DatumPair struct {
	Key string
	Val *Datum
}

// Null returns the null datum.
func Null() *Datum {
	return &Datum{Type: DatumNull}
}

// Bool returns a boolean datum.
func Bool(v bool) *Datum {
	return &Datum{Type: DatumBool, Bool: v}
}

// Number returns a numeric datum.
func Number(v float64) *Datum {
	return &Datum{Type: DatumNumber, Num: v}
}

// String returns a string datum.
func String(v string) *Datum {
	return &Datum{Type: DatumString, Str: v}
}

// Array returns an array datum over the given elements.
func Array(elems ...*Datum) *Datum {
	return &Datum{Type: DatumArray, Array: elems}
}

// Object returns an object datum over the given pairs.
func Object(pairs ...DatumPair) *Datum {
	return &Datum{Type: DatumObject, Object: pairs}
}

// Field returns the value for key in an object datum, or false if d is not
// an object or has no such key.
func (d *Datum) Field(key string) (*Datum, bool) {
	if d == nil || d.Type != DatumObject {
		return nil, false
	}
	for _, p := range d.Object {
		if p.Key == key {
			return p.Val, true
		}
	}
	return nil, false
}

// Term is one node of a query tree. A TermDatum node carries a Datum and no
// arguments; every other type carries positional Args and named OptArgs.
type Term struct {
	Type    TermType
	Datum   *Datum
	Args    []*Term
	OptArgs []TermPair
}

// TermPair is one named optional argument of a term.
type TermPair struct {
	Key string
	Val *Term
}

// DatumTerm wraps a datum as a query tree leaf.
func DatumTerm(d *Datum) *Term {
	return &Term{Type: TermDatum, Datum: d}
}

// Query is an outbound command. Term is present only for QueryStart;
// CONTINUE and STOP reference an earlier query by token alone.
type Query struct {
	Type          QueryType
	Term          *Term
	Token         uint64
	GlobalOptArgs []TermPair
}

// Response is an inbound server reply. Responses holds the result batch:
// exactly one datum for an atom, zero or more for a sequence batch, and the
// error message datum for error types.
type Response struct {
	Type      ResponseType
	Token     uint64
	Responses []*Datum
	Backtrace []Frame
}

// Frame is one step of a server backtrace, locating a positional or named
// argument within the query tree.
type Frame struct {
	Type FrameType
	Pos  int64
	Opt  string
}

// ErrorMessage extracts the message string carried by an error response.
// Returns the empty string if the response carries none.
func (r *Response) ErrorMessage() string {
	if len(r.Responses) == 0 || r.Responses[0] == nil {
		return ""
	}
	if r.Responses[0].Type != DatumString {
		return ""
	}
	return r.Responses[0].Str
}
