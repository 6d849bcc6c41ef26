package ql2

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// ParseError reports a malformed payload. A connection receiving one cannot
// trust its framing any further and should close.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "ql2: " + e.Message + ": " + e.Err.Error()
	}
	return "ql2: " + e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErrf(format string, args ...any) error {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

// fieldReader walks the top-level fields of one message payload.
type fieldReader struct {
	buf []byte
}

// next returns the number and type of the following field, or ok=false at
// the end of the payload.
func (r *fieldReader) next() (num protowire.Number, typ protowire.Type, ok bool, err error) {
	if len(r.buf) == 0 {
		return 0, 0, false, nil
	}
	num, typ, n := protowire.ConsumeTag(r.buf)
	if n < 0 {
		return 0, 0, false, &ParseError{Message: "malformed tag", Err: protowire.ParseError(n)}
	}
	r.buf = r.buf[n:]
	return num, typ, true, nil
}

func (r *fieldReader) varint() (uint64, error) {
	v, n := protowire.ConsumeVarint(r.buf)
	if n < 0 {
		return 0, &ParseError{Message: "malformed varint", Err: protowire.ParseError(n)}
	}
	r.buf = r.buf[n:]
	return v, nil
}

func (r *fieldReader) fixed64() (uint64, error) {
	v, n := protowire.ConsumeFixed64(r.buf)
	if n < 0 {
		return 0, &ParseError{Message: "malformed fixed64", Err: protowire.ParseError(n)}
	}
	r.buf = r.buf[n:]
	return v, nil
}

func (r *fieldReader) bytes() ([]byte, error) {
	v, n := protowire.ConsumeBytes(r.buf)
	if n < 0 {
		return nil, &ParseError{Message: "malformed length-delimited field", Err: protowire.ParseError(n)}
	}
	r.buf = r.buf[n:]
	return v, nil
}

func (r *fieldReader) skip(num protowire.Number, typ protowire.Type) error {
	n := protowire.ConsumeFieldValue(num, typ, r.buf)
	if n < 0 {
		return &ParseError{Message: "malformed field value", Err: protowire.ParseError(n)}
	}
	r.buf = r.buf[n:]
	return nil
}

// UnmarshalResponse parses a response payload. Unknown fields are skipped;
// structurally invalid input yields a ParseError.
func UnmarshalResponse(payload []byte) (*Response, error) {
	resp := &Response{}
	r := fieldReader{buf: payload}
	for {
		num, typ, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch num {
		case responseFieldType:
			v, err := r.varint()
			if err != nil {
				return nil, err
			}
			resp.Type = ResponseType(v)
		case responseFieldToken:
			v, err := r.varint()
			if err != nil {
				return nil, err
			}
			resp.Token = v
		case responseFieldResponses:
			raw, err := r.bytes()
			if err != nil {
				return nil, err
			}
			d, err := parseDatum(raw)
			if err != nil {
				return nil, err
			}
			resp.Responses = append(resp.Responses, d)
		case responseFieldBacktrace:
			raw, err := r.bytes()
			if err != nil {
				return nil, err
			}
			frames, err := parseBacktrace(raw)
			if err != nil {
				return nil, err
			}
			resp.Backtrace = frames
		default:
			if err := r.skip(num, typ); err != nil {
				return nil, err
			}
		}
	}
	if resp.Type == 0 {
		return nil, parseErrf("response missing type")
	}
	return resp, nil
}

func parseDatum(payload []byte) (*Datum, error) {
	d := &Datum{}
	r := fieldReader{buf: payload}
	for {
		num, typ, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch num {
		case datumFieldType:
			v, err := r.varint()
			if err != nil {
				return nil, err
			}
			d.Type = DatumType(v)
		case datumFieldBool:
			v, err := r.varint()
			if err != nil {
				return nil, err
			}
			d.Bool = protowire.DecodeBool(v)
		case datumFieldNum:
			v, err := r.fixed64()
			if err != nil {
				return nil, err
			}
			d.Num = math.Float64frombits(v)
		case datumFieldStr:
			raw, err := r.bytes()
			if err != nil {
				return nil, err
			}
			d.Str = string(raw)
		case datumFieldArray:
			raw, err := r.bytes()
			if err != nil {
				return nil, err
			}
			elem, err := parseDatum(raw)
			if err != nil {
				return nil, err
			}
			d.Array = append(d.Array, elem)
		case datumFieldObject:
			raw, err := r.bytes()
			if err != nil {
				return nil, err
			}
			pair, err := parseDatumPair(raw)
			if err != nil {
				return nil, err
			}
			d.Object = append(d.Object, pair)
		default:
			if err := r.skip(num, typ); err != nil {
				return nil, err
			}
		}
	}
	if d.Type == 0 {
		return nil, parseErrf("datum missing type")
	}
	return d, nil
}

func parseDatumPair(payload []byte) (DatumPair, error) {
	var p DatumPair
	r := fieldReader{buf: payload}
	for {
		num, typ, ok, err := r.next()
		if err != nil {
			return p, err
		}
		if !ok {
			break
		}
		switch num {
		case pairFieldKey:
			raw, err := r.bytes()
			if err != nil {
				return p, err
			}
			p.Key = string(raw)
		case pairFieldVal:
			raw, err := r.bytes()
			if err != nil {
				return p, err
			}
			d, err := parseDatum(raw)
			if err != nil {
				return p, err
			}
			p.Val = d
		default:
			if err := r.skip(num, typ); err != nil {
				return p, err
			}
		}
	}
	return p, nil
}

func parseBacktrace(payload []byte) ([]Frame, error) {
	var frames []Frame
	r := fieldReader{buf: payload}
	for {
		num, typ, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if num != backtraceFieldFrames {
			if err := r.skip(num, typ); err != nil {
				return nil, err
			}
			continue
		}
		raw, err := r.bytes()
		if err != nil {
			return nil, err
		}
		f, err := parseFrame(raw)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func parseFrame(payload []byte) (Frame, error) {
	var f Frame
	r := fieldReader{buf: payload}
	for {
		num, typ, ok, err := r.next()
		if err != nil {
			return f, err
		}
		if !ok {
			break
		}
		switch num {
		case frameFieldType:
			v, err := r.varint()
			if err != nil {
				return f, err
			}
			f.Type = FrameType(v)
		case frameFieldPos:
			v, err := r.varint()
			if err != nil {
				return f, err
			}
			f.Pos = int64(v)
		case frameFieldOpt:
			raw, err := r.bytes()
			if err != nil {
				return f, err
			}
			f.Opt = string(raw)
		default:
			if err := r.skip(num, typ); err != nil {
				return f, err
			}
		}
	}
	return f, nil
}

// UnmarshalQuery parses a query payload. It is the server half of the codec,
// used by tooling and in-process test servers.
func UnmarshalQuery(payload []byte) (*Query, error) {
	q := &Query{}
	r := fieldReader{buf: payload}
	for {
		num, typ, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch num {
		case queryFieldType:
			v, err := r.varint()
			if err != nil {
				return nil, err
			}
			q.Type = QueryType(v)
		case queryFieldTerm:
			raw, err := r.bytes()
			if err != nil {
				return nil, err
			}
			t, err := parseTerm(raw)
			if err != nil {
				return nil, err
			}
			q.Term = t
		case queryFieldToken:
			v, err := r.varint()
			if err != nil {
				return nil, err
			}
			q.Token = v
		case queryFieldGlobalOptArgs:
			raw, err := r.bytes()
			if err != nil {
				return nil, err
			}
			p, err := parseTermPair(raw)
			if err != nil {
				return nil, err
			}
			q.GlobalOptArgs = append(q.GlobalOptArgs, p)
		default:
			if err := r.skip(num, typ); err != nil {
				return nil, err
			}
		}
	}
	if q.Type == 0 {
		return nil, parseErrf("query missing type")
	}
	return q, nil
}

func parseTerm(payload []byte) (*Term, error) {
	t := &Term{}
	r := fieldReader{buf: payload}
	for {
		num, typ, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch num {
		case termFieldType:
			v, err := r.varint()
			if err != nil {
				return nil, err
			}
			t.Type = TermType(v)
		case termFieldDatum:
			raw, err := r.bytes()
			if err != nil {
				return nil, err
			}
			d, err := parseDatum(raw)
			if err != nil {
				return nil, err
			}
			t.Datum = d
		case termFieldArgs:
			raw, err := r.bytes()
			if err != nil {
				return nil, err
			}
			arg, err := parseTerm(raw)
			if err != nil {
				return nil, err
			}
			t.Args = append(t.Args, arg)
		case termFieldOptArgs:
			raw, err := r.bytes()
			if err != nil {
				return nil, err
			}
			p, err := parseTermPair(raw)
			if err != nil {
				return nil, err
			}
			t.OptArgs = append(t.OptArgs, p)
		default:
			if err := r.skip(num, typ); err != nil {
				return nil, err
			}
		}
	}
	if t.Type == 0 {
		return nil, parseErrf("term missing type")
	}
	return t, nil
}

func parseTermPair(payload []byte) (TermPair, error) {
	var p TermPair
	r := fieldReader{buf: payload}
	for {
		num, typ, ok, err := r.next()
		if err != nil {
			return p, err
		}
		if !ok {
			break
		}
		switch num {
		case pairFieldKey:
			raw, err := r.bytes()
			if err != nil {
				return p, err
			}
			p.Key = string(raw)
		case pairFieldVal:
			raw, err := r.bytes()
			if err != nil {
				return p, err
			}
			t, err := parseTerm(raw)
			if err != nil {
				return p, err
			}
			p.Val = t
		default:
			if err := r.skip(num, typ); err != nil {
				return p, err
			}
		}
	}
	return p, nil
}
