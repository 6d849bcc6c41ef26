package ql2

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the protocol schema. Submessage fields carry their own
// namespaces, so numbers repeat across messages.
const (
	queryFieldType          = 1
	queryFieldTerm          = 2
	queryFieldToken         = 3
	queryFieldGlobalOptArgs = 6

	termFieldType    = 1
	termFieldDatum   = 2
	termFieldArgs    = 3
	termFieldOptArgs = 4

	datumFieldType   = 1
	datumFieldBool   = 2
	datumFieldNum    = 3
	datumFieldStr    = 4
	datumFieldArray  = 5
	datumFieldObject = 6

	pairFieldKey = 1
	pairFieldVal = 2

	responseFieldType      = 1
	responseFieldToken     = 2
	responseFieldResponses = 3
	responseFieldBacktrace = 4

	backtraceFieldFrames = 1

	frameFieldType = 1
	frameFieldPos  = 2
	frameFieldOpt  = 3
)

// MarshalQuery serializes a query to the protocol buffer wire format.
func MarshalQuery(q *Query) ([]byte, error) {
	b := make([]byte, 0, 128)
	b = protowire.AppendTag(b, queryFieldType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(q.Type))
	if q.Term != nil {
		b = protowire.AppendTag(b, queryFieldTerm, protowire.BytesType)
		b = protowire.AppendBytes(b, appendTerm(nil, q.Term))
	}
	b = protowire.AppendTag(b, queryFieldToken, protowire.VarintType)
	b = protowire.AppendVarint(b, q.Token)
	for _, p := range q.GlobalOptArgs {
		b = protowire.AppendTag(b, queryFieldGlobalOptArgs, protowire.BytesType)
		b = protowire.AppendBytes(b, appendTermPair(nil, p))
	}
	return b, nil
}

func appendTerm(b []byte, t *Term) []byte {
	b = protowire.AppendTag(b, termFieldType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.Type))
	if t.Datum != nil {
		b = protowire.AppendTag(b, termFieldDatum, protowire.BytesType)
		b = protowire.AppendBytes(b, appendDatum(nil, t.Datum))
	}
	for _, arg := range t.Args {
		b = protowire.AppendTag(b, termFieldArgs, protowire.BytesType)
		b = protowire.AppendBytes(b, appendTerm(nil, arg))
	}
	for _, p := range t.OptArgs {
		b = protowire.AppendTag(b, termFieldOptArgs, protowire.BytesType)
		b = protowire.AppendBytes(b, appendTermPair(nil, p))
	}
	return b
}

func appendTermPair(b []byte, p TermPair) []byte {
	b = protowire.AppendTag(b, pairFieldKey, protowire.BytesType)
	b = protowire.AppendString(b, p.Key)
	if p.Val != nil {
		b = protowire.AppendTag(b, pairFieldVal, protowire.BytesType)
		b = protowire.AppendBytes(b, appendTerm(nil, p.Val))
	}
	return b
}

func appendDatum(b []byte, d *Datum) []byte {
	b = protowire.AppendTag(b, datumFieldType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(d.Type))
	switch d.Type {
	case DatumBool:
		b = protowire.AppendTag(b, datumFieldBool, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(d.Bool))
	case DatumNumber:
		b = protowire.AppendTag(b, datumFieldNum, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(d.Num))
	case DatumString:
		b = protowire.AppendTag(b, datumFieldStr, protowire.BytesType)
		b = protowire.AppendString(b, d.Str)
	case DatumArray:
		for _, elem := range d.Array {
			b = protowire.AppendTag(b, datumFieldArray, protowire.BytesType)
			b = protowire.AppendBytes(b, appendDatum(nil, elem))
		}
	case DatumObject:
		for _, p := range d.Object {
			b = protowire.AppendTag(b, datumFieldObject, protowire.BytesType)
			b = protowire.AppendBytes(b, appendDatumPair(nil, p))
		}
	}
	return b
}

func appendDatumPair(b []byte, p DatumPair) []byte {
	b = protowire.AppendTag(b, pairFieldKey, protowire.BytesType)
	b = protowire.AppendString(b, p.Key)
	if p.Val != nil {
		b = protowire.AppendTag(b, pairFieldVal, protowire.BytesType)
		b = protowire.AppendBytes(b, appendDatum(nil, p.Val))
	}
	return b
}

// MarshalResponse serializes a response. It is the server half of the codec,
// used by tooling and in-process test servers.
func MarshalResponse(r *Response) ([]byte, error) {
	b := make([]byte, 0, 128)
	b = protowire.AppendTag(b, responseFieldType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.Type))
	b = protowire.AppendTag(b, responseFieldToken, protowire.VarintType)
	b = protowire.AppendVarint(b, r.Token)
	for _, d := range r.Responses {
		b = protowire.AppendTag(b, responseFieldResponses, protowire.BytesType)
		b = protowire.AppendBytes(b, appendDatum(nil, d))
	}
	if len(r.Backtrace) > 0 {
		var bt []byte
		for _, f := range r.Backtrace {
			bt = protowire.AppendTag(bt, backtraceFieldFrames, protowire.BytesType)
			bt = protowire.AppendBytes(bt, appendFrame(nil, f))
		}
		b = protowire.AppendTag(b, responseFieldBacktrace, protowire.BytesType)
		b = protowire.AppendBytes(b, bt)
	}
	return b, nil
}

func appendFrame(b []byte, f Frame) []byte {
	b = protowire.AppendTag(b, frameFieldType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(f.Type))
	switch f.Type {
	case FramePos:
		b = protowire.AppendTag(b, frameFieldPos, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(f.Pos))
	case FrameOpt:
		b = protowire.AppendTag(b, frameFieldOpt, protowire.BytesType)
		b = protowire.AppendString(b, f.Opt)
	}
	return b
}
