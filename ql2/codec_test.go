package ql2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden bytes keep the codec honest against the schema's field numbers:
// a decoder change that round-trips but shifts the wire layout still fails.

func TestMarshalQueryGolden(t *testing.T) {
	q := &Query{
		Type:  QueryStart,
		Token: 2,
		Term:  DatumTerm(Number(42)),
	}

	payload, err := MarshalQuery(q)
	require.NoError(t, err)

	want := []byte{
		0x08, 0x01, // type = START
		0x12, 0x0f, // term, 15 bytes
		0x08, 0x01, // term type = DATUM
		0x12, 0x0b, // datum, 11 bytes
		0x08, 0x03, // datum type = NUMBER
		0x19, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x45, 0x40, // 42.0
		0x18, 0x02, // token = 2
	}
	assert.Equal(t, want, payload)
}

func TestUnmarshalResponseGolden(t *testing.T) {
	payload := []byte{
		0x08, 0x01, // type = SUCCESS_ATOM
		0x10, 0x02, // token = 2
		0x1a, 0x0b, // response datum, 11 bytes
		0x08, 0x03,
		0x19, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x45, 0x40,
	}

	resp, err := UnmarshalResponse(payload)
	require.NoError(t, err)

	assert.Equal(t, ResponseSuccessAtom, resp.Type)
	assert.Equal(t, uint64(2), resp.Token)
	require.Len(t, resp.Responses, 1)
	assert.Equal(t, DatumNumber, resp.Responses[0].Type)
	assert.Equal(t, 42.0, resp.Responses[0].Num)
}

func TestQueryRoundTrip(t *testing.T) {
	q := &Query{
		Type:  QueryStart,
		Token: 7,
		Term: &Term{
			Type: TermFilter,
			Args: []*Term{
				{Type: TermTable, Args: []*Term{
					{Type: TermDB, Args: []*Term{DatumTerm(String("app"))}},
					DatumTerm(String("users")),
				}},
				DatumTerm(Object(
					DatumPair{Key: "active", Val: Bool(true)},
					DatumPair{Key: "age", Val: Number(30)},
					DatumPair{Key: "tags", Val: Array(String("a"), Null())},
				)),
			},
			OptArgs: []TermPair{{Key: "default", Val: DatumTerm(Bool(false))}},
		},
		GlobalOptArgs: []TermPair{{
			Key: "db",
			Val: &Term{Type: TermDB, Args: []*Term{DatumTerm(String("app"))}},
		}},
	}

	payload, err := MarshalQuery(q)
	require.NoError(t, err)

	decoded, err := UnmarshalQuery(payload)
	require.NoError(t, err)
	assert.Equal(t, q, decoded)
}

func TestResponseRoundTripWithBacktrace(t *testing.T) {
	r := &Response{
		Type:      ResponseRuntimeError,
		Token:     3,
		Responses: []*Datum{String("table `users` does not exist")},
		Backtrace: []Frame{
			{Type: FramePos, Pos: 0},
			{Type: FrameOpt, Opt: "default"},
		},
	}

	payload, err := MarshalResponse(r)
	require.NoError(t, err)

	decoded, err := UnmarshalResponse(payload)
	require.NoError(t, err)
	assert.Equal(t, r, decoded)
}

func TestUnmarshalResponseMalformed(t *testing.T) {
	cases := map[string][]byte{
		"no value for tag": {0x08},
		"truncated varint": {0x08, 0x80},
		"truncated bytes":  {0x1a, 0x05, 0x01},
		"missing type":     {0x10, 0x02},
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalResponse(payload)
			require.Error(t, err)
		})
	}
}

func TestUnmarshalResponseSkipsUnknownFields(t *testing.T) {
	payload := []byte{
		0x08, 0x02, // type = SUCCESS_SEQUENCE
		0x10, 0x05, // token = 5
		0x78, 0x01, // unknown varint field 15
	}

	resp, err := UnmarshalResponse(payload)
	require.NoError(t, err)
	assert.Equal(t, ResponseSuccessSequence, resp.Type)
	assert.Equal(t, uint64(5), resp.Token)
	assert.Empty(t, resp.Responses)
}

func TestDatumField(t *testing.T) {
	obj := Object(
		DatumPair{Key: "inserted", Val: Number(1)},
		DatumPair{Key: "errors", Val: Number(0)},
	)

	v, ok := obj.Field("inserted")
	require.True(t, ok)
	assert.Equal(t, 1.0, v.Num)

	_, ok = obj.Field("deleted")
	assert.False(t, ok)

	_, ok = Number(1).Field("inserted")
	assert.False(t, ok)
}
