package ql2

// Version is the protocol version sentinel sent as the first four bytes
// (little-endian, no length prefix) after the TCP connect.
const Version uint32 = 0x3f61ba36

// QueryType selects what a Query asks the server to do.
type QueryType int32

const (
	QueryStart    QueryType = 1 // begin executing the query tree
	QueryContinue QueryType = 2 // request the next batch for a token
	QueryStop     QueryType = 3 // abandon a streaming query
)

// ResponseType classifies a server Response.
type ResponseType int32

const (
	ResponseSuccessAtom     ResponseType = 1 // single value in Responses[0]
	ResponseSuccessSequence ResponseType = 2 // final (or only) batch of a sequence
	ResponseSuccessPartial  ResponseType = 3 // batch, more available via CONTINUE
	ResponseClientError     ResponseType = 16
	ResponseCompileError    ResponseType = 17
	ResponseRuntimeError    ResponseType = 18
)

// IsError reports whether t is one of the server error response types.
func (t ResponseType) IsError() bool {
	return t == ResponseClientError || t == ResponseCompileError || t == ResponseRuntimeError
}

// DatumType tags the active arm of a Datum.
type DatumType int32

const (
	DatumNull   DatumType = 1
	DatumBool   DatumType = 2
	DatumNumber DatumType = 3
	DatumString DatumType = 4
	DatumArray  DatumType = 5
	DatumObject DatumType = 6
)

// FrameType tags a backtrace frame as a positional or optional argument.
type FrameType int32

const (
	FramePos FrameType = 1
	FrameOpt FrameType = 2
)

// TermType identifies a query tree node.
type TermType int32

const (
	TermDatum       TermType = 1
	TermMakeArray   TermType = 2
	TermMakeObj     TermType = 3
	TermVar         TermType = 10
	TermJavaScript  TermType = 11
	TermError       TermType = 12
	TermImplicitVar TermType = 13
	TermDB          TermType = 14
	TermTable       TermType = 15
	TermGet         TermType = 16
	TermEq          TermType = 17
	TermNe          TermType = 18
	TermLt          TermType = 19
	TermLe          TermType = 20
	TermGt          TermType = 21
	TermGe          TermType = 22
	TermNot         TermType = 23
	TermAdd         TermType = 24
	TermSub         TermType = 25
	TermMul         TermType = 26
	TermDiv         TermType = 27
	TermMod         TermType = 28
	TermAppend      TermType = 29
	TermSlice       TermType = 30
	TermGetField    TermType = 31
	TermContains    TermType = 32
	TermPluck       TermType = 33
	TermWithout     TermType = 34
	TermMerge       TermType = 35
	TermBetween     TermType = 36
	TermReduce      TermType = 37
	TermMap         TermType = 38
	TermFilter      TermType = 39
	TermConcatMap   TermType = 40
	TermOrderBy     TermType = 41
	TermDistinct    TermType = 42
	TermCount       TermType = 43
	TermUnion       TermType = 44
	TermNth         TermType = 45
	TermInnerJoin   TermType = 48
	TermOuterJoin   TermType = 49
	TermEqJoin      TermType = 50
	TermCoerceTo    TermType = 51
	TermTypeOf      TermType = 52
	TermUpdate      TermType = 53
	TermDelete      TermType = 54
	TermReplace     TermType = 55
	TermInsert      TermType = 56
	TermDBCreate    TermType = 57
	TermDBDrop      TermType = 58
	TermDBList      TermType = 59
	TermTableCreate TermType = 60
	TermTableDrop   TermType = 61
	TermTableList   TermType = 62
	TermFunCall     TermType = 64
	TermBranch      TermType = 65
	TermAny         TermType = 66
	TermAll         TermType = 67
	TermForEach     TermType = 68
	TermFunc        TermType = 69
	TermSkip        TermType = 70
	TermLimit       TermType = 71
	TermZip         TermType = 72
	TermAsc         TermType = 73
	TermDesc        TermType = 74
)
