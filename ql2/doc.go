// Package ql2 implements the wire schema spoken by ReQL servers.
//
// This package serves as a foundation for building higher-level clients
// with different properties (multiplexing, batching, typed results).
// It focuses on correctness for serialization and parsing, without imposing
// architectural decisions on clients.
//
// # Core Types
//
// Query, Response, Term and Datum are pure data containers without embedded
// logic:
//
//   - Query: an outbound command (START, CONTINUE, STOP) with its token
//   - Response: a parsed server reply, carrying a batch of datums
//   - Term: a node of the query tree
//   - Datum: the tagged-union value type (null, bool, number, string,
//     array, object)
//
// # Serialization and Parsing
//
// Messages are encoded with the protocol buffer wire format. The codec is
// hand-rolled over protowire so the package carries no generated code:
//
//	payload, err := ql2.MarshalQuery(q)
//	resp, err := ql2.UnmarshalResponse(payload)
//
// The inverse pair (MarshalResponse, UnmarshalQuery) is the server side of
// the same schema and exists for tooling and in-process test servers.
//
// Framing (the 4-byte length prefix) and the version handshake are the
// connection's concern, not this package's.
package ql2
