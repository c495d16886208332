// Package provider defines the abstraction for streaming text-generation
// backends and the events they emit.
//
// Design decisions:
//   - Streaming first: a completion call returns a channel of events and the
//     channel is always closed, on success, failure, and cancellation alike
//   - Sealed events: StreamEvent is a closed set (Delim, Delta, Error) so
//     consumers can switch exhaustively
//   - Structured metadata: events carry the run ID and a timestamp so
//     observers can correlate fragments across transports
//   - Custom JSON: events serialize through gjson/sjson with pre-allocated
//     type markers, which keeps the wire form stable for pub/sub fan-out
//
// The stream contract: zero or more Delta events, optionally bracketed by
// Delim{start}/Delim{end}, terminated either by a clean channel close or by a
// single Error event followed by the close. No Delta follows an Error.
package provider
