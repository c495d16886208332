// Package anthropic implements the provider contract against the Anthropic
// messages endpoint at the wire level: it issues the streaming HTTP request,
// reassembles event payloads from the raw byte stream, extracts incremental
// text from the versioned event shapes the endpoint emits, and classifies
// both HTTP-level and payload-level failures into typed errors.
//
// The response stream is a sequence of lines, each either empty,
// "data: <json>", the terminator sentinel "data: [DONE]", or occasionally a
// bare JSON line. Payloads may split across chunk boundaries in two ways: a
// line can arrive in pieces (handled by the chunk reader holding the line
// remainder), and a payload can span multiple lines (handled by the frame
// assembler's partial buffer with parse-retry).
//
// Event shapes overlap across protocol versions. The extractor applies a
// fixed precedence so one logical event never yields its text twice:
// content_block_delta, then content_block_start, then a content block array,
// then the legacy completion field, then error payloads.
package anthropic
