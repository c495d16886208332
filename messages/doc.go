// Package messages defines the conversation-facing message types used by the
// adapter: roles, wire-format messages, and attachment descriptions.
//
// Design decisions:
//   - Wire minimalism: the remote protocol only accepts {role, content} pairs,
//     so WireMessage carries exactly that and nothing else
//   - Tagged attachments: attachment kinds (image, file, link) are a sealed
//     interface with a Describe capability, dispatched once during request
//     composition instead of open-ended type inspection
//   - JSON interop: custom marshaling via gjson/sjson keeps the wire shape
//     under our control rather than relying on struct-tag reflection
//
// Attachments are described textually only. The adapter never transmits raw
// attachment bytes; Describe renders the stand-in text that is appended to the
// user prompt.
package messages
