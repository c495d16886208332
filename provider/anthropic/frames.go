package anthropic

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/casualjim/strix/pkg/slogx"
	"github.com/tidwall/gjson"
)

const (
	dataPrefix    = "data:"
	doneSentinel  = "[DONE]"
	errorIndPrefx = "error"
)

type frameKind int

const (
	// framePayload is a complete, parseable JSON payload.
	framePayload frameKind = iota
	// frameRawError is a non-JSON line signaling an immediate error.
	frameRawError
	// frameText is leftover buffer content surfaced verbatim at stream end
	// when it does not look like JSON (protocol-tolerance fallback).
	frameText
	// frameDone is the stream-terminator sentinel.
	frameDone
)

type frame struct {
	kind    frameKind
	payload gjson.Result // set for framePayload
	raw     string       // set for frameRawError and frameText
}

// assembler converts a raw byte stream into discrete, complete JSON payload
// frames. It is a small two-state machine: empty, or buffering a partial
// payload that has not parsed yet. One assembler serves exactly one stream;
// its buffers are destroyed with it.
type assembler struct {
	remainder []byte          // incomplete trailing line held across chunks
	partial   strings.Builder // in-progress payload accumulated across lines
}

func newAssembler() *assembler {
	return &assembler{}
}

// Feed consumes one raw chunk with arbitrary boundaries and returns the
// frames completed by it. A line is never assumed complete at chunk end; the
// remainder carries over to the next call.
func (a *assembler) Feed(chunk []byte) []frame {
	data := append(a.remainder, chunk...)

	var frames []frame
	for {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		line := string(data[:idx])
		data = data[idx+1:]
		frames = append(frames, a.feedLine(line)...)
	}

	a.remainder = append(a.remainder[:0], data...)
	return frames
}

// Close flushes state at stream end: a held line remainder is processed as a
// final line, then a still-buffering payload gets one last parse attempt. An
// unparseable leftover is surfaced as raw text only when it does not look
// like JSON; otherwise it is dropped with a logged anomaly.
func (a *assembler) Close() []frame {
	var frames []frame
	if len(a.remainder) > 0 {
		frames = a.feedLine(string(a.remainder))
		a.remainder = nil
	}

	if a.partial.Len() == 0 {
		return frames
	}

	leftover := a.partial.String()
	a.partial.Reset()

	if jv := gjson.Parse(leftover); gjson.Valid(leftover) {
		return append(frames, frame{kind: framePayload, payload: jv})
	}
	if looksLikeJSON(leftover) {
		slog.Warn("dropping unparseable buffered payload at stream end",
			slogx.ByteString("buffer", []byte(leftover)))
		return frames
	}
	return append(frames, frame{kind: frameText, raw: leftover})
}

func (a *assembler) feedLine(line string) []frame {
	line = strings.TrimSuffix(line, "\r")
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		return nil

	case strings.HasPrefix(trimmed, dataPrefix):
		payload := strings.TrimSpace(strings.TrimPrefix(trimmed, dataPrefix))
		if payload == doneSentinel {
			a.partial.Reset()
			return []frame{{kind: frameDone}}
		}
		return a.feedPayload(payload)

	case strings.HasPrefix(strings.ToLower(trimmed), errorIndPrefx):
		// Explicit error line: the open buffer is abandoned, the error wins.
		a.partial.Reset()
		return []frame{{kind: frameRawError, raw: trimmed}}

	case looksLikeJSON(trimmed):
		if a.partial.Len() > 0 {
			return a.appendPartial(trimmed)
		}
		if gjson.Valid(trimmed) {
			return []frame{{kind: framePayload, payload: gjson.Parse(trimmed)}}
		}
		// First fragment of a payload split across lines.
		a.partial.WriteString(trimmed)
		return nil

	default:
		if a.partial.Len() > 0 {
			return a.appendPartial(trimmed)
		}
		slog.Debug("ignoring unrecognized stream line", slogx.ByteString("line", []byte(trimmed)))
		return nil
	}
}

// feedPayload handles the remainder of a marker line. A payload that parses
// on its own never merges with the partial buffer: the buffer is flushed as
// its own payload first.
func (a *assembler) feedPayload(payload string) []frame {
	if gjson.Valid(payload) {
		frames := a.flushPartial()
		return append(frames, frame{kind: framePayload, payload: gjson.Parse(payload)})
	}
	return a.appendPartial(payload)
}

// appendPartial adds a fragment to the buffer and retries the accumulated
// parse, emitting and resetting on success.
func (a *assembler) appendPartial(fragment string) []frame {
	a.partial.WriteString(fragment)
	acc := a.partial.String()
	if !gjson.Valid(acc) {
		return nil
	}
	a.partial.Reset()
	return []frame{{kind: framePayload, payload: gjson.Parse(acc)}}
}

// flushPartial emits the buffered content as its own payload when it parses,
// and otherwise drops it with a logged anomaly.
func (a *assembler) flushPartial() []frame {
	if a.partial.Len() == 0 {
		return nil
	}
	buffered := a.partial.String()
	a.partial.Reset()

	if gjson.Valid(buffered) {
		return []frame{{kind: framePayload, payload: gjson.Parse(buffered)}}
	}
	slog.Warn("discarding unparseable buffered payload",
		slogx.ByteString("buffer", []byte(buffered)))
	return nil
}

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
