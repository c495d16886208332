package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect feeds every chunk and the final close, returning all frames.
func collect(t *testing.T, chunks ...[]byte) []frame {
	t.Helper()
	asm := newAssembler()
	var frames []frame
	for _, chunk := range chunks {
		frames = append(frames, asm.Feed(chunk)...)
	}
	return append(frames, asm.Close()...)
}

// payloadTypes extracts the "type" field from every payload frame.
func payloadTypes(frames []frame) []string {
	var out []string
	for _, fr := range frames {
		if fr.kind == framePayload {
			out = append(out, fr.payload.Get("type").String())
		}
	}
	return out
}

func TestAssembler_SingleEvent(t *testing.T) {
	frames := collect(t, []byte("data: {\"type\":\"message_start\"}\n\n"))
	require.Len(t, frames, 1)
	assert.Equal(t, framePayload, frames[0].kind)
	assert.Equal(t, "message_start", frames[0].payload.Get("type").String())
}

func TestAssembler_IgnoresEmptyLines(t *testing.T) {
	frames := collect(t, []byte("\n\r\n   \ndata: {\"type\":\"ping\"}\n"))
	require.Len(t, frames, 1)
	assert.Equal(t, "ping", frames[0].payload.Get("type").String())
}

func TestAssembler_DoneSentinel(t *testing.T) {
	frames := collect(t, []byte("data: {\"type\":\"message_stop\"}\ndata: [DONE]\n"))
	require.Len(t, frames, 2)
	assert.Equal(t, framePayload, frames[0].kind)
	assert.Equal(t, frameDone, frames[1].kind)
}

func TestAssembler_LineSplitAcrossChunks(t *testing.T) {
	// A line must never be assumed complete at chunk end.
	frames := collect(t,
		[]byte("data: {\"type\":\"content_block_delta\",\"delta\""),
		[]byte(":{\"type\":\"text_delta\",\"text\":\"hi\"}}\n"),
	)
	require.Len(t, frames, 1)
	assert.Equal(t, "hi", frames[0].payload.Get("delta.text").String())
}

func TestAssembler_PayloadSplitAcrossLines(t *testing.T) {
	frames := collect(t,
		[]byte("data: {\"type\":\"content_block_delta\",\n"),
		[]byte("data: \"delta\":{\"text\":\"chunked\"}}\n"),
	)
	require.Len(t, frames, 1)
	assert.Equal(t, "chunked", frames[0].payload.Get("delta.text").String())
}

func TestAssembler_BackToBackPayloadsInOneChunk(t *testing.T) {
	frames := collect(t, []byte("data: {\"type\":\"a\"}\ndata: {\"type\":\"b\"}\n"))
	assert.Equal(t, []string{"a", "b"}, payloadTypes(frames))
}

func TestAssembler_CompletePayloadFlushesOpenBuffer(t *testing.T) {
	// A buffered fragment that happens to be parseable on its own is flushed
	// as its own payload before the new one; it never merges silently.
	asm := newAssembler()

	var frames []frame
	frames = append(frames, asm.Feed([]byte("data: {\"type\":\"partial\"\n"))...)
	require.Empty(t, frames, "incomplete payload must keep buffering")

	frames = append(frames, asm.Feed([]byte("data: {\"type\":\"whole\"}\n"))...)
	require.Len(t, frames, 1, "unparseable buffer is dropped, new payload emitted")
	assert.Equal(t, "whole", frames[0].payload.Get("type").String())
}

func TestAssembler_BareJSONLine(t *testing.T) {
	frames := collect(t, []byte("{\"type\":\"bare\",\"content\":[{\"text\":\"x\"}]}\n"))
	require.Len(t, frames, 1)
	assert.Equal(t, "bare", frames[0].payload.Get("type").String())
}

func TestAssembler_BareJSONSplitAcrossLines(t *testing.T) {
	frames := collect(t,
		[]byte("{\"type\":\"bare\",\n"),
		[]byte("\"done\":true}\n"),
	)
	require.Len(t, frames, 1)
	assert.True(t, frames[0].payload.Get("done").Bool())
}

func TestAssembler_ErrorLineDiscardsBuffer(t *testing.T) {
	asm := newAssembler()

	frames := asm.Feed([]byte("data: {\"type\":\"partial\"\nerror: connection reset\n"))
	require.Len(t, frames, 1)
	assert.Equal(t, frameRawError, frames[0].kind)
	assert.Equal(t, "error: connection reset", frames[0].raw)
	assert.Empty(t, asm.Close(), "buffer must be discarded by the error line")
}

func TestAssembler_CloseFlushesParseableBuffer(t *testing.T) {
	asm := newAssembler()
	asm.Feed([]byte("data: {\"type\":\"tail\"\n"))

	frames := asm.Feed([]byte("data: }\n"))
	require.Len(t, frames, 1)
	assert.Equal(t, "tail", frames[0].payload.Get("type").String())
	assert.Empty(t, asm.Close())
}

func TestAssembler_CloseDropsJSONLookingLeftover(t *testing.T) {
	// Leftover that looks like JSON but never parsed is dropped, not surfaced
	// as text.
	asm := newAssembler()
	asm.Feed([]byte("data: {\"type\":\"never finished\n"))
	assert.Empty(t, asm.Close())
}

func TestAssembler_CloseSurfacesPlainTextLeftover(t *testing.T) {
	asm := newAssembler()
	asm.Feed([]byte("data: {\"x\":1}\n"))
	// A held remainder line that is plain text and part of an open buffer.
	asm.Feed([]byte("data: not json at all"))

	frames := asm.Close()
	require.Len(t, frames, 1)
	assert.Equal(t, frameText, frames[0].kind)
	assert.Equal(t, "not json at all", frames[0].raw)
}

func TestAssembler_RechunkingInvariance(t *testing.T) {
	stream := "data: {\"type\":\"message_start\"}\n" +
		"data: {\"type\":\"content_block_delta\",\"delta\":{\"text\":\"Hel\"}}\n" +
		"\n" +
		"data: {\"type\":\"content_block_delta\",\"delta\":{\"text\":\"lo\"}}\n" +
		"data: {\"type\":\"content_block_delta\",\"delta\":{\"text\":\", world!\"}}\n" +
		"data: {\"type\":\"message_stop\"}\n" +
		"data: [DONE]\n"

	reference := collect(t, []byte(stream))

	for _, size := range []int{1, 2, 3, 5, 7, 16, 64, len(stream)} {
		var chunks [][]byte
		for i := 0; i < len(stream); i += size {
			end := min(i+size, len(stream))
			chunks = append(chunks, []byte(stream[i:end]))
		}

		frames := collect(t, chunks...)
		require.Len(t, frames, len(reference), "chunk size %d", size)
		for i := range frames {
			assert.Equal(t, reference[i].kind, frames[i].kind, "chunk size %d frame %d", size, i)
			if frames[i].kind == framePayload {
				assert.Equal(t, reference[i].payload.Raw, frames[i].payload.Raw,
					"chunk size %d frame %d", size, i)
			}
		}
	}
}

func TestLooksLikeJSON(t *testing.T) {
	assert.True(t, looksLikeJSON(`{"a":1}`))
	assert.True(t, looksLikeJSON("  [1,2]"))
	assert.False(t, looksLikeJSON("plain text"))
	assert.False(t, looksLikeJSON(""))
}

func TestAssembler_CRLFLines(t *testing.T) {
	frames := collect(t, []byte("data: {\"type\":\"ping\"}\r\n"))
	require.Len(t, frames, 1)
	assert.Equal(t, "ping", frames[0].payload.Get("type").String())
}

func TestAssembler_InterleavedCompletePayload(t *testing.T) {
	// A complete payload arriving between two fragments of another must not
	// corrupt either: the open buffer is flushed (dropped here, unparseable)
	// and the complete payload emitted.
	asm := newAssembler()

	var frames []frame
	frames = append(frames, asm.Feed([]byte("data: {\"type\":\"frag\",\n"))...)
	frames = append(frames, asm.Feed([]byte("data: {\"type\":\"whole\"}\n"))...)

	require.Len(t, frames, 1)
	assert.Equal(t, "whole", frames[0].payload.Get("type").String())
}

