package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantOK  bool
	}{
		{
			name:    "content block delta",
			payload: `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`,
			want:    "Hel",
			wantOK:  true,
		},
		{
			name:    "content block start with initial text",
			payload: `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":"whole block"}}`,
			want:    "whole block",
			wantOK:  true,
		},
		{
			name:    "content block start without text",
			payload: `{"type":"content_block_start","index":0,"content_block":{"type":"tool_use"}}`,
			wantOK:  false,
		},
		{
			name:    "content array concatenation",
			payload: `{"content":[{"type":"text","text":"one "},{"type":"image"},{"type":"text","text":"two"}]}`,
			want:    "one two",
			wantOK:  true,
		},
		{
			name:    "content array with no text fields",
			payload: `{"content":[{"type":"image"},{"type":"tool_use"}]}`,
			wantOK:  false,
		},
		{
			name:    "legacy completion field",
			payload: `{"completion":" legacy text","stop_reason":null}`,
			want:    " legacy text",
			wantOK:  true,
		},
		{
			name:    "completion field that is not a string",
			payload: `{"completion":{"nested":true}}`,
			wantOK:  false,
		},
		{
			name:    "stream control event",
			payload: `{"type":"message_start","message":{"id":"msg_1"}}`,
			wantOK:  false,
		},
		{
			name:    "message stop",
			payload: `{"type":"message_stop"}`,
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractText(gjson.Parse(tt.payload))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractText_PrecedenceIsFixed(t *testing.T) {
	// A payload matching both the delta rule and the content rule yields its
	// text exactly once, through the delta path.
	payload := `{"type":"content_block_delta","delta":{"text":"delta wins"},"content":[{"text":"never"}]}`
	got, ok := extractText(gjson.Parse(payload))
	require.True(t, ok)
	assert.Equal(t, "delta wins", got)

	// Delta with no text falls through to the content rule.
	payload = `{"type":"content_block_delta","delta":{"partial_json":"{}"},"content":[{"text":"fallback"}]}`
	got, ok = extractText(gjson.Parse(payload))
	require.True(t, ok)
	assert.Equal(t, "fallback", got)
}

func TestErrorPayload(t *testing.T) {
	ev, ok := errorPayload(gjson.Parse(`{"error":{"type":"overloaded_error","message":"busy"}}`))
	require.True(t, ok)
	assert.Equal(t, "overloaded_error", ev.Get("type").String())

	_, ok = errorPayload(gjson.Parse(`{"type":"message_stop"}`))
	assert.False(t, ok)
}

func TestExtractText_TakesPrecedenceOverError(t *testing.T) {
	// An event carrying text is a text event even when an error field is also
	// present; the error rule only fires after every text rule declined.
	payload := gjson.Parse(`{"completion":"still text","error":"ignored"}`)
	got, ok := extractText(payload)
	require.True(t, ok)
	assert.Equal(t, "still text", got)
}
