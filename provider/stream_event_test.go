package provider

import (
	"errors"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestDelim_JSONRoundTrip(t *testing.T) {
	ev := Delim{RunID: uuid.New(), Delim: "start"}

	data, err := ev.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "delim", gjson.GetBytes(data, "type").String())

	var got Delim
	require.NoError(t, got.UnmarshalJSON(data))
	assert.Equal(t, ev, got)
}

func TestDelta_JSONRoundTrip(t *testing.T) {
	ev := Delta{
		RunID:     uuid.New(),
		Text:      "Hel",
		Timestamp: strfmt.DateTime(time.Now().UTC().Truncate(time.Millisecond)),
	}

	data, err := ev.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "delta", gjson.GetBytes(data, "type").String())
	assert.Equal(t, "Hel", gjson.GetBytes(data, "text").String())

	var got Delta
	require.NoError(t, got.UnmarshalJSON(data))
	assert.Equal(t, ev.RunID, got.RunID)
	assert.Equal(t, ev.Text, got.Text)
}

func TestDelta_UnmarshalJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"invalid json", `{"type":`},
		{"wrong type", `{"type":"delim","run_id":"x"}`},
		{"missing run_id", `{"type":"delta","text":"hi"}`},
		{"missing text", `{"type":"delta","run_id":"018f6f5e-8d7a-7cc6-b3b5-cbb4a1e73c44"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Delta
			assert.Error(t, got.UnmarshalJSON([]byte(tt.input)))
		})
	}
}

func TestError_JSONRoundTrip(t *testing.T) {
	ev := Error{RunID: uuid.New(), Err: errors.New("boom")}

	data, err := ev.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "error", gjson.GetBytes(data, "type").String())

	var got Error
	require.NoError(t, got.UnmarshalJSON(data))
	assert.Equal(t, ev.RunID, got.RunID)
	require.NotNil(t, got.Err)
	assert.Equal(t, "boom", got.Err.Error())
}

func TestError_Unwrap(t *testing.T) {
	sentinel := errors.New("root cause")
	ev := Error{Err: sentinel}
	assert.ErrorIs(t, ev, sentinel)
}

func TestFromJSON_Dispatch(t *testing.T) {
	events := []StreamEvent{
		Delim{RunID: uuid.New(), Delim: "end"},
		Delta{RunID: uuid.New(), Text: "chunk"},
		Error{RunID: uuid.New(), Err: errors.New("bad")},
	}

	for _, ev := range events {
		data, err := ToJSON(ev)
		require.NoError(t, err)

		got, err := FromJSON(data)
		require.NoError(t, err)
		assert.IsType(t, ev, got)
	}
}

func TestFromJSON_UnknownType(t *testing.T) {
	_, err := FromJSON([]byte(`{"type":"checkpoint"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stream event type")
}
