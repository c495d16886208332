package anthropic

import (
	"strings"

	"github.com/tidwall/gjson"
)

// extractText resolves one complete decoded payload to its displayable text.
// The precedence is fixed because the endpoint emits overlapping shapes for
// the same logical event; the first matching rule wins so text is never
// extracted twice through two paths.
//
//  1. content_block_delta with a delta.text field
//  2. content_block_start with a content_block.text field (first chunk of a
//     block delivered whole)
//  3. a content array of blocks, concatenating every present text field
//  4. the legacy completion string field
//
// A payload recognized by none of the rules carries no displayable text; the
// caller treats it as a structurally valid non-text event, not an error.
func extractText(v gjson.Result) (string, bool) {
	if v.Get("type").String() == "content_block_delta" {
		if txt := v.Get("delta.text"); txt.Exists() {
			return txt.String(), true
		}
	}

	if v.Get("type").String() == "content_block_start" {
		if txt := v.Get("content_block.text"); txt.Exists() {
			return txt.String(), true
		}
	}

	if content := v.Get("content"); content.IsArray() {
		var sb strings.Builder
		var found bool
		content.ForEach(func(_, block gjson.Result) bool {
			if txt := block.Get("text"); txt.Exists() {
				sb.WriteString(txt.String())
				found = true
			}
			return true
		})
		if found {
			return sb.String(), true
		}
	}

	if completion := v.Get("completion"); completion.Exists() && completion.Type == gjson.String {
		return completion.String(), true
	}

	return "", false
}

// errorPayload returns the error value carried by a payload, when present.
// Text extraction takes precedence: callers must only consult this after
// extractText declined the payload.
func errorPayload(v gjson.Result) (gjson.Result, bool) {
	ev := v.Get("error")
	return ev, ev.Exists()
}
