package anthropic

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// guidance maps known error categories to a fixed human-readable suffix.
// Unknown categories get no suffix.
var guidance = map[string]string{
	"invalid_request_error": "Please check your request parameters and try again.",
	"authentication_error":  "Please verify that your API key is valid.",
	"rate_limit_error":      "Please wait a moment before sending more requests.",
	"permission_error":      "Your API key does not have permission for this action.",
}

// APIError is a structured error reported by the remote service, either in a
// non-2xx response body or as an error payload mid-stream.
type APIError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

func (e *APIError) Error() string {
	var sb strings.Builder
	sb.WriteString("API error")
	if e.Type != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Type)
		if e.Code != "" {
			sb.WriteString(", code: ")
			sb.WriteString(e.Code)
		}
		if e.Param != "" {
			sb.WriteString(", param: ")
			sb.WriteString(e.Param)
		}
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if suffix, ok := guidance[e.Type]; ok {
		sb.WriteString(" ")
		sb.WriteString(suffix)
	}
	return sb.String()
}

// StatusError reports a non-2xx response whose body did not yield a
// structured API error.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected HTTP status %d: %s", e.StatusCode, e.Body)
}

// classify builds a typed error from the value of an error payload, which may
// be a structured object or a bare string.
func classify(v gjson.Result) *APIError {
	if v.IsObject() {
		return &APIError{
			Type:    v.Get("type").String(),
			Message: v.Get("message").String(),
			Code:    v.Get("code").String(),
			Param:   v.Get("param").String(),
		}
	}
	if v.Type == gjson.String {
		return &APIError{Message: v.String()}
	}
	return &APIError{Message: v.Raw}
}

// classifyRaw turns an unparseable error line into a typed error, trimming
// the line to the portion starting at the first occurrence of "error" when
// present.
func classifyRaw(line string) *APIError {
	trimmed := strings.TrimSpace(line)
	if idx := strings.Index(strings.ToLower(trimmed), "error"); idx >= 0 {
		trimmed = trimmed[idx:]
	}
	return &APIError{Message: trimmed}
}

// classifyResponse maps a non-2xx response to a terminal error. For a 400 the
// body is read fully and mined for a structured error payload; other statuses
// report the raw status with a body snippet.
func classifyResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode == http.StatusBadRequest {
		if gjson.ValidBytes(body) {
			if ev := gjson.GetBytes(body, "error"); ev.Exists() {
				return classify(ev)
			}
		}
		if len(strings.TrimSpace(string(body))) > 0 {
			return classifyRaw(string(body))
		}
	}

	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
