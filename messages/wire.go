package messages

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a turn authored by the caller.
	RoleUser Role = "user"
	// RoleAssistant marks a turn authored by the remote model.
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one the remote protocol accepts.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// WireMessage is the only message shape accepted by the remote protocol.
// It is derived from conversation history at request time and never stored.
type WireMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Prevents unkeyed literals
	_ struct{}
}

// MarshalJSON implements custom JSON marshaling for WireMessage.
func (m WireMessage) MarshalJSON() ([]byte, error) {
	result := []byte(`{}`)

	var err error
	result, err = sjson.SetBytes(result, "role", string(m.Role))
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "content", m.Content)
	return result, err
}

// UnmarshalJSON implements custom JSON unmarshaling for WireMessage.
func (m *WireMessage) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	role := gjson.GetBytes(data, "role")
	if !role.Exists() {
		return fmt.Errorf("missing required field 'role'")
	}
	m.Role = Role(role.String())
	if !m.Role.Valid() {
		return fmt.Errorf("invalid role: %q", role.String())
	}

	content := gjson.GetBytes(data, "content")
	if !content.Exists() {
		return fmt.Errorf("missing required field 'content'")
	}
	m.Content = content.String()

	return nil
}
