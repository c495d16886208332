package provider

import (
	"context"

	"github.com/casualjim/strix/messages"
	"github.com/google/uuid"
)

// Provider is the contract for text-generation backends. Implementations own
// the wire protocol specifics while exposing one consistent streaming shape.
type Provider interface {
	ChatCompletion(context.Context, CompletionParams) (<-chan StreamEvent, error)
}

// Model identifies a concrete model and the provider that serves it.
type Model interface {
	Name() string
	Provider() Provider
}

// Configurable is implemented by providers that can report whether a
// credential is available before any network call is made.
type Configurable interface {
	Configured() bool
}

// CompletionParams carries everything needed for one streaming completion
// call.
type CompletionParams struct {
	// RunID uniquely identifies this call for tracking and event correlation
	RunID uuid.UUID

	// Messages is the wire-format conversation, already filtered for the
	// alternation and deduplication rules the remote protocol requires
	Messages []messages.WireMessage

	// Model selects which model serves this call
	Model Model

	// MaxTokens caps the generated response length. Zero means the provider
	// default.
	MaxTokens int

	// Prevents unkeyed literals
	_ struct{}
}
