// Package uuidx provides time-ordered UUID generation helpers.
package uuidx

import "github.com/google/uuid"

// New generates a version 7 UUID. Version 7 identifiers sort by creation
// time, which keeps turn and subscription IDs naturally ordered.
// It panics if the underlying generator fails.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewString generates a version 7 UUID and returns its string form.
func NewString() string {
	return New().String()
}
