// Package slogx provides small helpers for building log/slog attributes.
package slogx

import (
	"fmt"
	"log/slog"
)

// Error returns a slog.Attr with the key "error" and the error's message as
// its value.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// ByteString returns a slog.Attr with the given key and the byte slice
// rendered as a string. Useful for logging raw protocol lines.
func ByteString(key string, value []byte) slog.Attr {
	return slog.String(key, string(value))
}

// Stringer returns a slog.Attr with the string representation of the given
// fmt.Stringer value.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}
