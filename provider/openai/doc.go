// Package openai implements the provider contract on top of the OpenAI
// chat completions API. Unlike the anthropic package it does not speak the
// wire protocol itself; the official SDK handles transport and framing and
// this package translates the SDK's chunk stream into stream events.
package openai
