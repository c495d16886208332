// Package strix adapts a conversational client to streaming text
// generation services. It keeps an ordered conversation history, exports it
// in the wire shape the remote service accepts, runs the completion stream
// on a background goroutine, and surfaces text deltas and classified errors
// as they arrive.
//
// The package is organized around a few cooperating pieces:
//
//   - Adapter ties a model, a conversation history, and an optional event
//     broker together. Chat drives a full conversational exchange; Generate
//     performs a one-shot completion without touching history.
//   - history.Log holds the turns and enforces the export rules the remote
//     service requires (role alternation, no empty or duplicate messages).
//   - provider defines the stream contract; provider/anthropic and
//     provider/openai implement it for their respective services.
//   - pubsub fans stream events out to observers, in process or over NATS.
//
// A minimal conversation looks like this:
//
//	adapter := strix.New(strix.WithModel(anthropic.ClaudeSonnet()))
//	events, err := adapter.Chat(ctx, "why is the sky blue?")
//	if err != nil {
//		return err
//	}
//	for event := range events {
//		if delta, ok := event.(provider.Delta); ok {
//			fmt.Print(delta.Text)
//		}
//	}
package strix
