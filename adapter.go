package strix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/casualjim/strix/history"
	"github.com/casualjim/strix/messages"
	"github.com/casualjim/strix/pkg/slogx"
	"github.com/casualjim/strix/pkg/uuidx"
	"github.com/casualjim/strix/provider"
	"github.com/casualjim/strix/provider/anthropic"
	"github.com/casualjim/strix/pubsub"
	"github.com/fogfish/opts"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
)

// ErrNotConfigured is returned before any network activity when the selected
// provider has no credentials.
var ErrNotConfigured = errors.New("provider is not configured: missing API key")

const defaultTopic = "strix.stream"

// Adapter ties a model, a conversation history, and an optional event broker
// together. Construct with New; the zero value is not usable.
type Adapter struct {
	model     provider.Model
	hist      *history.Log
	maxTokens int
	broker    pubsub.Broker
	topic     string
}

// New creates an adapter. Without options it talks to the default Anthropic
// model and keeps events in process.
func New(options ...opts.Option[Adapter]) *Adapter {
	a := &Adapter{
		model: anthropic.ClaudeSonnet(),
		hist:  history.New(),
		topic: defaultTopic,
	}
	if err := opts.Apply(a, options); err != nil {
		panic(err)
	}
	return a
}

// History returns the adapter's conversation log.
func (a *Adapter) History() *history.Log {
	return a.hist
}

// Chat appends the prompt as a user turn, opens an assistant turn, and
// streams the completion. Deltas are applied to the open turn as they arrive
// and forwarded on the returned channel, which is always closed when the
// stream ends. A terminal Error event finalizes the turn with the failure
// message. Attachments are recorded on the user turn and described to the
// model alongside the prompt text.
func (a *Adapter) Chat(ctx context.Context, prompt string, attachments ...messages.Attachment) (<-chan provider.StreamEvent, error) {
	prov := a.model.Provider()
	if c, ok := prov.(provider.Configurable); ok && !c.Configured() {
		return nil, ErrNotConfigured
	}

	if _, err := a.hist.AppendUser(prompt, attachments...); err != nil {
		return nil, err
	}
	a.hist.AppendAssistantPlaceholder()

	wire := a.hist.WireMessages()
	if composed := composePrompt(prompt, attachments); len(wire) > 0 && wire[len(wire)-1].Role == messages.RoleUser {
		wire[len(wire)-1].Content = composed
	}

	runID := uuidx.New()
	events, err := prov.ChatCompletion(ctx, provider.CompletionParams{
		RunID:     runID,
		Messages:  wire,
		Model:     a.model,
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		a.hist.ApplyError(err.Error())
		return nil, err
	}

	out := make(chan provider.StreamEvent, 10)
	go a.run(ctx, runID, events, out)
	return out, nil
}

// Generate performs a one-shot completion outside the conversation. The
// prompt is sent as the only message and the history is not touched. It
// blocks until the stream ends and returns the accumulated text, together
// with the terminal error when the stream failed partway.
func (a *Adapter) Generate(ctx context.Context, prompt string) (string, error) {
	prov := a.model.Provider()
	if c, ok := prov.(provider.Configurable); ok && !c.Configured() {
		return "", ErrNotConfigured
	}

	events, err := prov.ChatCompletion(ctx, provider.CompletionParams{
		RunID:     uuidx.New(),
		Messages:  []messages.WireMessage{{Role: messages.RoleUser, Content: prompt}},
		Model:     a.model,
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	for event := range events {
		switch ev := event.(type) {
		case provider.Delta:
			buf.WriteString(ev.Text)
		case provider.Error:
			return buf.String(), ev.Err
		}
	}
	return buf.String(), nil
}

// run drains the provider stream, applying deltas to the open assistant turn
// and forwarding every event downstream. The output channel is closed on all
// exit paths, including panics in listeners.
func (a *Adapter) run(ctx context.Context, runID uuid.UUID, in <-chan provider.StreamEvent, out chan<- provider.StreamEvent) {
	defer close(out)
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("stream handler panic: %v", r)
			a.hist.ApplyError(err.Error())
			out <- provider.Error{RunID: runID, Err: err, Timestamp: strfmt.DateTime(time.Now())}
		}
	}()

	var topic pubsub.Topic
	if a.broker != nil {
		topic = a.broker.Topic(ctx, a.topic)
	}

	for event := range in {
		switch ev := event.(type) {
		case provider.Delta:
			out <- ev
			a.hist.ApplyDelta(ev.Text)
			a.publish(ctx, topic, ev)
		case provider.Error:
			slog.Debug("stream ended with terminal error",
				slogx.Error(ev.Err), slogx.Stringer("run_id", runID))
			a.hist.ApplyError(ev.Err.Error())
			out <- ev
			a.publish(ctx, topic, ev)
			return
		case provider.Delim:
			out <- ev
			a.publish(ctx, topic, ev)
		}
	}
	a.hist.Finalize()
}

func (a *Adapter) publish(ctx context.Context, topic pubsub.Topic, event provider.StreamEvent) {
	if topic == nil {
		return
	}
	if err := topic.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish stream event", slogx.Error(err), slog.String("topic", a.topic))
	}
}

// composePrompt renders the prompt the model sees. Attachments are not
// uploaded; their descriptions ride along with the text.
func composePrompt(prompt string, attachments []messages.Attachment) string {
	if len(attachments) == 0 {
		return prompt
	}
	described := messages.DescribeAll(attachments)
	if strings.TrimSpace(prompt) == "" {
		return described
	}
	return prompt + "\n\n" + described
}
