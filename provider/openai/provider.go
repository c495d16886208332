package openai

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/casualjim/strix/messages"
	"github.com/casualjim/strix/provider"
	"github.com/go-openapi/strfmt"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	_ provider.Provider     = (*Provider)(nil)
	_ provider.Configurable = (*Provider)(nil)
)

type Provider struct {
	client *openai.Client
}

func New(options ...option.RequestOption) *Provider {
	client := openai.NewClient(options...)
	return &Provider{
		client: client,
	}
}

// Configured reports whether credentials are available. The SDK reads the
// key from the environment when no option supplies one.
func (p *Provider) Configured() bool {
	return strings.TrimSpace(os.Getenv("OPENAI_API_KEY")) != ""
}

func (p *Provider) buildRequest(params *provider.CompletionParams) openai.ChatCompletionNewParams {
	oaiParams := openai.ChatCompletionNewParams{
		Messages: openai.F(wireToOpenAI(params.Messages)),
		Model:    openai.F(params.Model.Name()),
		N:        openai.Int(1),
	}
	if params.MaxTokens > 0 {
		oaiParams.MaxTokens = openai.Int(int64(params.MaxTokens))
	}
	return oaiParams
}

func (p *Provider) ChatCompletion(ctx context.Context, params provider.CompletionParams) (<-chan provider.StreamEvent, error) {
	chatParams := p.buildRequest(&params)

	events := make(chan provider.StreamEvent, 10)
	go func() {
		defer close(events)
		p.runStream(ctx, chatParams, &params, events)
	}()
	return events, nil
}

func (p *Provider) runStream(ctx context.Context, params openai.ChatCompletionNewParams, command *provider.CompletionParams, events chan<- provider.StreamEvent) {
	strm := p.client.Chat.Completions.NewStreaming(ctx, params)

	if strm.Err() != nil {
		events <- provider.Error{
			Err:       strm.Err(),
			RunID:     command.RunID,
			Timestamp: strfmt.DateTime(time.Now()),
		}
		strm.Close()
		return
	}

	defer func() {
		strm.Close()
		if err := ctx.Err(); err != nil {
			events <- provider.Error{
				Err:       err,
				RunID:     command.RunID,
				Timestamp: strfmt.DateTime(time.Now()),
			}
		}
	}()

	var notFirst bool
	for strm.Next() {
		if ctx.Err() != nil {
			return
		}

		chunk := strm.Current()
		if strm.Err() != nil {
			events <- provider.Error{
				Err:       strm.Err(),
				RunID:     command.RunID,
				Timestamp: strfmt.DateTime(time.Now()),
			}
			return
		}

		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}

		if !notFirst {
			notFirst = true
			events <- provider.Delim{RunID: command.RunID, Delim: "start"}
		}
		events <- provider.Delta{
			RunID:     command.RunID,
			Text:      chunk.Choices[0].Delta.Content,
			Timestamp: strfmt.DateTime(time.Now()),
		}
	}

	if err := strm.Err(); err != nil && ctx.Err() == nil {
		events <- provider.Error{
			Err:       err,
			RunID:     command.RunID,
			Timestamp: strfmt.DateTime(time.Now()),
		}
		return
	}

	if notFirst && ctx.Err() == nil {
		events <- provider.Delim{RunID: command.RunID, Delim: "end"}
	}
}

func wireToOpenAI(msgs []messages.WireMessage) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case messages.RoleUser:
			result = append(result, openai.UserMessageParts(openai.TextPart(msg.Content)))
		case messages.RoleAssistant:
			am := openai.ChatCompletionAssistantMessageParam{
				Role: openai.F(openai.ChatCompletionAssistantMessageParamRoleAssistant),
			}
			am.Content.Value = append(am.Content.Value, openai.TextPart(msg.Content))
			result = append(result, am)
		}
	}
	return result
}
