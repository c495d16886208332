package anthropic

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/casualjim/strix/messages"
	"github.com/casualjim/strix/provider"
	"github.com/fogfish/opts"
	"github.com/go-openapi/strfmt"
	json "github.com/goccy/go-json"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultVersion   = "2023-06-01"
	defaultMaxTokens = 4096
	messagesPath     = "/v1/messages"
	apiKeyEnvVar     = "ANTHROPIC_API_KEY"
)

// Doer is the transport contract the provider consumes. *http.Client
// satisfies it. Socket-level concerns such as pooling, TLS, and timeouts
// belong to the Doer, not to the provider.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

var (
	// WithAPIKey sets the API key. When unset the ANTHROPIC_API_KEY
	// environment variable is used.
	WithAPIKey = opts.ForName[Provider, string]("apiKey")
	// WithBaseURL overrides the endpoint base URL, useful for proxies.
	WithBaseURL = opts.ForName[Provider, string]("baseURL")
	// WithVersion overrides the API version header value.
	WithVersion = opts.ForName[Provider, string]("version")
	// WithHTTPClient overrides the transport.
	WithHTTPClient = opts.ForName[Provider, Doer]("client")
)

var (
	_ provider.Provider     = (*Provider)(nil)
	_ provider.Configurable = (*Provider)(nil)
)

// Provider streams completions from the Anthropic messages endpoint.
type Provider struct {
	apiKey  string
	baseURL string
	version string
	client  Doer
}

// New creates a Provider with the given options applied over defaults.
func New(options ...opts.Option[Provider]) *Provider {
	p := &Provider{
		apiKey:  os.Getenv(apiKeyEnvVar),
		baseURL: defaultBaseURL,
		version: defaultVersion,
		client:  http.DefaultClient,
	}
	if err := opts.Apply(p, options); err != nil {
		panic(err)
	}
	return p
}

// Configured reports whether a credential is available.
func (p *Provider) Configured() bool {
	return strings.TrimSpace(p.apiKey) != ""
}

type completionRequest struct {
	Model     string                 `json:"model"`
	Messages  []messages.WireMessage `json:"messages"`
	Stream    bool                   `json:"stream"`
	MaxTokens int                    `json:"max_tokens"`
}

func (p *Provider) buildRequest(ctx context.Context, params *provider.CompletionParams) (*http.Request, error) {
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(completionRequest{
		Model:     params.Model.Name(),
		Messages:  params.Messages,
		Stream:    true,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-Api-Key", p.apiKey)
	req.Header.Set("Anthropic-Version", p.version)

	return req, nil
}

// ChatCompletion issues one streaming completion call. The returned channel
// carries zero or more deltas and is always closed; a failure is delivered as
// a single terminal Error event before the close.
func (p *Provider) ChatCompletion(ctx context.Context, params provider.CompletionParams) (<-chan provider.StreamEvent, error) {
	req, err := p.buildRequest(ctx, &params)
	if err != nil {
		return nil, err
	}

	events := make(chan provider.StreamEvent, 10)
	go func() {
		defer close(events)
		p.runStream(ctx, req, &params, events)
	}()
	return events, nil
}

func (p *Provider) runStream(ctx context.Context, req *http.Request, params *provider.CompletionParams, events chan<- provider.StreamEvent) {
	fail := func(err error) {
		events <- provider.Error{
			RunID:     params.RunID,
			Err:       err,
			Timestamp: strfmt.DateTime(time.Now()),
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		fail(fmt.Errorf("transport: %w", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fail(classifyResponse(resp))
		return
	}

	asm := newAssembler()
	var notFirst bool

	emitDelta := func(text string) {
		if !notFirst {
			notFirst = true
			events <- provider.Delim{RunID: params.RunID, Delim: "start"}
		}
		events <- provider.Delta{
			RunID:     params.RunID,
			Text:      text,
			Timestamp: strfmt.DateTime(time.Now()),
		}
	}

	// handleFrames dispatches assembled frames; it reports whether the stream
	// reached a terminal condition.
	handleFrames := func(frames []frame) (done bool, terminal error) {
		for _, fr := range frames {
			switch fr.kind {
			case frameDone:
				return true, nil
			case frameRawError:
				return true, classifyRaw(fr.raw)
			case frameText:
				emitDelta(fr.raw)
			case framePayload:
				if text, ok := extractText(fr.payload); ok {
					emitDelta(text)
					continue
				}
				if ev, ok := errorPayload(fr.payload); ok {
					return true, classify(ev)
				}
				slog.Debug("stream event carries no displayable text",
					slog.String("event_type", fr.payload.Get("type").String()))
			}
		}
		return false, nil
	}

	buf := make([]byte, 4096)
	for {
		// Cancellation is cooperative: checked before awaiting the next chunk.
		// Any buffered partial fragment dies with the assembler.
		if err := ctx.Err(); err != nil {
			fail(err)
			return
		}

		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			done, terminal := handleFrames(asm.Feed(buf[:n]))
			if terminal != nil {
				fail(terminal)
				return
			}
			if done {
				if notFirst {
					events <- provider.Delim{RunID: params.RunID, Delim: "end"}
				}
				return
			}
		}
		if rerr != nil {
			if rerr != io.EOF {
				if err := ctx.Err(); err != nil {
					fail(err)
					return
				}
				fail(fmt.Errorf("transport: %w", rerr))
				return
			}
			break
		}
	}

	// End of stream without the sentinel: flush the assembler.
	if _, terminal := handleFrames(asm.Close()); terminal != nil {
		fail(terminal)
		return
	}
	if notFirst {
		events <- provider.Delim{RunID: params.RunID, Delim: "end"}
	}
}
