package strix

import (
	"github.com/casualjim/strix/provider"
	"github.com/casualjim/strix/pubsub"
	"github.com/fogfish/opts"
)

var (
	// WithModel selects the model the adapter sends completions to.
	WithModel = opts.ForName[Adapter, provider.Model]("model")

	// WithMaxTokens caps the tokens the service may generate per completion.
	// Zero leaves the provider default in place.
	WithMaxTokens = opts.ForName[Adapter, int]("maxTokens")

	// WithBroker publishes stream events to a broker topic so observers
	// outside the calling goroutine can follow the conversation.
	WithBroker = opts.ForName[Adapter, pubsub.Broker]("broker")

	// WithTopic overrides the broker topic name.
	WithTopic = opts.ForName[Adapter, string]("topic")
)
