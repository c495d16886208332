package openai

import (
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/casualjim/strix/provider"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var modelRegistry = haxmap.New[string, provider.Model]()

func GPT4oMini(opts ...option.RequestOption) provider.Model {
	return Model(openai.ChatModelGPT4oMini, opts...)
}

func GPT4o(opts ...option.RequestOption) provider.Model {
	return Model(openai.ChatModelChatgpt4oLatest, opts...)
}

func O1Mini(opts ...option.RequestOption) provider.Model {
	return Model(openai.ChatModelO1Mini, opts...)
}

func O1(opts ...option.RequestOption) provider.Model {
	return Model(openai.ChatModelO1, opts...)
}

// Model returns the registered model for name, creating it on first use.
// The provider is built lazily from the request options.
func Model(name string, opts ...option.RequestOption) provider.Model {
	m, _ := modelRegistry.GetOrCompute(name, func() provider.Model {
		return &model{
			name: name,
			opts: opts,
		}
	})
	return m
}

var _ provider.Model = (*model)(nil)

type model struct {
	name string
	opts []option.RequestOption

	prov     provider.Provider
	provOnce sync.Once
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Provider() provider.Provider {
	m.provOnce.Do(func() {
		m.prov = New(m.opts...)
	})
	return m.prov
}
