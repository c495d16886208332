package anthropic

import (
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/casualjim/strix/provider"
	"github.com/fogfish/opts"
)

var modelRegistry = haxmap.New[string, provider.Model]()

// ClaudeSonnet returns the current Claude Sonnet model.
func ClaudeSonnet(options ...opts.Option[Provider]) provider.Model {
	return Model("claude-3-5-sonnet-20241022", options...)
}

// ClaudeHaiku returns the current Claude Haiku model.
func ClaudeHaiku(options ...opts.Option[Provider]) provider.Model {
	return Model("claude-3-5-haiku-20241022", options...)
}

// ClaudeOpus returns the current Claude Opus model.
func ClaudeOpus(options ...opts.Option[Provider]) provider.Model {
	return Model("claude-3-opus-20240229", options...)
}

// Model returns the registry entry for the named model, creating it on first
// use. The provider binding is lazy and created at most once.
func Model(name string, options ...opts.Option[Provider]) provider.Model {
	m, _ := modelRegistry.GetOrCompute(name, func() provider.Model {
		return &model{
			name:    name,
			options: options,
		}
	})
	return m
}

var _ provider.Model = (*model)(nil)

type model struct {
	name    string
	options []opts.Option[Provider]

	prov     provider.Provider
	provOnce sync.Once
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Provider() provider.Provider {
	m.provOnce.Do(func() {
		m.prov = New(m.options...)
	})
	return m.prov
}
