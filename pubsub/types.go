// Package pubsub fans stream events out to observers. A broker hands out
// topics; subscriptions forward events to hooks. Two implementations exist:
// an in-process broker and a NATS-backed one for out-of-process observers.
package pubsub

import (
	"context"

	"github.com/casualjim/strix/provider"
)

// Broker hands out named topics.
type Broker interface {
	Topic(ctx context.Context, id string) Topic
}

// Topic is a named event channel observers can subscribe to.
type Topic interface {
	Publish(ctx context.Context, event provider.StreamEvent) error
	Subscribe(ctx context.Context, hook Hook) (Subscription, error)
}

// Subscription represents an active topic registration.
type Subscription interface {
	ID() string
	Unsubscribe()
}

// Hook receives the events forwarded by a subscription. Delim events are
// stream control and are not forwarded.
type Hook interface {
	OnDelta(ctx context.Context, delta provider.Delta)
	OnError(ctx context.Context, err error)
}

// HookFuncs adapts plain functions to the Hook interface. Nil functions are
// skipped.
type HookFuncs struct {
	Delta func(ctx context.Context, delta provider.Delta)
	Err   func(ctx context.Context, err error)
}

// OnDelta calls the Delta function when set.
func (h HookFuncs) OnDelta(ctx context.Context, delta provider.Delta) {
	if h.Delta != nil {
		h.Delta(ctx, delta)
	}
}

// OnError calls the Err function when set.
func (h HookFuncs) OnError(ctx context.Context, err error) {
	if h.Err != nil {
		h.Err(ctx, err)
	}
}
