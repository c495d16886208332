package pubsub

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alphadose/haxmap"
	"github.com/casualjim/strix/pkg/slogx"
	"github.com/casualjim/strix/pkg/uuidx"
	"github.com/casualjim/strix/provider"
	"github.com/nats-io/nats.go"
)

type natsBroker struct {
	client *nats.Conn
	topics *haxmap.Map[string, *natsTopic]
}

// NATS creates a broker backed by a NATS connection, letting observers in
// other processes follow a conversation stream.
func NATS(client *nats.Conn) Broker {
	return &natsBroker{
		client: client,
		topics: haxmap.New[string, *natsTopic](),
	}
}

func (b *natsBroker) Topic(ctx context.Context, id string) Topic {
	top, _ := b.topics.GetOrCompute(id, func() *natsTopic {
		return &natsTopic{
			subject: id,
			client:  b.client,
		}
	})
	return top
}

type natsTopic struct {
	client  *nats.Conn
	subject string
}

func (t *natsTopic) Publish(ctx context.Context, event provider.StreamEvent) error {
	eb, err := provider.ToJSON(event)
	if err != nil {
		return err
	}
	return t.client.Publish(t.subject, eb)
}

func (t *natsTopic) Subscribe(ctx context.Context, hook Hook) (Subscription, error) {
	if hook == nil {
		return nil, fmt.Errorf("hook is required")
	}

	nsub, err := t.client.Subscribe(t.subject, func(msg *nats.Msg) {
		handleMessage(ctx, msg.Data, hook)
	})
	if err != nil {
		return nil, err
	}

	return &natsSubscription{
		id:  uuidx.NewString(),
		sub: nsub,
	}, nil
}

// handleMessage decodes one wire payload and forwards it to the hook. An
// undecodable payload is logged and skipped so one bad message cannot wedge
// the subscription.
func handleMessage(ctx context.Context, data []byte, hook Hook) {
	event, err := provider.FromJSON(data)
	if err != nil {
		slog.Error("failed to unmarshal stream event", slogx.Error(err))
		return
	}
	forward(ctx, event, hook)
}

type natsSubscription struct {
	id  string
	sub *nats.Subscription
}

func (n *natsSubscription) ID() string {
	return n.id
}

func (n *natsSubscription) Unsubscribe() {
	if err := n.sub.Unsubscribe(); err != nil {
		slog.Error("failed to unsubscribe", slogx.Error(err), slog.String("subscription", n.id))
	}
}
