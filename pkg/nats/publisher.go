package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/stocksync/pkg/messaging"
	"github.com/nats-io/nats.go/jetstream"
)

var _ messaging.Publisher = (*NatsPublisher)(nil)

// NatsPublisher publishes events to JetStream, using the event subject as the message subject.
type NatsPublisher struct {
	js jetstream.JetStream
}

func NewNatsPublisher(js jetstream.JetStream) *NatsPublisher {
	return &NatsPublisher{js: js}
}

// Publish waits for the JetStream acknowledgement. Events implementing messaging.Identified are
// published with a Nats-Msg-Id header so the stream drops redeliveries within its duplicate window.
func (p *NatsPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	var opts []jetstream.PublishOpt
	if identified, ok := event.(messaging.Identified); ok {
		opts = append(opts, jetstream.WithMsgID(identified.MessageID()))
	}
	if _, err = p.js.Publish(ctx, event.Subject(), data, opts...); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Subject(), err)
	}
	return nil
}
