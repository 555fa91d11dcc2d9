// Package eventbus provides the in-process message bus the module routers publish to and
// consume from.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/dojo-portal/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventBus is both ends of the bus.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

type goChannelBus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

// NewGoChannelBus creates a bus backed by watermill's go channel pub/sub.
func NewGoChannelBus(logger *slog.Logger, bufferSize int64) EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &goChannelBus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: bufferSize,
		}, watermill.NewSlogLogger(logger)),
		logger: logger,
	}
}

// Publish sends msgs to topic. Routers register handlers with an empty publish topic; in
// that case each message goes to the topic named in its metadata.
func (b *goChannelBus) Publish(topic string, msgs ...*message.Message) error {
	if topic != "" {
		return b.pubsub.Publish(topic, msgs...)
	}
	for _, msg := range msgs {
		t := msg.Metadata.Get(handlerwrapper.TopicMetadataKey)
		if t == "" {
			return fmt.Errorf("message %s has no topic set in metadata", msg.UUID)
		}
		b.logger.Debug("Publishing message",
			slog.String("topic", t),
			slog.String("message_id", msg.UUID),
		)
		if err := b.pubsub.Publish(t, msg); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", t, err)
		}
	}
	return nil
}

func (b *goChannelBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *goChannelBus) Close() error {
	return b.pubsub.Close()
}
