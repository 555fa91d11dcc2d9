// Package handlerwrapper adapts typed event handlers to watermill handler functions.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/dojo-portal/pkg/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/trace"
)

// TopicMetadataKey is the metadata key carrying the topic an outgoing message is meant for.
const TopicMetadataKey = "topic"

// Result is one outgoing event produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// TypedHandler handles a decoded payload and returns the events to publish.
type TypedHandler[T any] func(ctx context.Context, payload *T) ([]Result, error)

// WrapTransformingTyped decodes the JSON payload of an incoming message into T, runs h
// and encodes every returned Result as an outgoing message. The correlation id of the
// incoming message is carried over.
func WrapTransformingTyped[T any](handlerName string, logger *slog.Logger, tracer trace.Tracer, h TypedHandler[T]) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := msg.Context()
		correlationID := middleware.MessageCorrelationID(msg)
		ctx = attr.WithCorrelationID(ctx, correlationID)

		var span trace.Span
		if tracer != nil {
			ctx, span = tracer.Start(ctx, handlerName)
			defer span.End()
		}

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Failed to unmarshal payload",
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			// A payload that cannot be decoded never will be; drop it instead of redelivering.
			return nil, nil
		}

		out, err := h(ctx, payload)
		if err != nil {
			if span != nil {
				span.RecordError(err)
			}
			return nil, fmt.Errorf("%s: %w", handlerName, err)
		}

		msgs := make([]*message.Message, 0, len(out))
		for _, r := range out {
			m, err := newMessage(r, correlationID)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", handlerName, err)
			}
			msgs = append(msgs, m)
		}
		return msgs, nil
	}
}

func newMessage(r Result, correlationID string) (*message.Message, error) {
	body, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", r.Topic, err)
	}
	m := message.NewMessage(watermill.NewUUID(), body)
	for k, v := range r.Metadata {
		m.Metadata.Set(k, v)
	}
	m.Metadata.Set(TopicMetadataKey, r.Topic)
	if correlationID != "" {
		middleware.SetCorrelationID(correlationID, m)
	}
	return m, nil
}
