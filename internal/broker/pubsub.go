package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/johndosdos/atalaia/internal/model"
)

// EnsureStream creates or updates the chat stream. JetStream drops publishes
// whose message ID was already seen inside the duplicates window.
func EnsureStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{SubjectAll},
		MaxBytes:   1 << 30, // 1GB max storage
		Duplicates: 2 * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create/update stream: %w", err)
	}
	return stream, nil
}

// Publisher writes persisted chat messages to the change feed.
type Publisher struct {
	js jetstream.JetStream
}

func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// Publish sends payload on its neighborhood subject and returns the stream
// sequence. A resend within the duplicates window is dropped by the stream.
func (p *Publisher) Publish(ctx context.Context, payload model.ChatMessage) (uint64, error) {
	if p == nil || p.js == nil {
		return 0, fmt.Errorf("jetstream interface is nil")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("could not encode payload to JSON: %w", err)
	}

	msgID := DedupID(payload)
	subject := SubjectFor(payload.NeighborhoodID)
	pubAck, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(msgID))
	if err != nil {
		return 0, fmt.Errorf("failed to publish to stream [%s]: %w", subject, err)
	}
	if pubAck.Duplicate {
		slog.DebugContext(ctx, "duplicate publish dropped by stream",
			"subject", subject,
			"msg_id", msgID)
	}

	return pubAck.Sequence, nil
}

// DedupID is the JetStream message ID of a persisted message. The store
// returns one row per user and token, so resends share the row ID.
func DedupID(msg model.ChatMessage) string {
	if msg.ID != uuid.Nil {
		return msg.ID.String()
	}
	return msg.UserID.String() + ":" + msg.ClientMsgID
}

// Subscriber consumes new messages from every neighborhood subject and feeds
// them to receiveMsg until ctx is done.
func Subscriber(ctx context.Context, stream jetstream.Stream, receiveMsg chan<- model.ChatMessage) error {
	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		DeliverPolicy: jetstream.DeliverNewPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		FilterSubject: SubjectAll,
	})
	if err != nil {
		return fmt.Errorf("failed to create or update consumer: %w", err)
	}

	consumeHandler := func(msg jetstream.Msg) {
		payload, err := decode(msg.Data())
		if err != nil {
			slog.Warn("could not decode payload",
				"subject", msg.Subject(),
				"error", err)
			_ = msg.Term()
			return
		}

		_ = msg.Ack()

		select {
		case receiveMsg <- payload:
		case <-ctx.Done():
		}
	}

	optErrHandler := jetstream.ConsumeErrHandler(func(cc jetstream.ConsumeContext, err error) {
		slog.Error("consumer error", "error", err)
	})

	consumeCtx, err := consumer.Consume(consumeHandler, optErrHandler)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	go func(ctx context.Context, consumeCtx jetstream.ConsumeContext) {
		<-ctx.Done()
		consumeCtx.Drain()
	}(ctx, consumeCtx)

	return nil
}

func decode(data []byte) (model.ChatMessage, error) {
	var payload model.ChatMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return model.ChatMessage{}, err
	}
	payload.Pending = false
	return payload, nil
}
