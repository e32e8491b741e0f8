package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/narwhalmedia/phimdash/internal/events"
)

// Publisher implements events.Publisher using NATS JetStream
type Publisher struct {
	client  *Client
	cleanup func()
	logger  *zap.Logger
}

// NewPublisher creates a new NATS event publisher. cleanup, when set, is
// called by Close.
func NewPublisher(client *Client, cleanup func(), logger *zap.Logger) *Publisher {
	return &Publisher{
		client:  client,
		cleanup: cleanup,
		logger:  logger.Named("publisher"),
	}
}

// Publish publishes an envelope to its subject
func (p *Publisher) Publish(ctx context.Context, envelope *events.Envelope) error {
	subject := envelope.Subject()

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// The envelope id doubles as the JetStream deduplication key.
	ack, err := p.client.JetStream().Publish(pubCtx, subject, data, jetstream.WithMsgID(envelope.ID.String()))
	if err != nil {
		p.logger.Error("failed to publish event",
			zap.Error(err),
			zap.String("event_id", envelope.ID.String()),
			zap.String("event_type", string(envelope.Type)),
			zap.String("subject", subject),
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info("event published",
		zap.String("event_id", envelope.ID.String()),
		zap.String("event_type", string(envelope.Type)),
		zap.String("subject", subject),
		zap.Uint64("sequence", ack.Sequence),
		zap.String("stream", ack.Stream),
	)

	return nil
}

// Close drains the underlying connection
func (p *Publisher) Close() error {
	if p.cleanup != nil {
		p.cleanup()
	}
	return nil
}
