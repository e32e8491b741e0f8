package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Publisher delivers envelopes to a broker.
type Publisher interface {
	Publish(ctx context.Context, envelope *Envelope) error
	Close() error
}

// Emit builds and publishes an event. Delivery failures are logged and
// never returned, so a broker outage cannot fail the operation that
// produced the event.
func Emit(ctx context.Context, pub Publisher, logger *zap.Logger, eventType EventType, aggregateID string, data interface{}) {
	envelope, err := NewEnvelope(eventType, aggregateID, data)
	if err != nil {
		logger.Error("failed to build event", zap.String("event_type", string(eventType)), zap.Error(err))
		return
	}
	if err := pub.Publish(ctx, envelope); err != nil {
		logger.Warn("failed to publish event",
			zap.String("event_type", string(eventType)),
			zap.String("event_id", envelope.ID.String()),
			zap.Error(err))
	}
}

// LogPublisher writes events to the log when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a log-only publisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.Named("events")}
}

func (p *LogPublisher) Publish(ctx context.Context, envelope *Envelope) error {
	p.logger.Info("event",
		zap.String("event_id", envelope.ID.String()),
		zap.String("event_type", string(envelope.Type)),
		zap.String("aggregate_id", envelope.AggregateID),
		zap.ByteString("data", envelope.Data),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// MemoryPublisher keeps published envelopes in memory.
type MemoryPublisher struct {
	mu        sync.Mutex
	envelopes []*Envelope
	err       error
}

// NewMemoryPublisher creates an in-memory publisher
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// FailWith makes subsequent Publish calls return err.
func (p *MemoryPublisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *MemoryPublisher) Publish(ctx context.Context, envelope *Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.envelopes = append(p.envelopes, envelope)
	return nil
}

func (p *MemoryPublisher) Close() error { return nil }

// Envelopes returns the published envelopes of the given type, or all of
// them when eventType is empty.
func (p *MemoryPublisher) Envelopes(eventType EventType) []*Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*Envelope
	for _, e := range p.envelopes {
		if eventType == "" || e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
