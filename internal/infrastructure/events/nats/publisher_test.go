package nats_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/narwhalmedia/phimdash/internal/config"
	"github.com/narwhalmedia/phimdash/internal/events"
	"github.com/narwhalmedia/phimdash/internal/infrastructure/events/nats"
)

func TestPublisher_Publish(t *testing.T) {
	cfg := config.NATSConfig{
		URL:           "nats://localhost:4222",
		ClientID:      "test-publisher",
		Stream:        "CATALOG_EVENTS_TEST",
		MaxReconnect:  5,
		ReconnectWait: time.Second,
	}

	logger := zaptest.NewLogger(t)

	// Skip if NATS is not available
	client, cleanup, err := nats.NewClient(cfg, logger)
	if err != nil {
		t.Skip("NATS not available:", err)
	}

	publisher := nats.NewPublisher(client, cleanup, logger)
	defer publisher.Close()

	ctx := context.Background()
	require.NoError(t, client.Health(ctx))

	logID := uuid.New()
	envelope, err := events.NewEnvelope(events.EventTypeCrawlCompleted, logID.String(), events.CrawlCompleted{
		LogID:  logID,
		Label:  "Crawl movie: dune-2",
		Status: "success",
		Added:  1,
	})
	require.NoError(t, err)

	require.NoError(t, publisher.Publish(ctx, envelope))

	stream, err := client.JetStream().Stream(ctx, cfg.Stream)
	require.NoError(t, err)

	msg, err := stream.GetLastMsgForSubject(ctx, envelope.Subject())
	require.NoError(t, err)

	var received events.Envelope
	require.NoError(t, json.Unmarshal(msg.Data, &received))
	assert.Equal(t, envelope.ID, received.ID)
	assert.Equal(t, events.EventTypeCrawlCompleted, received.Type)
	assert.Equal(t, envelope.ID.String(), msg.Header.Get(jetstream.MsgIDHeader))
}
