package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	// Crawl events
	EventTypeCrawlCompleted EventType = "crawl.completed"

	// Trash events
	EventTypeTrashRestored EventType = "trash.restored"
	EventTypeTrashPurged   EventType = "trash.purged"
)

// Envelope wraps an event payload with metadata for transport
type Envelope struct {
	ID          uuid.UUID       `json:"id"`
	Type        EventType       `json:"type"`
	AggregateID string          `json:"aggregate_id,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Data        json.RawMessage `json:"data"`
}

// NewEnvelope creates a new envelope with the given type and data
func NewEnvelope(eventType EventType, aggregateID string, data interface{}) (*Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return &Envelope{
		ID:          uuid.New(),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Data:        raw,
	}, nil
}

// UnmarshalData unmarshals the event data into the given value
func (e *Envelope) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Subject returns the broker subject for this event
func (e *Envelope) Subject() string {
	return SubjectPrefix + string(e.Type)
}

// SubjectPrefix namespaces every subject and topic key.
const SubjectPrefix = "phimdash."

// CrawlCompleted is published when a crawl log reaches a terminal status.
type CrawlCompleted struct {
	LogID    uuid.UUID `json:"log_id"`
	Label    string    `json:"label"`
	Status   string    `json:"status"`
	Added    int       `json:"added"`
	Updated  int       `json:"updated"`
	Failed   int       `json:"failed"`
	Duration string    `json:"duration"`
	Message  string    `json:"message,omitempty"`
}

// TrashChanged is published when trashed rows are restored or purged.
type TrashChanged struct {
	Kind  string      `json:"kind"`
	IDs   []uuid.UUID `json:"ids,omitempty"`
	Count int64       `json:"count"`
}
