package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// CrawlStatus is the lifecycle state of a crawl log.
type CrawlStatus string

const (
	CrawlRunning CrawlStatus = "running"
	CrawlSuccess CrawlStatus = "success"
	CrawlError   CrawlStatus = "error"
)

// Terminal reports whether no further transition is allowed.
func (s CrawlStatus) Terminal() bool {
	return s == CrawlSuccess || s == CrawlError
}

// CrawlLog is the audit record of one crawl invocation. It is created as
// running and moved to success or error exactly once.
type CrawlLog struct {
	ID            uuid.UUID
	Type          string
	Status        CrawlStatus
	MoviesAdded   int
	MoviesUpdated int
	Duration      string
	Message       string
	CreatedAt     time.Time
}

// NewCrawlLog starts a running log with a human label.
func NewCrawlLog(label string, now time.Time) *CrawlLog {
	return &CrawlLog{
		ID:        uuid.New(),
		Type:      label,
		Status:    CrawlRunning,
		CreatedAt: now,
	}
}

// Finish moves the log to a terminal status.
func (l *CrawlLog) Finish(status CrawlStatus, added, updated int, elapsed time.Duration, message string) error {
	if l.Status.Terminal() {
		return ErrCrawlLogClosed
	}
	if !status.Terminal() {
		return fmt.Errorf("finish crawl log with %q: not a terminal status", status)
	}
	l.Status = status
	l.MoviesAdded = added
	l.MoviesUpdated = updated
	l.Duration = FormatDuration(elapsed)
	l.Message = message
	return nil
}

// FormatDuration renders elapsed time as whole seconds, e.g. "12s".
func FormatDuration(elapsed time.Duration) string {
	return fmt.Sprintf("%ds", int64(math.Round(elapsed.Seconds())))
}
