package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/internal/events"
)

// Progress is a snapshot of a running crawl.
type Progress struct {
	Fraction float64 `json:"fraction"`
	Message  string  `json:"message"`
}

// ProgressFunc receives progress updates. It may be nil.
type ProgressFunc func(Progress)

func (f ProgressFunc) report(fraction float64, format string, args ...interface{}) {
	if f == nil {
		return
	}
	if fraction > 1 {
		fraction = 1
	}
	f(Progress{Fraction: fraction, Message: fmt.Sprintf(format, args...)})
}

// LogSummary is the terminal state of a batch crawl.
type LogSummary struct {
	LogID    uuid.UUID          `json:"log_id"`
	Label    string             `json:"label"`
	Status   domain.CrawlStatus `json:"status"`
	Added    int                `json:"added"`
	Updated  int                `json:"updated"`
	Failed   int                `json:"failed"`
	Duration string             `json:"duration"`
	Message  string             `json:"message,omitempty"`
}

// batchRun accumulates the counts of one batch invocation.
type batchRun struct {
	log     *domain.CrawlLog
	started time.Time
	added   int
	updated int
	failed  int
}

func (r *batchRun) record(res Result) {
	switch {
	case !res.Success:
		r.failed++
	case res.Updated:
		r.updated++
	default:
		r.added++
	}
}

// SynchronizeByPageRange crawls every movie listed on pages from..to of the
// newest-updated listing.
func (s *Synchronizer) SynchronizeByPageRange(ctx context.Context, from, to int, progress ProgressFunc) (*LogSummary, error) {
	if from < 1 || to < 1 || from > to {
		return nil, fmt.Errorf("%w: from=%d to=%d", domain.ErrInvalidPageRange, from, to)
	}

	run, err := s.startRun(ctx, fmt.Sprintf("Crawl pages %d -> %d", from, to))
	if err != nil {
		return nil, err
	}

	totalPages := float64(to - from + 1)
	for page := from; page <= to; page++ {
		if err := ctx.Err(); err != nil {
			return s.abortRun(ctx, run, err)
		}

		done := float64(page - from)
		progress.report(done/totalPages, "Fetching page %d/%d", page, to)

		list, err := s.source.ListNewMovies(ctx, page)
		if err != nil {
			return s.abortRun(ctx, run, fmt.Errorf("failed to fetch page %d: %w", page, err))
		}
		if list == nil || len(list.Items) == 0 {
			s.logger.Info("empty listing page", zap.Int("page", page))
			continue
		}

		n := len(list.Items)
		for i, item := range list.Items {
			if err := ctx.Err(); err != nil {
				return s.abortRun(ctx, run, err)
			}
			progress.report((done+float64(i)/float64(n))/totalPages, "Page %d: crawling %d/%d - %s", page, i+1, n, item.Name)

			run.record(s.SynchronizeOne(ctx, item.Slug))

			progress.report((done+float64(i+1)/float64(n))/totalPages, "Page %d: %d/%d done", page, i+1, n)
		}
	}

	return s.completeRun(ctx, run)
}

// SynchronizeByURLList crawls one movie per non-blank line of text. Lines
// without a /phim/<slug> segment count as failures.
func (s *Synchronizer) SynchronizeByURLList(ctx context.Context, text string, progress ProgressFunc) (*LogSummary, error) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, domain.ErrEmptyInput
	}

	run, err := s.startRun(ctx, fmt.Sprintf("Bulk crawl (%d movies)", len(lines)))
	if err != nil {
		return nil, err
	}

	n := float64(len(lines))
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return s.abortRun(ctx, run, err)
		}

		slug, err := domain.ExtractSlug(line)
		if err != nil {
			s.logger.Warn("skipping invalid url", zap.String("url", line))
			run.failed++
		} else {
			progress.report(float64(i)/n, "Crawling %d/%d - %s", i+1, len(lines), slug)
			run.record(s.SynchronizeOne(ctx, slug))
		}

		progress.report(float64(i+1)/n, "%d/%d done", i+1, len(lines))
	}

	return s.completeRun(ctx, run)
}

// SynchronizeSingle crawls the movie named by rawURL and writes one
// terminal log entry for the attempt. Only a malformed URL or a failed log
// write are returned as errors.
func (s *Synchronizer) SynchronizeSingle(ctx context.Context, rawURL string) (Result, error) {
	slug, err := domain.ExtractSlug(rawURL)
	if err != nil {
		return Result{}, err
	}

	started := s.now()
	result := s.SynchronizeOne(ctx, slug)

	log := domain.NewCrawlLog("Crawl movie: "+slug, started)
	status := domain.CrawlError
	var added, updated int
	if result.Success {
		status = domain.CrawlSuccess
		if result.Updated {
			updated = 1
		} else {
			added = 1
		}
	}
	if err := log.Finish(status, added, updated, s.now().Sub(started), result.Message); err != nil {
		return result, err
	}

	if err := s.repo.CreateCrawlLog(context.WithoutCancel(ctx), log); err != nil {
		return result, fmt.Errorf("failed to write crawl log: %w", err)
	}

	result.LogID = log.ID
	failed := 0
	if !result.Success {
		failed = 1
	}
	s.publishCompleted(ctx, summaryOf(log, failed))
	return result, nil
}

// RecentLogs lists the latest crawl logs, newest first. A non-positive
// limit uses the repository default.
func (s *Synchronizer) RecentLogs(ctx context.Context, limit int) ([]*domain.CrawlLog, error) {
	return s.repo.ListCrawlLogs(ctx, limit)
}

func (s *Synchronizer) startRun(ctx context.Context, label string) (*batchRun, error) {
	started := s.now()
	log := domain.NewCrawlLog(label, started)
	if err := s.repo.CreateCrawlLog(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to create crawl log: %w", err)
	}
	s.logger.Info("crawl started", zap.String("log_id", log.ID.String()), zap.String("label", label))
	return &batchRun{log: log, started: started}, nil
}

// completeRun moves the log to success. Item failures only add a message.
func (s *Synchronizer) completeRun(ctx context.Context, run *batchRun) (*LogSummary, error) {
	message := ""
	if run.failed > 0 {
		message = fmt.Sprintf("%d movies failed", run.failed)
	}
	return s.closeRun(ctx, run, domain.CrawlSuccess, message)
}

// abortRun moves the log to error with the counts reached so far and
// returns cause to the caller.
func (s *Synchronizer) abortRun(ctx context.Context, run *batchRun, cause error) (*LogSummary, error) {
	summary, err := s.closeRun(ctx, run, domain.CrawlError, cause.Error())
	if err != nil {
		return summary, fmt.Errorf("%w (closing log: %v)", cause, err)
	}
	return summary, cause
}

func (s *Synchronizer) closeRun(ctx context.Context, run *batchRun, status domain.CrawlStatus, message string) (*LogSummary, error) {
	if err := run.log.Finish(status, run.added, run.updated, s.now().Sub(run.started), message); err != nil {
		return nil, err
	}

	// The terminal write must land even when ctx was cancelled mid-run.
	if err := s.repo.UpdateCrawlLog(context.WithoutCancel(ctx), run.log); err != nil {
		return nil, fmt.Errorf("failed to update crawl log: %w", err)
	}

	summary := summaryOf(run.log, run.failed)
	s.logger.Info("crawl finished",
		zap.String("log_id", summary.LogID.String()),
		zap.String("status", string(summary.Status)),
		zap.Int("added", summary.Added),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed),
		zap.String("duration", summary.Duration),
	)
	s.publishCompleted(ctx, summary)
	return summary, nil
}

func (s *Synchronizer) publishCompleted(ctx context.Context, summary *LogSummary) {
	events.Emit(context.WithoutCancel(ctx), s.publisher, s.logger, events.EventTypeCrawlCompleted, summary.LogID.String(), events.CrawlCompleted{
		LogID:    summary.LogID,
		Label:    summary.Label,
		Status:   string(summary.Status),
		Added:    summary.Added,
		Updated:  summary.Updated,
		Failed:   summary.Failed,
		Duration: summary.Duration,
		Message:  summary.Message,
	})
}

func summaryOf(log *domain.CrawlLog, failed int) *LogSummary {
	return &LogSummary{
		LogID:    log.ID,
		Label:    log.Type,
		Status:   log.Status,
		Added:    log.MoviesAdded,
		Updated:  log.MoviesUpdated,
		Failed:   failed,
		Duration: log.Duration,
		Message:  log.Message,
	}
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
