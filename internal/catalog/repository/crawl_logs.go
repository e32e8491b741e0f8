package repository

import (
	"context"
	"fmt"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/pkg/repository"
)

// DefaultCrawlLogLimit is the number of logs returned when no limit is given.
const DefaultCrawlLogLimit = 50

// CreateCrawlLog inserts a crawl log.
func (r *GormRepository) CreateCrawlLog(ctx context.Context, log *domain.CrawlLog) error {
	model := crawlLogFromDomain(log)
	if err := repository.Create(ctx, r.db, model); err != nil {
		return fmt.Errorf("failed to create crawl log: %w", err)
	}
	log.ID = model.ID
	log.CreatedAt = model.CreatedAt
	return nil
}

// UpdateCrawlLog writes the status, counters, duration and message.
func (r *GormRepository) UpdateCrawlLog(ctx context.Context, log *domain.CrawlLog) error {
	model := crawlLogFromDomain(log)
	err := repository.UpdateColumns(ctx, r.db, log.ID, model,
		"status", "movies_added", "movies_updated", "duration", "message")
	if err != nil {
		return fmt.Errorf("failed to update crawl log: %w", err)
	}
	return nil
}

// ListCrawlLogs lists the latest crawl logs, newest first.
func (r *GormRepository) ListCrawlLogs(ctx context.Context, limit int) ([]*domain.CrawlLog, error) {
	if limit <= 0 {
		limit = DefaultCrawlLogLimit
	}

	var models []CrawlLogModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list crawl logs: %w", err)
	}
	logs := make([]*domain.CrawlLog, len(models))
	for i := range models {
		logs[i] = models[i].toDomain()
	}
	return logs, nil
}
