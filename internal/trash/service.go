package trash

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/internal/catalog/repository"
	"github.com/narwhalmedia/phimdash/internal/events"
	"github.com/narwhalmedia/phimdash/internal/infrastructure/storage"
	pkgerrors "github.com/narwhalmedia/phimdash/pkg/errors"
)

// Service manages soft deleted rows and trashed media files
type Service struct {
	repo      repository.Repository
	storage   storage.Storage
	publisher events.Publisher
	logger    *zap.Logger
	retention time.Duration
	now       func() time.Time
}

// NewService creates a new trash service. A non-positive retention falls
// back to domain.RetentionPeriod.
func NewService(repo repository.Repository, store storage.Storage, publisher events.Publisher, logger *zap.Logger, retention time.Duration) *Service {
	if retention <= 0 {
		retention = domain.RetentionPeriod
	}
	return &Service{
		repo:      repo,
		storage:   store,
		publisher: publisher,
		logger:    logger.Named("trash"),
		retention: retention,
		now:       time.Now,
	}
}

// Retention returns how long rows stay in the trash
func (s *Service) Retention() time.Duration {
	return s.retention
}

// List returns the trashed rows of a kind, newest deletion first, with the
// days left before the sweeper purges them.
func (s *Service) List(ctx context.Context, kind domain.TrashKind) ([]domain.TrashItem, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	items, err := s.repo.ListDeleted(ctx, kind)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range items {
		items[i].DaysRemaining = domain.DeletedAt(items[i].DeletedAt).DaysRemaining(now, s.retention)
	}
	return items, nil
}

// Restore takes rows out of the trash. Media files are moved back out of
// the trash folder first.
func (s *Service) Restore(ctx context.Context, kind domain.TrashKind, ids []uuid.UUID) (int64, error) {
	if err := checkIDs(kind, ids); err != nil {
		return 0, err
	}

	if kind == domain.TrashMedia {
		files, err := s.repo.GetDeletedMedia(ctx, ids)
		if err != nil {
			return 0, err
		}
		for _, f := range files {
			err := s.storage.Move(ctx, storage.TrashKey(f.FileName), f.FileName)
			if err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
				return 0, fmt.Errorf("failed to restore media %q: %w", f.FileName, err)
			}
			if err != nil {
				s.logger.Warn("trashed media file missing, dropping record", zap.String("file", f.FileName))
			}
		}
	}

	n, err := s.repo.Restore(ctx, kind, ids)
	if err != nil {
		return 0, err
	}

	s.logger.Info("restored from trash", zap.String("kind", string(kind)), zap.Int64("count", n))
	s.emit(ctx, events.EventTypeTrashRestored, kind, ids, n)
	return n, nil
}

// Purge permanently deletes trashed rows. Active rows are left alone.
func (s *Service) Purge(ctx context.Context, kind domain.TrashKind, ids []uuid.UUID) (int64, error) {
	if err := checkIDs(kind, ids); err != nil {
		return 0, err
	}

	n, err := s.purge(ctx, kind, ids)
	if err != nil {
		return 0, err
	}
	s.emit(ctx, events.EventTypeTrashPurged, kind, ids, n)
	return n, nil
}

// Empty purges every trashed row of a kind
func (s *Service) Empty(ctx context.Context, kind domain.TrashKind) (int64, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}

	var n int64
	var err error
	if kind == domain.TrashMedia {
		n, err = s.purgeMedia(ctx, func(domain.TrashItem) bool { return true })
	} else {
		n, err = s.repo.PurgeAll(ctx, kind)
	}
	if err != nil {
		return 0, err
	}

	s.logger.Info("trash emptied", zap.String("kind", string(kind)), zap.Int64("count", n))
	s.emit(ctx, events.EventTypeTrashPurged, kind, nil, n)
	return n, nil
}

// TrashMedia moves an uploaded file into the trash folder and records it.
func (s *Service) TrashMedia(ctx context.Context, fileName string) (*domain.MediaFile, error) {
	if fileName == "" {
		return nil, pkgerrors.BadRequest("file name is required")
	}

	trashed := storage.TrashKey(fileName)
	if err := s.storage.Move(ctx, fileName, trashed); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.ErrorTypeNotFound, "media "+fileName, err)
		}
		if errors.Is(err, storage.ErrInvalidKey) {
			return nil, pkgerrors.Invalid(err)
		}
		return nil, fmt.Errorf("failed to trash media %q: %w", fileName, err)
	}

	file := &domain.MediaFile{FileName: fileName, DeletedAt: s.now().UTC()}
	if err := s.repo.CreateDeletedMedia(ctx, file); err != nil {
		if moveErr := s.storage.Move(context.WithoutCancel(ctx), trashed, fileName); moveErr != nil {
			s.logger.Error("failed to move media back after record error",
				zap.String("file", fileName),
				zap.Error(moveErr))
		}
		return nil, err
	}

	s.logger.Info("media moved to trash", zap.String("file", fileName), zap.String("id", file.ID.String()))
	return file, nil
}

// SweepResult counts the rows purged per kind by one sweep
type SweepResult map[domain.TrashKind]int64

// Total sums the purged rows
func (r SweepResult) Total() int64 {
	var total int64
	for _, n := range r {
		total += n
	}
	return total
}

// Sweep purges every row that has been in the trash longer than the
// retention period. A failing kind does not stop the others.
func (s *Service) Sweep(ctx context.Context) (SweepResult, error) {
	// deleted_at is stored in UTC and compared as text on sqlite.
	now := s.now().UTC()
	cutoff := now.Add(-s.retention)
	result := make(SweepResult)

	var errs []error
	for _, kind := range domain.TrashKinds {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		var n int64
		var err error
		if kind == domain.TrashMedia {
			n, err = s.purgeMedia(ctx, func(item domain.TrashItem) bool {
				return domain.DeletedAt(item.DeletedAt).Expired(now, s.retention)
			})
		} else {
			n, err = s.repo.PurgeDeletedBefore(ctx, kind, cutoff)
		}
		if err != nil {
			s.logger.Error("sweep failed", zap.String("kind", string(kind)), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if n > 0 {
			result[kind] = n
			s.emit(ctx, events.EventTypeTrashPurged, kind, nil, n)
		}
	}

	s.logger.Info("trash sweep finished",
		zap.Time("cutoff", cutoff),
		zap.Int64("purged", result.Total()))
	return result, errors.Join(errs...)
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("trash sweep incomplete", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Service) purge(ctx context.Context, kind domain.TrashKind, ids []uuid.UUID) (int64, error) {
	if kind == domain.TrashMedia {
		files, err := s.repo.GetDeletedMedia(ctx, ids)
		if err != nil {
			return 0, err
		}
		for _, f := range files {
			if err := s.removeTrashed(ctx, f.FileName); err != nil {
				return 0, err
			}
		}
	}

	n, err := s.repo.Purge(ctx, kind, ids)
	if err != nil {
		return 0, err
	}
	s.logger.Info("purged from trash", zap.String("kind", string(kind)), zap.Int64("count", n))
	return n, nil
}

// purgeMedia removes the trashed files selected by keep and drops their
// records.
func (s *Service) purgeMedia(ctx context.Context, keep func(domain.TrashItem) bool) (int64, error) {
	items, err := s.repo.ListDeleted(ctx, domain.TrashMedia)
	if err != nil {
		return 0, err
	}

	var ids []uuid.UUID
	for _, item := range items {
		if !keep(item) {
			continue
		}
		if err := s.removeTrashed(ctx, item.Label); err != nil {
			return 0, err
		}
		ids = append(ids, item.ID)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.Purge(ctx, domain.TrashMedia, ids)
}

func (s *Service) removeTrashed(ctx context.Context, fileName string) error {
	err := s.storage.Remove(ctx, storage.TrashKey(fileName))
	if err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return fmt.Errorf("failed to remove trashed media %q: %w", fileName, err)
	}
	return nil
}

func (s *Service) emit(ctx context.Context, eventType events.EventType, kind domain.TrashKind, ids []uuid.UUID, n int64) {
	if n == 0 {
		return
	}
	events.Emit(context.WithoutCancel(ctx), s.publisher, s.logger, eventType, string(kind), events.TrashChanged{
		Kind:  string(kind),
		IDs:   ids,
		Count: n,
	})
}

func checkKind(kind domain.TrashKind) error {
	if _, err := domain.ParseTrashKind(string(kind)); err != nil {
		return pkgerrors.Invalid(err)
	}
	return nil
}

func checkIDs(kind domain.TrashKind, ids []uuid.UUID) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if len(ids) == 0 {
		return pkgerrors.Invalid(domain.ErrNoIDs)
	}
	return nil
}
