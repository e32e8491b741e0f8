package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/pkg/repository"
)

// movieJunctions are cleared when a movie is purged.
var movieJunctions = []string{"movie_genres", "movie_countries", "movie_directors", "movie_actors"}

type trashRow struct {
	ID        uuid.UUID
	Label     string
	DeletedAt time.Time
}

// ListDeleted lists the trashed rows of a kind, most recently deleted first.
func (r *GormRepository) ListDeleted(ctx context.Context, kind domain.TrashKind) ([]domain.TrashItem, error) {
	table, label, err := trashTable(kind)
	if err != nil {
		return nil, err
	}

	var rows []trashRow
	err = r.db.WithContext(ctx).
		Table(table).
		Select(fmt.Sprintf("id, %s AS label, deleted_at", label)).
		Where("deleted_at IS NOT NULL").
		Order("deleted_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list deleted %s: %w", kind, err)
	}

	items := make([]domain.TrashItem, len(rows))
	for i, row := range rows {
		items[i] = domain.TrashItem{
			ID:        row.ID,
			Kind:      kind,
			Label:     row.Label,
			DeletedAt: row.DeletedAt,
		}
	}
	return items, nil
}

// SoftDelete stamps deleted_at on active rows. Rows already in the trash
// keep their original deletion time.
func (r *GormRepository) SoftDelete(ctx context.Context, kind domain.TrashKind, ids []uuid.UUID, at time.Time) (int64, error) {
	if kind == domain.TrashMedia {
		return 0, fmt.Errorf("%w: media is trashed by file name", domain.ErrUnknownTrashKind)
	}
	table, _, err := trashTable(kind)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Table(table).
		Where("id IN ? AND deleted_at IS NULL", ids).
		Update("deleted_at", at.UTC())
	if result.Error != nil {
		return 0, fmt.Errorf("failed to soft delete %s: %w", kind, result.Error)
	}
	return result.RowsAffected, nil
}

// Restore clears deleted_at. For media it drops the trash records; moving
// the files back is the caller's job.
func (r *GormRepository) Restore(ctx context.Context, kind domain.TrashKind, ids []uuid.UUID) (int64, error) {
	table, _, err := trashTable(kind)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	db := r.db.WithContext(ctx)
	var result *gorm.DB
	if kind == domain.TrashMedia {
		result = db.Where("id IN ?", ids).Delete(&DeletedMediaModel{})
	} else {
		result = db.Table(table).
			Where("id IN ? AND deleted_at IS NOT NULL", ids).
			Update("deleted_at", gorm.Expr("NULL"))
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to restore %s: %w", kind, result.Error)
	}
	return result.RowsAffected, nil
}

// Purge hard deletes trashed rows together with the rows that reference
// them. Active rows are never purged.
func (r *GormRepository) Purge(ctx context.Context, kind domain.TrashKind, ids []uuid.UUID) (int64, error) {
	table, _, err := trashTable(kind)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var purged int64
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var targets []uuid.UUID
		if err := tx.Table(table).
			Where("id IN ? AND deleted_at IS NOT NULL", ids).
			Pluck("id", &targets).Error; err != nil {
			return err
		}
		if len(targets) == 0 {
			return nil
		}

		if err := purgeDependents(tx, kind, targets); err != nil {
			return err
		}

		result := tx.Exec("DELETE FROM "+table+" WHERE id IN ?", targets)
		if result.Error != nil {
			return result.Error
		}
		purged = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge %s: %w", kind, err)
	}
	return purged, nil
}

func purgeDependents(tx *gorm.DB, kind domain.TrashKind, ids []uuid.UUID) error {
	switch kind {
	case domain.TrashMovies:
		if err := tx.Where("movie_id IN ?", ids).Delete(&EpisodeModel{}).Error; err != nil {
			return err
		}
		for _, junction := range movieJunctions {
			if err := tx.Exec("DELETE FROM "+junction+" WHERE movie_id IN ?", ids).Error; err != nil {
				return err
			}
		}
	default:
		t, ok := termTables[domain.TermKind(kind)]
		if ok && t.junction != "" {
			if err := tx.Exec("DELETE FROM "+t.junction+" WHERE "+t.foreignID+" IN ?", ids).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// PurgeAll empties one trash tab.
func (r *GormRepository) PurgeAll(ctx context.Context, kind domain.TrashKind) (int64, error) {
	return r.purgeWhere(ctx, kind, "deleted_at IS NOT NULL")
}

// PurgeDeletedBefore purges rows trashed at or before cutoff. Times are
// written and compared in UTC since sqlite compares them as text.
func (r *GormRepository) PurgeDeletedBefore(ctx context.Context, kind domain.TrashKind, cutoff time.Time) (int64, error) {
	return r.purgeWhere(ctx, kind, "deleted_at IS NOT NULL AND deleted_at <= ?", cutoff.UTC())
}

func (r *GormRepository) purgeWhere(ctx context.Context, kind domain.TrashKind, query string, args ...interface{}) (int64, error) {
	table, _, err := trashTable(kind)
	if err != nil {
		return 0, err
	}

	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Table(table).Where(query, args...).Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to select deleted %s: %w", kind, err)
	}
	return r.Purge(ctx, kind, ids)
}

// CreateDeletedMedia records a file moved to the trash prefix.
func (r *GormRepository) CreateDeletedMedia(ctx context.Context, file *domain.MediaFile) error {
	model := &DeletedMediaModel{ID: file.ID, FileName: file.FileName, DeletedAt: file.DeletedAt.UTC()}
	if err := repository.Create(ctx, r.db, model); err != nil {
		return fmt.Errorf("failed to record deleted media %q: %w", file.FileName, err)
	}
	file.ID = model.ID
	return nil
}

// GetDeletedMedia loads trash records by ID.
func (r *GormRepository) GetDeletedMedia(ctx context.Context, ids []uuid.UUID) ([]domain.MediaFile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []DeletedMediaModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("deleted_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to get deleted media: %w", err)
	}
	files := make([]domain.MediaFile, len(models))
	for i := range models {
		files[i] = *models[i].toDomain()
	}
	return files, nil
}
