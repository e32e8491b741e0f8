package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	pkgerrors "github.com/narwhalmedia/phimdash/pkg/errors"
	"github.com/narwhalmedia/phimdash/pkg/repository"
)

var episodeColumns = []string{
	"server_name", "name", "slug", "filename", "link_embed", "link_m3u8", "updated_at",
}

// ReplaceEpisodes deletes the movie's episodes and inserts the new set.
func (r *GormRepository) ReplaceEpisodes(ctx context.Context, movieID uuid.UUID, episodes []domain.Episode) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("movie_id = ?", movieID).Delete(&EpisodeModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete episodes: %w", err)
	}
	if len(episodes) == 0 {
		return nil
	}

	models := make([]*EpisodeModel, len(episodes))
	for i := range episodes {
		ep := episodes[i]
		ep.MovieID = movieID
		models[i] = episodeFromDomain(&ep, i)
	}
	if err := db.CreateInBatches(models, 100).Error; err != nil {
		return fmt.Errorf("failed to insert episodes: %w", err)
	}
	return nil
}

// ListEpisodes lists the episodes of a movie in stored order.
func (r *GormRepository) ListEpisodes(ctx context.Context, movieID uuid.UUID) ([]domain.Episode, error) {
	var models []EpisodeModel
	if err := r.db.WithContext(ctx).Where("movie_id = ?", movieID).Order("position, created_at").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	episodes := make([]domain.Episode, len(models))
	for i := range models {
		episodes[i] = *models[i].toDomain()
	}
	return episodes, nil
}

// GetEpisode retrieves an episode by ID.
func (r *GormRepository) GetEpisode(ctx context.Context, id uuid.UUID) (*domain.Episode, error) {
	model, err := repository.FindByID[EpisodeModel](ctx, r.db, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.ErrorTypeNotFound, "id "+id.String(), domain.ErrEpisodeNotFound)
		}
		return nil, fmt.Errorf("failed to get episode: %w", err)
	}
	return model.toDomain(), nil
}

// CreateEpisode appends an episode after the movie's existing ones.
func (r *GormRepository) CreateEpisode(ctx context.Context, episode *domain.Episode) error {
	var last struct{ Position *int }
	if err := r.db.WithContext(ctx).Model(&EpisodeModel{}).
		Select("MAX(position) AS position").
		Where("movie_id = ?", episode.MovieID).
		Scan(&last).Error; err != nil {
		return fmt.Errorf("failed to read episode position: %w", err)
	}
	position := 0
	if last.Position != nil {
		position = *last.Position + 1
	}

	model := episodeFromDomain(episode, position)
	if err := repository.Create(ctx, r.db, model); err != nil {
		return fmt.Errorf("failed to create episode: %w", err)
	}
	episode.ID = model.ID
	episode.CreatedAt = model.CreatedAt
	episode.UpdatedAt = model.UpdatedAt
	return nil
}

// UpdateEpisode writes the server, names and link fields of an episode.
func (r *GormRepository) UpdateEpisode(ctx context.Context, episode *domain.Episode) error {
	model := episodeFromDomain(episode, 0)
	if err := repository.UpdateColumns(ctx, r.db, episode.ID, model, episodeColumns...); err != nil {
		if pkgerrors.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.ErrorTypeNotFound, "id "+episode.ID.String(), domain.ErrEpisodeNotFound)
		}
		return fmt.Errorf("failed to update episode: %w", err)
	}
	episode.UpdatedAt = model.UpdatedAt
	return nil
}

// DeleteEpisode hard deletes an episode. Episodes are not soft deleted.
func (r *GormRepository) DeleteEpisode(ctx context.Context, id uuid.UUID) error {
	if err := repository.Delete[EpisodeModel](ctx, r.db, id); err != nil {
		if pkgerrors.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.ErrorTypeNotFound, "id "+id.String(), domain.ErrEpisodeNotFound)
		}
		return fmt.Errorf("failed to delete episode: %w", err)
	}
	return nil
}

// CountEpisodes counts episodes of active movies.
func (r *GormRepository) CountEpisodes(ctx context.Context) (int64, error) {
	return repository.Count[EpisodeModel](ctx, r.db,
		"movie_id IN (SELECT id FROM movies WHERE deleted_at IS NULL)")
}
