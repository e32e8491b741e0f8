package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	pkgerrors "github.com/narwhalmedia/phimdash/pkg/errors"
	"github.com/narwhalmedia/phimdash/pkg/repository"
)

// movieColumns are written on update. created_at and deleted_at are left
// to their own operations.
var movieColumns = []string{
	"slug", "name", "origin_name", "content", "type", "status", "year",
	"quality", "lang", "time", "poster_url", "thumb_url", "trailer_url",
	"episode_current", "episode_total", "updated_at",
}

// GetMovieBySlug retrieves a movie by slug, trashed or not.
func (r *GormRepository) GetMovieBySlug(ctx context.Context, slug string) (*domain.Movie, error) {
	model, err := repository.FindOneBy[MovieModel](ctx, r.db, "slug = ?", slug)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.ErrorTypeNotFound, "slug "+slug, domain.ErrMovieNotFound)
		}
		return nil, fmt.Errorf("failed to get movie by slug: %w", err)
	}
	return model.toDomain(), nil
}

// GetMovie retrieves a movie by ID together with its linked terms.
func (r *GormRepository) GetMovie(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	model, err := repository.FindByID[MovieModel](ctx, r.db, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.ErrorTypeNotFound, "id "+id.String(), domain.ErrMovieNotFound)
		}
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}

	movie := model.toDomain()
	relations := []struct {
		kind domain.TermKind
		dst  *[]domain.Term
	}{
		{domain.TermGenre, &movie.Genres},
		{domain.TermCountry, &movie.Countries},
		{domain.TermDirector, &movie.Directors},
		{domain.TermActor, &movie.Actors},
	}
	for _, rel := range relations {
		terms, err := r.ListMovieTerms(ctx, rel.kind, id)
		if err != nil {
			return nil, err
		}
		*rel.dst = terms
	}
	return movie, nil
}

// CreateMovie inserts a movie and stores the assigned ID back on it.
func (r *GormRepository) CreateMovie(ctx context.Context, movie *domain.Movie) error {
	model := movieFromDomain(movie)
	if err := repository.Create(ctx, r.db, model); err != nil {
		return fmt.Errorf("failed to create movie %q: %w", movie.Slug, err)
	}
	movie.ID = model.ID
	movie.CreatedAt = model.CreatedAt
	movie.UpdatedAt = model.UpdatedAt
	return nil
}

// UpdateMovie overwrites the scalar and media fields of a movie. Nil image
// URLs are written as NULL.
func (r *GormRepository) UpdateMovie(ctx context.Context, movie *domain.Movie) error {
	model := movieFromDomain(movie)
	if err := repository.UpdateColumns(ctx, r.db, movie.ID, model, movieColumns...); err != nil {
		if pkgerrors.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.ErrorTypeNotFound, "id "+movie.ID.String(), domain.ErrMovieNotFound)
		}
		return fmt.Errorf("failed to update movie %q: %w", movie.Slug, err)
	}
	movie.UpdatedAt = model.UpdatedAt
	return nil
}

// ListMovies lists active movies matching the filter, newest first, and
// returns the total before pagination.
func (r *GormRepository) ListMovies(ctx context.Context, filter domain.MovieFilter) ([]*domain.Movie, int64, error) {
	q := r.db.WithContext(ctx).Model(&MovieModel{}).Where("deleted_at IS NULL")

	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(origin_name) LIKE ? OR slug LIKE ?", pattern, pattern, pattern)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Year > 0 {
		q = q.Where("year = ?", filter.Year)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count movies: %w", err)
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var models []MovieModel
	if err := q.Order("updated_at DESC").Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list movies: %w", err)
	}

	movies := make([]*domain.Movie, len(models))
	for i := range models {
		movies[i] = models[i].toDomain()
	}
	return movies, total, nil
}

// CountMovies counts active movies.
func (r *GormRepository) CountMovies(ctx context.Context) (int64, error) {
	return repository.Count[MovieModel](ctx, r.db, "deleted_at IS NULL")
}
