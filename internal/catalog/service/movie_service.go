package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/internal/catalog/repository"
	pkgerrors "github.com/narwhalmedia/phimdash/pkg/errors"
	"github.com/narwhalmedia/phimdash/pkg/pagination"
)

// MovieService handles movie administration
type MovieService struct {
	repo   repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewMovieService creates a new movie service
func NewMovieService(repo repository.Repository, logger *zap.Logger) *MovieService {
	return &MovieService{
		repo:   repo,
		logger: logger.Named("movies"),
		now:    time.Now,
	}
}

// MovieQuery filters the movie listing
type MovieQuery struct {
	Search string
	Type   string
	Year   int
	Page   pagination.Params
}

// ListMovies lists active movies, most recently updated first
func (s *MovieService) ListMovies(ctx context.Context, q MovieQuery) ([]*domain.Movie, pagination.Meta, error) {
	page := pagination.New(q.Page.Page, q.Page.Limit)
	movies, total, err := s.repo.ListMovies(ctx, domain.MovieFilter{
		Search: q.Search,
		Type:   q.Type,
		Year:   q.Year,
		Limit:  page.Limit,
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return movies, page.MetaFor(total), nil
}

// GetMovie retrieves a movie with its genres, countries, directors and actors
func (s *MovieService) GetMovie(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	return s.repo.GetMovie(ctx, id)
}

// CreateMovie validates and stores a new movie. The slug is derived from
// the name when empty.
func (s *MovieService) CreateMovie(ctx context.Context, movie *domain.Movie) error {
	if err := normaliseMovie(movie); err != nil {
		return err
	}
	if err := s.ensureSlugFree(ctx, movie.Slug, uuid.Nil); err != nil {
		return err
	}

	if err := s.repo.CreateMovie(ctx, movie); err != nil {
		s.logger.Error("failed to create movie", zap.String("slug", movie.Slug), zap.Error(err))
		return err
	}

	s.logger.Info("movie created",
		zap.String("id", movie.ID.String()),
		zap.String("slug", movie.Slug))
	return nil
}

// UpdateMovie overwrites the editable fields of an existing movie
func (s *MovieService) UpdateMovie(ctx context.Context, movie *domain.Movie) error {
	existing, err := s.repo.GetMovie(ctx, movie.ID)
	if err != nil {
		return err
	}
	if err := normaliseMovie(movie); err != nil {
		return err
	}
	if movie.Slug != existing.Slug {
		if err := s.ensureSlugFree(ctx, movie.Slug, movie.ID); err != nil {
			return err
		}
	}

	movie.CreatedAt = existing.CreatedAt
	movie.Deletion = existing.Deletion
	if err := s.repo.UpdateMovie(ctx, movie); err != nil {
		return err
	}

	s.logger.Info("movie updated", zap.String("id", movie.ID.String()), zap.String("slug", movie.Slug))
	return nil
}

// SetMovieTerms replaces the links of one relation kind of a movie.
func (s *MovieService) SetMovieTerms(ctx context.Context, movieID uuid.UUID, kind domain.TermKind, termIDs []uuid.UUID) error {
	if !kind.Linked() {
		return pkgerrors.Invalid(domain.ErrUnknownTermKind)
	}
	return s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if _, err := tx.GetMovie(ctx, movieID); err != nil {
			return err
		}
		if err := tx.UnlinkMovieTerms(ctx, kind, movieID); err != nil {
			return err
		}
		for _, id := range termIDs {
			if _, err := tx.GetTerm(ctx, kind, id); err != nil {
				return err
			}
			if err := tx.LinkMovieTerm(ctx, kind, movieID, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteMovies moves movies to the trash
func (s *MovieService) DeleteMovies(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, pkgerrors.Invalid(domain.ErrNoIDs)
	}
	n, err := s.repo.SoftDelete(ctx, domain.TrashMovies, ids, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n == 0 && len(ids) == 1 {
		return 0, pkgerrors.Wrap(pkgerrors.ErrorTypeNotFound, "id "+ids[0].String(), domain.ErrMovieNotFound)
	}
	s.logger.Info("movies moved to trash", zap.Int64("count", n))
	return n, nil
}

// Stats returns the dashboard counters
func (s *MovieService) Stats(ctx context.Context) (domain.Stats, error) {
	movies, err := s.repo.CountMovies(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	episodes, err := s.repo.CountEpisodes(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.Stats{Movies: movies, Episodes: episodes}, nil
}

func (s *MovieService) ensureSlugFree(ctx context.Context, slug string, self uuid.UUID) error {
	other, err := s.repo.GetMovieBySlug(ctx, slug)
	switch {
	case err == nil:
		if other.ID != self {
			return pkgerrors.Wrap(pkgerrors.ErrorTypeConflict, "movie slug "+slug, domain.ErrSlugTaken)
		}
		return nil
	case errors.Is(err, domain.ErrMovieNotFound):
		return nil
	default:
		return err
	}
}

func normaliseMovie(movie *domain.Movie) error {
	movie.Name = strings.TrimSpace(movie.Name)
	if movie.Name == "" {
		return pkgerrors.Invalid(domain.ErrNameRequired)
	}
	movie.Slug = strings.TrimSpace(movie.Slug)
	if movie.Slug == "" {
		movie.Slug = domain.Slugify(movie.Name)
	}
	if movie.Slug == "" {
		return pkgerrors.BadRequest("slug cannot be derived from name")
	}
	if movie.Year < 0 {
		return pkgerrors.Invalid(domain.ErrInvalidYear)
	}
	return nil
}
