package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/internal/catalog/repository"
	"github.com/narwhalmedia/phimdash/internal/events"
	"github.com/narwhalmedia/phimdash/internal/infrastructure/adapters/external/phimapi"
)

// CatalogSource is the remote catalog the synchronizer reads from.
type CatalogSource interface {
	ListNewMovies(ctx context.Context, page int) (*phimapi.ListResponse, error)
	GetMovieDetail(ctx context.Context, slug string) (*phimapi.MovieDetail, error)
}

// Options toggles optional reconciliation steps.
type Options struct {
	SkipGenres    bool `json:"skip_genres"`
	SkipCountries bool `json:"skip_countries"`
	// ReencodeImages stores NULL image URLs; a separate pipeline produces
	// local images in that mode.
	ReencodeImages bool `json:"reencode_images"`
	// Transactional runs the reconciliation of one movie in a single store
	// transaction.
	Transactional bool `json:"-"`
}

// Result is the outcome of reconciling one movie.
type Result struct {
	Slug    string    `json:"slug"`
	Success bool      `json:"success"`
	Updated bool      `json:"updated"`
	MovieID uuid.UUID `json:"movie_id,omitempty"`
	LogID   uuid.UUID `json:"log_id,omitempty"`
	Message string    `json:"message,omitempty"`
	Err     error     `json:"-"`
}

// Synchronizer reconciles remote movies into the local store.
type Synchronizer struct {
	repo      repository.Repository
	source    CatalogSource
	publisher events.Publisher
	logger    *zap.Logger
	opts      Options
	now       func() time.Time
}

// NewSynchronizer creates a synchronizer with default options.
func NewSynchronizer(repo repository.Repository, source CatalogSource, publisher events.Publisher, logger *zap.Logger, opts Options) *Synchronizer {
	return &Synchronizer{
		repo:      repo,
		source:    source,
		publisher: publisher,
		logger:    logger.Named("crawler"),
		opts:      opts,
		now:       time.Now,
	}
}

// Options returns the options the synchronizer runs with.
func (s *Synchronizer) Options() Options {
	return s.opts
}

// WithOptions returns a copy running with the step flags of opts. The
// transactional setting of s is kept.
func (s *Synchronizer) WithOptions(opts Options) *Synchronizer {
	clone := *s
	opts.Transactional = s.opts.Transactional
	clone.opts = opts
	return &clone
}

// SynchronizeOne fetches the remote detail of slug and upserts the movie,
// its relations and its episodes. Failures are reported in the result.
func (s *Synchronizer) SynchronizeOne(ctx context.Context, slug string) Result {
	slug = strings.TrimSpace(slug)
	logger := s.logger.With(zap.String("slug", slug))

	detail, err := s.source.GetMovieDetail(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrMovieNotFound) {
			logger.Info("remote movie not found")
			return Result{Slug: slug, Message: "movie not found: " + slug, Err: err}
		}
		logger.Warn("failed to fetch movie detail", zap.Error(err))
		return Result{Slug: slug, Message: err.Error(), Err: err}
	}

	var result Result
	reconcile := func(repo repository.Repository) error {
		var err error
		result, err = s.reconcile(ctx, repo, slug, detail)
		return err
	}

	if s.opts.Transactional {
		err = s.repo.WithTx(ctx, reconcile)
	} else {
		err = reconcile(s.repo)
	}
	if err != nil {
		logger.Warn("failed to synchronize movie", zap.Error(err))
		return Result{Slug: slug, Message: err.Error(), Err: err}
	}

	logger.Debug("movie synchronized",
		zap.String("movie_id", result.MovieID.String()),
		zap.Bool("updated", result.Updated),
	)
	return result
}

func (s *Synchronizer) reconcile(ctx context.Context, repo repository.Repository, slug string, detail *phimapi.MovieDetail) (Result, error) {
	movie := movieFromRemote(&detail.Movie, s.opts.ReencodeImages)
	if movie.Slug == "" {
		movie.Slug = slug
	}

	result := Result{Slug: movie.Slug}

	existing, err := repo.GetMovieBySlug(ctx, movie.Slug)
	switch {
	case err == nil:
		movie.ID = existing.ID
		movie.CreatedAt = existing.CreatedAt
		movie.Deletion = existing.Deletion
		if err := repo.UpdateMovie(ctx, movie); err != nil {
			return result, err
		}
		result.Updated = true
	case errors.Is(err, domain.ErrMovieNotFound):
		if err := repo.CreateMovie(ctx, movie); err != nil {
			return result, err
		}
	default:
		return result, err
	}

	if !s.opts.SkipGenres {
		if err := linkTaxa(ctx, repo, domain.TermGenre, movie.ID, detail.Movie.Category); err != nil {
			return result, err
		}
	}
	if !s.opts.SkipCountries {
		if err := linkTaxa(ctx, repo, domain.TermCountry, movie.ID, detail.Movie.Country); err != nil {
			return result, err
		}
	}

	if movie.Year > 0 {
		if _, err := repo.UpsertYear(ctx, movie.Year); err != nil {
			return result, err
		}
	}

	if err := linkNames(ctx, repo, domain.TermDirector, movie.ID, detail.Movie.Director); err != nil {
		return result, err
	}
	if err := linkNames(ctx, repo, domain.TermActor, movie.ID, detail.Movie.Actor); err != nil {
		return result, err
	}

	if len(detail.Episodes) > 0 {
		if err := repo.ReplaceEpisodes(ctx, movie.ID, episodesFromRemote(movie.ID, detail.Episodes)); err != nil {
			return result, err
		}
	}

	result.Success = true
	result.MovieID = movie.ID
	return result, nil
}

// linkTaxa upserts genre or country references and links them.
func linkTaxa(ctx context.Context, repo repository.Repository, kind domain.TermKind, movieID uuid.UUID, taxa []phimapi.Taxon) error {
	for _, taxon := range taxa {
		name := strings.TrimSpace(taxon.Name)
		slug := strings.TrimSpace(taxon.Slug)
		if slug == "" {
			slug = domain.Slugify(name)
		}
		if slug == "" {
			continue
		}
		if err := linkTerm(ctx, repo, kind, movieID, name, slug); err != nil {
			return err
		}
	}
	return nil
}

// linkNames upserts director or actor names keyed by their derived slug.
func linkNames(ctx context.Context, repo repository.Repository, kind domain.TermKind, movieID uuid.UUID, names []string) error {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		slug := domain.Slugify(name)
		if slug == "" {
			continue
		}
		if err := linkTerm(ctx, repo, kind, movieID, name, slug); err != nil {
			return err
		}
	}
	return nil
}

func linkTerm(ctx context.Context, repo repository.Repository, kind domain.TermKind, movieID uuid.UUID, name, slug string) error {
	termID, err := repo.UpsertTerm(ctx, kind, name, slug)
	if err != nil {
		return err
	}
	if err := repo.LinkMovieTerm(ctx, kind, movieID, termID); err != nil {
		return fmt.Errorf("failed to link %s %q: %w", kind, slug, err)
	}
	return nil
}
