package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
)

// MovieRepository defines the interface for movie data access.
type MovieRepository interface {
	// GetMovieBySlug also returns trashed movies since slugs stay unique
	// across the trash.
	GetMovieBySlug(ctx context.Context, slug string) (*domain.Movie, error)
	GetMovie(ctx context.Context, id uuid.UUID) (*domain.Movie, error)
	CreateMovie(ctx context.Context, movie *domain.Movie) error
	UpdateMovie(ctx context.Context, movie *domain.Movie) error
	ListMovies(ctx context.Context, filter domain.MovieFilter) ([]*domain.Movie, int64, error)
	CountMovies(ctx context.Context) (int64, error)
}

// TermRepository defines the interface for lookup table data access.
type TermRepository interface {
	// UpsertTerm inserts the entry when its slug is new and returns the id
	// of the stored row either way.
	UpsertTerm(ctx context.Context, kind domain.TermKind, name, slug string) (uuid.UUID, error)
	LinkMovieTerm(ctx context.Context, kind domain.TermKind, movieID, termID uuid.UUID) error
	ListMovieTerms(ctx context.Context, kind domain.TermKind, movieID uuid.UUID) ([]domain.Term, error)
	UnlinkMovieTerms(ctx context.Context, kind domain.TermKind, movieID uuid.UUID) error

	CreateTerm(ctx context.Context, term *domain.Term) error
	GetTerm(ctx context.Context, kind domain.TermKind, id uuid.UUID) (*domain.Term, error)
	UpdateTerm(ctx context.Context, term *domain.Term) error
	ListTerms(ctx context.Context, kind domain.TermKind, search string) ([]*domain.Term, error)

	UpsertYear(ctx context.Context, year int) (uuid.UUID, error)
	ListYears(ctx context.Context) ([]*domain.Year, error)
}

// EpisodeRepository defines the interface for episode data access.
type EpisodeRepository interface {
	// ReplaceEpisodes deletes every episode of the movie and inserts the
	// given set in order.
	ReplaceEpisodes(ctx context.Context, movieID uuid.UUID, episodes []domain.Episode) error
	ListEpisodes(ctx context.Context, movieID uuid.UUID) ([]domain.Episode, error)
	GetEpisode(ctx context.Context, id uuid.UUID) (*domain.Episode, error)
	CreateEpisode(ctx context.Context, episode *domain.Episode) error
	UpdateEpisode(ctx context.Context, episode *domain.Episode) error
	DeleteEpisode(ctx context.Context, id uuid.UUID) error
	CountEpisodes(ctx context.Context) (int64, error)
}

// CrawlLogRepository defines the interface for crawl log data access.
type CrawlLogRepository interface {
	CreateCrawlLog(ctx context.Context, log *domain.CrawlLog) error
	UpdateCrawlLog(ctx context.Context, log *domain.CrawlLog) error
	ListCrawlLogs(ctx context.Context, limit int) ([]*domain.CrawlLog, error)
}

// TrashRepository defines the interface for soft deleted rows.
type TrashRepository interface {
	ListDeleted(ctx context.Context, kind domain.TrashKind) ([]domain.TrashItem, error)
	SoftDelete(ctx context.Context, kind domain.TrashKind, ids []uuid.UUID, at time.Time) (int64, error)
	Restore(ctx context.Context, kind domain.TrashKind, ids []uuid.UUID) (int64, error)
	Purge(ctx context.Context, kind domain.TrashKind, ids []uuid.UUID) (int64, error)
	PurgeAll(ctx context.Context, kind domain.TrashKind) (int64, error)
	PurgeDeletedBefore(ctx context.Context, kind domain.TrashKind, cutoff time.Time) (int64, error)

	CreateDeletedMedia(ctx context.Context, file *domain.MediaFile) error
	GetDeletedMedia(ctx context.Context, ids []uuid.UUID) ([]domain.MediaFile, error)
}

// Repository aggregates all repository interfaces.
type Repository interface {
	MovieRepository
	TermRepository
	EpisodeRepository
	CrawlLogRepository
	TrashRepository

	// WithTx runs fn against a repository bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
