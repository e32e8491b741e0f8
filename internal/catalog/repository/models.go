package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
)

// MovieModel represents a movie in the database.
type MovieModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Slug           string    `gorm:"uniqueIndex;not null"`
	Name           string    `gorm:"not null;index"`
	OriginName     string
	Content        string `gorm:"type:text"`
	Type           string `gorm:"type:varchar(50);index"`
	Status         string `gorm:"type:varchar(50)"`
	Year           int    `gorm:"index"`
	Quality        string `gorm:"type:varchar(50)"`
	Lang           string `gorm:"type:varchar(100)"`
	Time           string `gorm:"type:varchar(50)"`
	PosterURL      *string
	ThumbURL       *string
	TrailerURL     string
	EpisodeCurrent string `gorm:"type:varchar(100)"`
	EpisodeTotal   string `gorm:"type:varchar(100)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time `gorm:"index"`

	Episodes []EpisodeModel `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
}

func (MovieModel) TableName() string { return "movies" }

// BeforeCreate assigns a surrogate id when none is set.
func (m *MovieModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// EpisodeModel represents an episode. Position keeps the remote ordering
// within a movie.
type EpisodeModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	MovieID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ServerName string    `gorm:"index"`
	Name       string
	Slug       string
	Filename   *string
	LinkEmbed  *string
	LinkM3U8   *string `gorm:"column:link_m3u8"`
	Position   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (EpisodeModel) TableName() string { return "episodes" }

func (m *EpisodeModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TermModel holds the columns shared by every slug keyed lookup table.
type TermModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Slug      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index"`
}

func (m *TermModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type GenreModel struct{ TermModel }

func (GenreModel) TableName() string { return "genres" }

type CountryModel struct{ TermModel }

func (CountryModel) TableName() string { return "countries" }

type DirectorModel struct{ TermModel }

func (DirectorModel) TableName() string { return "directors" }

type ActorModel struct{ TermModel }

func (ActorModel) TableName() string { return "actors" }

// PostCategoryModel is a blog category with editable SEO metadata.
type PostCategoryModel struct {
	TermModel
	SEOTitle       string `gorm:"column:seo_title"`
	SEODescription string `gorm:"column:seo_description;type:text"`
	SEOKeyword     string `gorm:"column:seo_keyword"`
}

func (PostCategoryModel) TableName() string { return "post_categories" }

// termRow scans any lookup table. SEO columns stay empty for tables that
// do not have them.
type termRow struct {
	ID             uuid.UUID
	Name           string
	Slug           string
	SEOTitle       string `gorm:"column:seo_title"`
	SEODescription string `gorm:"column:seo_description"`
	SEOKeyword     string `gorm:"column:seo_keyword"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// YearModel is a distinct release year.
type YearModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Year      int       `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	DeletedAt *time.Time `gorm:"index"`
}

func (YearModel) TableName() string { return "years" }

func (m *YearModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Junction tables are keyed by the (movie, entity) pair.

type MovieGenreModel struct {
	MovieID uuid.UUID `gorm:"type:uuid;primaryKey"`
	GenreID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

func (MovieGenreModel) TableName() string { return "movie_genres" }

type MovieCountryModel struct {
	MovieID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	CountryID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

func (MovieCountryModel) TableName() string { return "movie_countries" }

type MovieDirectorModel struct {
	MovieID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	DirectorID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

func (MovieDirectorModel) TableName() string { return "movie_directors" }

type MovieActorModel struct {
	MovieID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ActorID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

func (MovieActorModel) TableName() string { return "movie_actors" }

// CrawlLogModel is the audit row of one crawl run.
type CrawlLogModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Type          string    `gorm:"not null"`
	Status        string    `gorm:"type:varchar(20);not null;index"`
	MoviesAdded   int
	MoviesUpdated int
	Duration      string `gorm:"type:varchar(20)"`
	Message       string `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"index"`
}

func (CrawlLogModel) TableName() string { return "crawl_logs" }

func (m *CrawlLogModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// DeletedMediaModel records an upload moved under the trash prefix.
type DeletedMediaModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FileName  string    `gorm:"not null;index"`
	DeletedAt time.Time `gorm:"not null;index"`
}

func (DeletedMediaModel) TableName() string { return "deleted_media" }

func (m *DeletedMediaModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// AllModels returns every model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&MovieModel{},
		&EpisodeModel{},
		&GenreModel{},
		&CountryModel{},
		&DirectorModel{},
		&ActorModel{},
		&PostCategoryModel{},
		&YearModel{},
		&MovieGenreModel{},
		&MovieCountryModel{},
		&MovieDirectorModel{},
		&MovieActorModel{},
		&CrawlLogModel{},
		&DeletedMediaModel{},
	}
}

// Conversion helpers

func movieFromDomain(m *domain.Movie) *MovieModel {
	return &MovieModel{
		ID:             m.ID,
		Slug:           m.Slug,
		Name:           m.Name,
		OriginName:     m.OriginName,
		Content:        m.Content,
		Type:           m.Type,
		Status:         m.Status,
		Year:           m.Year,
		Quality:        m.Quality,
		Lang:           m.Lang,
		Time:           m.Time,
		PosterURL:      m.PosterURL,
		ThumbURL:       m.ThumbURL,
		TrailerURL:     m.TrailerURL,
		EpisodeCurrent: m.EpisodeCurrent,
		EpisodeTotal:   m.EpisodeTotal,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		DeletedAt:      m.Deletion.Column(),
	}
}

func (m *MovieModel) toDomain() *domain.Movie {
	return &domain.Movie{
		ID:             m.ID,
		Slug:           m.Slug,
		Name:           m.Name,
		OriginName:     m.OriginName,
		Content:        m.Content,
		Type:           m.Type,
		Status:         m.Status,
		Year:           m.Year,
		Quality:        m.Quality,
		Lang:           m.Lang,
		Time:           m.Time,
		PosterURL:      m.PosterURL,
		ThumbURL:       m.ThumbURL,
		TrailerURL:     m.TrailerURL,
		EpisodeCurrent: m.EpisodeCurrent,
		EpisodeTotal:   m.EpisodeTotal,
		Deletion:       domain.DeletionFromColumn(m.DeletedAt),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func episodeFromDomain(e *domain.Episode, position int) *EpisodeModel {
	return &EpisodeModel{
		ID:         e.ID,
		MovieID:    e.MovieID,
		ServerName: e.ServerName,
		Name:       e.Name,
		Slug:       e.Slug,
		Filename:   nullable(e.Filename),
		LinkEmbed:  nullable(e.LinkEmbed),
		LinkM3U8:   nullable(e.LinkM3U8),
		Position:   position,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func (m *EpisodeModel) toDomain() *domain.Episode {
	return &domain.Episode{
		ID:         m.ID,
		MovieID:    m.MovieID,
		ServerName: m.ServerName,
		Name:       m.Name,
		Slug:       m.Slug,
		Filename:   deref(m.Filename),
		LinkEmbed:  deref(m.LinkEmbed),
		LinkM3U8:   deref(m.LinkM3U8),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func (r *termRow) toDomain(kind domain.TermKind) *domain.Term {
	return &domain.Term{
		ID:   r.ID,
		Kind: kind,
		Name: r.Name,
		Slug: r.Slug,
		SEO: domain.SEO{
			Title:       r.SEOTitle,
			Description: r.SEODescription,
			Keyword:     r.SEOKeyword,
		},
		Deletion:  domain.DeletionFromColumn(r.DeletedAt),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (m *YearModel) toDomain() *domain.Year {
	return &domain.Year{
		ID:        m.ID,
		Year:      m.Year,
		Deletion:  domain.DeletionFromColumn(m.DeletedAt),
		CreatedAt: m.CreatedAt,
	}
}

func crawlLogFromDomain(l *domain.CrawlLog) *CrawlLogModel {
	return &CrawlLogModel{
		ID:            l.ID,
		Type:          l.Type,
		Status:        string(l.Status),
		MoviesAdded:   l.MoviesAdded,
		MoviesUpdated: l.MoviesUpdated,
		Duration:      l.Duration,
		Message:       l.Message,
		CreatedAt:     l.CreatedAt,
	}
}

func (m *CrawlLogModel) toDomain() *domain.CrawlLog {
	return &domain.CrawlLog{
		ID:            m.ID,
		Type:          m.Type,
		Status:        domain.CrawlStatus(m.Status),
		MoviesAdded:   m.MoviesAdded,
		MoviesUpdated: m.MoviesUpdated,
		Duration:      m.Duration,
		Message:       m.Message,
		CreatedAt:     m.CreatedAt,
	}
}

func (m *DeletedMediaModel) toDomain() *domain.MediaFile {
	return &domain.MediaFile{
		ID:        m.ID,
		FileName:  m.FileName,
		DeletedAt: m.DeletedAt,
	}
}

// nullable maps an empty link to NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
