package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
)

// GormRepository implements the repository interfaces using GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// WithTx runs fn inside a database transaction.
func (r *GormRepository) WithTx(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

// termTable resolves the table and junction columns of a lookup kind.
type termTable struct {
	table     string
	junction  string
	foreignID string
}

var termTables = map[domain.TermKind]termTable{
	domain.TermGenre:        {table: "genres", junction: "movie_genres", foreignID: "genre_id"},
	domain.TermCountry:      {table: "countries", junction: "movie_countries", foreignID: "country_id"},
	domain.TermDirector:     {table: "directors", junction: "movie_directors", foreignID: "director_id"},
	domain.TermActor:        {table: "actors", junction: "movie_actors", foreignID: "actor_id"},
	domain.TermPostCategory: {table: "post_categories"},
}

func tableFor(kind domain.TermKind) (termTable, error) {
	t, ok := termTables[kind]
	if !ok {
		return termTable{}, fmt.Errorf("%w: %s", domain.ErrUnknownTermKind, kind)
	}
	return t, nil
}

// trashTable resolves the table and label column listed in a trash tab.
func trashTable(kind domain.TrashKind) (table, label string, err error) {
	switch kind {
	case domain.TrashMovies:
		return "movies", "name", nil
	case domain.TrashYears:
		return "years", "CAST(year AS TEXT)", nil
	case domain.TrashMedia:
		return "deleted_media", "file_name", nil
	}
	if t, ok := termTables[domain.TermKind(kind)]; ok {
		return t.table, "name", nil
	}
	return "", "", fmt.Errorf("%w: %s", domain.ErrUnknownTrashKind, kind)
}
