package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	pkgerrors "github.com/narwhalmedia/phimdash/pkg/errors"
	"github.com/narwhalmedia/phimdash/pkg/repository"
)

// termRecord builds the concrete gorm model for a term so inserts hit the
// right table with the right columns.
func termRecord(t *domain.Term) (interface{}, *TermModel, error) {
	base := TermModel{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		DeletedAt: t.Deletion.Column(),
	}

	switch t.Kind {
	case domain.TermGenre:
		m := &GenreModel{TermModel: base}
		return m, &m.TermModel, nil
	case domain.TermCountry:
		m := &CountryModel{TermModel: base}
		return m, &m.TermModel, nil
	case domain.TermDirector:
		m := &DirectorModel{TermModel: base}
		return m, &m.TermModel, nil
	case domain.TermActor:
		m := &ActorModel{TermModel: base}
		return m, &m.TermModel, nil
	case domain.TermPostCategory:
		m := &PostCategoryModel{
			TermModel:      base,
			SEOTitle:       t.SEO.Title,
			SEODescription: t.SEO.Description,
			SEOKeyword:     t.SEO.Keyword,
		}
		return m, &m.TermModel, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", domain.ErrUnknownTermKind, t.Kind)
}

// junctionRecord builds the link row between a movie and a term.
func junctionRecord(kind domain.TermKind, movieID, termID uuid.UUID) (interface{}, error) {
	switch kind {
	case domain.TermGenre:
		return &MovieGenreModel{MovieID: movieID, GenreID: termID}, nil
	case domain.TermCountry:
		return &MovieCountryModel{MovieID: movieID, CountryID: termID}, nil
	case domain.TermDirector:
		return &MovieDirectorModel{MovieID: movieID, DirectorID: termID}, nil
	case domain.TermActor:
		return &MovieActorModel{MovieID: movieID, ActorID: termID}, nil
	}
	return nil, fmt.Errorf("%w: %s is not linked to movies", domain.ErrUnknownTermKind, kind)
}

// UpsertTerm inserts on conflict(slug) do nothing, then selects the id.
func (r *GormRepository) UpsertTerm(ctx context.Context, kind domain.TermKind, name, slug string) (uuid.UUID, error) {
	t, err := tableFor(kind)
	if err != nil {
		return uuid.Nil, err
	}

	record, _, err := termRecord(&domain.Term{ID: uuid.New(), Kind: kind, Name: name, Slug: slug})
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := repository.InsertIgnore(ctx, r.db, record, "slug"); err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert %s %q: %w", kind, slug, err)
	}

	var row termRow
	if err := r.db.WithContext(ctx).Table(t.table).Select("id").Where("slug = ?", slug).Take(&row).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to select %s %q: %w", kind, slug, err)
	}
	return row.ID, nil
}

// LinkMovieTerm inserts the junction row unless it already exists.
func (r *GormRepository) LinkMovieTerm(ctx context.Context, kind domain.TermKind, movieID, termID uuid.UUID) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	record, err := junctionRecord(kind, movieID, termID)
	if err != nil {
		return err
	}
	if _, err := repository.InsertIgnore(ctx, r.db, record, "movie_id", t.foreignID); err != nil {
		return fmt.Errorf("failed to link movie to %s: %w", kind, err)
	}
	return nil
}

// ListMovieTerms lists the terms of one kind linked to a movie.
func (r *GormRepository) ListMovieTerms(ctx context.Context, kind domain.TermKind, movieID uuid.UUID) ([]domain.Term, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	if t.junction == "" {
		return nil, fmt.Errorf("%w: %s is not linked to movies", domain.ErrUnknownTermKind, kind)
	}

	var rows []termRow
	err = r.db.WithContext(ctx).
		Table(t.table).
		Select(t.table+".*").
		Joins(fmt.Sprintf("JOIN %s ON %s.%s = %s.id", t.junction, t.junction, t.foreignID, t.table)).
		Where(t.junction+".movie_id = ?", movieID).
		Order(t.table + ".name").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s of movie: %w", kind, err)
	}

	terms := make([]domain.Term, len(rows))
	for i := range rows {
		terms[i] = *rows[i].toDomain(kind)
	}
	return terms, nil
}

// UnlinkMovieTerms removes every junction row of one kind for a movie.
func (r *GormRepository) UnlinkMovieTerms(ctx context.Context, kind domain.TermKind, movieID uuid.UUID) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	if t.junction == "" {
		return fmt.Errorf("%w: %s is not linked to movies", domain.ErrUnknownTermKind, kind)
	}
	if err := r.db.WithContext(ctx).Exec("DELETE FROM "+t.junction+" WHERE movie_id = ?", movieID).Error; err != nil {
		return fmt.Errorf("failed to unlink %s of movie: %w", kind, err)
	}
	return nil
}

// CreateTerm inserts a lookup entry. A taken slug is a conflict.
func (r *GormRepository) CreateTerm(ctx context.Context, term *domain.Term) error {
	record, base, err := termRecord(term)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if pkgerrors.IsDuplicateError(err) {
			return pkgerrors.Conflict(fmt.Sprintf("%s slug %q already exists", term.Kind, term.Slug))
		}
		return fmt.Errorf("failed to create %s %q: %w", term.Kind, term.Slug, err)
	}
	term.ID = base.ID
	term.CreatedAt = base.CreatedAt
	term.UpdatedAt = base.UpdatedAt
	return nil
}

// GetTerm retrieves a lookup entry by ID.
func (r *GormRepository) GetTerm(ctx context.Context, kind domain.TermKind, id uuid.UUID) (*domain.Term, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	var row termRow
	if err := r.db.WithContext(ctx).Table(t.table).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.ErrorTypeNotFound, string(kind)+" "+id.String(), domain.ErrTermNotFound)
		}
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}
	return row.toDomain(kind), nil
}

// UpdateTerm writes name, slug and, for post categories, the SEO fields.
func (r *GormRepository) UpdateTerm(ctx context.Context, term *domain.Term) error {
	t, err := tableFor(term.Kind)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	values := map[string]interface{}{
		"name":       term.Name,
		"slug":       term.Slug,
		"updated_at": now,
	}
	if term.Kind == domain.TermPostCategory {
		values["seo_title"] = term.SEO.Title
		values["seo_description"] = term.SEO.Description
		values["seo_keyword"] = term.SEO.Keyword
	}

	result := r.db.WithContext(ctx).Table(t.table).Where("id = ?", term.ID).Updates(values)
	if result.Error != nil {
		if pkgerrors.IsDuplicateError(result.Error) {
			return pkgerrors.Conflict(fmt.Sprintf("%s slug %q already exists", term.Kind, term.Slug))
		}
		return fmt.Errorf("failed to update %s: %w", term.Kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.Wrap(pkgerrors.ErrorTypeNotFound, string(term.Kind)+" "+term.ID.String(), domain.ErrTermNotFound)
	}
	term.UpdatedAt = now
	return nil
}

// ListTerms lists active entries of a kind, newest first, optionally
// filtered by a case-insensitive name match.
func (r *GormRepository) ListTerms(ctx context.Context, kind domain.TermKind, search string) ([]*domain.Term, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Table(t.table).Where("deleted_at IS NULL")
	if s := strings.TrimSpace(search); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var rows []termRow
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	terms := make([]*domain.Term, len(rows))
	for i := range rows {
		terms[i] = rows[i].toDomain(kind)
	}
	return terms, nil
}

// UpsertYear inserts the year unless present and returns its id.
func (r *GormRepository) UpsertYear(ctx context.Context, year int) (uuid.UUID, error) {
	if year <= 0 {
		return uuid.Nil, domain.ErrInvalidYear
	}
	model := &YearModel{ID: uuid.New(), Year: year}
	if _, err := repository.InsertIgnore(ctx, r.db, model, "year"); err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert year %d: %w", year, err)
	}

	var stored YearModel
	if err := r.db.WithContext(ctx).Select("id").Where("year = ?", year).Take(&stored).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to select year %d: %w", year, err)
	}
	return stored.ID, nil
}

// ListYears lists active years, latest first.
func (r *GormRepository) ListYears(ctx context.Context) ([]*domain.Year, error) {
	var models []YearModel
	if err := r.db.WithContext(ctx).Where("deleted_at IS NULL").Order("year DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list years: %w", err)
	}
	years := make([]*domain.Year, len(models))
	for i := range models {
		years[i] = models[i].toDomain()
	}
	return years, nil
}
