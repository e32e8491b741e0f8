package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/internal/catalog/repository"
	pkgerrors "github.com/narwhalmedia/phimdash/pkg/errors"
)

// TaxonomyService manages genres, countries, directors, actors, post
// categories and years
type TaxonomyService struct {
	repo   repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewTaxonomyService creates a new taxonomy service
func NewTaxonomyService(repo repository.Repository, logger *zap.Logger) *TaxonomyService {
	return &TaxonomyService{
		repo:   repo,
		logger: logger.Named("taxonomy"),
		now:    time.Now,
	}
}

// TermInput holds the editable fields of a lookup entry
type TermInput struct {
	Name string     `json:"name"`
	Slug string     `json:"slug"`
	SEO  domain.SEO `json:"seo"`
}

// ListTerms lists active entries of a kind
func (s *TaxonomyService) ListTerms(ctx context.Context, kind domain.TermKind, search string) ([]*domain.Term, error) {
	return s.repo.ListTerms(ctx, kind, search)
}

// CreateTerm stores a new entry, deriving the slug from the name when empty
func (s *TaxonomyService) CreateTerm(ctx context.Context, kind domain.TermKind, in TermInput) (*domain.Term, error) {
	term := &domain.Term{Kind: kind}
	if err := applyTermInput(term, in); err != nil {
		return nil, err
	}
	if err := s.repo.CreateTerm(ctx, term); err != nil {
		return nil, err
	}
	s.logger.Info("term created",
		zap.String("kind", string(kind)),
		zap.String("id", term.ID.String()),
		zap.String("slug", term.Slug))
	return term, nil
}

// UpdateTerm rewrites an entry
func (s *TaxonomyService) UpdateTerm(ctx context.Context, kind domain.TermKind, id uuid.UUID, in TermInput) (*domain.Term, error) {
	term, err := s.repo.GetTerm(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := applyTermInput(term, in); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateTerm(ctx, term); err != nil {
		return nil, err
	}
	return term, nil
}

// DeleteTerms moves entries to the trash
func (s *TaxonomyService) DeleteTerms(ctx context.Context, kind domain.TermKind, ids []uuid.UUID) (int64, error) {
	return s.softDelete(ctx, kind.TrashKind(), ids)
}

// ListYears lists active years, latest first
func (s *TaxonomyService) ListYears(ctx context.Context) ([]*domain.Year, error) {
	return s.repo.ListYears(ctx)
}

// AddYear stores a year unless present and returns its id
func (s *TaxonomyService) AddYear(ctx context.Context, year int) (uuid.UUID, error) {
	id, err := s.repo.UpsertYear(ctx, year)
	if err != nil {
		if year <= 0 {
			return uuid.Nil, pkgerrors.Invalid(err)
		}
		return uuid.Nil, err
	}
	return id, nil
}

// DeleteYears moves years to the trash
func (s *TaxonomyService) DeleteYears(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return s.softDelete(ctx, domain.TrashYears, ids)
}

func (s *TaxonomyService) softDelete(ctx context.Context, kind domain.TrashKind, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, pkgerrors.Invalid(domain.ErrNoIDs)
	}
	n, err := s.repo.SoftDelete(ctx, kind, ids, s.now().UTC())
	if err != nil {
		return 0, err
	}
	s.logger.Info("moved to trash", zap.String("kind", string(kind)), zap.Int64("count", n))
	return n, nil
}

func applyTermInput(term *domain.Term, in TermInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return pkgerrors.Invalid(domain.ErrNameRequired)
	}
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = domain.Slugify(name)
	}
	if slug == "" {
		return pkgerrors.BadRequest("slug cannot be derived from name")
	}

	term.Name = name
	term.Slug = slug
	if term.Kind == domain.TermPostCategory {
		term.SEO = in.SEO
	}
	return nil
}
