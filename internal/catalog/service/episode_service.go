package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/internal/catalog/repository"
	pkgerrors "github.com/narwhalmedia/phimdash/pkg/errors"
)

// EpisodeService handles episode administration
type EpisodeService struct {
	repo   repository.Repository
	logger *zap.Logger
}

// NewEpisodeService creates a new episode service
func NewEpisodeService(repo repository.Repository, logger *zap.Logger) *EpisodeService {
	return &EpisodeService{
		repo:   repo,
		logger: logger.Named("episodes"),
	}
}

// EpisodeInput is an episode as entered in the admin form. Link is stored
// in the field selected by LinkType.
type EpisodeInput struct {
	ServerName string `json:"server_name"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	LinkType   string `json:"link_type"`
	Link       string `json:"link"`
}

// ListEpisodes returns a movie's episodes grouped by server
func (s *EpisodeService) ListEpisodes(ctx context.Context, movieID uuid.UUID) ([]domain.ServerGroup, error) {
	if _, err := s.repo.GetMovie(ctx, movieID); err != nil {
		return nil, err
	}
	episodes, err := s.repo.ListEpisodes(ctx, movieID)
	if err != nil {
		return nil, err
	}
	return domain.GroupByServer(episodes), nil
}

// AddEpisode appends an episode to a movie
func (s *EpisodeService) AddEpisode(ctx context.Context, movieID uuid.UUID, in EpisodeInput) (*domain.Episode, error) {
	if _, err := s.repo.GetMovie(ctx, movieID); err != nil {
		return nil, err
	}

	episode := &domain.Episode{MovieID: movieID}
	if err := applyEpisodeInput(episode, in); err != nil {
		return nil, err
	}

	if err := s.repo.CreateEpisode(ctx, episode); err != nil {
		return nil, err
	}

	s.logger.Info("episode added",
		zap.String("movie_id", movieID.String()),
		zap.String("episode_id", episode.ID.String()),
		zap.String("link_type", string(episode.LinkType())))
	return episode, nil
}

// UpdateEpisode rewrites an episode from the form values
func (s *EpisodeService) UpdateEpisode(ctx context.Context, id uuid.UUID, in EpisodeInput) (*domain.Episode, error) {
	episode, err := s.repo.GetEpisode(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyEpisodeInput(episode, in); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateEpisode(ctx, episode); err != nil {
		return nil, err
	}
	return episode, nil
}

// DeleteEpisode removes an episode
func (s *EpisodeService) DeleteEpisode(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteEpisode(ctx, id); err != nil {
		return err
	}
	s.logger.Info("episode deleted", zap.String("episode_id", id.String()))
	return nil
}

func applyEpisodeInput(episode *domain.Episode, in EpisodeInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return pkgerrors.Invalid(domain.ErrNameRequired)
	}
	linkType, err := domain.ParseLinkType(in.LinkType)
	if err != nil {
		return pkgerrors.Invalid(err)
	}
	link := strings.TrimSpace(in.Link)
	if link == "" {
		return pkgerrors.Invalid(domain.ErrMissingLink)
	}

	episode.Name = name
	episode.Slug = strings.TrimSpace(in.Slug)
	if episode.Slug == "" {
		episode.Slug = domain.Slugify(name)
	}
	episode.ServerName = strings.TrimSpace(in.ServerName)
	if episode.ServerName == "" {
		episode.ServerName = domain.DefaultServerName
	}
	episode.SetLink(linkType, link)
	return nil
}
