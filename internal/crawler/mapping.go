package crawler

import (
	"strings"

	"github.com/google/uuid"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/internal/infrastructure/adapters/external/phimapi"
)

func movieFromRemote(m *phimapi.Movie, reencodeImages bool) *domain.Movie {
	movie := &domain.Movie{
		Slug:           strings.TrimSpace(m.Slug),
		Name:           m.Name,
		OriginName:     m.OriginName,
		Content:        m.Content,
		Type:           m.Type,
		Status:         m.Status,
		Year:           m.Year,
		Quality:        m.Quality,
		Lang:           m.Lang,
		Time:           m.Time,
		TrailerURL:     m.TrailerURL,
		EpisodeCurrent: m.EpisodeCurrent,
		EpisodeTotal:   m.EpisodeTotal,
	}
	if !reencodeImages {
		movie.PosterURL = optional(m.PosterURL)
		movie.ThumbURL = optional(m.ThumbURL)
	}
	return movie
}

// episodesFromRemote flattens server groups in payload order.
func episodesFromRemote(movieID uuid.UUID, groups []phimapi.ServerGroup) []domain.Episode {
	var episodes []domain.Episode
	for _, group := range groups {
		for _, ep := range group.ServerData {
			episodes = append(episodes, domain.Episode{
				MovieID:    movieID,
				ServerName: group.ServerName,
				Name:       ep.Name,
				Slug:       ep.Slug,
				Filename:   ep.Filename,
				LinkEmbed:  ep.LinkEmbed,
				LinkM3U8:   ep.LinkM3U8,
			})
		}
	}
	return episodes
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
