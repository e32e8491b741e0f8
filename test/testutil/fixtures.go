package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/internal/infrastructure/adapters/external/phimapi"
)

// RemoteMovie builds a detail payload with two genres, one country, one
// director, two actors and a single server of episodeCount episodes.
func RemoteMovie(slug string, episodeCount int) *phimapi.MovieDetail {
	detail := &phimapi.MovieDetail{
		Status: true,
		Movie: phimapi.Movie{
			ID:             uuid.NewString(),
			Name:           "Phim " + slug,
			Slug:           slug,
			OriginName:     "Movie " + slug,
			Content:        "<p>Nội dung</p>",
			Type:           "series",
			Status:         "ongoing",
			PosterURL:      "https://img.phimapi.com/" + slug + "-poster.jpg",
			ThumbURL:       "https://img.phimapi.com/" + slug + "-thumb.jpg",
			TrailerURL:     "https://youtube.com/watch?v=" + slug,
			Time:           "45 phút/tập",
			EpisodeCurrent: fmt.Sprintf("Tập %d", episodeCount),
			EpisodeTotal:   "16 Tập",
			Quality:        "FHD",
			Lang:           "Vietsub",
			Year:           2024,
			Actor:          []string{"Ngô Thanh Vân", "Đặng Nhật Minh"},
			Director:       []string{"Trấn Thành"},
			Category: []phimapi.Taxon{
				{ID: "g1", Name: "Hành Động", Slug: "hanh-dong"},
				{ID: "g2", Name: "Tình Cảm", Slug: "tinh-cam"},
			},
			Country: []phimapi.Taxon{
				{ID: "c1", Name: "Việt Nam", Slug: "viet-nam"},
			},
		},
	}

	if episodeCount > 0 {
		group := phimapi.ServerGroup{ServerName: "#Hà Nội (Vietsub)"}
		for i := 1; i <= episodeCount; i++ {
			group.ServerData = append(group.ServerData, phimapi.Episode{
				Name:      fmt.Sprintf("Tập %02d", i),
				Slug:      fmt.Sprintf("tap-%02d", i),
				Filename:  fmt.Sprintf("%s - Tập %02d", slug, i),
				LinkEmbed: fmt.Sprintf("https://player.phimapi.com/player/?url=%s-%d", slug, i),
				LinkM3U8:  fmt.Sprintf("https://s1.phimapi.com/%s/%d/index.m3u8", slug, i),
			})
		}
		detail.Episodes = []phimapi.ServerGroup{group}
	}

	return detail
}

// ListPage builds a listing page carrying the given slugs.
func ListPage(page, totalPages int, slugs ...string) *phimapi.ListResponse {
	resp := &phimapi.ListResponse{
		Status: true,
		Pagination: phimapi.Pagination{
			TotalItems:        totalPages * len(slugs),
			TotalItemsPerPage: len(slugs),
			CurrentPage:       page,
			TotalPages:        totalPages,
		},
	}
	for _, slug := range slugs {
		resp.Items = append(resp.Items, phimapi.ListItem{
			ID:   uuid.NewString(),
			Name: "Phim " + slug,
			Slug: slug,
			Year: 2024,
		})
	}
	return resp
}

// MovieURL returns the public detail URL of a slug.
func MovieURL(slug string) string {
	return "https://phimapi.com/phim/" + slug
}

// NewMovie builds an unsaved local movie.
func NewMovie(slug string) *domain.Movie {
	poster := "https://img.example.com/" + slug + ".jpg"
	return &domain.Movie{
		Slug:       slug,
		Name:       "Local " + slug,
		OriginName: "Origin " + slug,
		Type:       "single",
		Status:     "completed",
		Year:       2023,
		Quality:    "HD",
		Lang:       "Vietsub",
		PosterURL:  &poster,
	}
}

// NewEpisode builds an unsaved m3u8 episode for a movie.
func NewEpisode(movieID uuid.UUID, server, name string) domain.Episode {
	return domain.Episode{
		MovieID:    movieID,
		ServerName: server,
		Name:       name,
		Slug:       domain.Slugify(name),
		LinkM3U8:   "https://cdn.example.com/" + domain.Slugify(name) + ".m3u8",
	}
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
