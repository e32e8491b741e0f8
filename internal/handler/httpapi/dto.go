package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/internal/crawler"
	"github.com/narwhalmedia/phimdash/pkg/pagination"
)

type statsResponse struct {
	Movies   int64 `json:"movies"`
	Episodes int64 `json:"episodes"`
}

type idsRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

type listResponse struct {
	Items      interface{}      `json:"items"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

type movieRequest struct {
	Slug           string  `json:"slug"`
	Name           string  `json:"name"`
	OriginName     string  `json:"origin_name"`
	Content        string  `json:"content"`
	Type           string  `json:"type"`
	Status         string  `json:"status"`
	Year           int     `json:"year"`
	Quality        string  `json:"quality"`
	Lang           string  `json:"lang"`
	Time           string  `json:"time"`
	PosterURL      *string `json:"poster_url"`
	ThumbURL       *string `json:"thumb_url"`
	TrailerURL     string  `json:"trailer_url"`
	EpisodeCurrent string  `json:"episode_current"`
	EpisodeTotal   string  `json:"episode_total"`
}

func (m movieRequest) toDomain(id uuid.UUID) *domain.Movie {
	return &domain.Movie{
		ID:             id,
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
	}
}

type movieResponse struct {
	ID             uuid.UUID      `json:"id"`
	Slug           string         `json:"slug"`
	Name           string         `json:"name"`
	OriginName     string         `json:"origin_name"`
	Content        string         `json:"content"`
	Type           string         `json:"type"`
	Status         string         `json:"status"`
	Year           int            `json:"year"`
	Quality        string         `json:"quality"`
	Lang           string         `json:"lang"`
	Time           string         `json:"time"`
	PosterURL      *string        `json:"poster_url"`
	ThumbURL       *string        `json:"thumb_url"`
	TrailerURL     string         `json:"trailer_url"`
	EpisodeCurrent string         `json:"episode_current"`
	EpisodeTotal   string         `json:"episode_total"`
	DeletedAt      *time.Time     `json:"deleted_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Genres         []termResponse `json:"genres,omitempty"`
	Countries      []termResponse `json:"countries,omitempty"`
	Directors      []termResponse `json:"directors,omitempty"`
	Actors         []termResponse `json:"actors,omitempty"`
}

func toMovieResponse(m *domain.Movie) movieResponse {
	return movieResponse{
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
		DeletedAt:      m.Deletion.Column(),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		Genres:         toTermResponses(m.Genres),
		Countries:      toTermResponses(m.Countries),
		Directors:      toTermResponses(m.Directors),
		Actors:         toTermResponses(m.Actors),
	}
}

func toMovieResponses(movies []*domain.Movie) []movieResponse {
	out := make([]movieResponse, len(movies))
	for i, m := range movies {
		out[i] = toMovieResponse(m)
	}
	return out
}

type seoPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keyword     string `json:"keyword"`
}

type termRequest struct {
	Name string      `json:"name"`
	Slug string      `json:"slug"`
	SEO  *seoPayload `json:"seo"`
}

type termResponse struct {
	ID   uuid.UUID   `json:"id"`
	Kind string      `json:"kind"`
	Name string      `json:"name"`
	Slug string      `json:"slug"`
	SEO  *seoPayload `json:"seo,omitempty"`
}

func toTermResponse(t *domain.Term) termResponse {
	resp := termResponse{ID: t.ID, Kind: string(t.Kind), Name: t.Name, Slug: t.Slug}
	if t.Kind == domain.TermPostCategory {
		resp.SEO = &seoPayload{Title: t.SEO.Title, Description: t.SEO.Description, Keyword: t.SEO.Keyword}
	}
	return resp
}

func toTermResponses(terms []domain.Term) []termResponse {
	if len(terms) == 0 {
		return nil
	}
	out := make([]termResponse, len(terms))
	for i := range terms {
		out[i] = toTermResponse(&terms[i])
	}
	return out
}

type yearRequest struct {
	Year int `json:"year"`
}

type yearResponse struct {
	ID   uuid.UUID `json:"id"`
	Year int       `json:"year"`
}

type episodeResponse struct {
	ID         uuid.UUID `json:"id"`
	MovieID    uuid.UUID `json:"movie_id"`
	ServerName string    `json:"server_name"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	LinkType   string    `json:"link_type"`
	Link       string    `json:"link"`
	Filename   string    `json:"filename"`
	LinkEmbed  string    `json:"link_embed"`
	LinkM3U8   string    `json:"link_m3u8"`
}

func toEpisodeResponse(e *domain.Episode) episodeResponse {
	return episodeResponse{
		ID:         e.ID,
		MovieID:    e.MovieID,
		ServerName: e.ServerName,
		Name:       e.Name,
		Slug:       e.Slug,
		LinkType:   string(e.LinkType()),
		Link:       e.Link(),
		Filename:   e.Filename,
		LinkEmbed:  e.LinkEmbed,
		LinkM3U8:   e.LinkM3U8,
	}
}

type serverGroupResponse struct {
	ServerName string            `json:"server_name"`
	Episodes   []episodeResponse `json:"episodes"`
}

func toServerGroupResponses(groups []domain.ServerGroup) []serverGroupResponse {
	out := make([]serverGroupResponse, len(groups))
	for i, g := range groups {
		episodes := make([]episodeResponse, len(g.Episodes))
		for j := range g.Episodes {
			episodes[j] = toEpisodeResponse(&g.Episodes[j])
		}
		out[i] = serverGroupResponse{ServerName: g.ServerName, Episodes: episodes}
	}
	return out
}

type crawlLogResponse struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	MoviesAdded   int       `json:"movies_added"`
	MoviesUpdated int       `json:"movies_updated"`
	Duration      string    `json:"duration"`
	Message       string    `json:"message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toCrawlLogResponses(logs []*domain.CrawlLog) []crawlLogResponse {
	out := make([]crawlLogResponse, len(logs))
	for i, l := range logs {
		out[i] = crawlLogResponse{
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
	return out
}

type crawlPagesRequest struct {
	From    int              `json:"from"`
	To      int              `json:"to"`
	Options *crawler.Options `json:"options"`
}

type crawlMovieRequest struct {
	URL     string           `json:"url"`
	Options *crawler.Options `json:"options"`
}

// crawlBulkRequest accepts the URLs as a list, as pasted text, or both.
type crawlBulkRequest struct {
	URLs    []string         `json:"urls"`
	Text    string           `json:"text"`
	Options *crawler.Options `json:"options"`
}

type crawlStatusResponse struct {
	Online    bool   `json:"online"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// progressLine and summaryLine are the records of a streamed crawl.
type progressLine struct {
	Progress *crawler.Progress `json:"progress,omitempty"`
}

type summaryLine struct {
	Summary *crawler.LogSummary `json:"summary,omitempty"`
	Error   string              `json:"error,omitempty"`
}

type trashItemResponse struct {
	ID            uuid.UUID `json:"id"`
	Kind          string    `json:"kind"`
	Label         string    `json:"label"`
	DeletedAt     time.Time `json:"deleted_at"`
	DaysRemaining int       `json:"days_remaining"`
}

func toTrashItemResponses(items []domain.TrashItem) []trashItemResponse {
	out := make([]trashItemResponse, len(items))
	for i, it := range items {
		out[i] = trashItemResponse{
			ID:            it.ID,
			Kind:          string(it.Kind),
			Label:         it.Label,
			DeletedAt:     it.DeletedAt,
			DaysRemaining: it.DaysRemaining,
		}
	}
	return out
}

type uploadResponse struct {
	FileName string `json:"file_name"`
}

type mediaResponse struct {
	ID        uuid.UUID `json:"id"`
	FileName  string    `json:"file_name"`
	DeletedAt time.Time `json:"deleted_at"`
}
