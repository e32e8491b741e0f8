package phimapi

import "encoding/json"

// ListResponse is a page of /danh-sach/phim-moi-cap-nhat.
type ListResponse struct {
	Status     bool       `json:"status"`
	Items      []ListItem `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// ListItem is a movie summary in a listing page.
type ListItem struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	OriginName string    `json:"origin_name"`
	PosterURL  string    `json:"poster_url"`
	ThumbURL   string    `json:"thumb_url"`
	Year       int       `json:"year"`
	Modified   Timestamp `json:"modified"`
}

type Timestamp struct {
	Time string `json:"time"`
}

type Pagination struct {
	TotalItems        int `json:"totalItems"`
	TotalItemsPerPage int `json:"totalItemsPerPage"`
	CurrentPage       int `json:"currentPage"`
	TotalPages        int `json:"totalPages"`
}

// MovieDetail is the /phim/<slug> payload. Status is false when the slug
// is unknown.
type MovieDetail struct {
	Status   bool          `json:"status"`
	Msg      string        `json:"msg"`
	Movie    Movie         `json:"movie"`
	Episodes []ServerGroup `json:"episodes"`
}

// UnmarshalJSON skips the movie and episodes of a failed lookup, which the
// API sends as empty arrays.
func (d *MovieDetail) UnmarshalJSON(data []byte) error {
	var raw struct {
		Status   bool            `json:"status"`
		Msg      string          `json:"msg"`
		Movie    json.RawMessage `json:"movie"`
		Episodes json.RawMessage `json:"episodes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = MovieDetail{Status: raw.Status, Msg: raw.Msg}
	if !raw.Status {
		return nil
	}
	if len(raw.Movie) > 0 {
		if err := json.Unmarshal(raw.Movie, &d.Movie); err != nil {
			return err
		}
	}
	if len(raw.Episodes) > 0 && string(raw.Episodes) != "null" {
		if err := json.Unmarshal(raw.Episodes, &d.Episodes); err != nil {
			return err
		}
	}
	return nil
}

// Movie holds the scalar fields and relation arrays of a remote movie.
type Movie struct {
	ID             string   `json:"_id"`
	Name           string   `json:"name"`
	Slug           string   `json:"slug"`
	OriginName     string   `json:"origin_name"`
	Content        string   `json:"content"`
	Type           string   `json:"type"`
	Status         string   `json:"status"`
	PosterURL      string   `json:"poster_url"`
	ThumbURL       string   `json:"thumb_url"`
	TrailerURL     string   `json:"trailer_url"`
	Time           string   `json:"time"`
	EpisodeCurrent string   `json:"episode_current"`
	EpisodeTotal   string   `json:"episode_total"`
	Quality        string   `json:"quality"`
	Lang           string   `json:"lang"`
	Year           int      `json:"year"`
	Actor          []string `json:"actor"`
	Director       []string `json:"director"`
	Category       []Taxon  `json:"category"`
	Country        []Taxon  `json:"country"`
}

// Taxon is a genre or country reference.
type Taxon struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ServerGroup is one mirror and its episodes.
type ServerGroup struct {
	ServerName string    `json:"server_name"`
	ServerData []Episode `json:"server_data"`
}

type Episode struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Filename  string `json:"filename"`
	LinkEmbed string `json:"link_embed"`
	LinkM3U8  string `json:"link_m3u8"`
}

// catalogEntry is an item of /the-loai or /quoc-gia.
type catalogEntry struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
