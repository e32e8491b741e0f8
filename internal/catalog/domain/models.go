package domain

import (
	"time"

	"github.com/google/uuid"
)

// Movie is a locally stored title. Slug is the business key that decides
// insert versus update during a crawl; ID is assigned on insert.
type Movie struct {
	ID             uuid.UUID
	Slug           string
	Name           string
	OriginName     string
	Content        string
	Type           string // single, series, hoathinh, tvshows
	Status         string // completed, ongoing, trailer
	Year           int
	Quality        string
	Lang           string
	Time           string
	PosterURL      *string
	ThumbURL       *string
	TrailerURL     string
	EpisodeCurrent string
	EpisodeTotal   string
	Deletion       DeletionState
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Genres    []Term
	Countries []Term
	Directors []Term
	Actors    []Term
}

// LinkType is the delivery type of an episode, decided by which link field
// is populated.
type LinkType string

const (
	LinkTypeM3U8  LinkType = "m3u8"
	LinkTypeEmbed LinkType = "embed"
	LinkTypeFile  LinkType = "file"
	LinkTypeNone  LinkType = ""
)

// ParseLinkType validates a link type supplied by the admin UI.
func ParseLinkType(s string) (LinkType, error) {
	switch LinkType(s) {
	case LinkTypeM3U8, LinkTypeEmbed, LinkTypeFile:
		return LinkType(s), nil
	}
	return LinkTypeNone, ErrInvalidLinkType
}

// DefaultServerName groups episodes that carry no server name.
const DefaultServerName = "Server #1"

// Episode belongs to one movie. Exactly one of LinkM3U8, LinkEmbed and
// Filename is expected to be set; crawled payloads are stored as supplied.
type Episode struct {
	ID         uuid.UUID
	MovieID    uuid.UUID
	ServerName string
	Name       string
	Slug       string
	Filename   string
	LinkEmbed  string
	LinkM3U8   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LinkType reports the delivery type, checking m3u8, then embed, then file.
func (e *Episode) LinkType() LinkType {
	switch {
	case e.LinkM3U8 != "":
		return LinkTypeM3U8
	case e.LinkEmbed != "":
		return LinkTypeEmbed
	case e.Filename != "":
		return LinkTypeFile
	}
	return LinkTypeNone
}

// Link returns the value of the populated link field.
func (e *Episode) Link() string {
	switch e.LinkType() {
	case LinkTypeM3U8:
		return e.LinkM3U8
	case LinkTypeEmbed:
		return e.LinkEmbed
	case LinkTypeFile:
		return e.Filename
	}
	return ""
}

// SetLink clears all link fields and stores value in the one named by t.
func (e *Episode) SetLink(t LinkType, value string) {
	e.LinkM3U8, e.LinkEmbed, e.Filename = "", "", ""
	switch t {
	case LinkTypeM3U8:
		e.LinkM3U8 = value
	case LinkTypeEmbed:
		e.LinkEmbed = value
	case LinkTypeFile:
		e.Filename = value
	}
}

// ServerGroup is the set of episodes served by one mirror.
type ServerGroup struct {
	ServerName string
	Episodes   []Episode
}

// GroupByServer groups episodes by server name, preserving first-seen order.
func GroupByServer(episodes []Episode) []ServerGroup {
	var groups []ServerGroup
	index := make(map[string]int)
	for _, ep := range episodes {
		name := ep.ServerName
		if name == "" {
			name = DefaultServerName
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, ServerGroup{ServerName: name})
		}
		groups[i].Episodes = append(groups[i].Episodes, ep)
	}
	return groups
}

// TermKind names a lookup table keyed by unique slug.
type TermKind string

const (
	TermGenre        TermKind = "genres"
	TermCountry      TermKind = "countries"
	TermDirector     TermKind = "directors"
	TermActor        TermKind = "actors"
	TermPostCategory TermKind = "post_categories"
)

// ParseTermKind validates a lookup kind taken from a request path.
func ParseTermKind(s string) (TermKind, error) {
	switch TermKind(s) {
	case TermGenre, TermCountry, TermDirector, TermActor, TermPostCategory:
		return TermKind(s), nil
	}
	return "", ErrUnknownTermKind
}

// Linked reports whether movies reference the kind through a junction table.
func (k TermKind) Linked() bool {
	switch k {
	case TermGenre, TermCountry, TermDirector, TermActor:
		return true
	}
	return false
}

// TrashKind returns the trash tab that lists the kind.
func (k TermKind) TrashKind() TrashKind {
	return TrashKind(k)
}

// Term is a genre, country, director, actor or post category.
type Term struct {
	ID        uuid.UUID
	Kind      TermKind
	Name      string
	Slug      string
	SEO       SEO
	Deletion  DeletionState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SEO holds the search metadata edited for post categories.
type SEO struct {
	Title       string
	Description string
	Keyword     string
}

// Year is a distinct release year.
type Year struct {
	ID        uuid.UUID
	Year      int
	Deletion  DeletionState
	CreatedAt time.Time
}

// MediaFile records an uploaded file that was moved to the trash folder.
type MediaFile struct {
	ID        uuid.UUID
	FileName  string
	DeletedAt time.Time
}

// MovieFilter narrows a movie listing.
type MovieFilter struct {
	Search string
	Type   string
	Year   int
	Limit  int
	Offset int
}

// Stats are the dashboard counters.
type Stats struct {
	Movies   int64
	Episodes int64
}
