package domain

import "errors"

// Common domain errors
var (
	// ErrMovieNotFound is returned when a movie does not exist locally or remotely
	ErrMovieNotFound = errors.New("movie not found")

	// ErrEpisodeNotFound is returned when an episode does not exist
	ErrEpisodeNotFound = errors.New("episode not found")

	// ErrTermNotFound is returned when a lookup entry does not exist
	ErrTermNotFound = errors.New("term not found")

	// ErrInvalidURL is returned when a URL carries no /phim/<slug> segment
	ErrInvalidURL = errors.New("invalid movie url, expected https://phimapi.com/phim/<slug>")

	// ErrInvalidPageRange is returned when a page range is not 1 <= from <= to
	ErrInvalidPageRange = errors.New("invalid page range")

	// ErrEmptyInput is returned when a bulk crawl receives no URLs
	ErrEmptyInput = errors.New("at least one url is required")

	// ErrCrawlLogClosed is returned when finishing a log that already reached a terminal state
	ErrCrawlLogClosed = errors.New("crawl log already finished")

	// ErrUnknownTermKind is returned for an unsupported lookup table
	ErrUnknownTermKind = errors.New("unknown term kind")

	// ErrUnknownTrashKind is returned for an unsupported trash tab
	ErrUnknownTrashKind = errors.New("unknown trash kind")

	// ErrInvalidLinkType is returned for an episode link type other than m3u8, embed or file
	ErrInvalidLinkType = errors.New("invalid link type")

	// ErrMissingLink is returned when an episode is saved without a link value
	ErrMissingLink = errors.New("episode link is required")

	// ErrNameRequired is returned when an entity is saved without a name
	ErrNameRequired = errors.New("name is required")

	// ErrInvalidYear is returned for a non-positive year
	ErrInvalidYear = errors.New("invalid year")

	// ErrNoIDs is returned when a bulk operation receives no ids
	ErrNoIDs = errors.New("at least one id is required")

	// ErrSlugTaken is returned when a slug is already used by another row
	ErrSlugTaken = errors.New("slug already exists")
)
