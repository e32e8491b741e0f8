package domain

import (
	"time"

	"github.com/google/uuid"
)

// RetentionPeriod is how long a soft-deleted row stays in the trash before
// the sweeper purges it.
const RetentionPeriod = 30 * 24 * time.Hour

// DeletionState is Active or Deleted{at}. It is persisted as a nullable
// deleted_at column.
type DeletionState struct {
	deletedAt *time.Time
}

// Active returns the state of a live row.
func Active() DeletionState {
	return DeletionState{}
}

// DeletedAt returns the state of a row moved to the trash at t.
func DeletedAt(t time.Time) DeletionState {
	return DeletionState{deletedAt: &t}
}

// DeletionFromColumn builds the state from a nullable column value.
func DeletionFromColumn(at *time.Time) DeletionState {
	if at == nil {
		return Active()
	}
	return DeletedAt(*at)
}

// Column returns the nullable column value.
func (s DeletionState) Column() *time.Time {
	if s.deletedAt == nil {
		return nil
	}
	t := *s.deletedAt
	return &t
}

// IsDeleted reports whether the row is in the trash.
func (s DeletionState) IsDeleted() bool {
	return s.deletedAt != nil
}

// At returns the deletion time.
func (s DeletionState) At() (time.Time, bool) {
	if s.deletedAt == nil {
		return time.Time{}, false
	}
	return *s.deletedAt, true
}

// ExpiresAt is when the retention sweep may purge the row.
func (s DeletionState) ExpiresAt(retention time.Duration) (time.Time, bool) {
	at, ok := s.At()
	if !ok {
		return time.Time{}, false
	}
	return at.Add(retention), true
}

// Expired reports whether a deleted row has outlived the retention window.
// Active rows never expire.
func (s DeletionState) Expired(now time.Time, retention time.Duration) bool {
	expires, ok := s.ExpiresAt(retention)
	return ok && !now.Before(expires)
}

// DaysRemaining counts whole days left before expiry, never below zero.
func (s DeletionState) DaysRemaining(now time.Time, retention time.Duration) int {
	expires, ok := s.ExpiresAt(retention)
	if !ok {
		return 0
	}
	days := int(expires.Sub(now) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days
}

// TrashKind names a trash tab.
type TrashKind string

const (
	TrashMovies         TrashKind = "movies"
	TrashGenres         TrashKind = "genres"
	TrashCountries      TrashKind = "countries"
	TrashYears          TrashKind = "years"
	TrashDirectors      TrashKind = "directors"
	TrashActors         TrashKind = "actors"
	TrashPostCategories TrashKind = "post_categories"
	TrashMedia          TrashKind = "media"
)

// TrashKinds lists every tab in sweep order. Movies go first so junction
// rows are gone before their lookup entries.
var TrashKinds = []TrashKind{
	TrashMovies,
	TrashGenres,
	TrashCountries,
	TrashYears,
	TrashDirectors,
	TrashActors,
	TrashPostCategories,
	TrashMedia,
}

// ParseTrashKind validates a trash tab name.
func ParseTrashKind(s string) (TrashKind, error) {
	for _, k := range TrashKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", ErrUnknownTrashKind
}

// TrashItem is one row shown in a trash tab.
type TrashItem struct {
	ID            uuid.UUID
	Kind          TrashKind
	Label         string
	DeletedAt     time.Time
	DaysRemaining int
}
