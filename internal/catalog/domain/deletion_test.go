package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
)

func TestDeletionState(t *testing.T) {
	deletedAt := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	active := domain.Active()
	assert.False(t, active.IsDeleted())
	assert.Nil(t, active.Column())
	assert.False(t, active.Expired(deletedAt.Add(1000*time.Hour), domain.RetentionPeriod))
	assert.Equal(t, 0, active.DaysRemaining(deletedAt, domain.RetentionPeriod))

	state := domain.DeletionFromColumn(&deletedAt)
	require.True(t, state.IsDeleted())
	at, ok := state.At()
	require.True(t, ok)
	assert.True(t, at.Equal(deletedAt))

	col := state.Column()
	require.NotNil(t, col)
	*col = col.Add(time.Hour)
	at, _ = state.At()
	assert.True(t, at.Equal(deletedAt), "column copies must not alias the state")
}

func TestDeletionState_Retention(t *testing.T) {
	deletedAt := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	state := domain.DeletedAt(deletedAt)
	expires := deletedAt.Add(domain.RetentionPeriod)

	tests := []struct {
		name    string
		now     time.Time
		days    int
		expired bool
	}{
		{"just deleted", deletedAt, 30, false},
		{"partial day truncates", deletedAt.Add(36 * time.Hour), 28, false},
		{"last day", expires.Add(-time.Hour), 0, false},
		{"one day left", expires.Add(-25 * time.Hour), 1, false},
		{"at expiry", expires, 0, true},
		{"long past", expires.Add(72 * time.Hour), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.days, state.DaysRemaining(tt.now, domain.RetentionPeriod))
			assert.Equal(t, tt.expired, state.Expired(tt.now, domain.RetentionPeriod))
		})
	}
}

func TestParseTrashKind(t *testing.T) {
	for _, kind := range domain.TrashKinds {
		got, err := domain.ParseTrashKind(string(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, got)
	}

	_, err := domain.ParseTrashKind("episodes")
	assert.ErrorIs(t, err, domain.ErrUnknownTrashKind)
	assert.Equal(t, domain.TrashMovies, domain.TrashKinds[0])
}
