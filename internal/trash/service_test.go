package trash

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/internal/catalog/repository"
	"github.com/narwhalmedia/phimdash/internal/events"
	"github.com/narwhalmedia/phimdash/internal/infrastructure/storage"
	pkgerrors "github.com/narwhalmedia/phimdash/pkg/errors"
	"github.com/narwhalmedia/phimdash/test/testutil"
)

type TrashServiceTestSuite struct {
	suite.Suite

	ctx       context.Context
	clock     time.Time
	dir       string
	repo      *repository.GormRepository
	publisher *events.MemoryPublisher
	service   *Service
}

func (suite *TrashServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.clock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	suite.dir = suite.T().TempDir()

	logger := zaptest.NewLogger(suite.T())
	store, err := storage.NewLocalStorage(suite.dir, logger)
	suite.Require().NoError(err)

	suite.repo = repository.NewGormRepository(testutil.NewTestDB(suite.T()))
	suite.publisher = events.NewMemoryPublisher()
	suite.service = NewService(suite.repo, store, suite.publisher, logger, 30*24*time.Hour)
	suite.service.now = func() time.Time { return suite.clock }
}

func (suite *TrashServiceTestSuite) trashedMovie(slug string, age time.Duration) *domain.Movie {
	movie := testutil.NewMovie(slug)
	suite.Require().NoError(suite.repo.CreateMovie(suite.ctx, movie))
	suite.Require().NoError(suite.repo.ReplaceEpisodes(suite.ctx, movie.ID, []domain.Episode{
		testutil.NewEpisode(movie.ID, "Vietsub #1", "Tập 1"),
	}))
	n, err := suite.repo.SoftDelete(suite.ctx, domain.TrashMovies, []uuid.UUID{movie.ID}, suite.clock.Add(-age))
	suite.Require().NoError(err)
	suite.Require().Equal(int64(1), n)
	return movie
}

func (suite *TrashServiceTestSuite) upload(name string) {
	path := filepath.Join(suite.dir, name)
	suite.Require().NoError(os.WriteFile(path, []byte("data"), 0o644))
}

func (suite *TrashServiceTestSuite) exists(key string) bool {
	_, err := os.Stat(filepath.Join(suite.dir, filepath.FromSlash(key)))
	return err == nil
}

func (suite *TrashServiceTestSuite) TestList_DaysRemaining() {
	suite.trashedMovie("old", 10*24*time.Hour)
	suite.trashedMovie("expired", 45*24*time.Hour)

	items, err := suite.service.List(suite.ctx, domain.TrashMovies)
	suite.Require().NoError(err)
	suite.Require().Len(items, 2)

	suite.Equal("Local old", items[0].Label)
	suite.Equal(20, items[0].DaysRemaining)
	suite.Equal(0, items[1].DaysRemaining)
}

func (suite *TrashServiceTestSuite) TestRestore() {
	movie := suite.trashedMovie("restored", time.Hour)

	n, err := suite.service.Restore(suite.ctx, domain.TrashMovies, []uuid.UUID{movie.ID})
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)

	stored, err := suite.repo.GetMovie(suite.ctx, movie.ID)
	suite.Require().NoError(err)
	suite.False(stored.Deletion.IsDeleted())

	items, err := suite.service.List(suite.ctx, domain.TrashMovies)
	suite.Require().NoError(err)
	suite.Empty(items)

	published := suite.publisher.Envelopes(events.EventTypeTrashRestored)
	suite.Require().Len(published, 1)
	var payload events.TrashChanged
	suite.Require().NoError(published[0].UnmarshalData(&payload))
	suite.Equal("movies", payload.Kind)
	suite.Equal(int64(1), payload.Count)
	suite.Equal([]uuid.UUID{movie.ID}, payload.IDs)
}

func (suite *TrashServiceTestSuite) TestPurge_RemovesDependents() {
	movie := suite.trashedMovie("purged", time.Hour)

	n, err := suite.service.Purge(suite.ctx, domain.TrashMovies, []uuid.UUID{movie.ID})
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)

	_, err = suite.repo.GetMovie(suite.ctx, movie.ID)
	suite.True(pkgerrors.IsNotFound(err))

	episodes, err := suite.repo.ListEpisodes(suite.ctx, movie.ID)
	suite.Require().NoError(err)
	suite.Empty(episodes)
	suite.Len(suite.publisher.Envelopes(events.EventTypeTrashPurged), 1)
}

func (suite *TrashServiceTestSuite) TestPurge_IgnoresActiveRows() {
	movie := testutil.NewMovie("alive")
	suite.Require().NoError(suite.repo.CreateMovie(suite.ctx, movie))

	n, err := suite.service.Purge(suite.ctx, domain.TrashMovies, []uuid.UUID{movie.ID})
	suite.Require().NoError(err)
	suite.Zero(n)
	suite.Empty(suite.publisher.Envelopes(""))

	_, err = suite.repo.GetMovie(suite.ctx, movie.ID)
	suite.NoError(err)
}

func (suite *TrashServiceTestSuite) TestValidation() {
	_, err := suite.service.List(suite.ctx, domain.TrashKind("users"))
	suite.True(pkgerrors.IsBadRequest(err))
	suite.ErrorIs(err, domain.ErrUnknownTrashKind)

	_, err = suite.service.Restore(suite.ctx, domain.TrashMovies, nil)
	suite.ErrorIs(err, domain.ErrNoIDs)

	_, err = suite.service.Purge(suite.ctx, domain.TrashGenres, []uuid.UUID{})
	suite.True(pkgerrors.IsBadRequest(err))
}

func (suite *TrashServiceTestSuite) TestMedia_TrashAndRestore() {
	suite.upload("banner.jpg")

	file, err := suite.service.TrashMedia(suite.ctx, "banner.jpg")
	suite.Require().NoError(err)
	suite.False(suite.exists("banner.jpg"))
	suite.True(suite.exists("trash/banner.jpg"))

	items, err := suite.service.List(suite.ctx, domain.TrashMedia)
	suite.Require().NoError(err)
	suite.Require().Len(items, 1)
	suite.Equal("banner.jpg", items[0].Label)
	suite.Equal(30, items[0].DaysRemaining)

	n, err := suite.service.Restore(suite.ctx, domain.TrashMedia, []uuid.UUID{file.ID})
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)
	suite.True(suite.exists("banner.jpg"))
	suite.False(suite.exists("trash/banner.jpg"))

	items, err = suite.service.List(suite.ctx, domain.TrashMedia)
	suite.Require().NoError(err)
	suite.Empty(items)
}

func (suite *TrashServiceTestSuite) TestMedia_Purge() {
	suite.upload("clip.mp4")
	file, err := suite.service.TrashMedia(suite.ctx, "clip.mp4")
	suite.Require().NoError(err)

	n, err := suite.service.Purge(suite.ctx, domain.TrashMedia, []uuid.UUID{file.ID})
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)
	suite.False(suite.exists("trash/clip.mp4"))
	suite.False(suite.exists("clip.mp4"))
}

func (suite *TrashServiceTestSuite) TestMedia_Missing() {
	_, err := suite.service.TrashMedia(suite.ctx, "nothing.png")
	suite.True(pkgerrors.IsNotFound(err))

	_, err = suite.service.TrashMedia(suite.ctx, "../escape.png")
	suite.True(pkgerrors.IsBadRequest(err))
}

func (suite *TrashServiceTestSuite) TestEmpty() {
	for _, name := range []string{"Hành Động", "Hài Hước"} {
		id, err := suite.repo.UpsertTerm(suite.ctx, domain.TermGenre, name, domain.Slugify(name))
		suite.Require().NoError(err)
		_, err = suite.repo.SoftDelete(suite.ctx, domain.TrashGenres, []uuid.UUID{id}, suite.clock)
		suite.Require().NoError(err)
	}
	suite.upload("a.png")
	_, err := suite.service.TrashMedia(suite.ctx, "a.png")
	suite.Require().NoError(err)

	n, err := suite.service.Empty(suite.ctx, domain.TrashGenres)
	suite.Require().NoError(err)
	suite.Equal(int64(2), n)

	n, err = suite.service.Empty(suite.ctx, domain.TrashMedia)
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)
	suite.False(suite.exists("trash/a.png"))
}

func (suite *TrashServiceTestSuite) TestSweep_LocalClockKeepsUnexpiredRows() {
	hanoi := time.FixedZone("ICT", 7*60*60)
	suite.clock = suite.clock.In(hanoi)
	movie := suite.trashedMovie("con-han", 29*24*time.Hour+20*time.Hour)

	result, err := suite.service.Sweep(suite.ctx)
	suite.Require().NoError(err)
	suite.Zero(result.Total())

	_, err = suite.repo.GetMovie(suite.ctx, movie.ID)
	suite.NoError(err)

	items, err := suite.service.List(suite.ctx, domain.TrashMovies)
	suite.Require().NoError(err)
	suite.Require().Len(items, 1)
	suite.Equal(0, items[0].DaysRemaining)

	suite.clock = suite.clock.Add(5 * time.Hour)
	result, err = suite.service.Sweep(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(1), result[domain.TrashMovies])
}

func (suite *TrashServiceTestSuite) TestSweep_PurgesOnlyExpired() {
	expired := suite.trashedMovie("expired", 31*24*time.Hour)
	recent := suite.trashedMovie("recent", 29*24*time.Hour)

	genreID, err := suite.repo.UpsertTerm(suite.ctx, domain.TermGenre, "Kinh Dị", "kinh-di")
	suite.Require().NoError(err)
	_, err = suite.repo.SoftDelete(suite.ctx, domain.TrashGenres, []uuid.UUID{genreID}, suite.clock.Add(-30*24*time.Hour))
	suite.Require().NoError(err)

	// Trash a file 40 days before the sweep.
	sweepAt := suite.clock
	suite.clock = sweepAt.Add(-40 * 24 * time.Hour)
	suite.upload("old.png")
	_, err = suite.service.TrashMedia(suite.ctx, "old.png")
	suite.Require().NoError(err)
	suite.clock = sweepAt

	result, err := suite.service.Sweep(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(SweepResult{
		domain.TrashMovies: 1,
		domain.TrashGenres: 1,
		domain.TrashMedia:  1,
	}, result)
	suite.Equal(int64(3), result.Total())

	_, err = suite.repo.GetMovie(suite.ctx, expired.ID)
	suite.True(pkgerrors.IsNotFound(err))
	_, err = suite.repo.GetMovie(suite.ctx, recent.ID)
	suite.NoError(err)
	suite.False(suite.exists("trash/old.png"))

	again, err := suite.service.Sweep(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(again)
}

func (suite *TrashServiceTestSuite) TestRun_StopsOnCancel() {
	suite.trashedMovie("expired", 60*24*time.Hour)

	ctx, cancel := context.WithCancel(suite.ctx)
	done := make(chan struct{})
	go func() {
		suite.service.Run(ctx, time.Hour)
		close(done)
	}()

	suite.Eventually(func() bool {
		return len(suite.publisher.Envelopes(events.EventTypeTrashPurged)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		suite.Fail("Run did not return after cancel")
	}
}

func TestTrashServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TrashServiceTestSuite))
}
