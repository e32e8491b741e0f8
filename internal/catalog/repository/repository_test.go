package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/internal/catalog/repository"
	pkgerrors "github.com/narwhalmedia/phimdash/pkg/errors"
	"github.com/narwhalmedia/phimdash/test/testutil"
)

type RepositoryTestSuite struct {
	suite.Suite

	ctx  context.Context
	repo *repository.GormRepository
}

func (suite *RepositoryTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.repo = repository.NewGormRepository(testutil.NewTestDB(suite.T()))
}

func (suite *RepositoryTestSuite) createMovie(slug string) *domain.Movie {
	movie := testutil.NewMovie(slug)
	suite.Require().NoError(suite.repo.CreateMovie(suite.ctx, movie))
	return movie
}

func (suite *RepositoryTestSuite) TestMovie_CreateAndGet() {
	movie := suite.createMovie("cuoc-chien")
	suite.NotEqual(uuid.Nil, movie.ID)
	suite.False(movie.CreatedAt.IsZero())

	got, err := suite.repo.GetMovie(suite.ctx, movie.ID)
	suite.Require().NoError(err)
	suite.Equal("cuoc-chien", got.Slug)
	suite.Equal("Local cuoc-chien", got.Name)
	suite.Equal(2023, got.Year)
	suite.Require().NotNil(got.PosterURL)
	suite.False(got.Deletion.IsDeleted())

	_, err = suite.repo.GetMovie(suite.ctx, uuid.New())
	suite.True(pkgerrors.IsNotFound(err))
	suite.True(errors.Is(err, domain.ErrMovieNotFound))
}

func (suite *RepositoryTestSuite) TestMovie_DuplicateSlugConflicts() {
	suite.createMovie("trung-lap")
	err := suite.repo.CreateMovie(suite.ctx, testutil.NewMovie("trung-lap"))
	suite.True(pkgerrors.IsConflict(err))
}

func (suite *RepositoryTestSuite) TestMovie_GetBySlugIncludesTrashed() {
	movie := suite.createMovie("da-xoa")
	n, err := suite.repo.SoftDelete(suite.ctx, domain.TrashMovies, []uuid.UUID{movie.ID}, time.Now())
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)

	got, err := suite.repo.GetMovieBySlug(suite.ctx, "da-xoa")
	suite.Require().NoError(err)
	suite.Equal(movie.ID, got.ID)
	suite.True(got.Deletion.IsDeleted())

	_, err = suite.repo.GetMovieBySlug(suite.ctx, "khong-co")
	suite.True(errors.Is(err, domain.ErrMovieNotFound))
}

func (suite *RepositoryTestSuite) TestMovie_UpdateClearsNilImages() {
	movie := suite.createMovie("cap-nhat")
	movie.Name = "Renamed"
	movie.PosterURL = nil
	suite.Require().NoError(suite.repo.UpdateMovie(suite.ctx, movie))

	got, err := suite.repo.GetMovie(suite.ctx, movie.ID)
	suite.Require().NoError(err)
	suite.Equal("Renamed", got.Name)
	suite.Nil(got.PosterURL)

	missing := testutil.NewMovie("missing")
	missing.ID = uuid.New()
	suite.True(errors.Is(suite.repo.UpdateMovie(suite.ctx, missing), domain.ErrMovieNotFound))
}

func (suite *RepositoryTestSuite) TestMovie_ListFiltersAndPaginates() {
	for _, slug := range []string{"a", "b", "c"} {
		suite.createMovie(slug)
	}
	series := testutil.NewMovie("series")
	series.Type = "series"
	series.Year = 2020
	suite.Require().NoError(suite.repo.CreateMovie(suite.ctx, series))

	trashed := suite.createMovie("trashed")
	_, err := suite.repo.SoftDelete(suite.ctx, domain.TrashMovies, []uuid.UUID{trashed.ID}, time.Now())
	suite.Require().NoError(err)

	movies, total, err := suite.repo.ListMovies(suite.ctx, domain.MovieFilter{Limit: 2})
	suite.Require().NoError(err)
	suite.Equal(int64(4), total)
	suite.Len(movies, 2)

	movies, total, err = suite.repo.ListMovies(suite.ctx, domain.MovieFilter{Limit: 2, Offset: 2})
	suite.Require().NoError(err)
	suite.Equal(int64(4), total)
	suite.Len(movies, 2)

	movies, total, err = suite.repo.ListMovies(suite.ctx, domain.MovieFilter{Type: "series"})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal("series", movies[0].Slug)

	_, total, err = suite.repo.ListMovies(suite.ctx, domain.MovieFilter{Year: 2020})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)

	movies, _, err = suite.repo.ListMovies(suite.ctx, domain.MovieFilter{Search: "ORIGIN B"})
	suite.Require().NoError(err)
	suite.Require().Len(movies, 1)
	suite.Equal("b", movies[0].Slug)

	count, err := suite.repo.CountMovies(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(4), count)
}

func (suite *RepositoryTestSuite) TestTerms_UpsertIsIdempotent() {
	first, err := suite.repo.UpsertTerm(suite.ctx, domain.TermGenre, "Hành Động", "hanh-dong")
	suite.Require().NoError(err)
	second, err := suite.repo.UpsertTerm(suite.ctx, domain.TermGenre, "Renamed", "hanh-dong")
	suite.Require().NoError(err)
	suite.Equal(first, second)

	terms, err := suite.repo.ListTerms(suite.ctx, domain.TermGenre, "")
	suite.Require().NoError(err)
	suite.Require().Len(terms, 1)
	suite.Equal("Hành Động", terms[0].Name)

	_, err = suite.repo.UpsertTerm(suite.ctx, domain.TermKind("studios"), "x", "x")
	suite.True(errors.Is(err, domain.ErrUnknownTermKind))
}

func (suite *RepositoryTestSuite) TestTerms_LinkAndUnlink() {
	movie := suite.createMovie("lien-ket")
	action, err := suite.repo.UpsertTerm(suite.ctx, domain.TermGenre, "Action", "action")
	suite.Require().NoError(err)
	drama, err := suite.repo.UpsertTerm(suite.ctx, domain.TermGenre, "Drama", "drama")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.repo.LinkMovieTerm(suite.ctx, domain.TermGenre, movie.ID, drama))
	suite.Require().NoError(suite.repo.LinkMovieTerm(suite.ctx, domain.TermGenre, movie.ID, action))
	suite.Require().NoError(suite.repo.LinkMovieTerm(suite.ctx, domain.TermGenre, movie.ID, action))

	linked, err := suite.repo.ListMovieTerms(suite.ctx, domain.TermGenre, movie.ID)
	suite.Require().NoError(err)
	suite.Require().Len(linked, 2)
	suite.Equal("Action", linked[0].Name)
	suite.Equal("Drama", linked[1].Name)

	got, err := suite.repo.GetMovie(suite.ctx, movie.ID)
	suite.Require().NoError(err)
	suite.Len(got.Genres, 2)

	suite.Require().NoError(suite.repo.UnlinkMovieTerms(suite.ctx, domain.TermGenre, movie.ID))
	linked, err = suite.repo.ListMovieTerms(suite.ctx, domain.TermGenre, movie.ID)
	suite.Require().NoError(err)
	suite.Empty(linked)

	err = suite.repo.LinkMovieTerm(suite.ctx, domain.TermPostCategory, movie.ID, action)
	suite.True(errors.Is(err, domain.ErrUnknownTermKind))
}

func (suite *RepositoryTestSuite) TestTerms_CreateUpdateAndSearch() {
	term := &domain.Term{
		Kind: domain.TermPostCategory,
		Name: "Tin Tức",
		Slug: "tin-tuc",
		SEO:  domain.SEO{Title: "News", Keyword: "tin"},
	}
	suite.Require().NoError(suite.repo.CreateTerm(suite.ctx, term))
	suite.NotEqual(uuid.Nil, term.ID)

	dup := &domain.Term{Kind: domain.TermPostCategory, Name: "Again", Slug: "tin-tuc"}
	suite.True(pkgerrors.IsConflict(suite.repo.CreateTerm(suite.ctx, dup)))

	term.Name = "Tin Mới"
	term.SEO.Description = "Latest"
	suite.Require().NoError(suite.repo.UpdateTerm(suite.ctx, term))

	got, err := suite.repo.GetTerm(suite.ctx, domain.TermPostCategory, term.ID)
	suite.Require().NoError(err)
	suite.Equal("Tin Mới", got.Name)
	suite.Equal(domain.SEO{Title: "News", Description: "Latest", Keyword: "tin"}, got.SEO)

	found, err := suite.repo.ListTerms(suite.ctx, domain.TermPostCategory, "  tin  ")
	suite.Require().NoError(err)
	suite.Len(found, 1)
	found, err = suite.repo.ListTerms(suite.ctx, domain.TermPostCategory, "sport")
	suite.Require().NoError(err)
	suite.Empty(found)

	missing := &domain.Term{ID: uuid.New(), Kind: domain.TermPostCategory, Name: "x", Slug: "x"}
	suite.True(errors.Is(suite.repo.UpdateTerm(suite.ctx, missing), domain.ErrTermNotFound))
	_, err = suite.repo.GetTerm(suite.ctx, domain.TermActor, uuid.New())
	suite.True(pkgerrors.IsNotFound(err))
}

func (suite *RepositoryTestSuite) TestYears() {
	first, err := suite.repo.UpsertYear(suite.ctx, 2024)
	suite.Require().NoError(err)
	again, err := suite.repo.UpsertYear(suite.ctx, 2024)
	suite.Require().NoError(err)
	suite.Equal(first, again)
	_, err = suite.repo.UpsertYear(suite.ctx, 2019)
	suite.Require().NoError(err)

	_, err = suite.repo.UpsertYear(suite.ctx, 0)
	suite.True(errors.Is(err, domain.ErrInvalidYear))

	years, err := suite.repo.ListYears(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(years, 2)
	suite.Equal(2024, years[0].Year)
	suite.Equal(2019, years[1].Year)
}

func (suite *RepositoryTestSuite) TestEpisodes_ReplaceAndAppend() {
	movie := suite.createMovie("tap-phim")
	suite.Require().NoError(suite.repo.ReplaceEpisodes(suite.ctx, movie.ID, []domain.Episode{
		testutil.NewEpisode(movie.ID, "Vietsub", "Tập 1"),
		testutil.NewEpisode(movie.ID, "Vietsub", "Tập 2"),
	}))
	suite.Require().NoError(suite.repo.ReplaceEpisodes(suite.ctx, movie.ID, []domain.Episode{
		testutil.NewEpisode(movie.ID, "Thuyết Minh", "Tập 2"),
		testutil.NewEpisode(movie.ID, "Thuyết Minh", "Tập 1"),
	}))

	extra := testutil.NewEpisode(movie.ID, "Thuyết Minh", "Tập 3")
	suite.Require().NoError(suite.repo.CreateEpisode(suite.ctx, &extra))
	suite.NotEqual(uuid.Nil, extra.ID)

	episodes, err := suite.repo.ListEpisodes(suite.ctx, movie.ID)
	suite.Require().NoError(err)
	suite.Require().Len(episodes, 3)
	suite.Equal("Tập 2", episodes[0].Name)
	suite.Equal("Tập 1", episodes[1].Name)
	suite.Equal("Tập 3", episodes[2].Name)
	suite.Equal("Thuyết Minh", episodes[0].ServerName)

	extra.SetLink(domain.LinkTypeEmbed, "https://player.example/embed/3")
	suite.Require().NoError(suite.repo.UpdateEpisode(suite.ctx, &extra))
	got, err := suite.repo.GetEpisode(suite.ctx, extra.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.LinkTypeEmbed, got.LinkType())
	suite.Empty(got.LinkM3U8)

	suite.Require().NoError(suite.repo.DeleteEpisode(suite.ctx, extra.ID))
	suite.True(errors.Is(suite.repo.DeleteEpisode(suite.ctx, extra.ID), domain.ErrEpisodeNotFound))
	_, err = suite.repo.GetEpisode(suite.ctx, extra.ID)
	suite.True(pkgerrors.IsNotFound(err))
}

func (suite *RepositoryTestSuite) TestEpisodes_CountSkipsTrashedMovies() {
	live := suite.createMovie("live")
	gone := suite.createMovie("gone")
	for _, id := range []uuid.UUID{live.ID, gone.ID} {
		suite.Require().NoError(suite.repo.ReplaceEpisodes(suite.ctx, id, []domain.Episode{
			testutil.NewEpisode(id, "", "Full"),
		}))
	}
	_, err := suite.repo.SoftDelete(suite.ctx, domain.TrashMovies, []uuid.UUID{gone.ID}, time.Now())
	suite.Require().NoError(err)

	count, err := suite.repo.CountEpisodes(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(1), count)
}

func (suite *RepositoryTestSuite) TestCrawlLogs() {
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for i, label := range []string{"Trang 1-2", "Phim: a", "Phim: b"} {
		log := domain.NewCrawlLog(label, base.Add(time.Duration(i)*time.Minute))
		suite.Require().NoError(suite.repo.CreateCrawlLog(suite.ctx, log))
	}

	finished := domain.NewCrawlLog("Danh sách 3 phim", base.Add(time.Hour))
	suite.Require().NoError(suite.repo.CreateCrawlLog(suite.ctx, finished))
	suite.Require().NoError(finished.Finish(domain.CrawlSuccess, 2, 1, 3*time.Second, ""))
	suite.Require().NoError(suite.repo.UpdateCrawlLog(suite.ctx, finished))

	logs, err := suite.repo.ListCrawlLogs(suite.ctx, 2)
	suite.Require().NoError(err)
	suite.Require().Len(logs, 2)
	suite.Equal(finished.ID, logs[0].ID)
	suite.Equal(domain.CrawlSuccess, logs[0].Status)
	suite.Equal(2, logs[0].MoviesAdded)
	suite.Equal(1, logs[0].MoviesUpdated)
	suite.Equal("3s", logs[0].Duration)
	suite.Equal("Phim: b", logs[1].Type)

	logs, err = suite.repo.ListCrawlLogs(suite.ctx, 0)
	suite.Require().NoError(err)
	suite.Len(logs, 4)
}

func (suite *RepositoryTestSuite) TestTrash_SoftDeleteKeepsOriginalTime() {
	movie := suite.createMovie("thung-rac")
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	n, err := suite.repo.SoftDelete(suite.ctx, domain.TrashMovies, []uuid.UUID{movie.ID}, first)
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)
	n, err = suite.repo.SoftDelete(suite.ctx, domain.TrashMovies, []uuid.UUID{movie.ID}, first.Add(time.Hour))
	suite.Require().NoError(err)
	suite.Equal(int64(0), n)

	items, err := suite.repo.ListDeleted(suite.ctx, domain.TrashMovies)
	suite.Require().NoError(err)
	suite.Require().Len(items, 1)
	suite.Equal("Local thung-rac", items[0].Label)
	suite.True(first.Equal(items[0].DeletedAt))

	_, err = suite.repo.SoftDelete(suite.ctx, domain.TrashMedia, []uuid.UUID{movie.ID}, first)
	suite.True(errors.Is(err, domain.ErrUnknownTrashKind))
}

func (suite *RepositoryTestSuite) TestTrash_Restore() {
	genre, err := suite.repo.UpsertTerm(suite.ctx, domain.TermGenre, "Kinh Dị", "kinh-di")
	suite.Require().NoError(err)
	_, err = suite.repo.SoftDelete(suite.ctx, domain.TrashGenres, []uuid.UUID{genre}, time.Now())
	suite.Require().NoError(err)

	terms, err := suite.repo.ListTerms(suite.ctx, domain.TermGenre, "")
	suite.Require().NoError(err)
	suite.Empty(terms)

	n, err := suite.repo.Restore(suite.ctx, domain.TrashGenres, []uuid.UUID{genre, uuid.New()})
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)

	terms, err = suite.repo.ListTerms(suite.ctx, domain.TermGenre, "")
	suite.Require().NoError(err)
	suite.Len(terms, 1)
}

func (suite *RepositoryTestSuite) TestTrash_PurgeRemovesDependents() {
	movie := suite.createMovie("xoa-han")
	genre, err := suite.repo.UpsertTerm(suite.ctx, domain.TermGenre, "Hài", "hai")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.LinkMovieTerm(suite.ctx, domain.TermGenre, movie.ID, genre))
	suite.Require().NoError(suite.repo.ReplaceEpisodes(suite.ctx, movie.ID, []domain.Episode{
		testutil.NewEpisode(movie.ID, "Vietsub", "Full"),
	}))

	n, err := suite.repo.Purge(suite.ctx, domain.TrashMovies, []uuid.UUID{movie.ID})
	suite.Require().NoError(err)
	suite.Equal(int64(0), n, "active rows are not purged")

	_, err = suite.repo.SoftDelete(suite.ctx, domain.TrashMovies, []uuid.UUID{movie.ID}, time.Now())
	suite.Require().NoError(err)
	n, err = suite.repo.Purge(suite.ctx, domain.TrashMovies, []uuid.UUID{movie.ID})
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)

	_, err = suite.repo.GetMovie(suite.ctx, movie.ID)
	suite.True(pkgerrors.IsNotFound(err))
	episodes, err := suite.repo.ListEpisodes(suite.ctx, movie.ID)
	suite.Require().NoError(err)
	suite.Empty(episodes)
	linked, err := suite.repo.ListMovieTerms(suite.ctx, domain.TermGenre, movie.ID)
	suite.Require().NoError(err)
	suite.Empty(linked)

	_, err = suite.repo.GetTerm(suite.ctx, domain.TermGenre, genre)
	suite.NoError(err, "lookup entries survive their movies")
}

func (suite *RepositoryTestSuite) TestTrash_PurgeDeletedBeforeIsInclusive() {
	cutoff := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	older := suite.createMovie("older")
	boundary := suite.createMovie("boundary")
	newer := suite.createMovie("newer")

	for movie, at := range map[*domain.Movie]time.Time{
		older:    cutoff.Add(-time.Hour),
		boundary: cutoff,
		newer:    cutoff.Add(time.Second),
	} {
		_, err := suite.repo.SoftDelete(suite.ctx, domain.TrashMovies, []uuid.UUID{movie.ID}, at)
		suite.Require().NoError(err)
	}

	n, err := suite.repo.PurgeDeletedBefore(suite.ctx, domain.TrashMovies, cutoff)
	suite.Require().NoError(err)
	suite.Equal(int64(2), n)

	items, err := suite.repo.ListDeleted(suite.ctx, domain.TrashMovies)
	suite.Require().NoError(err)
	suite.Require().Len(items, 1)
	suite.Equal(newer.ID, items[0].ID)

	n, err = suite.repo.PurgeAll(suite.ctx, domain.TrashMovies)
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)
}

func (suite *RepositoryTestSuite) TestTrash_PurgeDeletedBeforeIgnoresZone() {
	hanoi := time.FixedZone("ICT", 7*60*60)
	deletedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	movie := suite.createMovie("mui-gio")
	_, err := suite.repo.SoftDelete(suite.ctx, domain.TrashMovies, []uuid.UUID{movie.ID}, deletedAt.In(hanoi))
	suite.Require().NoError(err)

	n, err := suite.repo.PurgeDeletedBefore(suite.ctx, domain.TrashMovies, deletedAt.Add(-time.Hour).In(hanoi))
	suite.Require().NoError(err)
	suite.Equal(int64(0), n)

	n, err = suite.repo.PurgeDeletedBefore(suite.ctx, domain.TrashMovies, deletedAt.In(hanoi))
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)
}

func (suite *RepositoryTestSuite) TestTrash_YearLabels() {
	id, err := suite.repo.UpsertYear(suite.ctx, 2021)
	suite.Require().NoError(err)
	_, err = suite.repo.SoftDelete(suite.ctx, domain.TrashYears, []uuid.UUID{id}, time.Now())
	suite.Require().NoError(err)

	items, err := suite.repo.ListDeleted(suite.ctx, domain.TrashYears)
	suite.Require().NoError(err)
	suite.Require().Len(items, 1)
	suite.Equal("2021", items[0].Label)
	suite.Equal(domain.TrashYears, items[0].Kind)
}

func (suite *RepositoryTestSuite) TestTrash_DeletedMedia() {
	at := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	file := &domain.MediaFile{FileName: "poster.jpg", DeletedAt: at}
	suite.Require().NoError(suite.repo.CreateDeletedMedia(suite.ctx, file))
	suite.NotEqual(uuid.Nil, file.ID)

	items, err := suite.repo.ListDeleted(suite.ctx, domain.TrashMedia)
	suite.Require().NoError(err)
	suite.Require().Len(items, 1)
	suite.Equal("poster.jpg", items[0].Label)

	files, err := suite.repo.GetDeletedMedia(suite.ctx, []uuid.UUID{file.ID})
	suite.Require().NoError(err)
	suite.Require().Len(files, 1)
	suite.Equal("poster.jpg", files[0].FileName)

	n, err := suite.repo.Restore(suite.ctx, domain.TrashMedia, []uuid.UUID{file.ID})
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)
	items, err = suite.repo.ListDeleted(suite.ctx, domain.TrashMedia)
	suite.Require().NoError(err)
	suite.Empty(items)
}

func (suite *RepositoryTestSuite) TestWithTx_RollsBack() {
	boom := errors.New("boom")
	err := suite.repo.WithTx(suite.ctx, func(tx repository.Repository) error {
		if err := tx.CreateMovie(suite.ctx, testutil.NewMovie("rollback")); err != nil {
			return err
		}
		return boom
	})
	suite.ErrorIs(err, boom)

	_, err = suite.repo.GetMovieBySlug(suite.ctx, "rollback")
	suite.True(pkgerrors.IsNotFound(err))

	suite.Require().NoError(suite.repo.WithTx(suite.ctx, func(tx repository.Repository) error {
		return tx.CreateMovie(suite.ctx, testutil.NewMovie("commit"))
	}))
	_, err = suite.repo.GetMovieBySlug(suite.ctx, "commit")
	suite.NoError(err)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
