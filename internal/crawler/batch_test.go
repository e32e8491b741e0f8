package crawler

import (
	"context"
	"errors"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/internal/events"
	"github.com/narwhalmedia/phimdash/internal/infrastructure/adapters/external/phimapi"
	"github.com/narwhalmedia/phimdash/test/testutil"
)

func (suite *SynchronizerTestSuite) logs() []*domain.CrawlLog {
	logs, err := suite.repo.ListCrawlLogs(suite.ctx, 10)
	suite.Require().NoError(err)
	return logs
}

func (suite *SynchronizerTestSuite) TestSynchronizeByPageRange_RejectsInvalidRange() {
	tests := []struct{ from, to int }{
		{3, 1},
		{0, 2},
		{-1, -1},
	}

	for _, tt := range tests {
		summary, err := suite.sync.SynchronizeByPageRange(suite.ctx, tt.from, tt.to, nil)
		suite.ErrorIs(err, domain.ErrInvalidPageRange)
		suite.Nil(summary)
	}

	suite.Empty(suite.logs())
	suite.source.AssertNotCalled(suite.T(), "ListNewMovies", mock.Anything, mock.Anything)
}

func (suite *SynchronizerTestSuite) TestSynchronizeByPageRange_SinglePage() {
	suite.source.On("ListNewMovies", mock.Anything, 1).Return(testutil.ListPage(1, 10, "a", "b"), nil).Once()
	suite.expectDetail(testutil.RemoteMovie("a", 1))
	suite.expectDetail(testutil.RemoteMovie("b", 1))

	var fractions []float64
	summary, err := suite.sync.SynchronizeByPageRange(suite.ctx, 1, 1, func(p Progress) {
		fractions = append(fractions, p.Fraction)
	})

	suite.Require().NoError(err)
	suite.Equal(domain.CrawlSuccess, summary.Status)
	suite.Equal("Crawl pages 1 -> 1", summary.Label)
	suite.Equal(2, summary.Added)
	suite.Equal(0, summary.Failed)
	suite.Equal("0s", summary.Duration)
	suite.Empty(summary.Message)

	suite.Require().NotEmpty(fractions)
	suite.InDelta(1.0, fractions[len(fractions)-1], 1e-9)
	for i := 1; i < len(fractions); i++ {
		suite.GreaterOrEqual(fractions[i], fractions[i-1])
	}

	logs := suite.logs()
	suite.Require().Len(logs, 1)
	suite.Equal(domain.CrawlSuccess, logs[0].Status)
	suite.Equal(2, logs[0].MoviesAdded)
	suite.Len(suite.publisher.Envelopes(events.EventTypeCrawlCompleted), 1)
}

func (suite *SynchronizerTestSuite) TestSynchronizeByPageRange_ProgressFollowsItems() {
	suite.source.On("ListNewMovies", mock.Anything, 1).Return(testutil.ListPage(1, 2, "a", "b"), nil).Once()
	suite.source.On("ListNewMovies", mock.Anything, 2).Return(testutil.ListPage(2, 2, "c", "d"), nil).Once()
	for _, slug := range []string{"a", "b", "c", "d"} {
		suite.expectDetail(testutil.RemoteMovie(slug, 1))
	}

	var fractions []float64
	_, err := suite.sync.SynchronizeByPageRange(suite.ctx, 1, 2, func(p Progress) {
		fractions = append(fractions, p.Fraction)
	})
	suite.Require().NoError(err)

	// fetch, then before and after each item, per page
	suite.InDeltaSlice([]float64{
		0, 0, 0.25, 0.25, 0.5,
		0.5, 0.5, 0.75, 0.75, 1,
	}, fractions, 1e-9)
}

func (suite *SynchronizerTestSuite) TestSynchronizeByPageRange_CountsFailuresAndSkipsEmptyPages() {
	suite.Require().NoError(suite.repo.CreateMovie(suite.ctx, testutil.NewMovie("old")))

	suite.source.On("ListNewMovies", mock.Anything, 2).Return(testutil.ListPage(2, 10, "new", "old", "gone"), nil).Once()
	suite.source.On("ListNewMovies", mock.Anything, 3).Return(&phimapi.ListResponse{Status: true}, nil).Once()
	suite.expectDetail(testutil.RemoteMovie("new", 1))
	suite.expectDetail(testutil.RemoteMovie("old", 1))
	suite.expectNotFound("gone")

	progress := make(map[float64]bool)
	summary, err := suite.sync.SynchronizeByPageRange(suite.ctx, 2, 3, func(p Progress) {
		progress[p.Fraction] = true
	})

	suite.Require().NoError(err)
	suite.Equal(domain.CrawlSuccess, summary.Status)
	suite.Equal(1, summary.Added)
	suite.Equal(1, summary.Updated)
	suite.Equal(1, summary.Failed)
	suite.Equal("1 movies failed", summary.Message)

	// One of three items on the first of two pages.
	suite.True(progress[1.0/6.0])
	suite.True(progress[0.5])
}

func (suite *SynchronizerTestSuite) TestSynchronizeByPageRange_PageFetchErrorClosesLog() {
	suite.source.On("ListNewMovies", mock.Anything, 1).Return(testutil.ListPage(1, 10, "a"), nil).Once()
	suite.source.On("ListNewMovies", mock.Anything, 2).Return(nil, errors.New("connection reset")).Once()
	suite.expectDetail(testutil.RemoteMovie("a", 1))

	summary, err := suite.sync.SynchronizeByPageRange(suite.ctx, 1, 3, nil)

	suite.Require().Error(err)
	suite.Contains(err.Error(), "connection reset")
	suite.Require().NotNil(summary)
	suite.Equal(domain.CrawlError, summary.Status)
	suite.Equal(1, summary.Added)

	logs := suite.logs()
	suite.Require().Len(logs, 1)
	suite.Equal(domain.CrawlError, logs[0].Status)
	suite.Contains(logs[0].Message, "page 2")
}

func (suite *SynchronizerTestSuite) TestSynchronizeByPageRange_CancelledMidRun() {
	ctx, cancel := context.WithCancel(suite.ctx)
	suite.source.On("ListNewMovies", mock.Anything, 1).Return(testutil.ListPage(1, 10, "a", "b"), nil).Once()
	suite.source.On("GetMovieDetail", mock.Anything, "a").
		Run(func(mock.Arguments) { cancel() }).
		Return(testutil.RemoteMovie("a", 1), nil).Once()

	summary, err := suite.sync.SynchronizeByPageRange(ctx, 1, 1, nil)

	suite.ErrorIs(err, context.Canceled)
	suite.Require().NotNil(summary)
	suite.Equal(domain.CrawlError, summary.Status)

	logs := suite.logs()
	suite.Require().Len(logs, 1)
	suite.True(logs[0].Status.Terminal())
}

func (suite *SynchronizerTestSuite) TestSynchronizeByURLList_MixedInput() {
	suite.expectDetail(testutil.RemoteMovie("a", 1))
	suite.expectDetail(testutil.RemoteMovie("b", 1))

	input := strings.Join([]string{
		testutil.MovieURL("a"),
		"",
		"not a movie url",
		"  " + testutil.MovieURL("b") + "?ref=home  ",
	}, "\n")

	summary, err := suite.sync.SynchronizeByURLList(suite.ctx, input, nil)

	suite.Require().NoError(err)
	suite.Equal("Bulk crawl (3 movies)", summary.Label)
	suite.Equal(2, summary.Added+summary.Updated)
	suite.Equal(1, summary.Failed)
	suite.Equal("1 movies failed", summary.Message)

	logs := suite.logs()
	suite.Require().Len(logs, 1)
	suite.Equal(domain.CrawlSuccess, logs[0].Status)
	suite.Equal(2, logs[0].MoviesAdded)
}

func (suite *SynchronizerTestSuite) TestSynchronizeByURLList_EmptyInput() {
	summary, err := suite.sync.SynchronizeByURLList(suite.ctx, " \n\n  \n", nil)

	suite.ErrorIs(err, domain.ErrEmptyInput)
	suite.Nil(summary)
	suite.Empty(suite.logs())
}

func (suite *SynchronizerTestSuite) TestSynchronizeSingle_Success() {
	suite.expectDetail(testutil.RemoteMovie("avatar-lua-va-tro-tan", 1))

	result, err := suite.sync.SynchronizeSingle(suite.ctx, testutil.MovieURL("avatar-lua-va-tro-tan"))

	suite.Require().NoError(err)
	suite.True(result.Success)

	logs := suite.logs()
	suite.Require().Len(logs, 1)
	suite.Equal(result.LogID, logs[0].ID)
	suite.Equal("Crawl movie: avatar-lua-va-tro-tan", logs[0].Type)
	suite.Equal(domain.CrawlSuccess, logs[0].Status)
	suite.Equal(1, logs[0].MoviesAdded)
	suite.Equal(0, logs[0].MoviesUpdated)
}

func (suite *SynchronizerTestSuite) TestSynchronizeSingle_UpdateCountsAsUpdated() {
	suite.Require().NoError(suite.repo.CreateMovie(suite.ctx, testutil.NewMovie("dune-2")))
	suite.expectDetail(testutil.RemoteMovie("dune-2", 1))

	result, err := suite.sync.SynchronizeSingle(suite.ctx, "https://phimapi.com/phim/dune-2?ref=x")

	suite.Require().NoError(err)
	suite.True(result.Updated)

	logs := suite.logs()
	suite.Require().Len(logs, 1)
	suite.Equal(0, logs[0].MoviesAdded)
	suite.Equal(1, logs[0].MoviesUpdated)
}

func (suite *SynchronizerTestSuite) TestSynchronizeSingle_NotFoundStillLogs() {
	suite.expectNotFound("missing")

	result, err := suite.sync.SynchronizeSingle(suite.ctx, testutil.MovieURL("missing"))

	suite.Require().NoError(err)
	suite.False(result.Success)

	logs := suite.logs()
	suite.Require().Len(logs, 1)
	suite.Equal(domain.CrawlError, logs[0].Status)
	suite.Equal("movie not found: missing", logs[0].Message)
	suite.Equal(0, logs[0].MoviesAdded+logs[0].MoviesUpdated)

	envelopes := suite.publisher.Envelopes(events.EventTypeCrawlCompleted)
	suite.Require().Len(envelopes, 1)
	var data events.CrawlCompleted
	suite.Require().NoError(envelopes[0].UnmarshalData(&data))
	suite.Equal(1, data.Failed)
}

func (suite *SynchronizerTestSuite) TestSynchronizeSingle_InvalidURL() {
	_, err := suite.sync.SynchronizeSingle(suite.ctx, "https://phimapi.com/danh-sach/phim-moi")

	suite.ErrorIs(err, domain.ErrInvalidURL)
	suite.Empty(suite.logs())
}

func (suite *SynchronizerTestSuite) TestPublishFailureDoesNotFailCrawl() {
	suite.publisher.FailWith(errors.New("broker down"))
	suite.expectDetail(testutil.RemoteMovie("a", 1))

	result, err := suite.sync.SynchronizeSingle(suite.ctx, testutil.MovieURL("a"))

	suite.Require().NoError(err)
	suite.True(result.Success)
}
