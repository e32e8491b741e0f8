package service_test

import (
	"github.com/google/uuid"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/internal/catalog/service"
	pkgerrors "github.com/narwhalmedia/phimdash/pkg/errors"
)

func (suite *MovieServiceTestSuite) TestAddEpisode_GroupsByServer() {
	movie := suite.create("series")

	inputs := []service.EpisodeInput{
		{ServerName: "Vietsub #1", Name: "Tập 1", LinkType: "m3u8", Link: "https://cdn/1.m3u8"},
		{ServerName: "Vietsub #1", Name: "Tập 2", LinkType: "m3u8", Link: "https://cdn/2.m3u8"},
		{Name: "Tập 1", LinkType: "embed", Link: "https://player/1"},
		{ServerName: "Vietsub #1", Name: "Tập 3", LinkType: "file", Link: "tap-3.mp4"},
	}
	for _, in := range inputs {
		_, err := suite.episodes.AddEpisode(suite.ctx, movie.ID, in)
		suite.Require().NoError(err)
	}

	groups, err := suite.episodes.ListEpisodes(suite.ctx, movie.ID)
	suite.Require().NoError(err)
	suite.Require().Len(groups, 2)

	suite.Equal("Vietsub #1", groups[0].ServerName)
	suite.Require().Len(groups[0].Episodes, 3)
	suite.Equal("tap-1", groups[0].Episodes[0].Slug)
	suite.Equal(domain.LinkTypeFile, groups[0].Episodes[2].LinkType())
	suite.Equal("tap-3.mp4", groups[0].Episodes[2].Link())

	suite.Equal(domain.DefaultServerName, groups[1].ServerName)
	suite.Equal(domain.LinkTypeEmbed, groups[1].Episodes[0].LinkType())
}

func (suite *MovieServiceTestSuite) TestAddEpisode_Validation() {
	movie := suite.create("validated")

	tests := []struct {
		name string
		in   service.EpisodeInput
		want error
	}{
		{"empty link", service.EpisodeInput{Name: "Tập 1", LinkType: "m3u8", Link: "  "}, domain.ErrMissingLink},
		{"bad type", service.EpisodeInput{Name: "Tập 1", LinkType: "torrent", Link: "magnet:?"}, domain.ErrInvalidLinkType},
		{"no name", service.EpisodeInput{LinkType: "embed", Link: "https://player"}, domain.ErrNameRequired},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.episodes.AddEpisode(suite.ctx, movie.ID, tt.in)
			suite.True(pkgerrors.IsBadRequest(err))
			suite.ErrorIs(err, tt.want)
		})
	}

	_, err := suite.episodes.AddEpisode(suite.ctx, uuid.New(), service.EpisodeInput{Name: "x", LinkType: "m3u8", Link: "y"})
	suite.True(pkgerrors.IsNotFound(err))
}

func (suite *MovieServiceTestSuite) TestUpdateEpisode_SwitchesLinkType() {
	movie := suite.create("switch")
	episode, err := suite.episodes.AddEpisode(suite.ctx, movie.ID, service.EpisodeInput{Name: "Tập 1", LinkType: "m3u8", Link: "https://cdn/1.m3u8"})
	suite.Require().NoError(err)

	updated, err := suite.episodes.UpdateEpisode(suite.ctx, episode.ID, service.EpisodeInput{
		ServerName: "Backup",
		Name:       "Tập 1",
		LinkType:   "embed",
		Link:       "https://player/1",
	})
	suite.Require().NoError(err)
	suite.Equal(domain.LinkTypeEmbed, updated.LinkType())

	stored, err := suite.repo.GetEpisode(suite.ctx, episode.ID)
	suite.Require().NoError(err)
	suite.Empty(stored.LinkM3U8)
	suite.Equal("https://player/1", stored.LinkEmbed)
	suite.Equal("Backup", stored.ServerName)
}

func (suite *MovieServiceTestSuite) TestDeleteEpisode() {
	movie := suite.create("deletable")
	episode, err := suite.episodes.AddEpisode(suite.ctx, movie.ID, service.EpisodeInput{Name: "Tập 1", LinkType: "m3u8", Link: "https://cdn/1.m3u8"})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.episodes.DeleteEpisode(suite.ctx, episode.ID))
	suite.True(pkgerrors.IsNotFound(suite.episodes.DeleteEpisode(suite.ctx, episode.ID)))

	groups, err := suite.episodes.ListEpisodes(suite.ctx, movie.ID)
	suite.Require().NoError(err)
	suite.Empty(groups)
}
