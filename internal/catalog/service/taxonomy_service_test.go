package service_test

import (
	"github.com/google/uuid"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
	"github.com/narwhalmedia/phimdash/internal/catalog/service"
	pkgerrors "github.com/narwhalmedia/phimdash/pkg/errors"
)

func (suite *MovieServiceTestSuite) TestCreateTerm_AutoSlugAndConflict() {
	term, err := suite.taxonomy.CreateTerm(suite.ctx, domain.TermCountry, service.TermInput{Name: "Hàn Quốc"})
	suite.Require().NoError(err)
	suite.Equal("han-quoc", term.Slug)
	suite.Equal(domain.TermCountry, term.Kind)

	_, err = suite.taxonomy.CreateTerm(suite.ctx, domain.TermCountry, service.TermInput{Name: "Han Quoc"})
	suite.True(pkgerrors.IsConflict(err))

	_, err = suite.taxonomy.CreateTerm(suite.ctx, domain.TermCountry, service.TermInput{Name: " "})
	suite.ErrorIs(err, domain.ErrNameRequired)
}

func (suite *MovieServiceTestSuite) TestPostCategorySEO() {
	term, err := suite.taxonomy.CreateTerm(suite.ctx, domain.TermPostCategory, service.TermInput{
		Name: "Tin Tức",
		SEO:  domain.SEO{Title: "Tin tức phim", Keyword: "tin tuc"},
	})
	suite.Require().NoError(err)

	updated, err := suite.taxonomy.UpdateTerm(suite.ctx, domain.TermPostCategory, term.ID, service.TermInput{
		Name: "Tin Tức",
		Slug: "tin-tuc-phim",
		SEO:  domain.SEO{Title: "Tin mới", Description: "Tin tức điện ảnh"},
	})
	suite.Require().NoError(err)
	suite.Equal("tin-tuc-phim", updated.Slug)

	stored, err := suite.repo.GetTerm(suite.ctx, domain.TermPostCategory, term.ID)
	suite.Require().NoError(err)
	suite.Equal("Tin mới", stored.SEO.Title)
	suite.Equal("Tin tức điện ảnh", stored.SEO.Description)
}

func (suite *MovieServiceTestSuite) TestListAndDeleteTerms() {
	action, err := suite.taxonomy.CreateTerm(suite.ctx, domain.TermGenre, service.TermInput{Name: "Hành Động"})
	suite.Require().NoError(err)
	_, err = suite.taxonomy.CreateTerm(suite.ctx, domain.TermGenre, service.TermInput{Name: "Hài Hước"})
	suite.Require().NoError(err)

	found, err := suite.taxonomy.ListTerms(suite.ctx, domain.TermGenre, "hành")
	suite.Require().NoError(err)
	suite.Require().Len(found, 1)
	suite.Equal(action.ID, found[0].ID)

	n, err := suite.taxonomy.DeleteTerms(suite.ctx, domain.TermGenre, []uuid.UUID{action.ID})
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)

	all, err := suite.taxonomy.ListTerms(suite.ctx, domain.TermGenre, "")
	suite.Require().NoError(err)
	suite.Len(all, 1)

	_, err = suite.taxonomy.DeleteTerms(suite.ctx, domain.TermGenre, nil)
	suite.True(pkgerrors.IsBadRequest(err))
}

func (suite *MovieServiceTestSuite) TestYears() {
	first, err := suite.taxonomy.AddYear(suite.ctx, 2024)
	suite.Require().NoError(err)
	again, err := suite.taxonomy.AddYear(suite.ctx, 2024)
	suite.Require().NoError(err)
	suite.Equal(first, again)

	_, err = suite.taxonomy.AddYear(suite.ctx, 2023)
	suite.Require().NoError(err)

	_, err = suite.taxonomy.AddYear(suite.ctx, 0)
	suite.True(pkgerrors.IsBadRequest(err))

	years, err := suite.taxonomy.ListYears(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(years, 2)
	suite.Equal(2024, years[0].Year)

	n, err := suite.taxonomy.DeleteYears(suite.ctx, []uuid.UUID{first})
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)

	years, err = suite.taxonomy.ListYears(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(years, 1)
}
