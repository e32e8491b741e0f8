package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/narwhalmedia/phimdash/internal/infrastructure/adapters/external/phimapi"
)

// MockCatalogSource is a mock implementation of crawler.CatalogSource and
// the remote catalog used by the admin API
type MockCatalogSource struct {
	mock.Mock
}

func (m *MockCatalogSource) ListNewMovies(ctx context.Context, page int) (*phimapi.ListResponse, error) {
	args := m.Called(ctx, page)
	resp, _ := args.Get(0).(*phimapi.ListResponse)
	return resp, args.Error(1)
}

func (m *MockCatalogSource) GetMovieDetail(ctx context.Context, slug string) (*phimapi.MovieDetail, error) {
	args := m.Called(ctx, slug)
	detail, _ := args.Get(0).(*phimapi.MovieDetail)
	return detail, args.Error(1)
}

func (m *MockCatalogSource) ListCategories(ctx context.Context) ([]phimapi.Taxon, error) {
	args := m.Called(ctx)
	taxa, _ := args.Get(0).([]phimapi.Taxon)
	return taxa, args.Error(1)
}

func (m *MockCatalogSource) ListCountries(ctx context.Context) ([]phimapi.Taxon, error) {
	args := m.Called(ctx)
	taxa, _ := args.Get(0).([]phimapi.Taxon)
	return taxa, args.Error(1)
}

func (m *MockCatalogSource) Ping(ctx context.Context) (time.Duration, error) {
	args := m.Called(ctx)
	latency, _ := args.Get(0).(time.Duration)
	return latency, args.Error(1)
}
