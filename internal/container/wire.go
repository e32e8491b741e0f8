//go:build wireinject
// +build wireinject

package container

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/narwhalmedia/phimdash/internal/catalog/repository"
	"github.com/narwhalmedia/phimdash/internal/catalog/service"
	"github.com/narwhalmedia/phimdash/internal/config"
	"github.com/narwhalmedia/phimdash/internal/crawler"
	"github.com/narwhalmedia/phimdash/internal/handler/httpapi"
	"github.com/narwhalmedia/phimdash/internal/infrastructure/adapters/external/phimapi"
	grpcinfra "github.com/narwhalmedia/phimdash/internal/infrastructure/grpc"
)

var catalogSet = wire.NewSet(
	// Database
	ProvideDB,

	// Repositories
	repository.NewGormRepository,
	wire.Bind(new(repository.Repository), new(*repository.GormRepository)),

	// Remote catalog
	ProvideRemote,
	wire.Bind(new(crawler.CatalogSource), new(*phimapi.Client)),

	// Event Publisher
	ProvidePublisher,

	// Synchronizer
	ProvideSynchronizer,
)

// InitializeAdmin creates the admin server with all dependencies
func InitializeAdmin(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Admin, func(), error) {
	wire.Build(
		catalogSet,

		// Media storage
		ProvideStorage,

		// Services
		service.NewMovieService,
		service.NewEpisodeService,
		service.NewTaxonomyService,
		ProvideTrash,

		// HTTP
		wire.Bind(new(httpapi.RemoteCatalog), new(*phimapi.Client)),
		ProvideHandler,

		// gRPC
		ProvideHealth,
		grpcinfra.NewServer,

		// Container
		wire.Struct(new(Admin), "*"),
	)

	return nil, nil, nil
}

// InitializeCrawler creates the synchronizer used by the crawl command
func InitializeCrawler(cfg *config.Config, logger *zap.Logger) (*Crawler, func(), error) {
	wire.Build(
		catalogSet,
		wire.Struct(new(Crawler), "*"),
	)

	return nil, nil, nil
}
