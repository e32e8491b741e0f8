package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"gorm.io/gorm"

	"github.com/narwhalmedia/phimdash/internal/catalog/repository"
	"github.com/narwhalmedia/phimdash/internal/catalog/service"
	"github.com/narwhalmedia/phimdash/internal/config"
	"github.com/narwhalmedia/phimdash/internal/crawler"
	"github.com/narwhalmedia/phimdash/internal/events"
	"github.com/narwhalmedia/phimdash/internal/handler/httpapi"
	"github.com/narwhalmedia/phimdash/internal/infrastructure/adapters/external/phimapi"
	"github.com/narwhalmedia/phimdash/internal/infrastructure/events/kafka"
	"github.com/narwhalmedia/phimdash/internal/infrastructure/events/nats"
	grpcinfra "github.com/narwhalmedia/phimdash/internal/infrastructure/grpc"
	"github.com/narwhalmedia/phimdash/internal/infrastructure/storage"
	"github.com/narwhalmedia/phimdash/internal/trash"
	"github.com/narwhalmedia/phimdash/pkg/database"
)

// Admin holds every dependency of the admin server
type Admin struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           *gorm.DB
	Publisher    events.Publisher
	Synchronizer *crawler.Synchronizer
	Trash        *trash.Service
	Handler      *httpapi.Handler
	Health       *grpcinfra.HealthReporter
	GRPCServer   *grpc.Server
}

// Crawler holds the dependencies of the one-shot crawl command
type Crawler struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           *gorm.DB
	Synchronizer *crawler.Synchronizer
}

// ProvideDB opens the configured database.
func ProvideDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGormDB(cfg.Database.Connection(), logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := database.Close(db); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}
	return db, cleanup, nil
}

// ProvidePublisher connects the configured event broker.
func ProvidePublisher(cfg *config.Config, logger *zap.Logger) (events.Publisher, func(), error) {
	var (
		pub events.Publisher
		err error
	)
	switch cfg.Events.Broker {
	case "nats":
		client, cleanup, cerr := nats.NewClient(cfg.Events.NATS, logger)
		if cerr != nil {
			return nil, nil, fmt.Errorf("failed to connect to nats: %w", cerr)
		}
		pub = nats.NewPublisher(client, cleanup, logger)
	case "kafka":
		pub, err = kafka.NewPublisher(cfg.Events.Kafka, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to kafka: %w", err)
		}
	default:
		pub = events.NewLogPublisher(logger)
	}

	cleanup := func() {
		if err := pub.Close(); err != nil {
			logger.Warn("failed to close event publisher", zap.Error(err))
		}
	}
	return pub, cleanup, nil
}

// ProvideStorage opens the configured media storage.
func ProvideStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	return storage.New(ctx, cfg.Storage, logger)
}

// ProvideRemote creates the PhimAPI client.
func ProvideRemote(cfg *config.Config, logger *zap.Logger) *phimapi.Client {
	c := cfg.Crawler
	return phimapi.NewClient(phimapi.Config{
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		MaxAttempts:       uint(max(c.MaxAttempts, 0)),
		RetryDelay:        c.RetryDelay,
		UserAgent:         cfg.Server.ServiceName,
	}, logger)
}

// ProvideSynchronizer creates the catalog synchronizer.
func ProvideSynchronizer(cfg *config.Config, repo repository.Repository, source crawler.CatalogSource, pub events.Publisher, logger *zap.Logger) *crawler.Synchronizer {
	return crawler.NewSynchronizer(repo, source, pub, logger, crawler.Options{
		SkipGenres:     cfg.Crawler.SkipGenres,
		SkipCountries:  cfg.Crawler.SkipCountries,
		ReencodeImages: cfg.Crawler.ReencodeImages,
		Transactional:  cfg.Crawler.Transactional,
	})
}

// ProvideTrash creates the trash service.
func ProvideTrash(cfg *config.Config, repo repository.Repository, store storage.Storage, pub events.Publisher, logger *zap.Logger) *trash.Service {
	return trash.NewService(repo, store, pub, logger, cfg.Trash.Retention)
}

// ProvideHandler creates the admin API handler with a database check.
func ProvideHandler(
	db *gorm.DB,
	sync *crawler.Synchronizer,
	remote httpapi.RemoteCatalog,
	movies *service.MovieService,
	episodes *service.EpisodeService,
	taxonomy *service.TaxonomyService,
	trashSvc *trash.Service,
	store storage.Storage,
	logger *zap.Logger,
) *httpapi.Handler {
	h := httpapi.NewHandler(sync, remote, movies, episodes, taxonomy, trashSvc, store, logger)
	h.AddCheck("database", pingDatabase(db))
	return h
}

// ProvideHealth creates the gRPC health reporter with a database check.
func ProvideHealth(db *gorm.DB, logger *zap.Logger) *grpcinfra.HealthReporter {
	reporter := grpcinfra.NewHealthReporter(logger)
	reporter.AddCheck("database", pingDatabase(db))
	return reporter
}

func pingDatabase(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
