package httpapi

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/narwhalmedia/phimdash/internal/catalog/service"
	"github.com/narwhalmedia/phimdash/internal/crawler"
	"github.com/narwhalmedia/phimdash/internal/infrastructure/adapters/external/phimapi"
	"github.com/narwhalmedia/phimdash/internal/infrastructure/storage"
	"github.com/narwhalmedia/phimdash/internal/trash"
)

// RemoteCatalog is the read side of the remote API shown in the admin UI.
type RemoteCatalog interface {
	ListNewMovies(ctx context.Context, page int) (*phimapi.ListResponse, error)
	ListCategories(ctx context.Context) ([]phimapi.Taxon, error)
	ListCountries(ctx context.Context) ([]phimapi.Taxon, error)
	Ping(ctx context.Context) (time.Duration, error)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Handler serves the admin API
type Handler struct {
	sync     *crawler.Synchronizer
	remote   RemoteCatalog
	movies   *service.MovieService
	episodes *service.EpisodeService
	taxonomy *service.TaxonomyService
	trash    *trash.Service
	media    storage.Storage
	checks   map[string]HealthCheck
	logger   *zap.Logger
}

// NewHandler creates a new admin API handler
func NewHandler(
	sync *crawler.Synchronizer,
	remote RemoteCatalog,
	movies *service.MovieService,
	episodes *service.EpisodeService,
	taxonomy *service.TaxonomyService,
	trashSvc *trash.Service,
	media storage.Storage,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		sync:     sync,
		remote:   remote,
		movies:   movies,
		episodes: episodes,
		taxonomy: taxonomy,
		trash:    trashSvc,
		media:    media,
		checks:   make(map[string]HealthCheck),
		logger:   logger.Named("http"),
	}
}

// AddCheck registers a dependency probed by /health
func (h *Handler) AddCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// Router builds the route table with request id, logging and recovery
// middleware applied.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, h.loggingMiddleware, h.recoveryMiddleware)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/stats", h.stats).Methods(http.MethodGet)

	// Crawl
	api.HandleFunc("/crawl/status", h.crawlStatus).Methods(http.MethodGet)
	api.HandleFunc("/crawl/logs", h.crawlLogs).Methods(http.MethodGet)
	api.HandleFunc("/crawl/pages", h.crawlPages).Methods(http.MethodPost)
	api.HandleFunc("/crawl/movie", h.crawlMovie).Methods(http.MethodPost)
	api.HandleFunc("/crawl/bulk", h.crawlBulk).Methods(http.MethodPost)

	// Remote catalog
	api.HandleFunc("/remote/new", h.remoteNew).Methods(http.MethodGet)
	api.HandleFunc("/remote/categories", h.remoteCategories).Methods(http.MethodGet)
	api.HandleFunc("/remote/countries", h.remoteCountries).Methods(http.MethodGet)

	// Movies and episodes
	api.HandleFunc("/movies", h.listMovies).Methods(http.MethodGet)
	api.HandleFunc("/movies", h.createMovie).Methods(http.MethodPost)
	api.HandleFunc("/movies/delete", h.deleteMovies).Methods(http.MethodPost)
	api.HandleFunc("/movies/{id}", h.getMovie).Methods(http.MethodGet)
	api.HandleFunc("/movies/{id}", h.updateMovie).Methods(http.MethodPut)
	api.HandleFunc("/movies/{id}", h.deleteMovie).Methods(http.MethodDelete)
	api.HandleFunc("/movies/{id}/terms/{kind}", h.setMovieTerms).Methods(http.MethodPut)
	api.HandleFunc("/movies/{id}/episodes", h.listEpisodes).Methods(http.MethodGet)
	api.HandleFunc("/movies/{id}/episodes", h.addEpisode).Methods(http.MethodPost)
	api.HandleFunc("/episodes/{id}", h.updateEpisode).Methods(http.MethodPut)
	api.HandleFunc("/episodes/{id}", h.deleteEpisode).Methods(http.MethodDelete)

	// Taxonomy. Years have their own shape and are matched first.
	api.HandleFunc("/taxonomy/years", h.listYears).Methods(http.MethodGet)
	api.HandleFunc("/taxonomy/years", h.addYear).Methods(http.MethodPost)
	api.HandleFunc("/taxonomy/years/delete", h.deleteYears).Methods(http.MethodPost)
	api.HandleFunc("/taxonomy/years/{id}", h.deleteYear).Methods(http.MethodDelete)
	api.HandleFunc("/taxonomy/{kind}", h.listTerms).Methods(http.MethodGet)
	api.HandleFunc("/taxonomy/{kind}", h.createTerm).Methods(http.MethodPost)
	api.HandleFunc("/taxonomy/{kind}/delete", h.deleteTerms).Methods(http.MethodPost)
	api.HandleFunc("/taxonomy/{kind}/{id}", h.updateTerm).Methods(http.MethodPut)
	api.HandleFunc("/taxonomy/{kind}/{id}", h.deleteTerm).Methods(http.MethodDelete)

	// Media files
	api.HandleFunc("/media", h.uploadMedia).Methods(http.MethodPost)
	api.HandleFunc("/media/{name}", h.trashMedia).Methods(http.MethodDelete)

	// Trash
	api.HandleFunc("/trash/sweep", h.sweepTrash).Methods(http.MethodPost)
	api.HandleFunc("/trash/{kind}", h.listTrash).Methods(http.MethodGet)
	api.HandleFunc("/trash/{kind}", h.emptyTrash).Methods(http.MethodDelete)
	api.HandleFunc("/trash/{kind}/restore", h.restoreTrash).Methods(http.MethodPost)
	api.HandleFunc("/trash/{kind}/purge", h.purgeTrash).Methods(http.MethodPost)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := map[string]interface{}{"status": "ok"}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if len(checks) > 0 {
		body["checks"] = checks
	}
	writeJSON(w, status, body)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.movies.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Movies: stats.Movies, Episodes: stats.Episodes})
}
