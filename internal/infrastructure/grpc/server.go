package grpc

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/narwhalmedia/phimdash/internal/infrastructure/grpc/interceptors"
)

// ServiceName is the health service name of the admin backend.
const ServiceName = "phimdash.admin.v1.Admin"

// checkTimeout bounds one probe of all checks.
const checkTimeout = 5 * time.Second

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// HealthReporter drives the standard gRPC health service from dependency
// checks.
type HealthReporter struct {
	server *health.Server
	logger *zap.Logger

	mu     sync.Mutex
	checks map[string]Check
}

// NewHealthReporter creates a reporter that starts out NOT_SERVING.
func NewHealthReporter(logger *zap.Logger) *HealthReporter {
	h := &HealthReporter{
		server: health.NewServer(),
		logger: logger.Named("health"),
		checks: make(map[string]Check),
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// AddCheck registers a dependency check.
func (h *HealthReporter) AddCheck(name string, check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Probe runs every check once and publishes the resulting status.
func (h *HealthReporter) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	h.mu.Lock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	checks := make(map[string]Check, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.Unlock()
	sort.Strings(names)

	status := healthpb.HealthCheckResponse_SERVING
	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			h.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.set(status)
	return status
}

// Run probes immediately and then every interval until ctx is done, after
// which every service reports NOT_SERVING.
func (h *HealthReporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

func (h *HealthReporter) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
}

// NewServer builds a gRPC server with logging and recovery interceptors,
// the health service and reflection registered.
func NewServer(logger *zap.Logger, reporter *HealthReporter) *gogrpc.Server {
	logger = logger.Named("grpc")
	srv := gogrpc.NewServer(
		gogrpc.ChainUnaryInterceptor(
			interceptors.UnaryLoggingInterceptor(logger),
			interceptors.UnaryRecoveryInterceptor(logger),
		),
		gogrpc.ChainStreamInterceptor(
			interceptors.StreamLoggingInterceptor(logger),
			interceptors.StreamRecoveryInterceptor(logger),
		),
	)
	healthpb.RegisterHealthServer(srv, reporter.server)
	reflection.Register(srv)
	return srv
}
