package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-check service name reported next to the overall status.
const ServiceName = "rspl.Generator"

// NewGRPCServer returns a gRPC server carrying only the health and reflection
// services. Both the overall status and ServiceName start as SERVING.
func NewGRPCServer(logger *slog.Logger) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(srv)
	logger.Debug("grpc.health.registered", "service", ServiceName)
	return srv, hs
}

// SyncHealth runs checker once and mirrors the result onto hs for both the
// overall status and ServiceName.
func SyncHealth(ctx context.Context, hs *health.Server, checker HealthChecker, logger *slog.Logger) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := checker.HealthCheck(ctx, healthCheckTimeout); err != nil {
		if logger != nil {
			logger.Warn("grpc.health.failed", "error", err)
		}
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	hs.SetServingStatus("", status)
	hs.SetServingStatus(ServiceName, status)
	return status
}

// WatchHealth calls SyncHealth every interval until ctx is done.
func WatchHealth(ctx context.Context, hs *health.Server, checker HealthChecker, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	last := SyncHealth(ctx, hs, checker, logger)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if s := SyncHealth(ctx, hs, checker, logger); s != last {
				if logger != nil {
					logger.Info("grpc.health.changed", "status", s.String())
				}
				last = s
			}
		}
	}
}
