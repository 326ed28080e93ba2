package server

import (
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewGRPCServer builds a server with logging interceptors, the importer service and the health service.
func NewGRPCServer(svc SpecImporterServer, logger *slog.Logger) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryLogging(logger)),
		grpc.ChainStreamInterceptor(StreamLogging(logger)),
	)
	RegisterSpecImporterServer(s, svc)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return s, hs
}
