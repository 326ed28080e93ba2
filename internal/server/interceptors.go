package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/specs-importer/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const requestIDHeader = "x-request-id"

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(requestIDHeader); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return uuid.NewString()
}

// UnaryLogging tags the context with a request id and logs each call.
func UnaryLogging(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		rid := requestID(ctx)
		resp, err := handler(common.WithRequestID(ctx, rid), req)
		logger.Info("grpc.request",
			"method", info.FullMethod,
			"request_id", rid,
			"code", status.Code(err).String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

type taggedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s taggedStream) Context() context.Context { return s.ctx }

// StreamLogging is the streaming counterpart of UnaryLogging.
func StreamLogging(logger *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		rid := requestID(ss.Context())
		err := handler(srv, taggedStream{ServerStream: ss, ctx: common.WithRequestID(ss.Context(), rid)})
		logger.Info("grpc.stream",
			"method", info.FullMethod,
			"request_id", rid,
			"code", status.Code(err).String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return err
	}
}
