package handler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// HealthServiceName is reported alongside the overall "" service.
const HealthServiceName = "bookstore"

// NewGRPCServer returns a server exposing grpc.health.v1 and reflection. The
// health server starts out SERVING.
func NewGRPCServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(unaryLogger))

	hs := health.NewServer()
	hs.SetServingStatus(HealthServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return srv, hs
}

func unaryLogger(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := next(ctx, req)

	log.Debug().
		Str("method", info.FullMethod).
		Str("code", status.Code(err).String()).
		Dur("latency", time.Since(start)).
		Msg("grpc request")
	return resp, err
}
