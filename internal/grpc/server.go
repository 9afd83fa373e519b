// Package grpc exposes vestd's readiness as a standard
// grpc_health_v1 health-checking service, the same thin wiring
// withObsrvr's contract-data-processor uses around its control plane.
package grpc

import (
	"context"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-checked service identifier clients pass
// to grpc_health_v1.HealthClient.Check / Watch.
const ServiceName = "vestd.Daemon"

// ReadinessChecker reports whether the daemon's dependencies — the
// contract store and the audit ledger — are currently reachable.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// Server wraps a *grpc.Server exposing only the health service,
// polling a ReadinessChecker on an interval to keep serving status
// current.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	checker    ReadinessChecker
	interval   time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

// NewServer builds a health-only gRPC server wired to checker.
func NewServer(checker ReadinessChecker, pollInterval time.Duration) *Server {
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	return &Server{
		grpcServer: grpcServer,
		health:     healthServer,
		checker:    checker,
		interval:   pollInterval,
		stop:       make(chan struct{}),
	}
}

// Serve accepts connections on lis until ctx is canceled or Stop is
// called, running the readiness poll loop alongside it.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go s.pollReadiness()

	errCh := make(chan error, 1)
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	select {
	case <-ctx.Done():
		s.Stop()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Stop gracefully shuts down the gRPC server and the readiness loop.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.grpcServer.GracefulStop()
}

func (s *Server) pollReadiness() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.checkOnce()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.checkOnce()
		}
	}
}

func (s *Server) checkOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := s.checker.Ready(ctx); err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
}
