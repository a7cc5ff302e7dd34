package grpc

import (
	"context"
	"net"
	"time"

	"github.com/fjod/go_pharmacy/internal/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const ServiceName = "storefront"

// Check reports whether a dependency is usable.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// OpsServer is the gRPC side of the process: the standard health service plus reflection
// for grpcurl. The storefront API itself is HTTP.
type OpsServer struct {
	server *grpc.Server
	health *health.Server
	log    *logger.Logger
}

func NewOpsServer(log *logger.Logger) *OpsServer {
	if log == nil {
		log = logger.NewNop()
	}
	srv := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	// Enable reflection for grpcurl/grpcui
	reflection.Register(srv)

	s := &OpsServer{server: srv, health: hs, log: log.With("component", "grpc")}
	s.SetServing(false)
	return s
}

func (s *OpsServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Watch runs checks every interval until ctx is done and reports SERVING only while all
// of them pass.
func (s *OpsServer) Watch(ctx context.Context, interval time.Duration, checks ...Check) {
	s.runChecks(ctx, checks)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.runChecks(ctx, checks)
		case <-ctx.Done():
			return
		}
	}
}

func (s *OpsServer) runChecks(ctx context.Context, checks []Check) bool {
	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := c.Fn(checkCtx)
		cancel()
		if err != nil {
			s.log.Warn("health check failed", "check", c.Name, "error", err)
			s.SetServing(false)
			return false
		}
	}
	s.SetServing(true)
	return true
}

func (s *OpsServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

// Stop marks the service as not serving and drains in-flight RPCs.
func (s *OpsServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
