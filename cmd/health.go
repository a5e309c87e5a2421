package main

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// healthServer exposes the standard gRPC health service for orchestrator probes.
type healthServer struct {
	grpc   *grpc.Server
	health *health.Server
	lis    net.Listener
}

// newHealthServer listens on addr and reports the service as serving.
func newHealthServer(addr string) (*healthServer, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	return &healthServer{grpc: gs, health: hs, lis: lis}, nil
}

func (s *healthServer) Addr() string { return s.lis.Addr().String() }

// Serve blocks until Stop is called.
func (s *healthServer) Serve() error {
	return s.grpc.Serve(s.lis)
}

// Stop marks the service as not serving and drains open RPCs.
func (s *healthServer) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
