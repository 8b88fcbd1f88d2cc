package grpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func servingStatus(t *testing.T, s *GRPCServer) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()

	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN
	}
	return resp.GetStatus()
}

func TestGRPCServer_Readiness(t *testing.T) {
	t.Parallel()

	s := NewGRPCServer(&cfg.GRPCConfig{Port: "0", NetworkMode: "tcp"}, logger.NewNop())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, s))

	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("redis: connection refused") }

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, s.evaluate(context.Background(), time.Second, []ReadinessCheck{ok, ok}))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, s.evaluate(context.Background(), time.Second, []ReadinessCheck{ok, down}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.WatchReadiness(ctx, 10*time.Millisecond, ok)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return servingStatus(t, s) == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
