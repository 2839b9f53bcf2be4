package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/platform/timeouts"
	gogrpc "google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

var errNotServing = errors.New("not serving")

// WaitForHealth blocks until the health check for service reports SERVING
// or ctx ends. Probes back off exponentially up to one second apart.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string, logf func(string, ...any)) error {
	if conn == nil {
		return fmt.Errorf("gRPC connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = time.Second

	client := grpc_health_v1.NewHealthClient(conn)
	probe := func() (struct{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeouts.HealthProbe)
		defer cancel()
		resp, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		if err != nil {
			if logf != nil {
				logf("waiting for gRPC health: %v", err)
			}
			return struct{}{}, err
		}
		if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
			if logf != nil {
				logf("waiting for gRPC health: status %s", resp.GetStatus())
			}
			return struct{}{}, errNotServing
		}
		return struct{}{}, nil
	}

	if _, err := backoff.Retry(ctx, probe, backoff.WithBackOff(policy)); err != nil {
		return fmt.Errorf("wait for gRPC health: %w", err)
	}
	if logf != nil {
		logf("gRPC health check is SERVING")
	}
	return nil
}

// MonitorHealth probes conn every interval until ctx ends, reporting
// failures through logf. It never closes the connection.
func MonitorHealth(ctx context.Context, conn *gogrpc.ClientConn, interval time.Duration, logf func(string, ...any)) {
	if conn == nil || logf == nil {
		return
	}
	if interval <= 0 {
		interval = timeouts.HealthMonitorInterval
	}
	client := grpc_health_v1.NewHealthClient(conn)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			callCtx, cancel := context.WithTimeout(ctx, timeouts.HealthProbe)
			resp, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{})
			cancel()
			switch {
			case err != nil:
				logf("gRPC health check failed: %v", err)
			case resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING:
				logf("gRPC health check status: %s", resp.GetStatus())
			}
		}
	}
}
