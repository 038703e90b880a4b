package grpc

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startHealthServer(t *testing.T) (*HealthServer, healthpb.HealthClient) {
	t.Helper()
	req := require.New(t)
	listener := bufconn.Listen(1 << 20)
	server := NewHealthServer(logs.GetLoggerFromLevel(slog.LevelDebug))

	done := make(chan error, 1)
	go func() { done <- server.Serve(listener) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	req.NoError(err)
	t.Cleanup(func() {
		_ = conn.Close()
		server.Stop()
		req.NoError(<-done)
	})
	return server, healthpb.NewHealthClient(conn)
}

func TestHealthServer_Status(t *testing.T) {
	req := require.New(t)
	server, client := startHealthServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Given a server that has not been marked ready
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	req.NoError(err)
	req.Equal(healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	// When it is marked serving
	server.SetServing(true)

	// Then both entries report it
	for _, service := range []string{"", ServiceName} {
		resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		req.NoError(err)
		req.Equal(healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	}
}

func TestHealthServer_Unknown_Service(t *testing.T) {
	req := require.New(t)
	_, client := startHealthServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "unknown"})
	req.Error(err)
}
