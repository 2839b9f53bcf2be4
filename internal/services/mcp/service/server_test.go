package service

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/game"
	grpcmeta "github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/metadata"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
)

type stubGameClient struct {
	method string
}

func (s *stubGameClient) Call(_ context.Context, method string, _, resp any) error {
	s.method = method
	reply := `{"roll": {"notation": "1d20", "dice": [17], "total": 17, "breakdown": "1d20 [17] = 17"}}`
	return json.Unmarshal([]byte(reply), resp)
}

type recordingConn struct {
	md metadata.MD
}

func (c *recordingConn) Invoke(ctx context.Context, _ string, _, _ any, _ ...grpc.CallOption) error {
	c.md, _ = metadata.FromOutgoingContext(ctx)
	return nil
}

func (c *recordingConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, nil
}

func connectClient(t *testing.T, ctx context.Context, transport mcp.Transport) *mcp.ClientSession {
	t.Helper()
	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestServerExposesTools(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	gameClient := &stubGameClient{}
	server := New(gameClient)
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	go func() { _ = server.Serve(ctx, serverTransport) }()

	session := connectClient(t, ctx, clientTransport)

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"session_state", "roll_dice", "basic_attack", "cast_spell", "move_token", "end_turn"} {
		if !names[want] {
			t.Fatalf("tool %q not registered; have %v", want, names)
		}
	}

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "roll_dice",
		Arguments: map[string]any{"notation": "1d20"},
	})
	if err != nil {
		t.Fatalf("call roll_dice: %v", err)
	}
	if result.IsError {
		t.Fatalf("roll_dice returned error content: %+v", result.Content)
	}
	raw, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var roll domain.RollDiceResult
	if err := json.Unmarshal(raw, &roll); err != nil {
		t.Fatalf("decode structured content: %v", err)
	}
	if roll.Total != 17 || roll.Notation != "1d20" {
		t.Fatalf("roll = %+v", roll)
	}
	if gameClient.method != game.MethodRollDice {
		t.Fatalf("game method = %q", gameClient.method)
	}
}

func startHealthServer(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	go func() { _ = grpcServer.Serve(listener) }()
	t.Cleanup(grpcServer.Stop)
	return listener.Addr().String()
}

func TestRunWithTransportServesAndStops(t *testing.T) {
	addr := startHealthServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- runWithTransport(ctx, Config{GRPCAddr: addr, UserID: "dm", Role: "host"}, serverTransport)
	}()

	clientCtx, clientCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer clientCancel()
	connectClient(t, clientCtx, clientTransport)

	cancel()

	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestRunRequiresAddress(t *testing.T) {
	if err := Run(context.Background(), Config{GRPCAddr: " "}); err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestClientOptionsPreferToken(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{name: "token", cfg: Config{Token: "abc", UserID: "dm"}, want: []string{grpcmeta.AuthorizationKey, "Bearer abc"}},
		{name: "identity", cfg: Config{UserID: "dm", Role: "host"}, want: []string{grpcmeta.UserIDHeader, "dm", grpcmeta.RoleHeader, "host"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conn := &recordingConn{}
			client := game.NewClient(conn, clientOptions(tc.cfg)...)
			if err := client.Call(context.Background(), game.MethodGetState, map[string]any{"session_id": "s1"}, nil); err != nil {
				t.Fatalf("call: %v", err)
			}
			for i := 0; i < len(tc.want); i += 2 {
				if got := conn.md.Get(tc.want[i]); len(got) != 1 || got[0] != tc.want[i+1] {
					t.Fatalf("header %s = %v, want %s", tc.want[i], got, tc.want[i+1])
				}
			}
		})
	}
}
