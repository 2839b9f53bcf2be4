// Package service runs the tabletop MCP server over stdio, forwarding tool
// calls to the game service.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	platformgrpc "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/grpc"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/platform/timeouts"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/game"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const (
	serverName = "tabletop-mcp"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Config controls how the MCP server reaches the game service and who it
// acts as.
type Config struct {
	GRPCAddr string
	UserID   string
	Role     string
	// Token, when set, is sent as a bearer token instead of identity headers.
	Token string
}

// Server hosts the MCP tools.
type Server struct {
	mcpServer *mcp.Server
	conn      *grpc.ClientConn
}

// New builds an MCP server whose tools call client.
func New(client domain.GameClient) *Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerTools(server, client)
	return &Server{mcpServer: server}
}

func registerTools(server *mcp.Server, client domain.GameClient) {
	mcp.AddTool(server, domain.SessionStateTool(), domain.SessionStateHandler(client))
	mcp.AddTool(server, domain.RollDiceTool(), domain.RollDiceHandler(client))
	mcp.AddTool(server, domain.BasicAttackTool(), domain.BasicAttackHandler(client))
	mcp.AddTool(server, domain.CastSpellTool(), domain.CastSpellHandler(client))
	mcp.AddTool(server, domain.MoveTokenTool(), domain.MoveTokenHandler(client))
	mcp.AddTool(server, domain.EndTurnTool(), domain.EndTurnHandler(client))
}

// Serve runs the MCP session on transport until it ends or ctx is done.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	if err := s.mcpServer.Run(ctx, transport); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Close releases the game connection.
func (s *Server) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Run dials the game service and serves MCP over stdio while monitoring the
// connection's health.
func Run(ctx context.Context, cfg Config) error {
	return runWithTransport(ctx, cfg, &mcp.StdioTransport{})
}

func runWithTransport(ctx context.Context, cfg Config, transport mcp.Transport) error {
	addr := strings.TrimSpace(cfg.GRPCAddr)
	if addr == "" {
		return errors.New("game address is required")
	}
	conn, err := platformgrpc.DialWithHealth(ctx, addr, timeouts.GRPCDial, log.Printf)
	if err != nil {
		return fmt.Errorf("dial game server %s: %w", addr, err)
	}

	server := New(game.NewClient(conn, clientOptions(cfg)...))
	server.conn = conn
	defer func() {
		if err := server.Close(); err != nil {
			log.Printf("close game connection: err=%v", err)
		}
	}()

	group, groupCtx := errgroup.WithContext(ctx)
	monitorCtx, stopMonitor := context.WithCancel(groupCtx)
	group.Go(func() error {
		defer stopMonitor()
		return server.Serve(groupCtx, transport)
	})
	group.Go(func() error {
		platformgrpc.MonitorHealth(monitorCtx, conn, timeouts.HealthMonitorInterval, log.Printf)
		return nil
	})
	return group.Wait()
}

func clientOptions(cfg Config) []game.ClientOption {
	if token := strings.TrimSpace(cfg.Token); token != "" {
		return []game.ClientOption{game.WithBearerToken(token)}
	}
	return []game.ClientOption{game.WithIdentity(strings.TrimSpace(cfg.UserID), strings.TrimSpace(cfg.Role))}
}
