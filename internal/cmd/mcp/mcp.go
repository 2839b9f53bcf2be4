// Package mcp parses MCP command flags and starts the stdio bridge.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/cmd"
	mcpservice "github.com/kopertop/ai-dnd-expo-sub000/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	Addr   string `env:"TABLETOP_GAME_ADDR" envDefault:"localhost:8082"`
	UserID string `env:"TABLETOP_MCP_USER_ID" envDefault:"mcp"`
	Role   string `env:"TABLETOP_MCP_ROLE" envDefault:"host"`
	Token  string `env:"TABLETOP_MCP_TOKEN"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "game server address")
	fs.StringVar(&cfg.UserID, "user", cfg.UserID, "user id the tools act as")
	fs.StringVar(&cfg.Role, "role", cfg.Role, "role the tools act as: host or player")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return mcpservice.Run(ctx, mcpservice.Config{
			GRPCAddr: cfg.Addr,
			UserID:   cfg.UserID,
			Role:     cfg.Role,
			Token:    cfg.Token,
		})
	})
}
