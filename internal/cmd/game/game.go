// Package game parses game command flags and starts the tabletop server.
package game

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/cmd"
	server "github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/app"
)

// Config holds game command configuration.
type Config struct {
	Port         int    `env:"TABLETOP_GAME_PORT" envDefault:"8082"`
	Addr         string `env:"TABLETOP_GAME_ADDR"`
	DBPath       string `env:"TABLETOP_GAME_DB_PATH" envDefault:"data/game.db"`
	CriticalMode string `env:"TABLETOP_GAME_CRITICAL_MODE" envDefault:"double"`
	MaxTries     uint   `env:"TABLETOP_GAME_MAX_TRIES" envDefault:"5"`
	SigningKey   string `env:"TABLETOP_GAME_JWT_KEY"`
	Issuer       string `env:"TABLETOP_GAME_JWT_ISSUER"`
	PageSize     int    `env:"TABLETOP_GAME_ACTIVITY_PAGE_SIZE" envDefault:"50"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The game server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The game server listen address (overrides -port)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.CriticalMode, "critical-mode", cfg.CriticalMode, "Critical hit damage mode: double or max")
	fs.UintVar(&cfg.MaxTries, "max-tries", cfg.MaxTries, "Attempts per write before a version conflict is reported")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ServerConfig converts command configuration into server settings.
func (c Config) ServerConfig() server.Config {
	addr := c.Addr
	if addr == "" {
		addr = fmt.Sprintf(":%d", c.Port)
	}
	return server.Config{
		Addr:         addr,
		DBPath:       c.DBPath,
		CriticalMode: c.CriticalMode,
		MaxTries:     c.MaxTries,
		SigningKey:   c.SigningKey,
		Issuer:       c.Issuer,
		PageSize:     c.PageSize,
	}
}

// Run starts the game service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGame, func(ctx context.Context) error {
		return server.Run(ctx, cfg.ServerConfig())
	})
}
