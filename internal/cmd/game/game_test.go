package game

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("game", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8082 {
		t.Fatalf("expected default port 8082, got %d", cfg.Port)
	}
	if cfg.Addr != "" {
		t.Fatalf("expected empty addr, got %q", cfg.Addr)
	}
	if cfg.DBPath != "data/game.db" || cfg.CriticalMode != "double" || cfg.MaxTries != 5 || cfg.PageSize != 50 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if got := cfg.ServerConfig().Addr; got != ":8082" {
		t.Fatalf("server addr = %q, want :8082", got)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	fs := flag.NewFlagSet("game", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-port", "9001", "-addr", "127.0.0.1:9999", "-critical-mode", "max", "-max-tries", "2"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9001 {
		t.Fatalf("expected port 9001, got %d", cfg.Port)
	}
	if cfg.CriticalMode != "max" || cfg.MaxTries != 2 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if got := cfg.ServerConfig().Addr; got != "127.0.0.1:9999" {
		t.Fatalf("expected addr override, got %q", got)
	}
}

func TestParseConfigEnvironment(t *testing.T) {
	t.Setenv("TABLETOP_GAME_DB_PATH", "/tmp/table.db")
	t.Setenv("TABLETOP_GAME_JWT_KEY", "secret")
	t.Setenv("TABLETOP_GAME_JWT_ISSUER", "tabletop")
	t.Setenv("TABLETOP_GAME_ACTIVITY_PAGE_SIZE", "25")

	cfg, err := ParseConfig(flag.NewFlagSet("game", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	srv := cfg.ServerConfig()
	if srv.DBPath != "/tmp/table.db" || srv.SigningKey != "secret" || srv.Issuer != "tabletop" || srv.PageSize != 25 {
		t.Fatalf("server config = %+v", srv)
	}
}

func TestParseConfigRejectsBadEnvironment(t *testing.T) {
	t.Setenv("TABLETOP_GAME_MAX_TRIES", "many")
	if _, err := ParseConfig(flag.NewFlagSet("game", flag.ContinueOnError), nil); err == nil {
		t.Fatal("expected parse error")
	}
}
