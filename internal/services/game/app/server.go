package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kopertop/ai-dnd-expo-sub000/internal/platform/timeouts"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/auth"
	gamegrpc "github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/game"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/interceptors"
	grpcmeta "github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/metadata"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/engine"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/notify"
	storagesqlite "github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// DefaultDBPath is used when Config.DBPath is empty.
var DefaultDBPath = filepath.Join("data", "game.db")

// Config describes a game server instance.
type Config struct {
	// Addr is the listen address, for example ":8082" or "127.0.0.1:0".
	Addr         string
	DBPath       string
	CriticalMode string
	MaxTries     uint
	// SigningKey enables bearer token auth; empty trusts identity headers.
	SigningKey string
	Issuer     string
	PageSize   int
}

// Server hosts the tabletop game service.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	store      *storagesqlite.Store

	shutdownTimeout time.Duration
}

// New creates a configured game server listening on cfg.Addr.
func New(ctx context.Context, cfg Config) (*Server, error) {
	mode, err := dice.ParseCriticalMode(cfg.CriticalMode)
	if err != nil {
		return nil, err
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("listen address is required")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	store, err := openStore(ctx, cfg.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	hub := notify.NewHub()
	opts := []engine.Option{
		engine.WithActivityLog(store),
		engine.WithNotifier(notify.Multi{hub}),
		engine.WithCriticalMode(mode),
	}
	if cfg.MaxTries > 0 {
		opts = append(opts, engine.WithMaxTries(cfg.MaxTries))
	}
	eng, err := engine.New(store, opts...)
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}

	authn := auth.New(auth.Config{SigningKey: []byte(cfg.SigningKey), Issuer: cfg.Issuer})
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpcmeta.UnaryServerInterceptor(nil),
			authn.UnaryServerInterceptor(),
			interceptors.LoggingInterceptor(log.Printf),
		),
		grpc.ChainStreamInterceptor(
			grpcmeta.StreamServerInterceptor(nil),
			authn.StreamServerInterceptor(),
			interceptors.StreamLoggingInterceptor(log.Printf),
		),
	)

	serviceOpts := []gamegrpc.ServiceOption{
		gamegrpc.WithActivityReader(store),
		gamegrpc.WithRosterReader(store),
		gamegrpc.WithHub(hub),
	}
	if cfg.PageSize > 0 {
		serviceOpts = append(serviceOpts, gamegrpc.WithDefaultPageSize(cfg.PageSize))
	}
	gamegrpc.RegisterTabletopServiceServer(grpcServer, gamegrpc.NewService(eng, serviceOpts...))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(gamegrpc.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,

		shutdownTimeout: timeouts.Shutdown,
	}, nil
}

// Addr returns the listener address for the game server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a game server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	srv, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

// Serve starts the game server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if err := s.store.Close(); err != nil {
			log.Printf("close session store: err=%v", err)
		}
	}()

	log.Printf("game server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.stop()
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}

// stop drains in-flight calls, forcing a hard stop after the shutdown
// timeout. Open watch streams only end when their client leaves.
func (s *Server) stop() {
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()
	timer := time.NewTimer(s.shutdownTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		log.Printf("graceful stop timed out: timeout=%s", s.shutdownTimeout)
		s.grpcServer.Stop()
		<-done
	}
}

func openStore(ctx context.Context, path string) (*storagesqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultDBPath
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	store, err := storagesqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	return nil
}
