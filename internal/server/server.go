// Package server runs the mock REST store.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/nebari-dev/rbacadmin/internal/api"
	"github.com/nebari-dev/rbacadmin/internal/api/handlers"
	"github.com/nebari-dev/rbacadmin/internal/config"
	"github.com/nebari-dev/rbacadmin/internal/db"
	"github.com/nebari-dev/rbacadmin/internal/snapshot"
)

// Config holds the server configuration options.
type Config struct {
	Mock    config.MockConfig
	Host    string // Interface to bind, empty for all
	Version string // Version string to report
	// SeedFile, if set, is a snapshot loaded into an empty store on start.
	SeedFile string
}

// Server is a running mock store.
type Server struct {
	srv  *http.Server
	ln   net.Listener
	db   *gorm.DB
	done chan error
}

// Start opens the database, seeds it and begins serving. Port 0 picks a free port.
func Start(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.Version != "" {
		handlers.Version = cfg.Version
	}

	database, err := db.New(cfg.Mock.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.Migrate(database, handlers.Tables()...); err != nil {
		return nil, err
	}
	if cfg.SeedFile != "" {
		if err := seed(ctx, database, cfg.SeedFile); err != nil {
			return nil, err
		}
	}

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Mock.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s := &Server{
		srv: &http.Server{
			Handler:           api.NewRouter(cfg.Mock, database),
			ReadHeaderTimeout: 10 * time.Second,
		},
		ln:   ln,
		db:   database,
		done: make(chan error, 1),
	}
	go func() {
		slog.Info("Mock store listening", "address", ln.Addr().String())
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	return s, nil
}

// URL is the base URL clients should use.
func (s *Server) URL() string {
	return "http://" + s.ln.Addr().String()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
	return <-s.done
}

func seed(ctx context.Context, database *gorm.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()
	format, err := snapshot.FormatFromPath(path)
	if err != nil {
		return err
	}
	snap, err := snapshot.Decode(f, format)
	if err != nil {
		return err
	}
	n, err := handlers.Seed(ctx, database, snap.Users, snap.Roles, snap.Permissions)
	if err != nil {
		return fmt.Errorf("seeding store: %w", err)
	}
	slog.Info("Seeded mock store", "file", path, "records", n)
	return nil
}

// Run starts the server with the given configuration and blocks until the context is canceled.
func Run(ctx context.Context, cfg Config) error {
	s, err := Start(ctx, cfg)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case err := <-s.done:
		return err
	}
	slog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("Server stopped")
	return nil
}

// RunWithSignalHandling starts the server and handles OS signals for graceful shutdown.
func RunWithSignalHandling(cfg Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return Run(ctx, cfg)
}
