package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortivus/fortivus/internal/admin"
	"github.com/fortivus/fortivus/internal/catalog"
	"github.com/fortivus/fortivus/internal/config"
	"github.com/fortivus/fortivus/internal/gamify"
	fmcp "github.com/fortivus/fortivus/internal/mcp"
	"github.com/fortivus/fortivus/internal/planner"
	"github.com/fortivus/fortivus/internal/server"
	"github.com/fortivus/fortivus/internal/session"
	"github.com/fortivus/fortivus/internal/storage"
	"github.com/fortivus/fortivus/internal/template"
	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/robfig/cron"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	mcpMode := flag.Bool("mcp", false, "serve MCP over stdio instead of HTTP")
	mcpRemote := flag.String("mcp-remote", "", "remote API base URL for MCP mode (default: local database)")
	mcpUser := flag.String("mcp-user", "", "user UUID for MCP mode")
	devUser := flag.String("dev-user", "", "fallback user UUID for requests without X-User-ID (dev only)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *mcpMode {
		runMCP(log, *configPath, *mcpRemote, *mcpUser)
		return
	}

	log.Info("Fortivus starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Wire services
	resolver := catalog.NewResolver(db, log)
	builder := template.NewBuilder(db, resolver, log)
	tracker := session.NewTracker(db, nil, log)
	planClient := planner.NewClient(cfg.Planner.BaseURL, cfg.Planner.APIKey, cfg.Planner.Model, log)
	userAPI := admin.NewClient(cfg.Admin.BaseURL, cfg.Admin.APIKey)
	coordinator := admin.NewCoordinator(userAPI, log)

	// Nightly streak recomputation
	streaks := gamify.NewService(db, log)
	c := cron.New()
	if err := c.AddFunc("0 30 3 * * *", func() {
		streaks.RecomputeAll(context.Background())
	}); err != nil {
		log.Error("scheduling streak sweep failed", "error", err)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	// Create server
	srv := server.New(db, builder, tracker, resolver, planClient, coordinator, cfg.Auth.AdminAPIKey, log)
	if *devUser != "" {
		id, err := uuid.Parse(*devUser)
		if err != nil {
			log.Error("invalid dev-user", "error", err)
			os.Exit(1)
		}
		srv.SetDevUser(id)
		log.Warn("dev user fallback enabled", "user_id", id)
	}

	// Start server over tsnet or plain TCP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// runMCP serves MCP tools over stdio, backed either by the local database or
// by a remote Fortivus API.
func runMCP(log *slog.Logger, configPath, remote, user string) {
	userID := uuid.Nil
	if user != "" {
		id, err := uuid.Parse(user)
		if err != nil {
			log.Error("invalid mcp-user", "error", err)
			os.Exit(1)
		}
		userID = id
	}

	var ds fmcp.DataSource
	if remote != "" {
		ds = fmcp.NewHTTPClient(remote, userID)
	} else {
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
	}

	s := fmcp.New(ds, Version, log)
	srv := mcpserver.NewStdioServer(s)
	srv.SetContextFunc(func(ctx context.Context) context.Context {
		return fmcp.WithUserID(ctx, userID)
	})
	if err := srv.Listen(context.Background(), os.Stdin, os.Stdout); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
