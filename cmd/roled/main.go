package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kisses-noo/rpp-lab/internal/api"
	"github.com/kisses-noo/rpp-lab/internal/config"
	"github.com/kisses-noo/rpp-lab/internal/store"
)

func main() {
	cfg := config.Load()

	slog.Info("starting role service", "port", cfg.RolePort, "db", cfg.DBPath)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Seed admins from the environment so a fresh deployment has at least
	// one admin without poking the database by hand.
	ctx := context.Background()
	for _, id := range cfg.AdminIDs {
		if err := db.AddAdmin(ctx, id); err != nil {
			slog.Error("failed to seed admin", "chat_id", id, "error", err)
			os.Exit(1)
		}
	}
	if len(cfg.AdminIDs) > 0 {
		slog.Info("seeded admins", "count", len(cfg.AdminIDs))
	}

	h := api.NewRoleHandler(db)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	h.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.RolePort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down role service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown gracefully", "error", err)
	}
}
