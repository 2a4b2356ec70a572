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

	"github.com/kisses-noo/rpp-lab/internal/backend"
	"github.com/kisses-noo/rpp-lab/internal/config"
	"github.com/kisses-noo/rpp-lab/internal/dialog"
	"github.com/kisses-noo/rpp-lab/internal/gateway"
	"github.com/kisses-noo/rpp-lab/internal/session"
)

func main() {
	cfg := config.Load()

	slog.Info("starting bot",
		"gateway_port", cfg.GatewayPort,
		"currency_url", cfg.CurrencyURL,
		"ledger_url", cfg.LedgerURL,
		"role_url", cfg.RoleURL,
		"session_ttl", cfg.SessionTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session store with background stale-session sweeper
	sessions := session.NewStore()
	session.StartSweeper(ctx, sessions, cfg.SweepInterval, cfg.SessionTTL)

	// Collaborator client and dialogue engine
	client := backend.NewClient(cfg.CurrencyURL, cfg.LedgerURL, cfg.RoleURL, cfg.RequestTimeout)
	engine := dialog.NewEngine(sessions, client)

	// Chat gateway
	gw := gateway.NewServer(engine)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	gw.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.GatewayPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start gateway server", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("gateway started", "port", cfg.GatewayPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down bot")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown gateway gracefully", "error", err)
	}

	slog.Info("bot stopped")
}
