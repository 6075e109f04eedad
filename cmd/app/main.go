package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"csx_ticker/internal/app"
	"csx_ticker/internal/domain"
	"csx_ticker/internal/infra/console"
	"csx_ticker/internal/infra/web"

	_ "net/http/pprof" // For pprof profiling
	_ "time/tzdata"    // Display zone must resolve on hosts without zoneinfo
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap(*configPath)
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()
	cfg := bootstrap.Config

	// 2. Pprof Server (for performance profiling)
	if cfg.Debug.PprofAddr != "" {
		go func() {
			slog.Info("🕵️ Pprof server started", slog.String("addr", cfg.Debug.PprofAddr))
			if err := http.ListenAndServe(cfg.Debug.PprofAddr, nil); err != nil {
				slog.Error("Pprof server failed", slog.Any("error", err))
			}
		}()
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Background Asset Sync
	go bootstrap.SyncAssets(ctx)

	// 5. Renderers
	var (
		consoleRenderer *console.Renderer
		hub             *web.Hub
		server          *web.Server
	)
	if cfg.Console.Enabled {
		consoleRenderer = console.NewRenderer(os.Stdout, true)
	}
	if cfg.Web.Enabled {
		hub = web.NewHub(bootstrap.Metrics)
		server = web.NewServer(cfg.Web.ListenAddr, hub, bootstrap.Metrics, bootstrap.Downloader.Dir())
	}

	var renderers []domain.Renderer
	if consoleRenderer != nil {
		renderers = append(renderers, consoleRenderer)
	}
	if hub != nil {
		renderers = append(renderers, hub)
	}

	// 6. Market Ticker
	ticker, err := bootstrap.NewTicker(domain.NewMultiRenderer(renderers...))
	if err != nil {
		slog.Error("❌ Failed to build market ticker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := ticker.Start(ctx); err != nil {
		slog.Error("❌ Failed to start market ticker", slog.Any("error", err))
		os.Exit(1)
	}
	slog.InfoContext(ctx, "✅ Market ticker started",
		slog.String("source", cfg.Market.APIURL),
		slog.Duration("interval", cfg.RefreshInterval()))

	// Idle dashboards pause polling only when nothing else is displaying
	if hub != nil && cfg.Web.PauseWhenIdle && consoleRenderer == nil {
		hub.OnVisibilityChange(func(visible bool) {
			if !visible {
				slog.Info("⏸️ No viewers, pausing market ticker")
				ticker.Hide()
				return
			}
			slog.Info("▶️ Viewer connected, resuming market ticker")
			if err := ticker.Show(ctx); err != nil {
				slog.Warn("Failed to resume market ticker", slog.Any("error", err))
			}
		})
		// Nobody is watching until the first viewer connects
		ticker.Hide()
	}

	if server != nil {
		server.Start()
	}

	// 7. Console retry (r + Enter)
	if consoleRenderer != nil {
		go readCommands(ctx, func() {
			if err := ticker.Refresh(ctx, true); err != nil {
				slog.Warn("Manual refresh failed", slog.Any("error", err))
			}
		})
	}

	slog.InfoContext(ctx, "✨ CSX ticker fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.Info("👋 Shutting down gracefully...")
	ticker.Shutdown()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Web server shutdown failed", slog.Any("error", err))
		}
	}
}

func readCommands(ctx context.Context, retry func()) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if strings.EqualFold(strings.TrimSpace(scanner.Text()), "r") {
			retry()
		}
	}
}
