package app

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"csx_ticker/internal/domain"
	"csx_ticker/internal/infra"
	"csx_ticker/internal/infra/storage"
	"csx_ticker/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	ConfigPath string
	Config     *infra.Config
	Metrics    *infra.Metrics
	Storage    *storage.Storage
	Downloader *infra.LogoDownloader
	Directory  domain.CompanyDirectory
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap(configPath string) *Bootstrap {
	return &Bootstrap{
		ConfigPath: configPath,
		Metrics:    &infra.Metrics{},
		Directory:  domain.StaticDirectory{},
	}
}

// Initialize performs core system initialization (config, logger, DB, assets dir)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping CSX ticker...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(b.ConfigPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	if cfg.Storage.Enabled {
		store, err := storage.NewStorage(cfg.Storage.Path)
		if err != nil {
			return err
		}
		b.Storage = store
		b.Directory = store
		slog.Info("✅ Database initialized", slog.String("path", cfg.Storage.Path))
	}

	// 4. Initialize Logo Downloader
	downloader, err := infra.NewLogoDownloader(cfg.Assets.Dir, cfg.Assets.LogoURLTemplate)
	if err != nil {
		return err
	}
	b.Downloader = downloader
	slog.Info("✅ Logo downloader ready", slog.Bool("enabled", downloader.Enabled()))

	return nil
}

// NewTicker builds the market ticker against the configured endpoint
func (b *Bootstrap) NewTicker(renderer domain.Renderer) (*service.MarketTicker, error) {
	loc, err := b.Config.Location()
	if err != nil {
		return nil, err
	}
	client := infra.NewCSXClient(b.Config.Market.APIURL, b.Config.RequestTimeout())
	return service.NewMarketTicker(client, renderer, service.TickerConfig{
		Interval:  b.Config.RefreshInterval(),
		TopN:      b.Config.Market.TopN,
		Location:  loc,
		Directory: b.Directory,
		Metrics:   b.Metrics,
	}), nil
}

// SyncAssets seeds the company directory and downloads missing logos in the background
func (b *Bootstrap) SyncAssets(ctx context.Context) {
	if b.Storage == nil {
		return
	}
	slog.Info("🔄 Starting asset synchronization...")

	if err := b.Storage.SeedCompanies(domain.CompanyNames); err != nil {
		slog.Error("Failed to seed companies", slog.Any("error", err))
		return
	}

	if b.Downloader == nil || !b.Downloader.Enabled() {
		slog.Info("✨ Asset synchronization completed (logos disabled)")
		return
	}

	companies, err := b.Storage.GetAllCompanies()
	if err != nil {
		slog.Error("Failed to list companies", slog.Any("error", err))
		return
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].Symbol < companies[j].Symbol })

	var (
		wg      sync.WaitGroup
		writeMu sync.Mutex // SQLite takes one writer at a time
	)
	semaphore := make(chan struct{}, 5) // Limit concurrent downloads

	for _, company := range companies {
		if company.LogoPath != "" {
			continue
		}
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			path, err := b.Downloader.DownloadLogo(sym)
			if err != nil {
				slog.Warn("Failed to download logo", slog.String("symbol", sym), slog.Any("error", err))
				return
			}
			if path == "" {
				return
			}
			writeMu.Lock()
			defer writeMu.Unlock()
			if err := b.Storage.SetLogoPath(sym, path); err != nil {
				slog.Error("Failed to record logo", slog.String("symbol", sym), slog.Any("error", err))
			}
		}(company.Symbol)
	}

	wg.Wait()
	slog.Info("✨ Asset synchronization completed")
}

// Close releases resources opened by Initialize
func (b *Bootstrap) Close() {
	if b.Storage != nil {
		if err := b.Storage.Close(); err != nil {
			slog.Warn("Failed to close database", slog.Any("error", err))
		}
	}
}
