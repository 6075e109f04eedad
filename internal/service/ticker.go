package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"csx_ticker/internal/domain"
	"csx_ticker/internal/infra"
)

const (
	// DefaultRefreshInterval is the period of conditional refreshes
	DefaultRefreshInterval = 30 * time.Second

	errorTitle = "Unable to load market data"
)

// TickerConfig holds optional MarketTicker settings. Zero values select defaults.
type TickerConfig struct {
	Interval  time.Duration
	TopN      int
	Location  *time.Location
	Directory domain.CompanyDirectory
	Metrics   *infra.Metrics
}

// MarketTicker polls a quote source, diffs each snapshot against the last one shown and
// hands display-ready models to a renderer.
type MarketTicker struct {
	source    domain.QuoteSource
	renderer  domain.Renderer
	presenter *Presenter
	metrics   *infra.Metrics
	interval  time.Duration

	mu       sync.Mutex
	lastSeen domain.Timestamp
	last     *domain.Snapshot
	inFlight int
	closed   bool
	retryCtx context.Context
	cancel   context.CancelFunc
	done     chan struct{}

	// renderMu orders hand-offs the same way state commits are ordered.
	// It is acquired while mu is held and released after the renderer returns.
	renderMu sync.Mutex
}

// NewMarketTicker creates a ticker. Nothing is fetched until Start.
func NewMarketTicker(source domain.QuoteSource, renderer domain.Renderer, cfg TickerConfig) *MarketTicker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultRefreshInterval
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &infra.Metrics{}
	}
	return &MarketTicker{
		source:    source,
		renderer:  renderer,
		presenter: NewPresenter(cfg.Directory, cfg.TopN, cfg.Location),
		metrics:   cfg.Metrics,
		interval:  cfg.Interval,
		retryCtx:  context.Background(),
	}
}

// Start shows the loading placeholder, fetches unconditionally and arms the refresh timer.
// Calling Start while the timer is armed does nothing.
func (t *MarketTicker) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return domain.ErrTickerClosed
	}
	if t.cancel != nil {
		t.mu.Unlock()
		slog.Debug("Market ticker already started")
		return nil
	}
	t.retryCtx = ctx
	t.renderMu.Lock()
	t.mu.Unlock()
	t.renderer.RenderLoading()
	t.renderMu.Unlock()

	if err := t.Refresh(ctx, true); err != nil {
		slog.Warn("Initial market fetch failed", slog.Any("error", err))
		// Continue anyway - the timer retries on the next tick
	}

	return t.arm(ctx)
}

// Refresh performs one fetch attempt.
// Without force it is a no-op while another fetch is in flight, and a successful fetch
// whose timestamp was already displayed is not rendered again. Failures are rendered as
// an error view and leave the retained snapshot untouched.
func (t *MarketTicker) Refresh(ctx context.Context, force bool) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return domain.ErrTickerClosed
	}
	if t.inFlight > 0 && !force {
		t.mu.Unlock()
		t.metrics.RecordSkipped()
		slog.Debug("Market fetch already in flight, skipping")
		return nil
	}
	t.inFlight++
	t.mu.Unlock()

	start := time.Now()
	snap, err := t.source.FetchSnapshot(ctx)
	t.metrics.RecordFetch(time.Since(start).Nanoseconds())
	if err == nil && len(snap.Quotes) == 0 {
		err = &domain.EmptyPayloadError{Field: "data"}
	}

	t.mu.Lock()
	t.inFlight--
	if t.closed {
		t.mu.Unlock()
		slog.Debug("Dropping market fetch result after shutdown")
		return nil
	}

	if err != nil {
		if ctx.Err() != nil {
			// Cancelled by Stop; not a user-facing failure
			t.mu.Unlock()
			return ctx.Err()
		}
		view := domain.ErrorView{Title: errorTitle, Message: err.Error(), Retry: t.retry}
		t.renderMu.Lock()
		t.mu.Unlock()
		defer t.renderMu.Unlock()

		t.metrics.RecordError()
		slog.Warn("Failed to fetch market data", slog.Bool("force", force), slog.Any("error", err))
		t.renderer.RenderError(view)
		return err
	}

	ts := snap.CreatedAt()
	switch {
	case t.last != nil && !force && ts.Same(t.lastSeen):
		t.mu.Unlock()
		t.metrics.RecordUnchanged()
		return nil
	case t.last != nil && ts.OlderThan(t.lastSeen):
		// A slower response overtaken by a newer one; last-seen never regresses
		slog.Debug("Discarding stale market snapshot",
			slog.String("timestamp", ts.Raw),
			slog.String("last_seen", t.lastSeen.Raw),
		)
		if !force {
			t.mu.Unlock()
			return nil
		}
		snap = *t.last
	default:
		t.lastSeen = ts
		t.last = &snap
		if perrs := snap.ParseErrors(); len(perrs) > 0 {
			t.metrics.RecordParseErrors(len(perrs))
			for _, pe := range perrs {
				slog.Debug("Malformed numeric field counted as zero", slog.Any("error", pe))
			}
		}
	}

	model := t.presenter.Build(snap)
	t.renderMu.Lock()
	t.mu.Unlock()
	defer t.renderMu.Unlock()

	t.renderer.Render(model)
	t.metrics.RecordRender()
	slog.Debug("Market snapshot rendered",
		slog.String("timestamp", ts.Raw),
		slog.Int("quotes", len(snap.Quotes)),
		slog.Bool("force", force),
	)
	return nil
}

// Stop cancels the refresh timer. Safe to call when no timer is armed.
// A timer-triggered fetch still running is cancelled with the timer.
func (t *MarketTicker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		t.metrics.SetPaused(true)
	}
}

// Shutdown stops the timer and clears the rendered output. Results of fetches still
// in flight are dropped. Further calls are no-ops.
func (t *MarketTicker) Shutdown() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	t.Stop()

	t.renderMu.Lock()
	t.renderer.Clear()
	t.renderMu.Unlock()
	slog.Info("Market ticker shut down")
}

// Hide pauses the refresh timer while nobody is looking
func (t *MarketTicker) Hide() {
	t.Stop()
	slog.Debug("Market ticker paused")
}

// Show re-arms the refresh timer and forces an immediate refresh
func (t *MarketTicker) Show(ctx context.Context) error {
	if err := t.arm(ctx); err != nil {
		return err
	}
	slog.Debug("Market ticker resumed")
	return t.Refresh(ctx, true)
}

// LastSnapshot returns the snapshot currently displayed, if any
func (t *MarketTicker) LastSnapshot() (domain.Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return domain.Snapshot{}, false
	}
	return *t.last, true
}

// LastSeen returns the timestamp of the snapshot currently displayed
func (t *MarketTicker) LastSeen() domain.Timestamp {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSeen
}

// InFlight reports whether a fetch is running
func (t *MarketTicker) InFlight() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight > 0
}

// Armed reports whether the refresh timer is active
func (t *MarketTicker) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

func (t *MarketTicker) arm(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return domain.ErrTickerClosed
	}
	if t.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel, t.done = cancel, done
	t.metrics.SetPaused(false)

	go t.loop(loopCtx, done)
	return nil
}

func (t *MarketTicker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Market ticker panic recovered", slog.Any("panic", r))
		}
	}()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Errors are logged and rendered inside Refresh
			_ = t.Refresh(ctx, false)
		}
	}
}

func (t *MarketTicker) retry() {
	t.mu.Lock()
	ctx := t.retryCtx
	t.mu.Unlock()

	if err := t.Refresh(ctx, true); err != nil {
		slog.Warn("Market retry failed", slog.Any("error", err))
	}
}
