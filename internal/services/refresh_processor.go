package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetrip/internal/core"
	"budgetrip/internal/integrations"
	"budgetrip/internal/storage"
)

// RefreshProcessorConfig holds configuration for the refresh processor
type RefreshProcessorConfig struct {
	// Interval is how often to pull new transactions (default: 30m)
	Interval time.Duration

	// MaxConcurrent bounds how many providers refresh at once (default: 3)
	MaxConcurrent int
}

// DefaultRefreshProcessorConfig returns sensible defaults
func DefaultRefreshProcessorConfig() RefreshProcessorConfig {
	return RefreshProcessorConfig{
		Interval:      30 * time.Minute,
		MaxConcurrent: 3,
	}
}

// RefreshProcessor periodically pulls transactions from every connected
// account and ingests them as line items.
type RefreshProcessor struct {
	storage   *storage.SQLiteRepository
	lineItems *LineItemService
	sources   []integrations.TransactionSource
	config    RefreshProcessorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRefreshProcessor creates a new refresh processor
func NewRefreshProcessor(
	storage *storage.SQLiteRepository,
	lineItems *LineItemService,
	sources []integrations.TransactionSource,
	config RefreshProcessorConfig,
) *RefreshProcessor {
	return &RefreshProcessor{
		storage:   storage,
		lineItems: lineItems,
		sources:   sources,
		config:    config,
	}
}

// Start begins the refresh loop. Returns an error if already running.
func (p *RefreshProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("refresh processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Refresh processor started",
		"interval", p.config.Interval,
		"sources", len(p.sources))

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *RefreshProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Refresh processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Refresh processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *RefreshProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *RefreshProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Refresh immediately on startup
	p.RefreshAll(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.RefreshAll(ctx)
		}
	}
}

// RefreshAll pulls every source concurrently. A failing provider is logged
// and does not block the others; its cursor stays put so the next cycle
// retries the same window.
func (p *RefreshProcessor) RefreshAll(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.MaxConcurrent)

	for _, source := range p.sources {
		g.Go(func() error {
			if err := p.refreshSource(gctx, source); err != nil {
				slog.ErrorContext(gctx, "Provider refresh failed",
					"provider", source.Provider(), "error", err)
			}
			return nil
		})
	}

	g.Wait()
}

// RefreshOne refreshes a single provider by name.
func (p *RefreshProcessor) RefreshOne(ctx context.Context, provider core.Provider) error {
	for _, source := range p.sources {
		if source.Provider() == provider {
			return p.refreshSource(ctx, source)
		}
	}
	return fmt.Errorf("no source for provider %s: %w", provider, core.ErrUnknownProvider)
}

func (p *RefreshProcessor) refreshSource(ctx context.Context, source integrations.TransactionSource) error {
	provider := source.Provider()

	lastSynced, err := p.storage.AccountLastSynced(ctx, provider)
	if err != nil {
		return fmt.Errorf("load sync cursor: %w", err)
	}

	var since time.Time
	if lastSynced > 0 {
		since = time.Unix(lastSynced, 0)
	}

	// Cursor advances to just before the fetch so transactions landing
	// mid-pull are picked up next cycle; dedupe absorbs the overlap.
	pulledAt := time.Now().Unix()

	txns, err := source.FetchTransactions(ctx, since)
	if err != nil {
		return fmt.Errorf("fetch transactions: %w", err)
	}

	inserted, err := p.lineItems.Ingest(ctx, provider, txns)
	if err != nil {
		return fmt.Errorf("ingest transactions: %w", err)
	}

	if err := p.storage.MarkAccountSynced(ctx, provider, pulledAt); err != nil {
		return fmt.Errorf("mark account synced: %w", err)
	}

	slog.InfoContext(ctx, "Refreshed connected account",
		"provider", provider,
		"fetched", len(txns),
		"inserted", inserted)

	return nil
}
