package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mjholt/invoice-analyzer/pkg/aggregator"
	"github.com/mjholt/invoice-analyzer/pkg/billing"
	"github.com/mjholt/invoice-analyzer/pkg/discovery"
	"github.com/mjholt/invoice-analyzer/pkg/logger"
	"github.com/mjholt/invoice-analyzer/pkg/normalizer"
	"github.com/mjholt/invoice-analyzer/pkg/reader"
	"github.com/mjholt/invoice-analyzer/pkg/watcher"
)

// liveMonitor implements the LiveMonitor interface.
type liveMonitor struct {
	config    Config
	logger    logger.Logger
	watcher   watcher.Watcher
	reader    reader.Reader
	discovery discovery.Discoverer
	norm      *normalizer.Normalizer

	mu       sync.RWMutex
	running  bool
	closed   bool
	stopChan chan struct{}

	// Accumulated state. Rows holds every normalized row read so far;
	// the aggregator is rebuilt from the reconciled copy after each
	// change because reconciliation is a whole-set pass.
	rows     []normalizer.Row
	invoices int
	agg      aggregator.Aggregator

	lastRows      int
	lastInvoices  int
	lastRecurring decimal.Decimal

	// Update channel for consumers.
	updates chan Update
}

// New creates a new live monitor.
//
// Parameters:
//   - cfg: Monitor configuration
//   - w: File watcher
//   - r: Incremental export reader
//   - disc: Export file discovery
//   - norm: Invoice normalizer
//   - log: Logger instance
//
// Returns:
//   - Configured LiveMonitor
//   - Error if configuration is invalid
func New(cfg Config, w watcher.Watcher, r reader.Reader, disc discovery.Discoverer, norm *normalizer.Normalizer, log logger.Logger) (LiveMonitor, error) {
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = time.Second
	}

	m := &liveMonitor{
		config:    cfg,
		logger:    log,
		watcher:   w,
		reader:    r,
		discovery: disc,
		norm:      norm,
		stopChan:  make(chan struct{}),
		updates:   make(chan Update, 10),
		agg:       aggregator.New(),
	}

	log.Info("live monitor created",
		"refresh_interval", cfg.RefreshInterval,
		"account_filter", cfg.Accounts)

	return m, nil
}

// Start implements LiveMonitor.Start.
func (m *liveMonitor) Start() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrMonitorClosed
	}
	if m.running {
		m.mu.Unlock()
		return ErrMonitorRunning
	}
	m.running = true
	m.mu.Unlock()

	// Discover export files.
	exports, err := m.discovery.Discover()
	if err != nil {
		return fmt.Errorf("failed to discover exports: %w", err)
	}

	filtered := m.filterExports(exports)
	if len(filtered) == 0 {
		return ErrNoExports
	}

	m.logger.Info("monitoring exports",
		"count", len(filtered),
		"accounts", m.config.Accounts)

	// Initial read of all export files.
	ctx := context.Background()
	m.initialRead(ctx, filtered)

	// Watch the export directories so new files are picked up too.
	if err := m.watcher.Start(ctx, m.config.ExportDirs); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	go m.processEvents(ctx)
	go m.periodicUpdates()

	m.logger.Info("live monitor started")
	return nil
}

// Stop implements LiveMonitor.Stop.
func (m *liveMonitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrMonitorClosed
	}
	if !m.running {
		return ErrMonitorNotRunning
	}

	close(m.stopChan)
	m.running = false

	if err := m.watcher.Stop(); err != nil {
		m.logger.Warn("failed to stop watcher", "error", err)
	}

	m.logger.Info("live monitor stopped")
	return nil
}

// Summary implements LiveMonitor.Summary.
func (m *liveMonitor) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.summaryLocked()
}

// Updates returns a channel for receiving live updates.
func (m *liveMonitor) Updates() <-chan Update {
	return m.updates
}

// filterExports filters export files based on the account filter.
func (m *liveMonitor) filterExports(exports []discovery.ExportFile) []discovery.ExportFile {
	if len(m.config.Accounts) == 0 {
		return exports
	}

	accountSet := make(map[string]bool)
	for _, account := range m.config.Accounts {
		accountSet[account] = true
	}

	filtered := make([]discovery.ExportFile, 0)
	for _, export := range exports {
		if accountSet[export.Account] {
			filtered = append(filtered, export)
		}
	}

	return filtered
}

// initialRead reads all discovered export files from their stored
// positions.
func (m *liveMonitor) initialRead(ctx context.Context, exports []discovery.ExportFile) {
	for _, export := range exports {
		invoices, err := m.reader.Read(ctx, export.FilePath)
		if err != nil {
			m.logger.Warn("failed to read export file",
				"account", export.Account,
				"path", export.FilePath,
				"error", err)
			continue
		}

		m.addInvoices(invoices)

		m.logger.Debug("initial read complete",
			"account", export.Account,
			"path", export.FilePath,
			"invoices", len(invoices))
	}

	m.mu.Lock()
	m.rebuildLocked()
	m.lastInvoices = m.invoices
	m.lastRows = len(m.rows)
	m.lastRecurring = m.recurringTotalLocked()
	m.mu.Unlock()
}

// processEvents handles file change events from the watcher.
func (m *liveMonitor) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case <-m.stopChan:
			return

		case event, ok := <-m.watcher.Events():
			if !ok {
				m.logger.Info("watcher events channel closed")
				return
			}

			m.handleFileChange(ctx, event)

		case err, ok := <-m.watcher.Errors():
			if !ok {
				m.logger.Info("watcher errors channel closed")
				return
			}

			m.logger.Error("watcher error", "error", err)
		}
	}
}

// handleFileChange processes a file change event.
func (m *liveMonitor) handleFileChange(ctx context.Context, event watcher.Event) {
	m.logger.Debug("export change detected",
		"path", event.Path,
		"op", event.Op)

	if event.Op == watcher.OpRemove || event.Op == watcher.OpRename {
		// Already-ingested rows stay; nothing new to read.
		return
	}

	invoices, err := m.reader.Read(ctx, event.Path)
	if err != nil {
		m.logger.Warn("failed to read export after change",
			"path", event.Path,
			"error", err)
		return
	}

	if len(invoices) == 0 {
		return
	}

	m.addInvoices(invoices)

	m.mu.Lock()
	m.rebuildLocked()
	m.mu.Unlock()

	m.logger.Debug("processed export change",
		"path", event.Path,
		"new_invoices", len(invoices))

	// Trigger immediate update.
	m.sendUpdate()
}

// addInvoices normalizes a batch of invoices and appends the rows.
func (m *liveMonitor) addInvoices(invoices []billing.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range invoices {
		rows := m.norm.NormalizeInvoice(&invoices[i])
		m.rows = append(m.rows, rows...)
	}
	m.invoices += len(invoices)
}

// periodicUpdates sends periodic updates even if no file changes.
func (m *liveMonitor) periodicUpdates() {
	ticker := time.NewTicker(m.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return

		case <-ticker.C:
			m.sendUpdate()
		}
	}
}

// sendUpdate sends a summary update to the updates channel.
func (m *liveMonitor) sendUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	summary := m.summaryLocked()
	recurring := m.recurringTotalLocked()

	update := Update{
		Timestamp: time.Now(),
		Summary:   summary,
		Delta: DeltaStats{
			NewInvoices: m.invoices - m.lastInvoices,
			NewRows:     len(m.rows) - m.lastRows,
			Recurring:   recurring.Sub(m.lastRecurring),
		},
	}

	// Send update (non-blocking).
	select {
	case m.updates <- update:
	default:
		m.logger.Warn("updates channel full, dropping update")
	}

	m.lastInvoices = m.invoices
	m.lastRows = len(m.rows)
	m.lastRecurring = recurring
}

// rebuildLocked re-runs reconciliation over the accumulated rows and
// reloads the aggregator. Caller must hold m.mu.
func (m *liveMonitor) rebuildLocked() {
	reconciled := normalizer.Reconcile(m.rows, normalizer.ObjectStorageParents)

	m.agg.Reset()
	m.agg.AddRows(reconciled)
}

// summaryLocked builds a Summary from the aggregator. Caller must hold
// m.mu.
func (m *liveMonitor) summaryLocked() Summary {
	return Summary{
		Invoices:    m.invoices,
		Rows:        len(m.rows),
		Months:      m.agg.Months(),
		MonthTotals: m.agg.MonthTotals(),
		Categories:  m.agg.CategorySummaries(),
	}
}

// recurringTotalLocked sums recurring charges across all month totals.
// Caller must hold m.mu.
func (m *liveMonitor) recurringTotalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, mt := range m.agg.MonthTotals() {
		total = total.Add(mt.Recurring)
	}
	return total
}

// Close closes the monitor and releases resources.
func (m *liveMonitor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true

	if m.running {
		close(m.stopChan)
		m.running = false
	}

	close(m.updates)

	m.logger.Info("live monitor closed")
	return nil
}
