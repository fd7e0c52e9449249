package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjholt/invoice-analyzer/pkg/billing"
	"github.com/mjholt/invoice-analyzer/pkg/cycle"
	"github.com/mjholt/invoice-analyzer/pkg/discovery"
	"github.com/mjholt/invoice-analyzer/pkg/logger"
	"github.com/mjholt/invoice-analyzer/pkg/normalizer"
	"github.com/mjholt/invoice-analyzer/pkg/watcher"
)

// mockWatcher implements watcher.Watcher for testing.
type mockWatcher struct {
	mu      sync.Mutex
	started bool
	paths   []string
	events  chan watcher.Event
	errs    chan error
}

func newMockWatcher() *mockWatcher {
	return &mockWatcher{
		events: make(chan watcher.Event, 10),
		errs:   make(chan error, 10),
	}
}

func (w *mockWatcher) Start(_ context.Context, paths []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.started = true
	w.paths = paths
	return nil
}

func (w *mockWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.started = false
	return nil
}

func (w *mockWatcher) Events() <-chan watcher.Event { return w.events }
func (w *mockWatcher) Errors() <-chan error         { return w.errs }
func (w *mockWatcher) Close() error                 { return nil }

func (w *mockWatcher) emit(path string, op watcher.Op) {
	w.events <- watcher.Event{Path: path, Op: op, Timestamp: time.Now()}
}

// mockReader implements reader.Reader with scripted per-path batches.
// Each Read drains the next batch for the path, mimicking incremental
// reads of an appended file.
type mockReader struct {
	mu      sync.Mutex
	batches map[string][][]billing.Invoice
	err     error
}

func newMockReader() *mockReader {
	return &mockReader{
		batches: make(map[string][][]billing.Invoice),
	}
}

func (r *mockReader) add(path string, invoices ...billing.Invoice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[path] = append(r.batches[path], invoices)
}

func (r *mockReader) Read(_ context.Context, path string) ([]billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	pending := r.batches[path]
	if len(pending) == 0 {
		return nil, nil
	}

	batch := pending[0]
	r.batches[path] = pending[1:]
	return batch, nil
}

func (r *mockReader) ReadFrom(_ context.Context, _ string, offset int64) ([]billing.Invoice, int64, error) {
	return nil, offset, nil
}

func (r *mockReader) Reset(_ string) error { return nil }
func (r *mockReader) Close() error         { return nil }

// mockDiscoverer implements discovery.Discoverer.
type mockDiscoverer struct {
	exports []discovery.ExportFile
	err     error
}

func (d *mockDiscoverer) Discover() ([]discovery.ExportFile, error) {
	return d.exports, d.err
}

func (d *mockDiscoverer) DiscoverDir(_ string) ([]discovery.ExportFile, error) {
	return d.exports, d.err
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testInvoice(id int, created time.Time, fee string) billing.Invoice {
	amount := dec(fee)
	return billing.Invoice{
		ID:                          id,
		CreateDate:                  created,
		TypeCode:                    "RECURRING",
		InvoiceTotalAmount:          amount,
		InvoiceTotalRecurringAmount: amount,
		Items: []billing.LineItem{
			{
				ID:            id * 10,
				BillingItemID: id * 10,
				CategoryCode:  "server",
				Category: billing.Category{
					Name:  "Server",
					Group: billing.CategoryGroup{Name: "Compute"},
				},
				Description:          "Dual Xeon 4110",
				HostName:             "web01",
				Product:              billing.Product{TaxCategory: billing.TaxCategory{Name: "IaaS"}},
				TotalRecurringAmount: amount,
			},
		},
	}
}

func testNormalizer(t *testing.T) *normalizer.Normalizer {
	t.Helper()
	return normalizer.New(cycle.New(time.UTC), nil, logger.Noop())
}

func newTestMonitor(t *testing.T, cfg Config, w watcher.Watcher, r *mockReader, d *mockDiscoverer) LiveMonitor {
	t.Helper()

	m, err := New(cfg, w, r, d, testNormalizer(t), logger.Noop())
	require.NoError(t, err)
	return m
}

func TestNew(t *testing.T) {
	m := newTestMonitor(t, Config{}, newMockWatcher(), newMockReader(), &mockDiscoverer{})
	defer func() { _ = m.Close() }()

	assert.NotNil(t, m)
}

func TestStartNoExports(t *testing.T) {
	m := newTestMonitor(t, Config{}, newMockWatcher(), newMockReader(), &mockDiscoverer{})
	defer func() { _ = m.Close() }()

	err := m.Start()
	assert.ErrorIs(t, err, ErrNoExports)
}

func TestStartInitialRead(t *testing.T) {
	disc := &mockDiscoverer{
		exports: []discovery.ExportFile{
			{Account: "acme-prod", FilePath: "/exports/acme-prod/invoices-2022-06.jsonl"},
		},
	}

	r := newMockReader()
	created := time.Date(2022, 6, 21, 10, 0, 0, 0, time.UTC)
	r.add("/exports/acme-prod/invoices-2022-06.jsonl",
		testInvoice(5001, created, "500.00"),
		testInvoice(5002, created, "250.00"))

	w := newMockWatcher()
	m := newTestMonitor(t, Config{ExportDirs: []string{"/exports"}}, w, r, disc)
	defer func() { _ = m.Close() }()

	require.NoError(t, m.Start())
	defer func() { _ = m.Stop() }()

	summary := m.Summary()
	assert.Equal(t, 2, summary.Invoices)
	assert.Equal(t, 2, summary.Rows)
	assert.Equal(t, []string{"2022-07"}, summary.Months)

	require.Len(t, summary.MonthTotals, 1)
	assert.Equal(t, "2022-07", summary.MonthTotals[0].Month)
	assert.Equal(t, "RECURRING", summary.MonthTotals[0].Type)
	assert.True(t, summary.MonthTotals[0].Recurring.Equal(dec("750.00")))

	// Watcher gets the export directories, not individual files.
	w.mu.Lock()
	assert.Equal(t, []string{"/exports"}, w.paths)
	w.mu.Unlock()
}

func TestStartTwice(t *testing.T) {
	disc := &mockDiscoverer{
		exports: []discovery.ExportFile{
			{Account: "acme-prod", FilePath: "/exports/a.jsonl"},
		},
	}

	m := newTestMonitor(t, Config{}, newMockWatcher(), newMockReader(), disc)
	defer func() { _ = m.Close() }()

	require.NoError(t, m.Start())
	defer func() { _ = m.Stop() }()

	assert.ErrorIs(t, m.Start(), ErrMonitorRunning)
}

func TestStopNotRunning(t *testing.T) {
	m := newTestMonitor(t, Config{}, newMockWatcher(), newMockReader(), &mockDiscoverer{})
	defer func() { _ = m.Close() }()

	assert.ErrorIs(t, m.Stop(), ErrMonitorNotRunning)
}

func TestAccountFilter(t *testing.T) {
	disc := &mockDiscoverer{
		exports: []discovery.ExportFile{
			{Account: "acme-prod", FilePath: "/exports/acme-prod/a.jsonl"},
			{Account: "acme-dev", FilePath: "/exports/acme-dev/b.jsonl"},
		},
	}

	r := newMockReader()
	created := time.Date(2022, 6, 21, 10, 0, 0, 0, time.UTC)
	r.add("/exports/acme-prod/a.jsonl", testInvoice(5001, created, "500.00"))
	r.add("/exports/acme-dev/b.jsonl", testInvoice(5002, created, "999.00"))

	m := newTestMonitor(t, Config{Accounts: []string{"acme-prod"}}, newMockWatcher(), r, disc)
	defer func() { _ = m.Close() }()

	require.NoError(t, m.Start())
	defer func() { _ = m.Stop() }()

	summary := m.Summary()
	assert.Equal(t, 1, summary.Invoices)
	require.Len(t, summary.MonthTotals, 1)
	assert.True(t, summary.MonthTotals[0].Recurring.Equal(dec("500.00")))
}

func TestAccountFilterNoMatch(t *testing.T) {
	disc := &mockDiscoverer{
		exports: []discovery.ExportFile{
			{Account: "acme-prod", FilePath: "/exports/acme-prod/a.jsonl"},
		},
	}

	m := newTestMonitor(t, Config{Accounts: []string{"other"}}, newMockWatcher(), newMockReader(), disc)
	defer func() { _ = m.Close() }()

	assert.ErrorIs(t, m.Start(), ErrNoExports)
}

func TestFileChangeUpdatesSummary(t *testing.T) {
	path := "/exports/acme-prod/invoices-2022-06.jsonl"
	disc := &mockDiscoverer{
		exports: []discovery.ExportFile{
			{Account: "acme-prod", FilePath: path},
		},
	}

	r := newMockReader()
	created := time.Date(2022, 6, 21, 10, 0, 0, 0, time.UTC)
	r.add(path, testInvoice(5001, created, "500.00"))

	w := newMockWatcher()
	m := newTestMonitor(t, Config{RefreshInterval: time.Hour}, w, r, disc)
	defer func() { _ = m.Close() }()

	require.NoError(t, m.Start())
	defer func() { _ = m.Stop() }()

	// Queue the appended invoice and signal a write.
	r.add(path, testInvoice(5002, created, "125.00"))
	w.emit(path, watcher.OpWrite)

	// The change triggers an immediate update.
	select {
	case update := <-m.Updates():
		assert.Equal(t, 1, update.Delta.NewInvoices)
		assert.Equal(t, 1, update.Delta.NewRows)
		assert.True(t, update.Delta.Recurring.Equal(dec("125.00")))
		assert.Equal(t, 2, update.Summary.Invoices)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for update")
	}

	summary := m.Summary()
	require.Len(t, summary.MonthTotals, 1)
	assert.True(t, summary.MonthTotals[0].Recurring.Equal(dec("625.00")))
}

func TestRemoveEventIgnored(t *testing.T) {
	path := "/exports/acme-prod/invoices-2022-06.jsonl"
	disc := &mockDiscoverer{
		exports: []discovery.ExportFile{
			{Account: "acme-prod", FilePath: path},
		},
	}

	r := newMockReader()
	created := time.Date(2022, 6, 21, 10, 0, 0, 0, time.UTC)
	r.add(path, testInvoice(5001, created, "500.00"))

	w := newMockWatcher()
	m := newTestMonitor(t, Config{RefreshInterval: time.Hour}, w, r, disc)
	defer func() { _ = m.Close() }()

	require.NoError(t, m.Start())
	defer func() { _ = m.Stop() }()

	w.emit(path, watcher.OpRemove)

	// Rows already ingested from the removed file are retained.
	time.Sleep(100 * time.Millisecond)
	summary := m.Summary()
	assert.Equal(t, 1, summary.Invoices)
}

func TestPeriodicUpdates(t *testing.T) {
	disc := &mockDiscoverer{
		exports: []discovery.ExportFile{
			{Account: "acme-prod", FilePath: "/exports/a.jsonl"},
		},
	}

	r := newMockReader()
	created := time.Date(2022, 6, 21, 10, 0, 0, 0, time.UTC)
	r.add("/exports/a.jsonl", testInvoice(5001, created, "500.00"))

	m := newTestMonitor(t, Config{RefreshInterval: 50 * time.Millisecond}, newMockWatcher(), r, disc)
	defer func() { _ = m.Close() }()

	require.NoError(t, m.Start())
	defer func() { _ = m.Stop() }()

	select {
	case update := <-m.Updates():
		// No changes since the initial read.
		assert.Equal(t, 0, update.Delta.NewInvoices)
		assert.True(t, update.Delta.Recurring.IsZero())
		assert.Equal(t, 1, update.Summary.Invoices)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for periodic update")
	}
}

func TestReconciliationAppliedToSummary(t *testing.T) {
	// An object storage parent's charge is re-derived from its
	// children in the summary views.
	path := "/exports/a.jsonl"
	disc := &mockDiscoverer{
		exports: []discovery.ExportFile{
			{Account: "", FilePath: path},
		},
	}

	created := time.Date(2022, 6, 21, 10, 0, 0, 0, time.UTC)
	inv := billing.Invoice{
		ID:                          6001,
		CreateDate:                  created,
		TypeCode:                    "RECURRING",
		InvoiceTotalAmount:          dec("100.00"),
		InvoiceTotalRecurringAmount: dec("100.00"),
		Items: []billing.LineItem{
			{
				ID:            60010,
				BillingItemID: 60010,
				CategoryCode:  "object_storage",
				Category: billing.Category{
					Name:  "Object Storage",
					Group: billing.CategoryGroup{Name: "StorageLayer"},
				},
				Description:          "Object Storage - Standard",
				Product:              billing.Product{TaxCategory: billing.TaxCategory{Name: "IaaS"}},
				TotalRecurringAmount: dec("100.00"),
				Children: []billing.ChildItem{
					{
						BillingItemID: 70010,
						CategoryCode:  "object_storage_usage",
						Description:   "Object Storage - 100 GB",
						RecurringFee:  dec("42.00"),
					},
				},
			},
		},
	}

	r := newMockReader()
	r.add(path, inv)

	m := newTestMonitor(t, Config{RefreshInterval: time.Hour}, newMockWatcher(), r, disc)
	defer func() { _ = m.Close() }()

	require.NoError(t, m.Start())
	defer func() { _ = m.Stop() }()

	summary := m.Summary()
	require.Len(t, summary.MonthTotals, 1)
	assert.True(t, summary.MonthTotals[0].Recurring.Equal(dec("42.00")),
		"got %s", summary.MonthTotals[0].Recurring)
}

func TestCloseTwice(t *testing.T) {
	m := newTestMonitor(t, Config{}, newMockWatcher(), newMockReader(), &mockDiscoverer{})

	require.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}

func TestStartAfterClose(t *testing.T) {
	m := newTestMonitor(t, Config{}, newMockWatcher(), newMockReader(), &mockDiscoverer{})

	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Start(), ErrMonitorClosed)
}
