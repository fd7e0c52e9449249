package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/mjholt/invoice-analyzer/pkg/aggregator"
	"github.com/mjholt/invoice-analyzer/pkg/billing"
	"github.com/mjholt/invoice-analyzer/pkg/config"
	"github.com/mjholt/invoice-analyzer/pkg/cycle"
	"github.com/mjholt/invoice-analyzer/pkg/discovery"
	"github.com/mjholt/invoice-analyzer/pkg/display"
	"github.com/mjholt/invoice-analyzer/pkg/logger"
	"github.com/mjholt/invoice-analyzer/pkg/lookup"
	"github.com/mjholt/invoice-analyzer/pkg/monitor"
	"github.com/mjholt/invoice-analyzer/pkg/normalizer"
	"github.com/mjholt/invoice-analyzer/pkg/reader"
	"github.com/mjholt/invoice-analyzer/pkg/watcher"
)

// appEnv bundles the components shared by every command.
type appEnv struct {
	cfg     *config.Config
	log     logger.Logger
	calc    cycle.Calculator
	volumes lookup.Store // nil when the volumes database is unavailable
}

// loadEnv loads configuration and initializes the shared components.
func loadEnv(c *cli.Context) (*appEnv, error) {
	cfg, err := config.NewLoader(c.String("config")).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Logging.Level
	if c.String("log-level") != "" {
		level = c.String("log-level")
	}

	log := logger.New(logger.Config{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	loc, err := time.LoadLocation(cfg.Billing.Zone)
	if err != nil {
		return nil, fmt.Errorf("invalid billing zone %q: %w", cfg.Billing.Zone, err)
	}

	env := &appEnv{
		cfg:  cfg,
		log:  log,
		calc: cycle.New(loc),
	}

	// Volume metadata is optional; reports degrade to empty storage
	// notes when the database cannot be opened.
	store, storeErr := lookup.New(lookup.Config{
		DBPath: cfg.Storage.VolumesDBPath,
	}, log)
	if storeErr != nil {
		log.Warn("volumes database unavailable, storage notes disabled",
			"path", cfg.Storage.VolumesDBPath,
			"error", storeErr)
	} else {
		env.volumes = store
	}

	return env, nil
}

// close releases the environment's resources.
func (e *appEnv) close() {
	if e.volumes != nil {
		if err := e.volumes.Close(); err != nil {
			e.log.Error("failed to close volumes store", "error", err)
		}
	}
}

// notesFunc returns the volume notes resolver, or nil when volume
// metadata is unavailable.
func (e *appEnv) notesFunc() normalizer.NotesFunc {
	if e.volumes == nil {
		return nil
	}
	return e.volumes.Notes
}

// parseFormat maps a format flag value to a display format.
func parseFormat(s string) (display.Format, error) {
	switch s {
	case "", "table":
		return display.FormatTable, nil
	case "json":
		return display.FormatJSON, nil
	case "csv":
		return display.FormatCSV, nil
	default:
		return "", fmt.Errorf("invalid format: %s (expected table, json, or csv)", s)
	}
}

// resolveMonthRange determines the report's inclusive invoice month
// range from the start/end flags, falling back to the trailing month
// count relative to now.
func resolveMonthRange(calc cycle.Calculator, start, end string, months int, now time.Time) (string, string) {
	if start != "" && end != "" {
		return start, end
	}

	defStart, defEnd := calc.LastFullMonths(now, months)
	if start == "" {
		start = defStart
	}
	if end == "" {
		end = defEnd
	}
	return start, end
}

// =============================================================================
// REPORT COMMAND
// =============================================================================

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Render aggregated charge reports from invoice exports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "start",
				Usage: "First invoice month to include (YYYY-MM)",
			},
			&cli.StringFlag{
				Name:  "end",
				Usage: "Last invoice month to include (YYYY-MM)",
			},
			&cli.IntFlag{
				Name:  "months",
				Usage: "Trailing month count when no explicit range is given",
			},
			&cli.StringFlag{
				Name:  "account",
				Usage: "Restrict to one billing account",
			},
			&cli.StringFlag{
				Name:    "view",
				Aliases: []string{"v"},
				Value:   "summary",
				Usage:   "Report view (summary, categories, products, top)",
			},
			&cli.IntFlag{
				Name:  "top",
				Value: 25,
				Usage: "Number of items in the top view",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json, csv)",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "Compact output",
			},
			&cli.IntFlag{
				Name:  "max-width",
				Usage: "Maximum table width (0 = terminal width)",
			},
		},
		Action: runReport,
	}
}

func runReport(c *cli.Context) error {
	env, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	format, err := parseFormat(c.String("format"))
	if err != nil {
		return err
	}

	months := c.Int("months")
	if months == 0 {
		months = env.cfg.Billing.Months
	}

	start, end := resolveMonthRange(env.calc, c.String("start"), c.String("end"), months, time.Now())
	rangeStart, rangeEnd, err := env.calc.InvoiceRange(start, end)
	if err != nil {
		return err
	}

	agg, err := collectRows(env, c.String("account"), rangeStart, rangeEnd)
	if err != nil {
		return err
	}
	if agg == nil {
		fmt.Println("No invoice exports found")
		return nil
	}

	formatter := display.New(display.Config{
		Format:   format,
		MaxWidth: c.Int("max-width"),
		Compact:  c.Bool("compact"),
	})

	switch c.String("view") {
	case "summary":
		return formatter.FormatMonthTotals(os.Stdout, agg.MonthTotals())
	case "categories":
		return formatter.FormatCategorySummaries(os.Stdout, agg.CategorySummaries(), agg.Months())
	case "products":
		return formatter.FormatProductSummaries(os.Stdout, agg.ProductSummaries(), agg.Months())
	case "top":
		return formatter.FormatTopParents(os.Stdout, agg.TopParents(c.Int("top")))
	default:
		return fmt.Errorf("invalid view: %s (expected summary, categories, products, or top)", c.String("view"))
	}
}

// collectRows parses every matching export, normalizes and reconciles
// the invoices in [rangeStart, rangeEnd), and returns the loaded
// aggregator. Returns nil when no exports were found.
func collectRows(env *appEnv, account string, rangeStart, rangeEnd time.Time) (aggregator.Aggregator, error) {
	disc := discovery.New(env.cfg.ExportDirs, env.log)
	exports, err := disc.Discover()
	if err != nil {
		return nil, fmt.Errorf("failed to discover exports: %w", err)
	}

	if len(exports) == 0 {
		return nil, nil
	}

	norm := normalizer.New(env.calc, env.notesFunc(), env.log)
	parser := billing.New(env.log)

	var rows []normalizer.Row
	for _, export := range exports {
		if account != "" && export.Account != account {
			continue
		}

		invoices, _, parseErr := parser.ParseFile(export.FilePath, 0)
		if parseErr != nil {
			env.log.Warn("failed to parse export",
				"path", export.FilePath,
				"error", parseErr)
			continue
		}

		for i := range invoices {
			created := invoices[i].CreateDate
			if created.Before(rangeStart) || !created.Before(rangeEnd) {
				continue
			}
			rows = append(rows, norm.NormalizeInvoice(&invoices[i])...)
		}
	}

	rows = normalizer.Reconcile(rows, normalizer.ObjectStorageParents)

	agg := aggregator.New()
	agg.AddRows(rows)
	return agg, nil
}

// =============================================================================
// LIST COMMAND
// =============================================================================

func listCommand() *cli.Command {
	return &cli.Command{
		Name:   "list",
		Usage:  "List discovered invoice export files",
		Action: runList,
	}
}

func runList(c *cli.Context) error {
	env, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	disc := discovery.New(env.cfg.ExportDirs, env.log)
	exports, err := disc.Discover()
	if err != nil {
		return fmt.Errorf("failed to discover exports: %w", err)
	}

	if len(exports) == 0 {
		fmt.Println("No invoice exports found")
		return nil
	}

	fmt.Printf("Found %d export(s):\n\n", len(exports))
	for _, export := range exports {
		account := export.Account
		if account == "" {
			account = "(default)"
		}
		fmt.Printf("  %s\n", account)
		fmt.Printf("    Path: %s\n", export.FilePath)
		fmt.Printf("    Size: %d bytes, modified %s\n",
			export.Size,
			time.Unix(export.ModTime, 0).Format("2006-01-02 15:04:05"))
		fmt.Println()
	}

	return nil
}

// =============================================================================
// WATCH COMMAND
// =============================================================================

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Live monitoring of invoice exports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "account",
				Usage: "Restrict to one billing account",
			},
			&cli.DurationFlag{
				Name:  "refresh",
				Usage: "Refresh interval (e.g. 1s, 500ms)",
			},
			&cli.BoolFlag{
				Name:  "history",
				Usage: "Keep history of updates (append mode)",
			},
		},
		Action: runWatch,
	}
}

func runWatch(c *cli.Context) error {
	env, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	refresh := c.Duration("refresh")
	if refresh == 0 {
		refresh = env.cfg.Watch.RefreshRate
	}
	clearScreen := !c.Bool("history")

	// Positions database keeps per-file read offsets across runs.
	db, err := bolt.Open(env.cfg.Storage.PositionsDBPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to open positions database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			env.log.Error("failed to close positions database", "error", closeErr)
		}
	}()

	positionStore, err := reader.NewBoltPositionStore(db)
	if err != nil {
		return fmt.Errorf("failed to initialize position store: %w", err)
	}

	r, err := reader.New(reader.Config{
		PositionStore: positionStore,
		Parser:        billing.New(env.log),
	}, env.log)
	if err != nil {
		return fmt.Errorf("failed to initialize reader: %w", err)
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil {
			env.log.Error("failed to close reader", "error", closeErr)
		}
	}()

	w, err := watcher.New(watcher.Config{
		DebounceInterval: env.cfg.Watch.DebounceWindow,
	}, env.log)
	if err != nil {
		return fmt.Errorf("failed to initialize watcher: %w", err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			env.log.Error("failed to close watcher", "error", closeErr)
		}
	}()

	disc := discovery.New(env.cfg.ExportDirs, env.log)
	norm := normalizer.New(env.calc, env.notesFunc(), env.log)

	var accounts []string
	if c.String("account") != "" {
		accounts = []string{c.String("account")}
	}

	mon, err := monitor.New(monitor.Config{
		ExportDirs:      env.cfg.ExportDirs,
		Accounts:        accounts,
		RefreshInterval: refresh,
	}, w, r, disc, norm, env.log)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}
	defer func() {
		if closeErr := mon.Close(); closeErr != nil {
			env.log.Error("failed to close monitor", "error", closeErr)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if startErr := mon.Start(); startErr != nil {
			errChan <- startErr
		}
	}()

	if clearScreen {
		fmt.Print("\033[2J\033[H")
	}

	fmt.Println("Live Invoice Monitor - Press Ctrl+C to stop")
	if c.String("account") != "" {
		fmt.Printf("Account: %s | ", c.String("account"))
	} else {
		fmt.Print("All Accounts | ")
	}
	fmt.Printf("Refresh: %s\n", refresh)
	fmt.Println(strings.Repeat("-", 80))
	fmt.Println()

	for {
		select {
		case <-sigChan:
			fmt.Print("\n\n")
			fmt.Println("Stopping monitor...")
			if stopErr := mon.Stop(); stopErr != nil {
				env.log.Error("failed to stop monitor", "error", stopErr)
			}
			return nil

		case err := <-errChan:
			return fmt.Errorf("monitor error: %w", err)

		case update := <-mon.Updates():
			displayUpdate(update, clearScreen)
		}
	}
}

// displayUpdate renders a live monitoring update.
func displayUpdate(update monitor.Update, clearScreen bool) {
	if clearScreen {
		// Move cursor below the header and clear to end of screen.
		fmt.Print("\033[5;1H\033[J")
	}

	summary := update.Summary
	delta := update.Delta

	fmt.Printf("Updated %s | %d invoice(s), %d row(s)",
		update.Timestamp.Format("15:04:05"),
		summary.Invoices,
		summary.Rows)
	if delta.NewInvoices > 0 {
		fmt.Printf(" | +%d invoice(s), +%s recurring",
			delta.NewInvoices,
			delta.Recurring.StringFixed(2))
	}
	fmt.Print("\n\n")

	formatter := display.New(display.Config{Format: display.FormatTable})
	if err := formatter.FormatMonthTotals(os.Stdout, summary.MonthTotals); err != nil {
		fmt.Fprintf(os.Stderr, "render error: %v\n", err)
	}
}
