// Package describe rewrites free-text product descriptions into
// report-ready form and extracts numeric usage quantities from child
// charge descriptions.
//
// Storage products spread their configuration over several child
// items (space, tier, snapshot). The parser selects a rewriting
// strategy by category code and assembles a single summary line from
// the relevant children; unmapped category codes fall through to a
// default strategy that only strips embedded newlines.
//
// Usage extraction is best-effort: when a description carries no
// recognizable quantity the result reports absence instead of failing,
// so one odd product line cannot abort a whole invoice batch.
package describe

import (
	"github.com/mjholt/invoice-analyzer/pkg/logger"
)

// Category codes that select a description rewriting strategy.
const (
	CategoryStorageEnterprise = "storage_service_enterprise"
	CategoryPerformanceIOPS   = "performance_storage_iops"
	CategoryStorageAsAService = "storage_as_a_service"
	CategoryGuestStorage      = "guest_storage"
)

// Child category codes looked up while assembling storage summaries.
const (
	CategoryStorageTierLevel  = "storage_tier_level"
	CategoryPerformanceSpace  = "performance_storage_space"
	CategorySnapshotSpace     = "storage_snapshot_space"
	CategoryGuestStorageUsage = "guest_storage_usage"
	CategoryRAM               = "ram"
	CategoryOS                = "os"
)

// GroupStorageLayer is the category group whose child descriptions
// embed usage after a ":" delimiter instead of the "- $" form.
const GroupStorageLayer = "StorageLayer"

// ChildFields is the parsed form of one child charge description.
//
// HasUsage distinguishes a parsed zero quantity from an absent one;
// downstream aggregation treats absent usage as zero contribution.
type ChildFields struct {
	Description string
	Usage       float64
	HasUsage    bool
}

// Parser rewrites descriptions and extracts usage quantities.
//
// All methods are read-only over their inputs and safe for concurrent
// use.
type Parser struct {
	log logger.Logger
}

// New creates a Parser. A nil log disables diagnostics.
func New(log logger.Logger) *Parser {
	if log == nil {
		log = logger.Noop()
	}
	return &Parser{log: log}
}
