package describe

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mjholt/invoice-analyzer/pkg/billing"
)

// Usage extraction patterns. Some storage quantities are integer-only
// (request counts, snapshot allocations); metered space carries a
// decimal or comma separated fraction.
var (
	intPattern     = regexp.MustCompile(`\d+`)
	decimalPattern = regexp.MustCompile(`\d+[.,]\d+`)
	numberPattern  = regexp.MustCompile(`[\d.]+`)
)

// strategy rewrites a top-level item description from the item and its
// children.
type strategy func(p *Parser, item *billing.LineItem) string

// strategies maps category codes to their rewriting strategy. Codes
// not present here use the default strategy (newline stripping only).
var strategies = map[string]strategy{
	CategoryStorageEnterprise: (*Parser).enterpriseStorage,
	CategoryPerformanceIOPS:   (*Parser).performanceStorage,
	CategoryStorageAsAService: (*Parser).storageAsAService,
	CategoryGuestStorage:      (*Parser).guestStorage,
}

// Product returns the report-ready description for a top-level item,
// selecting the rewriting strategy by the item's category code.
func (p *Parser) Product(item *billing.LineItem) string {
	if s, ok := strategies[item.CategoryCode]; ok {
		return s(p, item)
	}
	return stripNewlines(item.Product.Description)
}

// enterpriseStorage summarizes endurance storage from the space, tier
// and snapshot children: "<space> <tier>" or
// "<space> <tier> with <snapshot>".
func (p *Parser) enterpriseStorage(item *billing.LineItem) string {
	tier := childProductDescription(CategoryStorageTierLevel, item.Children)
	space := childProductDescription(CategoryPerformanceSpace, item.Children)
	snapshot := childProductDescription(CategorySnapshotSpace, item.Children)
	if snapshot == "" {
		return space + " " + tier
	}
	return space + " " + tier + " with " + snapshot
}

// performanceStorage summarizes performance storage as "<space> <iops>".
func (p *Parser) performanceStorage(item *billing.LineItem) string {
	iops := childProductDescription(CategoryPerformanceIOPS, item.Children)
	space := childProductDescription(CategoryPerformanceSpace, item.Children)
	return space + " " + iops
}

// storageAsAService summarizes file storage with its billing model:
// "Hourly File Storage <space> at <tier> [with <snapshot space>]".
// Missing space or tier children fall back to the bare model summary.
func (p *Parser) storageAsAService(item *billing.LineItem) string {
	model := "Monthly"
	if item.HourlyFlag {
		model = "Hourly"
	}

	space := childChargeDescription(CategoryPerformanceSpace, item.Children)
	tier := childProductDescription(CategoryStorageTierLevel, item.Children)
	if space == "" || tier == "" {
		return model + " File Storage"
	}

	snapshot := childProductDescription(CategorySnapshotSpace, item.Children)
	if snapshot == "" {
		return model + " File Storage " + space + " at " + tier
	}
	snapshotSpace := childChargeDescription(CategorySnapshotSpace, item.Children)
	return model + " File Storage " + space + " at " + tier + " with " + snapshotSpace
}

// guestStorage substitutes the image storage usage child description
// when present.
func (p *Parser) guestStorage(item *billing.LineItem) string {
	if usage := childChargeDescription(CategoryGuestStorageUsage, item.Children); usage != "" {
		return usage
	}
	return stripNewlines(item.Product.Description)
}

// ChildCharge splits a child charge description into its descriptive
// prefix and embedded usage quantity.
//
// Storage layer children delimit usage with ":"; all other product
// lines use "- $". Request counts and snapshot allocations parse as
// integers, replication charges carry no quantity (fixed zero), and
// everything else requires a fractional number. A description without
// the delimiter, or with no parseable quantity after it, yields the
// whole description and no usage.
func (p *Parser) ChildCharge(child *billing.ChildItem) ChildFields {
	group := child.Category.Group.Name
	if group == "" {
		group = child.Category.Name
	}

	if group == GroupStorageLayer {
		return p.storageChildCharge(child)
	}
	return p.defaultChildCharge(child)
}

func (p *Parser) storageChildCharge(child *billing.ChildItem) ChildFields {
	desc := child.Description
	idx := strings.Index(desc, ":")
	if idx == -1 {
		return ChildFields{Description: desc}
	}

	fields := ChildFields{Description: desc[:idx]}
	tail := desc[idx:]

	switch {
	case strings.Contains(desc, "API Requests"), strings.Contains(desc, "Snapshot Space"):
		if m := intPattern.FindString(tail); m != "" {
			fields.Usage, fields.HasUsage = parseNumber(m)
		}
	case strings.Contains(desc, "Replication for tier"):
		fields.HasUsage = true
	default:
		if m := decimalPattern.FindString(tail); m != "" {
			fields.Usage, fields.HasUsage = parseNumber(m)
		}
	}

	if !fields.HasUsage {
		p.log.Warn("no usage quantity found in storage child description",
			"billing_item_id", child.BillingItemID, "description", desc)
	}
	return fields
}

func (p *Parser) defaultChildCharge(child *billing.ChildItem) ChildFields {
	desc := child.Description
	idx := strings.Index(desc, "- $")
	if idx == -1 {
		return ChildFields{Description: desc}
	}

	fields := ChildFields{Description: desc[:idx]}
	if m := numberPattern.FindString(desc[idx:]); m != "" {
		fields.Usage, fields.HasUsage = parseNumber(m)
	}
	if !fields.HasUsage {
		p.log.Warn("no usage quantity found in child description",
			"billing_item_id", child.BillingItemID, "description", desc)
	}
	return fields
}

// Memory returns the RAM child's catalog description, empty when the
// item has no RAM child.
func Memory(children []billing.ChildItem) string {
	return childProductDescription(CategoryRAM, children)
}

// OperatingSystem returns the OS child's catalog description, empty
// when the item has no OS child.
func OperatingSystem(children []billing.ChildItem) string {
	return childProductDescription(CategoryOS, children)
}

// childProductDescription returns the trimmed catalog description of
// the first child with the given category code.
func childProductDescription(categoryCode string, children []billing.ChildItem) string {
	for i := range children {
		if children[i].CategoryCode == categoryCode {
			return strings.TrimSpace(children[i].Product.Description)
		}
	}
	return ""
}

// childChargeDescription returns the trimmed charge description of the
// first child with the given category code.
func childChargeDescription(categoryCode string, children []billing.ChildItem) string {
	for i := range children {
		if children[i].CategoryCode == categoryCode {
			return strings.TrimSpace(children[i].Description)
		}
	}
	return ""
}

// parseNumber parses a matched quantity, tolerating comma separators.
func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(strings.Trim(s, "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// stripNewlines flattens embedded line breaks in catalog descriptions.
func stripNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
