package normalizer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mjholt/invoice-analyzer/pkg/billing"
	"github.com/mjholt/invoice-analyzer/pkg/cycle"
	"github.com/mjholt/invoice-analyzer/pkg/describe"
	"github.com/mjholt/invoice-analyzer/pkg/logger"
)

// coldUsageMarker identifies the discounted cold object storage
// average-usage tier whose charge is recomputed at the contractual
// rate instead of the provider's stated fee.
const coldUsageMarker = "Cold Storage Average Usage"

// Contractual cold storage rate: 75% of average usage at the committed
// rate, the remaining 25% at the on-demand rate.
var (
	coldCommittedShare = decimal.RequireFromString("0.75")
	coldCommittedRate  = decimal.RequireFromString("0.00099")
	coldOnDemandShare  = decimal.RequireFromString("0.25")
	coldOnDemandRate   = decimal.RequireFromString("0.0051")
)

// storageNoteCategories are the top-level categories whose billing
// items link to a network storage volume.
var storageNoteCategories = map[string]bool{
	describe.CategoryStorageEnterprise: true,
	describe.CategoryPerformanceIOPS:   true,
	describe.CategoryStorageAsAService: true,
}

// Normalizer flattens raw invoice items into Rows.
//
// Safe for concurrent use across invoices; each call owns its result
// slice and no state is shared between calls.
type Normalizer struct {
	calc        cycle.Calculator
	parser      *describe.Parser
	volumeNotes NotesFunc
	log         logger.Logger
}

// New creates a Normalizer.
//
// Parameters:
//   - calc: billing cycle calculator used for invoice months and
//     service period spans
//   - volumeNotes: optional storage volume notes lookup; nil leaves
//     storage notes empty
//   - log: diagnostics for unparseable usage text; nil disables
func New(calc cycle.Calculator, volumeNotes NotesFunc, log logger.Logger) *Normalizer {
	if log == nil {
		log = logger.Noop()
	}
	return &Normalizer{
		calc:        calc,
		parser:      describe.New(log),
		volumeNotes: volumeNotes,
		log:         log,
	}
}

// Context builds the per-invoice row context. The invoice date is
// converted to the billing zone so cutoff arithmetic and report dates
// agree.
func (n *Normalizer) Context(inv *billing.Invoice) Context {
	date := inv.CreateDate.In(n.calc.Location())
	return Context{
		InvoiceID:        inv.ID,
		InvoiceDate:      date,
		InvoiceMonth:     n.calc.InvoiceMonth(date),
		InvoiceType:      inv.TypeCode,
		InvoiceTotal:     inv.InvoiceTotalAmount,
		InvoiceRecurring: inv.InvoiceTotalRecurringAmount,
	}
}

// NormalizeInvoice flattens every top-level item of an invoice.
func (n *Normalizer) NormalizeInvoice(inv *billing.Invoice) []Row {
	ctx := n.Context(inv)
	rows := make([]Row, 0, len(inv.Items)*2)
	for i := range inv.Items {
		rows = append(rows, n.Normalize(&inv.Items[i], ctx)...)
	}
	return rows
}

// Normalize flattens one top-level item into a Parent row followed by
// a Child row per nested charge with a positive recurring fee.
//
// Missing optional fields (category group, location, host name) fall
// back to documented defaults rather than failing; billing data is
// inconsistent across product lines and one odd item must not abort
// the batch.
func (n *Normalizer) Normalize(item *billing.LineItem, ctx Context) []Row {
	categoryGroup := item.Category.Group.Name
	if categoryGroup == "" {
		categoryGroup = CategoryGroupDefault
	}

	parent := Row{
		InvoiceDate:      ctx.InvoiceDate,
		InvoiceMonth:     ctx.InvoiceMonth,
		InvoiceID:        ctx.InvoiceID,
		InvoiceType:      ctx.InvoiceType,
		InvoiceTotal:     ctx.InvoiceTotal,
		InvoiceRecurring: ctx.InvoiceRecurring,
		RecordType:       RecordParent,
		BillingItemID:    item.BillingItemID,
		HostName:         item.FullHostName(),
		Location:         item.Location.LongName,
		BillingNotes:     item.Notes,
		CategoryGroup:    categoryGroup,
		Category:         item.Category.Name,
		TaxCategory:      item.Product.TaxCategory.Name,
		Description:      n.parser.Product(item),
		Memory:           describe.Memory(item.Children),
		OS:               describe.OperatingSystem(item.Children),
		Hourly:           item.HourlyFlag,
		Usage:            item.UsageChargeFlag,
		TotalRecurring:   item.TotalRecurringAmount.Round(3),
		TotalOneTime:     item.TotalOneTimeAmount,
		StorageNotes:     n.storageNotes(item),
	}

	n.applyServicePeriod(&parent, item, ctx)

	if item.HourlyFlag {
		parent.HourlyRate, parent.Hours = hourlyUsage(item)
	}

	if ctx.InvoiceType == billing.TypeNew {
		parent.NewEstimatedMonthly = n.newMonthlyEstimate(item.TotalRecurringAmount, ctx)
	}

	rows := append(make([]Row, 0, 1+len(item.Children)), parent)

	for i := range item.Children {
		child := &item.Children[i]
		if !child.RecurringFee.IsPositive() {
			continue
		}
		rows = append(rows, n.childRow(parent, child))
	}

	return rows
}

// applyServicePeriod sets the service period span and the recurring
// description label from (hourly, tax category, invoice type).
//
// Hourly charges bill the previous month's usage and platform services
// bill two months in arrears; monthly infrastructure and support bill
// the invoice month itself. NEW charges run from the invoice date to
// month end, credits and one-time charges are point charges.
func (n *Normalizer) applyServicePeriod(row *Row, item *billing.LineItem, ctx Context) {
	switch {
	case item.HourlyFlag:
		row.ServiceStart, row.ServiceEnd = n.calc.MonthSpan(ctx.InvoiceDate, 1)
		row.RecurringDesc = LabelIaaSUsage
		return
	case row.TaxCategory == TaxPaaS:
		row.ServiceStart, row.ServiceEnd = n.calc.MonthSpan(ctx.InvoiceDate, 2)
		row.RecurringDesc = LabelPlatformUsage
		return
	case row.TaxCategory == TaxIaaS && ctx.InvoiceType == billing.TypeRecurring:
		row.ServiceStart, row.ServiceEnd = n.calc.MonthSpan(ctx.InvoiceDate, 0)
		row.RecurringDesc = LabelIaaSMonthly
		return
	case row.TaxCategory == TaxHelpDesk:
		row.ServiceStart, row.ServiceEnd = n.calc.MonthSpan(ctx.InvoiceDate, 0)
		row.RecurringDesc = LabelSupportCharges
		return
	}

	switch ctx.InvoiceType {
	case billing.TypeNew:
		row.ServiceStart = ctx.InvoiceDate
		row.ServiceEnd = n.calc.MonthEnd(ctx.InvoiceDate)
	case billing.TypeCredit, billing.TypeOneTimeCharge:
		row.ServiceStart = ctx.InvoiceDate
		row.ServiceEnd = ctx.InvoiceDate
	default:
		row.ServiceStart, row.ServiceEnd = n.calc.MonthSpan(ctx.InvoiceDate, 0)
	}
}

// hourlyUsage derives the combined hourly rate (item plus children)
// and the billed hours. A zero combined rate with a nonzero fee is a
// data anomaly and yields zero hours, not an error.
func hourlyUsage(item *billing.LineItem) (decimal.Decimal, int64) {
	if !item.HourlyRecurringFee.IsPositive() {
		return decimal.Zero, 0
	}

	rate := item.HourlyRecurringFee
	for i := range item.Children {
		rate = rate.Add(item.Children[i].HourlyRecurringFee)
	}
	if !rate.IsPositive() {
		return rate.Round(5), 0
	}

	hours := item.TotalRecurringAmount.Div(rate).Round(0).IntPart()
	return rate.Round(5), hours
}

// newMonthlyEstimate projects a NEW invoice's prorated fee to a full
// month: the remaining-days daily rate times the days in the month.
func (n *Normalizer) newMonthlyEstimate(fee decimal.Decimal, ctx Context) decimal.Decimal {
	daysInMonth := int64(n.calc.DaysInMonth(ctx.InvoiceDate))
	daysLeft := daysInMonth - int64(ctx.InvoiceDate.Day()) + 1
	if daysLeft <= 0 {
		return decimal.Zero
	}
	daily := fee.Div(decimal.NewFromInt(daysLeft))
	return daily.Mul(decimal.NewFromInt(daysInMonth))
}

// childRow builds a Child row inheriting the parent's invoice context.
func (n *Normalizer) childRow(parent Row, child *billing.ChildItem) Row {
	row := parent
	row.RecordType = RecordChild
	row.ChildBillingItemID = child.BillingItemID
	row.ChildParentProduct = parent.Description
	row.Memory = ""
	row.OS = ""
	row.Hours = 0
	row.HourlyRate = decimal.Zero
	row.NewEstimatedMonthly = decimal.Zero
	row.TotalOneTime = decimal.Zero

	if name := child.Product.ItemCategory.Name; name != "" {
		row.Category = name
	} else {
		row.Category = "Unknown"
	}
	if group := child.Category.Group.Name; group != "" {
		row.CategoryGroup = group
	} else {
		row.CategoryGroup = child.Category.Name
	}

	fields := n.parser.ChildCharge(child)
	row.Description = fields.Description
	row.ChildUsage = fields.Usage
	row.ChildHasUsage = fields.HasUsage

	// Cost partition: the child level carries the charge, never both.
	row.TotalRecurring = decimal.Zero
	row.ChildTotalRecurring = child.RecurringFee.Round(3)

	if row.CategoryGroup == describe.GroupStorageLayer &&
		strings.Contains(child.Description, coldUsageMarker) && fields.HasUsage {
		row.ChildTotalRecurring = coldUsageCharge(fields.Usage)
	}

	row.ProductID = child.Attribute(billing.AttrPartNumber)
	row.Division = child.Attribute(billing.AttrServicePlanDivision)

	return row
}

// coldUsageCharge recomputes a discounted cold storage usage charge at
// the contractual rate, rounded to cents.
func coldUsageCharge(usage float64) decimal.Decimal {
	u := decimal.NewFromFloat(usage)
	committed := u.Mul(coldCommittedShare).Mul(coldCommittedRate)
	onDemand := u.Mul(coldOnDemandShare).Mul(coldOnDemandRate)
	return committed.Add(onDemand).Round(2)
}

// storageNotes resolves the operator notes of the storage volume
// behind a storage line item. A billed volume that no longer exists
// reports a fixed placeholder so the report flags orphaned charges.
func (n *Normalizer) storageNotes(item *billing.LineItem) string {
	if n.volumeNotes == nil || !storageNoteCategories[item.CategoryCode] {
		return ""
	}
	if item.BillingItem.ResourceTableID == 0 {
		return ""
	}
	notes, ok := n.volumeNotes(item.BillingItem.ResourceTableID)
	if !ok {
		return VolumeDeletedNote
	}
	return notes
}
