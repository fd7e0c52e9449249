// Package normalizer flattens nested invoice line items into the
// canonical row model consumed by the aggregation views, and provides
// the reconciliation pass that re-derives corrected parent charges
// from their children.
//
// Each top-level item yields one Parent row and zero or more Child
// rows. Cost is partitioned between the levels: a Parent row carries
// the recurring charge and a zero child charge, a Child row carries
// the child recurring charge and a zero recurring charge. The two
// fields must never double-count.
//
// Example usage:
//
//	n := normalizer.New(calc, nil, log)
//	rows := n.NormalizeInvoice(&invoice)
//	rows = normalizer.Reconcile(rows, normalizer.ObjectStorageParents)
package normalizer

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordType discriminates the two row variants sharing one schema.
type RecordType string

const (
	// RecordParent marks a row built from a top-level line item.
	RecordParent RecordType = "Parent"

	// RecordChild marks a row built from a nested child charge.
	RecordChild RecordType = "Child"
)

// Row is one normalized billing record.
//
// Invariant: a Parent row has ChildTotalRecurring fixed at zero and a
// Child row has TotalRecurring fixed at zero.
// Invariant: InvoiceMonth is derived solely from the invoice date and
// the billing cutoff.
type Row struct {
	InvoiceDate  time.Time
	ServiceStart time.Time
	ServiceEnd   time.Time
	InvoiceMonth string
	InvoiceID    int
	RecordType   RecordType

	BillingItemID int
	HostName      string
	Location      string
	BillingNotes  string
	StorageNotes  string

	CategoryGroup string
	Category      string
	TaxCategory   string
	Description   string
	Memory        string
	OS            string

	Hourly              bool
	Usage               bool
	Hours               int64
	HourlyRate          decimal.Decimal
	TotalRecurring      decimal.Decimal
	NewEstimatedMonthly decimal.Decimal
	TotalOneTime        decimal.Decimal

	InvoiceTotal     decimal.Decimal
	InvoiceRecurring decimal.Decimal
	InvoiceType      string
	RecurringDesc    string

	// Child-only fields. ChildHasUsage distinguishes a parsed zero
	// usage from an absent one.
	ChildBillingItemID  int
	ChildParentProduct  string
	ChildUsage          float64
	ChildHasUsage       bool
	ChildTotalRecurring decimal.Decimal

	// Provider product codes recovered from child product attributes.
	ProductID string
	Division  string
}

// Context carries the per-invoice fields inherited by every row built
// from that invoice.
type Context struct {
	InvoiceID        int
	InvoiceDate      time.Time
	InvoiceMonth     string
	InvoiceType      string
	InvoiceTotal     decimal.Decimal
	InvoiceRecurring decimal.Decimal
}

// NotesFunc resolves a billing item's resource table id to the
// operator notes of the backing storage volume. The second return
// reports whether the volume still exists.
type NotesFunc func(resourceTableID int) (string, bool)

// Recurring-description labels assigned by the service period decision
// table.
const (
	LabelIaaSUsage       = "IaaS Usage"
	LabelPlatformUsage   = "Platform Service Usage"
	LabelIaaSMonthly     = "IaaS Monthly"
	LabelSupportCharges  = "Support Charges"
	VolumeDeletedNote    = "Volume Deleted."
	CategoryGroupDefault = "Other"
)

// Tax categories recognized by the service period decision table.
const (
	TaxIaaS     = "IaaS"
	TaxPaaS     = "PaaS"
	TaxHelpDesk = "HELP DESK"
)
