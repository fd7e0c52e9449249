// Package billing defines the raw invoice data model and the JSONL
// decoder for provider export files. Each line of an export file holds
// one complete invoice document with its nested top-level line items
// and child charges.
//
// Monetary amounts decode into decimal values because the provider
// exports fees as decimal strings; binary floats would drift on the
// sums the reconciliation pass depends on.
//
// The parser is designed to handle malformed lines gracefully by
// logging warnings and skipping invalid entries rather than failing.
//
// Example usage:
//
//	p := billing.New(log)
//	invoices, offset, err := p.ParseFile("/path/to/export.jsonl", 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, inv := range invoices {
//	    fmt.Printf("%s %s\n", inv.TypeCode, inv.InvoiceTotalAmount)
//	}
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice type codes assigned by the provider.
const (
	TypeNew           = "NEW"
	TypeRecurring     = "RECURRING"
	TypeCredit        = "CREDIT"
	TypeOneTimeCharge = "ONE-TIME-CHARGE"
)

// Product attribute keys carrying provider product codes on child items.
const (
	// AttrPartNumber keys the provider part number used as the product
	// id in downstream reports.
	AttrPartNumber = "BLUEMIX_PART_NUMBER"

	// AttrServicePlanDivision keys the service plan division code.
	AttrServicePlanDivision = "BLUEMIX_SERVICE_PLAN_DIVISION"
)

// Invoice is one raw invoice document from an export file.
//
// Invariant: ID must be positive.
// Invariant: CreateDate must not be zero value.
// Invariant: TypeCode must be one of the provider type codes.
type Invoice struct {
	ID                          int             `json:"id"`
	CreateDate                  time.Time       `json:"createDate"`
	TypeCode                    string          `json:"typeCode"`
	InvoiceTotalAmount          decimal.Decimal `json:"invoiceTotalAmount"`
	InvoiceTotalRecurringAmount decimal.Decimal `json:"invoiceTotalRecurringAmount"`
	InvoiceTotalOneTimeAmount   decimal.Decimal `json:"invoiceTotalOneTimeAmount"`
	Items                       []LineItem      `json:"invoiceTopLevelItems"`
}

// LineItem is a top-level invoice line: one billed product together
// with its nested child charges (licenses, storage tiers, usage).
type LineItem struct {
	ID                   int             `json:"id"`
	BillingItemID        int             `json:"billingItemId"`
	CategoryCode         string          `json:"categoryCode"`
	Category             Category        `json:"category"`
	Description          string          `json:"description"`
	HostName             string          `json:"hostName"`
	DomainName           string          `json:"domainName"`
	Location             Location        `json:"location"`
	Product              Product         `json:"product"`
	HourlyFlag           bool            `json:"hourlyFlag"`
	UsageChargeFlag      bool            `json:"usageChargeFlag"`
	Notes                string          `json:"notes"`
	TotalRecurringAmount decimal.Decimal `json:"totalRecurringAmount"`
	TotalOneTimeAmount   decimal.Decimal `json:"totalOneTimeAmount"`
	HourlyRecurringFee   decimal.Decimal `json:"hourlyRecurringFee"`
	BillingItem          BillingItem     `json:"billingItem"`
	Children             []ChildItem     `json:"children"`
}

// ChildItem is a sub-charge nested under a top-level line item.
type ChildItem struct {
	ID                 int             `json:"id"`
	BillingItemID      int             `json:"billingItemId"`
	CategoryCode       string          `json:"categoryCode"`
	Category           Category        `json:"category"`
	Description        string          `json:"description"`
	RecurringFee       decimal.Decimal `json:"recurringFee"`
	HourlyRecurringFee decimal.Decimal `json:"hourlyRecurringFee"`
	Product            ChildProduct    `json:"product"`
}

// Category classifies a line item. Group is absent for some product
// lines; consumers default the group name to "Other".
type Category struct {
	Name  string        `json:"name"`
	Group CategoryGroup `json:"group"`
}

// CategoryGroup is the coarse product family a category belongs to.
type CategoryGroup struct {
	Name string `json:"name"`
}

// Location is the datacenter a charge was incurred in.
type Location struct {
	LongName string `json:"longName"`
}

// Product carries the catalog description and tax classification of a
// top-level item.
type Product struct {
	Description string      `json:"description"`
	TaxCategory TaxCategory `json:"taxCategory"`
}

// TaxCategory is the provider tax classification (IaaS, PaaS, HELP DESK).
type TaxCategory struct {
	Name string `json:"name"`
}

// ChildProduct carries the catalog description, category and attribute
// list of a child item. Attributes hold provider product codes as
// key-value pairs.
type ChildProduct struct {
	Description  string             `json:"description"`
	ItemCategory ItemCategory       `json:"itemCategory"`
	Attributes   []ProductAttribute `json:"attributes"`
}

// ItemCategory is the catalog category of a child product.
type ItemCategory struct {
	Name string `json:"name"`
}

// ProductAttribute is one key-value pair on a child product.
type ProductAttribute struct {
	AttributeType AttributeType `json:"attributeType"`
	Value         string        `json:"value"`
}

// AttributeType names a product attribute.
type AttributeType struct {
	KeyName string `json:"keyName"`
}

// BillingItem links a line item to its provisioned resource.
type BillingItem struct {
	// ResourceTableID identifies the backing resource record, such as
	// a network storage volume. Zero when the item has no resource.
	ResourceTableID int `json:"resourceTableId"`
}

// IsZeroAmount reports whether the invoice carries no charges at all.
// Zero-amount invoices appear in exports for fully credited accounts
// and are skipped during batch construction.
func (inv *Invoice) IsZeroAmount() bool {
	return inv.InvoiceTotalAmount.IsZero() && inv.InvoiceTotalRecurringAmount.IsZero()
}

// Validate checks if the invoice satisfies all invariants.
//
// Returns an error if:
//   - ID is not positive
//   - CreateDate is zero value
//   - TypeCode is not a known provider type code
//
// Thread-safety: This method is read-only and thread-safe.
func (inv *Invoice) Validate() error {
	if inv.ID <= 0 {
		return ErrInvalidInvoiceID
	}

	if inv.CreateDate.IsZero() {
		return ErrInvalidCreateDate
	}

	switch inv.TypeCode {
	case TypeNew, TypeRecurring, TypeCredit, TypeOneTimeCharge:
	default:
		return ErrInvalidTypeCode
	}

	return nil
}

// FullHostName assembles "host.domain" for server items. Items without
// a host name (storage, platform services) yield an empty string, and a
// missing domain leaves the bare host.
func (li *LineItem) FullHostName() string {
	if li.HostName == "" {
		return ""
	}
	if li.DomainName == "" {
		return li.HostName
	}
	return li.HostName + "." + li.DomainName
}

// Attribute returns the value of the named product attribute, or an
// empty string when the child does not carry it.
func (c *ChildItem) Attribute(keyName string) string {
	for _, attr := range c.Product.Attributes {
		if attr.AttributeType.KeyName == keyName {
			return attr.Value
		}
	}
	return ""
}
