package normalizer

import (
	"github.com/shopspring/decimal"

	"github.com/mjholt/invoice-analyzer/pkg/describe"
)

// chargeKey groups child charges under their parent within one
// invoice month.
type chargeKey struct {
	invoiceMonth  string
	billingItemID int
}

// Reconcile re-derives the recurring charge of matching Parent rows as
// the sum of their children's adjusted charges per invoice month.
//
// The provider's top-level amount for contractually discounted product
// lines does not reflect the per-child rate override, so the parent is
// corrected to stay additively consistent with its children.
//
// Parameters:
//   - rows: the full normalized row set
//   - predicate: selects the Parent rows to correct (historically the
//     classic object storage line items)
//
// Returns a corrected copy; the input is not modified. Applying
// Reconcile twice yields the same result as applying it once, since
// the second pass recomputes identical sums from unchanged children.
func Reconcile(rows []Row, predicate func(*Row) bool) []Row {
	sums := make(map[chargeKey]decimal.Decimal)
	for i := range rows {
		if rows[i].RecordType != RecordChild {
			continue
		}
		key := chargeKey{rows[i].InvoiceMonth, rows[i].BillingItemID}
		sums[key] = sums[key].Add(rows[i].ChildTotalRecurring)
	}

	out := make([]Row, len(rows))
	copy(out, rows)

	for i := range out {
		row := &out[i]
		if row.RecordType != RecordParent || !predicate(row) {
			continue
		}
		sum, ok := sums[chargeKey{row.InvoiceMonth, row.BillingItemID}]
		if !ok {
			continue
		}
		row.TotalRecurring = sum
	}

	return out
}

// ObjectStorageParents selects the classic object storage parents
// whose charges need the reconciliation correction.
func ObjectStorageParents(row *Row) bool {
	return row.CategoryGroup == describe.GroupStorageLayer && row.Category == "Object Storage"
}
