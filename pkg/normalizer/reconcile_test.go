package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjholt/invoice-analyzer/pkg/describe"
)

func storageParent(month string, billingItemID int, charge string) Row {
	return Row{
		RecordType:     RecordParent,
		InvoiceMonth:   month,
		BillingItemID:  billingItemID,
		CategoryGroup:  describe.GroupStorageLayer,
		Category:       "Object Storage",
		TotalRecurring: dec(charge),
	}
}

func storageChildRow(month string, billingItemID int, charge string) Row {
	return Row{
		RecordType:          RecordChild,
		InvoiceMonth:        month,
		BillingItemID:       billingItemID,
		CategoryGroup:       describe.GroupStorageLayer,
		Category:            "Object Storage",
		ChildTotalRecurring: dec(charge),
	}
}

func TestReconcile(t *testing.T) {
	rows := []Row{
		storageParent("2022-06", 100, "50.00"),
		storageChildRow("2022-06", 100, "2.02"),
		storageChildRow("2022-06", 100, "1.50"),
		// Same billing item in another month reconciles separately.
		storageParent("2022-07", 100, "50.00"),
		storageChildRow("2022-07", 100, "3.00"),
		// Non-matching parent keeps the provider amount.
		{
			RecordType:     RecordParent,
			InvoiceMonth:   "2022-06",
			BillingItemID:  200,
			CategoryGroup:  "Compute",
			Category:       "Server",
			TotalRecurring: dec("500.00"),
		},
		storageChildRow("2022-06", 200, "35.00"),
		// Matching parent without children keeps the provider amount.
		storageParent("2022-06", 300, "12.00"),
	}

	out := Reconcile(rows, ObjectStorageParents)

	require.Len(t, out, len(rows))
	assert.True(t, out[0].TotalRecurring.Equal(dec("3.52")),
		"reconciled parent = %s, want 3.52", out[0].TotalRecurring)
	assert.True(t, out[3].TotalRecurring.Equal(dec("3.00")),
		"other month parent = %s, want 3.00", out[3].TotalRecurring)
	assert.True(t, out[5].TotalRecurring.Equal(dec("500.00")),
		"non-matching parent must keep its charge")
	assert.True(t, out[7].TotalRecurring.Equal(dec("12.00")),
		"childless parent must keep its charge")

	// Input rows are not modified.
	assert.True(t, rows[0].TotalRecurring.Equal(dec("50.00")))
}

func TestReconcileIdempotence(t *testing.T) {
	rows := []Row{
		storageParent("2022-06", 100, "50.00"),
		storageChildRow("2022-06", 100, "2.02"),
		storageChildRow("2022-06", 100, "1.50"),
		storageParent("2022-07", 100, "40.00"),
		storageChildRow("2022-07", 100, "3.00"),
	}

	once := Reconcile(rows, ObjectStorageParents)
	twice := Reconcile(once, ObjectStorageParents)

	require.Len(t, twice, len(once))
	for i := range once {
		assert.True(t, once[i].TotalRecurring.Equal(twice[i].TotalRecurring),
			"row %d: %s != %s", i, once[i].TotalRecurring, twice[i].TotalRecurring)
		assert.True(t, once[i].ChildTotalRecurring.Equal(twice[i].ChildTotalRecurring))
	}
}

func TestReconcileEmptyInput(t *testing.T) {
	out := Reconcile(nil, ObjectStorageParents)
	assert.Empty(t, out)

	out = Reconcile([]Row{}, func(*Row) bool { return true })
	assert.Empty(t, out)
}
