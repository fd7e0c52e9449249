package aggregator

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mjholt/invoice-analyzer/pkg/normalizer"
)

// typeKey groups month totals.
type typeKey struct {
	month string
	typ   string
}

// categoryKey groups category summaries.
type categoryKey struct {
	group    string
	category string
}

// monthTotal accumulates one (month, type) cell.
type monthTotal struct {
	items     int
	recurring decimal.Decimal
	oneTime   decimal.Decimal
}

// monthlySums accumulates one summary row's month columns.
type monthlySums struct {
	description string
	byMonth     map[string]decimal.Decimal
	total       decimal.Decimal
}

// aggregator implements the Aggregator interface.
type aggregator struct {
	mu sync.RWMutex

	months     map[string]bool
	totals     map[typeKey]*monthTotal
	categories map[categoryKey]*monthlySums
	products   map[string]*monthlySums
	parents    []ParentCharge
}

// New creates a new aggregator.
func New() Aggregator {
	a := &aggregator{}
	a.reset()
	return a
}

// Add implements Aggregator.Add.
func (a *aggregator) Add(row normalizer.Row) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.months[row.InvoiceMonth] = true

	switch row.RecordType {
	case normalizer.RecordParent:
		a.addParent(&row)
	case normalizer.RecordChild:
		a.addChild(&row)
	}
}

// AddRows implements Aggregator.AddRows.
func (a *aggregator) AddRows(rows []normalizer.Row) {
	for i := range rows {
		a.Add(rows[i])
	}
}

func (a *aggregator) addParent(row *normalizer.Row) {
	tk := typeKey{row.InvoiceMonth, row.InvoiceType}
	total, exists := a.totals[tk]
	if !exists {
		total = &monthTotal{}
		a.totals[tk] = total
	}
	total.items++
	total.recurring = total.recurring.Add(row.TotalRecurring)
	total.oneTime = total.oneTime.Add(row.TotalOneTime)

	ck := categoryKey{row.CategoryGroup, row.Category}
	cat, exists := a.categories[ck]
	if !exists {
		cat = &monthlySums{byMonth: make(map[string]decimal.Decimal)}
		a.categories[ck] = cat
	}
	cat.byMonth[row.InvoiceMonth] = cat.byMonth[row.InvoiceMonth].Add(row.TotalRecurring)
	cat.total = cat.total.Add(row.TotalRecurring)

	a.parents = append(a.parents, ParentCharge{
		Month:       row.InvoiceMonth,
		Category:    row.Category,
		Description: row.Description,
		HostName:    row.HostName,
		Hourly:      row.Hourly,
		Recurring:   row.TotalRecurring,
	})
}

func (a *aggregator) addChild(row *normalizer.Row) {
	prod, exists := a.products[row.ProductID]
	if !exists {
		prod = &monthlySums{byMonth: make(map[string]decimal.Decimal)}
		a.products[row.ProductID] = prod
	}
	if prod.description == "" {
		prod.description = row.Description
	}
	prod.byMonth[row.InvoiceMonth] = prod.byMonth[row.InvoiceMonth].Add(row.ChildTotalRecurring)
	prod.total = prod.total.Add(row.ChildTotalRecurring)
}

// Months implements Aggregator.Months.
func (a *aggregator) Months() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	months := make([]string, 0, len(a.months))
	for m := range a.months {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

// MonthTotals implements Aggregator.MonthTotals.
func (a *aggregator) MonthTotals() []MonthTotal {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]MonthTotal, 0, len(a.totals))
	for key, total := range a.totals {
		result = append(result, MonthTotal{
			Month:     key.month,
			Type:      key.typ,
			Items:     total.items,
			Recurring: total.recurring,
			OneTime:   total.oneTime,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Month != result[j].Month {
			return result[i].Month < result[j].Month
		}
		return result[i].Type < result[j].Type
	})

	return result
}

// CategorySummaries implements Aggregator.CategorySummaries.
func (a *aggregator) CategorySummaries() []CategorySummary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]CategorySummary, 0, len(a.categories))
	for key, sums := range a.categories {
		result = append(result, CategorySummary{
			CategoryGroup: key.group,
			Category:      key.category,
			ByMonth:       copySums(sums.byMonth),
			Total:         sums.total,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CategoryGroup != result[j].CategoryGroup {
			return result[i].CategoryGroup < result[j].CategoryGroup
		}
		return result[i].Category < result[j].Category
	})

	return result
}

// ProductSummaries implements Aggregator.ProductSummaries.
func (a *aggregator) ProductSummaries() []ProductSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]ProductSummary, 0, len(a.products))
	for id, sums := range a.products {
		result = append(result, ProductSummary{
			ProductID:   id,
			Description: sums.description,
			ByMonth:     copySums(sums.byMonth),
			Total:       sums.total,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ProductID < result[j].ProductID
	})

	return result
}

// TopParents implements Aggregator.TopParents.
func (a *aggregator) TopParents(n int) []ParentCharge {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]ParentCharge, len(a.parents))
	copy(result, a.parents)

	sort.Slice(result, func(i, j int) bool {
		return result[i].Recurring.GreaterThan(result[j].Recurring)
	})

	if n > 0 && n < len(result) {
		result = result[:n]
	}

	return result
}

// Reset implements Aggregator.Reset.
func (a *aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
}

func (a *aggregator) reset() {
	a.months = make(map[string]bool)
	a.totals = make(map[typeKey]*monthTotal)
	a.categories = make(map[categoryKey]*monthlySums)
	a.products = make(map[string]*monthlySums)
	a.parents = nil
}

// copySums clones a month column map so callers cannot alias internal
// state.
func copySums(sums map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(sums))
	for k, v := range sums {
		out[k] = v
	}
	return out
}
