package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// CategoryTotal groups the transactions of one category.
type CategoryTotal struct {
	// Category is empty for the uncategorized group.
	Category string
	Total    decimal.Decimal
	Entries  []Transaction
}

// ByCategory groups entries by category. Groups are ordered by category
// name, the uncategorized group first; entries within a group by date.
func ByCategory(entries []Transaction) []CategoryTotal {
	groups := make(map[string]*CategoryTotal)
	for _, t := range entries {
		g, ok := groups[t.Category]
		if !ok {
			g = &CategoryTotal{Category: t.Category, Total: decimal.Zero}
			groups[t.Category] = g
		}
		g.Total = g.Total.Add(t.Amount)
		g.Entries = append(g.Entries, t)
	}

	names := maps.Keys(groups)
	slices.Sort(names)

	out := make([]CategoryTotal, 0, len(names))
	for _, name := range names {
		g := groups[name]
		SortByDate(g.Entries)
		out = append(out, *g)
	}
	return out
}

// MonthlyNet sums entries per YYYY-MM month: the net income (or loss) of
// each month.
func MonthlyNet(entries []Transaction) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal)
	for _, t := range entries {
		month := t.Date.MonthKey()
		net[month] = net[month].Add(t.Amount)
	}
	return net
}

// Months returns the keys of a per-month map in chronological order.
func Months(perMonth map[string]decimal.Decimal) []string {
	months := maps.Keys(perMonth)
	slices.Sort(months)
	return months
}

// SpendingPoint is the spending of one category in one month. Outflows are
// positive.
type SpendingPoint struct {
	Month    string
	Category string
	Amount   decimal.Decimal
}

// MonthlySpending sums spending per month and category, leaving out the
// excluded categories. Points are ordered by month, then category.
func MonthlySpending(entries []Transaction, excluded map[string]bool) []SpendingPoint {
	type key struct{ month, category string }

	sums := make(map[key]decimal.Decimal)
	for _, t := range spending(entries, excluded) {
		k := key{t.Date.MonthKey(), t.Category}
		sums[k] = sums[k].Add(t.Amount)
	}

	points := make([]SpendingPoint, 0, len(sums))
	for k, amount := range sums {
		points = append(points, SpendingPoint{Month: k.month, Category: k.category, Amount: amount})
	}
	slices.SortFunc(points, func(a, b SpendingPoint) int {
		if c := strings.Compare(a.Month, b.Month); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})
	return points
}

// MonthlySpendingAverage returns the mean monthly spending, leaving out the
// excluded categories (typically income and transfers). Spending is the
// negated amount, so outflows count positively. ok is false when no month has
// any spending left after filtering.
func MonthlySpendingAverage(entries []Transaction, excluded map[string]bool) (avg decimal.Decimal, ok bool) {
	perMonth := make(map[string]decimal.Decimal)
	for _, t := range spending(entries, excluded) {
		month := t.Date.MonthKey()
		perMonth[month] = perMonth[month].Add(t.Amount)
	}

	if len(perMonth) == 0 {
		return decimal.Zero, false
	}

	total := decimal.Zero
	for _, sum := range perMonth {
		total = total.Add(sum)
	}
	return total.Div(decimal.NewFromInt(int64(len(perMonth)))), true
}

// spending filters out excluded categories and negates the amounts.
func spending(entries []Transaction, excluded map[string]bool) []Transaction {
	out := make([]Transaction, 0, len(entries))
	for _, t := range entries {
		if excluded[t.Category] {
			continue
		}
		t.Amount = t.Amount.Neg()
		out = append(out, t)
	}
	return out
}
