package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func sampleEntries() []Transaction {
	return []Transaction{
		txn("2024-01-03", "2000", "checking", "salary", "income"),
		txn("2024-01-05", "-4.50", "checking", "coffee shop", "dining"),
		txn("2024-01-02", "-60", "card", "shell fuel", "car"),
		txn("2024-01-20", "-500", "checking", "to savings", "transfer"),
		txn("2024-02-01", "-10", "card", "mystery", ""),
		txn("2024-02-03", "-15.50", "checking", "bistro", "dining"),
	}
}

func TestByCategory(t *testing.T) {
	groups := ByCategory(sampleEntries())

	var names []string
	for _, g := range groups {
		names = append(names, g.Category)
	}
	assert.Equal(t, []string{"", "car", "dining", "income", "transfer"}, names)

	dining := groups[2]
	assert.True(t, dining.Total.Equal(dec("-20")))
	assert.Equal(t, 2, len(dining.Entries))
	assert.Equal(t, "coffee shop", dining.Entries[0].Description)
	assert.Equal(t, "bistro", dining.Entries[1].Description)

	assert.Equal(t, "mystery", groups[0].Entries[0].Description)
}

func TestByCategoryEmpty(t *testing.T) {
	assert.Equal(t, 0, len(ByCategory(nil)))
}

func TestMonthlyNet(t *testing.T) {
	net := MonthlyNet(sampleEntries())

	assert.Equal(t, []string{"2024-01", "2024-02"}, Months(net))
	assert.True(t, net["2024-01"].Equal(dec("1435.50")))
	assert.True(t, net["2024-02"].Equal(dec("-25.50")))
}

func TestMonthlySpendingAverage(t *testing.T) {
	excluded := map[string]bool{"income": true, "transfer": true}

	avg, ok := MonthlySpendingAverage(sampleEntries(), excluded)
	assert.True(t, ok)
	// January: 4.50 + 60 = 64.50, February: 10 + 15.50 = 25.50
	assert.True(t, avg.Equal(dec("45")), "got %s", avg)
}

func TestMonthlySpendingAverageNoData(t *testing.T) {
	entries := []Transaction{txn("2024-01-03", "2000", "checking", "salary", "income")}

	avg, ok := MonthlySpendingAverage(entries, map[string]bool{"income": true})
	assert.False(t, ok)
	assert.True(t, avg.IsZero())
}

func TestMonthlySpending(t *testing.T) {
	points := MonthlySpending(sampleEntries(), map[string]bool{"income": true, "transfer": true})

	assert.Equal(t, 4, len(points))
	assert.Equal(t, SpendingPoint{Month: "2024-01", Category: "car", Amount: points[0].Amount}, points[0])
	assert.True(t, points[0].Amount.Equal(dec("60")))
	assert.Equal(t, "dining", points[1].Category)
	assert.Equal(t, "2024-02", points[2].Month)
	assert.Equal(t, "", points[2].Category)
	assert.True(t, points[3].Amount.Equal(dec("15.50")))
}
