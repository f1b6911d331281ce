package report

import (
	"encoding/csv"
	"io"

	"github.com/robinvdvleuten/mymoney/ledger"
)

// WriteBalance writes the running balance after every entry, starting with
// the opening balance.
func WriteBalance(w io.Writer, rec *ledger.Reconciliation) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"date", "account", "balance"})
	_ = cw.Write([]string{rec.Opening.Date.String(), rec.Opening.Account, rec.Opening.Balance.StringFixed(2)})
	for _, t := range rec.Entries {
		_ = cw.Write([]string{t.Date.String(), t.Account, t.Balance.StringFixed(2)})
	}
	cw.Flush()
	return cw.Error()
}

// WriteMonthlyNet writes the net income of every month.
func WriteMonthlyNet(w io.Writer, rec *ledger.Reconciliation) error {
	net := ledger.MonthlyNet(rec.Entries)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"month", "net"})
	for _, month := range ledger.Months(net) {
		_ = cw.Write([]string{month, net[month].StringFixed(2)})
	}
	cw.Flush()
	return cw.Error()
}

// WriteSpending writes spending per month and category, leaving out the
// excluded categories. Outflows are positive.
func WriteSpending(w io.Writer, rec *ledger.Reconciliation, excluded map[string]bool) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"month", "category", "amount"})
	for _, p := range ledger.MonthlySpending(rec.Entries, excluded) {
		_ = cw.Write([]string{p.Month, p.Category, p.Amount.StringFixed(2)})
	}
	cw.Flush()
	return cw.Error()
}
