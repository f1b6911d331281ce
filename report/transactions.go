package report

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/mymoney/ledger"
)

var transactionColumns = []string{"Date", "Amount", "Account", "Description", "Category", "Balance"}

// WriteTransactions writes every entry of rec as an aligned text table.
// Amounts and balances are right-aligned, the other columns left-aligned.
func WriteTransactions(w io.Writer, rec *ledger.Reconciliation) error {
	rows := make([][]string, 0, len(rec.Entries)+1)
	rows = append(rows, transactionColumns)
	for _, t := range rec.Entries {
		rows = append(rows, []string{
			t.Date.String(),
			t.Amount.StringFixed(2),
			t.Account,
			t.Description,
			t.Category,
			t.Balance.StringFixed(2),
		})
	}

	widths := make([]int, len(transactionColumns))
	for _, row := range rows {
		for i, cell := range row {
			if n := runewidth.StringWidth(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if rightAligned(i) {
				cells[i] = runewidth.FillLeft(cell, widths[i])
			} else {
				cells[i] = runewidth.FillRight(cell, widths[i])
			}
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func rightAligned(column int) bool {
	return column == 1 || column == 5
}
