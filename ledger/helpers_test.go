package ledger

import "github.com/shopspring/decimal"

func txn(date, amount, account, description, category string) Transaction {
	return Transaction{
		Date:        MustParseDate(date),
		Amount:      decimal.RequireFromString(amount),
		Account:     account,
		Description: description,
		Category:    category,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
