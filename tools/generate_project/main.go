// Sample Project Generator
//
// This tool generates a mymoney project with large account exports for
// performance testing and profiling. Every payee it uses is covered by the
// generated rule store, so a run never stops to prompt.
//
// Usage:
//
//	go run main.go ./sample 202401
//	go run main.go ./sample 202401 50000   # rows per account
//	mymoney run 202401 --dir ./sample --telemetry
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultRows = 10000

type account struct {
	name       string
	dateFormat string
	goLayout   string
	descending bool
}

var (
	accounts = []account{
		{name: "checking", dateFormat: "%m/%d/%Y", goLayout: "01/02/2006", descending: true},
		{name: "card", dateFormat: "%Y-%m-%d", goLayout: "2006-01-02"},
		{name: "savings", dateFormat: "%d.%m.%Y", goLayout: "02.01.2006", descending: true},
	}

	payees = map[string]string{
		"whole foods":   "groceries",
		"safeway":       "groceries",
		"trader joe":    "groceries",
		"shell":         "car",
		"chevron":       "car",
		"bart":          "transit",
		"landlord":      "rent",
		"pg&e":          "utilities",
		"comcast":       "utilities",
		"amazon":        "shopping",
		"netflix":       "fun",
		"spotify":       "fun",
		"blue bottle":   "dining",
		"employer inc":  "income",
		"transfer from": "transfer",
	}
)

type config struct {
	CurrentBalances map[string]string          `yaml:"current_balances"`
	Format          map[string]accountSettings `yaml:"format"`
}

type accountSettings struct {
	Columns    []int  `yaml:"columns"`
	DateFormat string `yaml:"date_format"`
	Order      string `yaml:"order"`
}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: generate_project <dir> <period> [rows]")
		os.Exit(2)
	}
	dir, period := os.Args[1], os.Args[2]

	rows := defaultRows
	if len(os.Args) > 3 {
		if n, err := strconv.Atoi(os.Args[3]); err == nil {
			rows = n
		}
	}

	start, err := time.Parse("200601", period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "period must be YYYYMM: %v\n", err)
		os.Exit(2)
	}

	if err := generate(dir, period, start, rows); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func generate(dir, period string, start time.Time, rows int) error {
	input := filepath.Join(dir, "input", period)
	if err := os.MkdirAll(input, 0o755); err != nil {
		return err
	}

	cfg := config{
		CurrentBalances: make(map[string]string),
		Format:          make(map[string]accountSettings),
	}

	names := make([]string, 0, len(payees))
	for name := range payees {
		names = append(names, name)
	}

	days := start.AddDate(0, 1, 0).Sub(start).Hours() / 24

	for _, acct := range accounts {
		var b strings.Builder
		b.WriteString("Date,Amount,Description\n")

		total := 0
		for i := 0; i < rows; i++ {
			day := i * int(days) / rows
			if acct.descending {
				day = int(days) - 1 - day
			}
			date := start.AddDate(0, 0, day)

			payee := names[rand.Intn(len(names))]
			cents := -(rand.Intn(20000) + 100)
			if payees[payee] == "income" || payees[payee] == "transfer" {
				cents = rand.Intn(500000) + 10000
			}
			total += cents

			fmt.Fprintf(&b, "%s,%s,\"%s #%d\"\n", date.Format(acct.goLayout), formatCents(cents), strings.ToUpper(payee), rand.Intn(9999))
		}

		if err := os.WriteFile(filepath.Join(input, acct.name+".csv"), []byte(b.String()), 0o644); err != nil {
			return err
		}

		order := "ascending"
		if acct.descending {
			order = "descending"
		}
		cfg.Format[acct.name] = accountSettings{Columns: []int{0, 2, 1}, DateFormat: acct.dateFormat, Order: order}
		cfg.CurrentBalances[acct.name] = "$" + formatCents(total)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), data, 0o644); err != nil {
		return err
	}

	var rules strings.Builder
	for payee, category := range payees {
		fmt.Fprintf(&rules, "%s\t%s\n", payee, category)
	}
	return os.WriteFile(filepath.Join(dir, "cats-rule.tsv"), []byte(rules.String()), 0o644)
}

func formatCents(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return fmt.Sprintf("%s%d.%02d", sign, n/100, n%100)
}
