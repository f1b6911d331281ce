package report

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/mymoney/ledger"
)

const (
	categoryWidth = 16
	accountWidth  = 11
)

type breakdownGroup struct {
	Header string
	Total  string
	Lines  []string
}

// groups renders the category groups of rec in category order, totals
// prefixed with symbol.
func groups(rec *ledger.Reconciliation, symbol string) []breakdownGroup {
	var out []breakdownGroup
	for _, g := range ledger.ByCategory(rec.Entries) {
		bg := breakdownGroup{
			Header: runewidth.FillRight(categoryTitle(g.Category), categoryWidth),
			Total:  fmt.Sprintf("%s%10s", symbol, g.Total.StringFixed(2)),
		}
		for _, t := range g.Entries {
			bg.Lines = append(bg.Lines, entryLine(t))
		}
		out = append(out, bg)
	}
	return out
}

func categoryTitle(category string) string {
	if category == "" {
		return "Uncategorized"
	}
	r := []rune(category)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func entryLine(t ledger.Transaction) string {
	return fmt.Sprintf("%s    %9s    %s %s",
		t.Date, t.Amount.StringFixed(2), runewidth.FillRight(t.Account, accountWidth), t.Description)
}

func (r *Renderer) title() string {
	return "Spending breakdown for " + r.period
}

// BreakdownMarkdown writes the entries of rec grouped by category, each group
// headed by its total.
func (r *Renderer) BreakdownMarkdown(w io.Writer, rec *ledger.Reconciliation) error {
	var b strings.Builder
	b.WriteString("# " + r.title() + "\n")
	for _, g := range groups(rec, r.symbol) {
		fmt.Fprintf(&b, "\n\n## %s %s\n\n```\n", g.Header, g.Total)
		for _, line := range g.Lines {
			b.WriteString("        " + line + "\n")
		}
		b.WriteString("```\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

var breakdownTemplate = template.Must(template.New("breakdown").Funcs(template.FuncMap{
	"nbsp": func(s string) template.HTML {
		return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), " ", "&nbsp;"))
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>{{.Title}}</title>
	<style>
		body { font-family: sans-serif; margin: 2rem; }
		h2 { margin: 2.2rem 0 0 0; font-size: 1rem; }
		code { font-family: Consolas, monospace; }
		.codeblock { background-color: #c0c0c0; border-radius: 6px; padding: 6px; }
		pre { overflow-x: scroll; padding: 1rem; margin: 0; }
	</style>
</head>
<body>
	<h1>{{.Title}}</h1>
{{- range .Groups}}

	<h2><code>{{nbsp .Header}}&nbsp;{{nbsp .Total}}</code></h2>
	<div class="codeblock"><pre><code>
{{- range .Lines}}
   {{.}}
{{- end}}
</code></pre></div>
{{- end}}
</body>
</html>
`))

// BreakdownHTML writes the breakdown as a standalone HTML page.
func (r *Renderer) BreakdownHTML(w io.Writer, rec *ledger.Reconciliation) error {
	return breakdownTemplate.Execute(w, struct {
		Title  string
		Groups []breakdownGroup
	}{r.title(), groups(rec, r.symbol)})
}

// Summary returns the average monthly spending and statement ending balance
// banner.
func (r *Renderer) Summary(rec *ledger.Reconciliation) string {
	avg, _ := ledger.MonthlySpendingAverage(rec.Entries, r.excluded)

	rule := strings.Repeat("-", 39)
	return fmt.Sprintf("\n%s\n Average monthly spending: %s\n Statement ending balance: %s\n%s\n",
		rule, r.currency(avg), r.currency(rec.Ending()), rule)
}

// currency formats d with the renderer's locale grouping and symbol.
func (r *Renderer) currency(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + r.symbol + r.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}
