// Package output provides styling helpers for terminal output.
package output

import (
	"io"

	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
)

// Styles renders styled strings for a particular writer. Writers that are not
// terminals get plain text.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates a new Styles instance for the given writer.
func NewStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w),
	}
}

// Success returns a styled success string (green + bold).
func (s *Styles) Success(text string) string {
	return s.output.String(text).Foreground(s.output.Color("2")).Bold().String()
}

// Error returns a styled error string (red + bold).
func (s *Styles) Error(text string) string {
	return s.output.String(text).Foreground(s.output.Color("1")).Bold().String()
}

// FilePath returns a styled file path (cyan).
func (s *Styles) FilePath(text string) string {
	return s.output.String(text).Foreground(s.output.Color("6")).String()
}

// Account returns a styled account name (yellow).
func (s *Styles) Account(text string) string {
	return s.output.String(text).Foreground(s.output.Color("3")).String()
}

// Category returns a styled category label (blue). Uncategorized entries are
// shown dimmed.
func (s *Styles) Category(text string) string {
	if text == "" {
		return s.Dim("uncategorized")
	}
	return s.output.String(text).Foreground(s.output.Color("4")).String()
}

// Amount renders an amount with two decimals, outflows in red and inflows in
// green.
func (s *Styles) Amount(amount decimal.Decimal) string {
	color := "2"
	if amount.IsNegative() {
		color = "1"
	}
	return s.output.String(amount.StringFixed(2)).Foreground(s.output.Color(color)).String()
}

// Keyword returns a styled keyword (bold).
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

// Dim returns dimmed text (for secondary information).
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Warning returns a styled warning (yellow + bold).
func (s *Styles) Warning(text string) string {
	return s.output.String(text).Foreground(s.output.Color("3")).Bold().String()
}
