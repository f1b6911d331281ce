package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestNumberFormatParse(t *testing.T) {
	us := DefaultNumberFormat()
	de := NumberFormat{Grouping: ".", Decimal: ",", Symbol: "€"}

	tests := []struct {
		name   string
		format NumberFormat
		input  string
		want   string
	}{
		{"plain", us, "-4.50", "-4.5"},
		{"grouping", us, "1,234.56", "1234.56"},
		{"symbol", us, "$1,234.56", "1234.56"},
		{"negative symbol", us, "-$12.00", "-12"},
		{"explicit plus", us, "+7", "7"},
		{"whitespace", us, "  42.10 ", "42.1"},
		{"german", de, "1.234,56 €", "1234.56"},
		{"german negative", de, "-0,99", "-0.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.format.Parse(tt.input)
			assert.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestNumberFormatParseErrors(t *testing.T) {
	for _, input := range []string{"", "$", "abc", "1.2.3"} {
		_, err := DefaultNumberFormat().Parse(input)
		assert.Error(t, err, input)
	}
}

func TestNumberFormatValidate(t *testing.T) {
	assert.NoError(t, DefaultNumberFormat().Validate())
	assert.Error(t, NumberFormat{Grouping: ".", Decimal: "."}.Validate())
	assert.Error(t, NumberFormat{}.Validate())
}

func TestDateLayout(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"%m/%d/%Y", "01/02/2006"},
		{"%Y-%m-%d", "2006-01-02"},
		{"%d %b %y", "02 Jan 06"},
		{"%Y-%j", "2006-002"},
		{"01/02/2006", "01/02/2006"},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := DateLayout(tt.format)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := DateLayout("%Q")
	assert.Error(t, err)
	_, err = DateLayout("%Y%")
	assert.Error(t, err)
}
