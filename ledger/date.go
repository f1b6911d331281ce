package ledger

import (
	"fmt"
	"strings"
	"time"
)

// strptimeDirectives maps the directives accepted in date_format templates to
// Go layout elements.
var strptimeDirectives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'j': "002",
	'b': "Jan",
	'h': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "pm", // rows are lower-cased before parsing
	'%': "%",
}

// DateLayout converts a strptime-style template such as "%m/%d/%Y" to a Go
// time layout. Templates without a '%' are returned unchanged and treated as
// Go layouts.
func DateLayout(format string) (string, error) {
	if !strings.Contains(format, "%") {
		return format, nil
	}

	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("date format %q ends with a lone %%", format)
		}
		i++
		elem, ok := strptimeDirectives[format[i]]
		if !ok {
			return "", fmt.Errorf("unsupported directive %%%c in date format %q", format[i], format)
		}
		b.WriteString(elem)
	}
	return b.String(), nil
}

// parseRowDate parses raw with layout, or as an ISO date when layout is empty.
// The error is left unwrapped; RowError already names the field and value.
func parseRowDate(raw, layout string) (Date, error) {
	if layout == "" {
		layout = isoLayout
	}
	t, err := time.Parse(layout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, err
	}
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}, nil
}
