package cli

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	errCaretStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

// lineError is implemented by errors that point at a line of a text file,
// such as a malformed rule in the rule store.
type lineError interface {
	GetLine() int
	Error() string
}

// ErrorRenderer renders errors with terminal styling and source context.
type ErrorRenderer struct {
	source []byte
}

// NewErrorRenderer creates a renderer with source content for context.
func NewErrorRenderer(source []byte) *ErrorRenderer {
	return &ErrorRenderer{source: source}
}

// Render formats a single error with styling and context.
func (r *ErrorRenderer) Render(err error) string {
	var le lineError
	if errors.As(err, &le) && r.source != nil && le.GetLine() > 0 {
		return r.renderWithSourceContext(le.GetLine(), err.Error(), r.source)
	}
	return err.Error()
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf strings.Builder
	for i, err := range errs {
		buf.WriteString(r.Render(err))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

func (r *ErrorRenderer) renderWithSourceContext(line int, message string, sourceContent []byte) string {
	var buf strings.Builder

	buf.WriteString(errorStyle.Render(message))
	buf.WriteString("\n\n")

	sourceLines := strings.Split(string(sourceContent), "\n")

	startLine := line - 3
	endLine := line

	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(sourceLines) {
		endLine = len(sourceLines) - 1
	}

	for i := startLine; i <= endLine; i++ {
		text := strings.ReplaceAll(strings.TrimRight(sourceLines[i], "\r"), "\t", "→")
		buf.WriteString("   ")
		buf.WriteString(errContextStyle.Render(text))
		buf.WriteByte('\n')

		if i == line-1 {
			buf.WriteString("   ")
			buf.WriteString(errCaretStyle.Render(strings.Repeat("^", max(len([]rune(text)), 1))))
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}
