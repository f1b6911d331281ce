package categorize

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
)

// LinePrompter asks questions over a line-oriented text stream. End of input
// counts as quitting.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter reads answers from r and writes prompts to w.
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(r), out: w}
}

// Ask prints q and reads one line. Answers rejected by q.Validate are
// reported and asked again.
func (p *LinePrompter) Ask(ctx context.Context, q Question) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if q.Given != "" {
			_, _ = fmt.Fprintln(p.out, "Given:")
			for _, line := range strings.Split(q.Given, "\n") {
				_, _ = fmt.Fprintf(p.out, "  %s\n", hintStyle.Render(line))
			}
		}
		_, _ = fmt.Fprintln(p.out, titleStyle.Render(q.Title))
		if q.Description != "" {
			_, _ = fmt.Fprintln(p.out, hintStyle.Render(q.Description))
		}
		_, _ = fmt.Fprint(p.out, "=> ")

		line, err := p.in.ReadString('\n')
		if errors.Is(err, io.EOF) && line == "" {
			_, _ = fmt.Fprintln(p.out)
			return "", ErrCancelled
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read answer: %w", err)
		}

		answer := strings.TrimRight(line, "\r\n")
		if q.Validate != nil {
			if err := q.Validate(strings.ToLower(answer)); err != nil {
				_, _ = fmt.Fprintln(p.out, errStyle.Render(err.Error()))
				continue
			}
		}
		return answer, nil
	}
}
