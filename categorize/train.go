package categorize

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/robinvdvleuten/mymoney/rules"
)

// TrainingError is returned for a training file line that is not
// category<TAB>description.
type TrainingError struct {
	Line int
	Text string
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training line %d: expected category<TAB>description, got %q", e.Line, e.Text)
}

// GetLine returns the 1-based line number of the offending line.
func (e *TrainingError) GetLine() int {
	return e.Line
}

// Train categorizes every description of a training file, offering its
// labelled category as the hint. The first line is a header and is skipped.
// It returns the number of descriptions read. Learned rules end up in set;
// flushing them is up to the caller, including when ErrCancelled is returned.
func (c *Categorizer) Train(ctx context.Context, set *rules.Set, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	count := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}

		line := strings.ToLower(strings.TrimRight(scanner.Text(), " \t\r\n"))
		if line == "" {
			continue
		}

		category, description, ok := strings.Cut(line, "\t")
		if !ok || strings.Contains(description, "\t") {
			return count, &TrainingError{Line: lineNo, Text: line}
		}

		if _, err := c.Categorize(ctx, set, Query{Description: description, Hint: category}); err != nil {
			return count, err
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("failed to read training file: %w", err)
	}
	return count, nil
}
