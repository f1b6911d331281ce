package rules

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/robinvdvleuten/mymoney/telemetry"
)

// DefaultFilename is the rule store name used when the project config does not
// name one.
const DefaultFilename = "cats-rule.tsv"

// MalformedRuleError is returned when a line of the rule store cannot be turned
// into a rule.
type MalformedRuleError struct {
	Filename string
	Line     int    // 1-based
	Text     string // the raw line, without its line ending
	Err      error  // underlying cause, nil when the field count is wrong
}

func (e *MalformedRuleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s:%d: malformed rule %q: %v", e.Filename, e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("%s:%d: malformed rule %q: expected pattern<TAB>category", e.Filename, e.Line, e.Text)
}

func (e *MalformedRuleError) Unwrap() error {
	return e.Err
}

// GetLine returns the 1-based line number of the offending rule.
func (e *MalformedRuleError) GetLine() int {
	return e.Line
}

// Store is the append-only TSV file rules are persisted to, one
// pattern<TAB>category pair per line.
type Store struct {
	path string
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Load reads every rule from the store. A missing store is created empty.
func (s *Store) Load(ctx context.Context) (List, error) {
	timer := telemetry.StartTimer(ctx, "rules.load")
	defer timer.End()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to create rule store: %w", err)
		}
		log.FromContext(ctx).Info("created empty rule store", "path", s.path)
		return List{}, f.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rule store: %w", err)
	}

	return Parse(s.path, data)
}

// Parse decodes rule store contents. filename is only used for error messages.
func Parse(filename string, data []byte) (List, error) {
	var list List

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")

		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, &MalformedRuleError{Filename: filename, Line: lineNo, Text: line}
		}

		r, err := New(fields[0], fields[1])
		if err != nil {
			return nil, &MalformedRuleError{Filename: filename, Line: lineNo, Text: line, Err: err}
		}
		list = append(list, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", filename, err)
	}

	return list, nil
}

// Append writes rules to the end of the store in order, creating the file if
// needed. The lines are written with a single write call.
func (s *Store) Append(ctx context.Context, rules List) error {
	if len(rules) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, r := range rules {
		buf.WriteString(r.Pattern)
		buf.WriteByte('\t')
		buf.WriteString(r.Category)
		buf.WriteByte('\n')
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open rule store: %w", err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append rules: %w", err)
	}

	log.FromContext(ctx).Debug("appended rules", "path", s.path, "count", len(rules))

	return f.Close()
}
