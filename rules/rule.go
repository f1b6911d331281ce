// Package rules holds the learned categorization rules: an ordered list of
// pattern/category pairs, the per-run rule set that layers rules learned in the
// current session over the ones read from disk, and the append-only TSV store
// they are persisted to.
//
// Matching is a substring regular expression search against an already
// lower-cased description. Within a list the first matching rule wins, and
// session rules always take precedence over persisted rules:
//
//	set := rules.NewSet(persisted)
//	if rule, ok := set.Lookup("coffee shop purchase"); ok {
//	    fmt.Println(rule.Category)
//	}
package rules

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnrepresentable is returned when a pattern or category contains a tab or
// newline, which the store format cannot encode.
var ErrUnrepresentable = errors.New("tab and newline characters cannot be stored in a rule")

// Rule maps descriptions matching Pattern to Category. An empty Category is a
// valid rule that leaves matching transactions uncategorized.
type Rule struct {
	Pattern  string
	Category string

	re *regexp.Regexp
}

// New compiles pattern and returns a rule for it.
func New(pattern, category string) (Rule, error) {
	if strings.ContainsAny(pattern, "\t\n\r") || strings.ContainsAny(category, "\t\n\r") {
		return Rule{}, ErrUnrepresentable
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	return Rule{Pattern: pattern, Category: category, re: re}, nil
}

// MustNew is like New but panics on error. Use only in tests.
func MustNew(pattern, category string) Rule {
	r, err := New(pattern, category)
	if err != nil {
		panic(err)
	}
	return r
}

// Match reports whether the rule's pattern occurs anywhere in description.
func (r Rule) Match(description string) bool {
	if r.re == nil {
		r.re = regexp.MustCompile(r.Pattern)
	}
	return r.re.MatchString(description)
}

func (r Rule) String() string {
	return r.Pattern + "\t" + r.Category
}

// List is an ordered sequence of rules. Earlier rules shadow later ones.
type List []Rule

// Lookup returns the first rule matching description.
func (l List) Lookup(description string) (Rule, bool) {
	for _, r := range l {
		if r.Match(description) {
			return r, true
		}
	}
	return Rule{}, false
}

// Shadowed returns the rules that can never match because an earlier rule in
// the list has the identical pattern.
func (l List) Shadowed() List {
	seen := make(map[string]bool, len(l))
	var out List
	for _, r := range l {
		if seen[r.Pattern] {
			out = append(out, r)
			continue
		}
		seen[r.Pattern] = true
	}
	return out
}

// Appender persists rules. It is implemented by *Store.
type Appender interface {
	Append(ctx context.Context, rules List) error
}

// Set is the rule set of a single run. Session rules are the ones learned
// during the run; they are checked before the persisted ones and stay pending
// until flushed.
type Set struct {
	Session   List
	Persisted List

	flushed int
}

// NewSet creates a set over rules loaded from the store.
func NewSet(persisted List) *Set {
	return &Set{Persisted: persisted}
}

// Lookup checks session rules first, then persisted rules.
func (s *Set) Lookup(description string) (Rule, bool) {
	if r, ok := s.Session.Lookup(description); ok {
		return r, true
	}
	return s.Persisted.Lookup(description)
}

// Learn adds a session rule. It is scheduled for persistence with the next Flush.
func (s *Set) Learn(r Rule) {
	s.Session = append(s.Session, r)
}

// Pending returns the session rules that have not been flushed yet.
func (s *Set) Pending() List {
	return s.Session[s.flushed:]
}

// Flush appends pending session rules to dst. Rules stay in the session list,
// so they keep their precedence for the remainder of the run.
func (s *Set) Flush(ctx context.Context, dst Appender) error {
	pending := s.Pending()
	if len(pending) == 0 {
		return nil
	}
	if err := dst.Append(ctx, pending); err != nil {
		return err
	}
	s.flushed = len(s.Session)
	return nil
}
