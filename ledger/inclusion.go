package ledger

import (
	"fmt"
	"regexp"
	"strings"
)

// Action is what an inclusion rule does with a row its pattern matches.
type Action int

const (
	// Include keeps matching rows and drops the others.
	Include Action = iota + 1
	// Exclude drops matching rows and keeps the others.
	Exclude
)

// ParseAction parses "include" or "exclude".
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "include":
		return Include, nil
	case "exclude":
		return Exclude, nil
	}
	return 0, fmt.Errorf("unknown inclusion action %q, expected include or exclude", s)
}

func (a Action) String() string {
	switch a {
	case Include:
		return "include"
	case Exclude:
		return "exclude"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// InclusionRule decides whether a row of an account export is kept, based on
// a pattern searched for in one of its columns.
type InclusionRule struct {
	Column  int
	Pattern *regexp.Regexp
	Action  Action
}

// NewInclusionRule compiles pattern into a rule.
func NewInclusionRule(column int, pattern string, action Action) (InclusionRule, error) {
	if column < 0 {
		return InclusionRule{}, fmt.Errorf("negative column %d", column)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return InclusionRule{}, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return InclusionRule{Column: column, Pattern: re, Action: action}, nil
}

// decide returns the rule's verdict for row. Every rule is decisive: a match
// applies the action, a miss applies its opposite. ok is false for rules with
// an unknown action.
func (r InclusionRule) decide(row []string) (keep, ok bool, err error) {
	if r.Column >= len(row) {
		return false, false, &ColumnError{Column: r.Column, Width: len(row)}
	}

	matched := r.Pattern.MatchString(row[r.Column])
	switch r.Action {
	case Include:
		return matched, true, nil
	case Exclude:
		return !matched, true, nil
	}
	return false, false, nil
}

// Included evaluates rules in order and returns the verdict of the first
// decisive one. Rows pass when there are no rules, and fail when rules exist
// but none of them decides.
func Included(row []string, rules []InclusionRule) (bool, error) {
	if len(rules) == 0 {
		return true, nil
	}
	for _, r := range rules {
		keep, ok, err := r.decide(row)
		if err != nil {
			return false, err
		}
		if ok {
			return keep, nil
		}
	}
	return false, nil
}
