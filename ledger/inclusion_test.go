package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func mustRule(t *testing.T, column int, pattern string, action Action) InclusionRule {
	t.Helper()
	r, err := NewInclusionRule(column, pattern, action)
	assert.NoError(t, err)
	return r
}

func TestIncludedIsBidirectional(t *testing.T) {
	exclude := []InclusionRule{mustRule(t, 0, "food", Exclude)}
	include := []InclusionRule{mustRule(t, 0, "food", Include)}

	tests := []struct {
		name  string
		rules []InclusionRule
		row   []string
		want  bool
	}{
		{"exclude rule drops match", exclude, []string{"food mart"}, false},
		{"exclude rule keeps miss", exclude, []string{"gas station"}, true},
		{"include rule keeps match", include, []string{"food mart"}, true},
		{"include rule drops miss", include, []string{"gas station"}, false},
		{"no rules keeps row", nil, []string{"anything"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Included(tt.row, tt.rules)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIncludedFirstRuleDecides(t *testing.T) {
	// The second rule would keep "gas station", but the first one already
	// dropped it for not matching.
	rules := []InclusionRule{
		mustRule(t, 1, "debit", Include),
		mustRule(t, 0, "gas", Include),
	}

	got, err := Included([]string{"gas station", "credit"}, rules)
	assert.NoError(t, err)
	assert.False(t, got)
}

func TestIncludedUndecidedRowFails(t *testing.T) {
	rules := []InclusionRule{{Column: 0, Pattern: mustRule(t, 0, "x", Include).Pattern, Action: Action(99)}}

	got, err := Included([]string{"x"}, rules)
	assert.NoError(t, err)
	assert.False(t, got)
}

func TestIncludedColumnOutOfRange(t *testing.T) {
	_, err := Included([]string{"only"}, []InclusionRule{mustRule(t, 3, "x", Include)})
	assert.Error(t, err)
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(" Include ")
	assert.NoError(t, err)
	assert.Equal(t, Include, a)

	a, err = ParseAction("exclude")
	assert.NoError(t, err)
	assert.Equal(t, Exclude, a)

	_, err = ParseAction("ignore")
	assert.Error(t, err)
}
