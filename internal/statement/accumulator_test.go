package statement

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulate(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected []string
	}{
		{
			name:     "comments blanks and two statements",
			lines:    []string{"-- comment", "", "INSERT INTO t", "VALUES (1);", "SET x=1;"},
			expected: []string{"\nINSERT INTO t\nVALUES (1)", "\nSET x=1"},
		},
		{
			name:     "comment in the middle of a statement is dropped",
			lines:    []string{"SELECT a,", "-- b,", "c FROM t;"},
			expected: []string{"\nSELECT a,\nc FROM t"},
		},
		{
			name:     "indented comment is kept",
			lines:    []string{"SELECT 1", "  -- not a comment line", ";"},
			expected: []string{"\nSELECT 1\n  -- not a comment line\n"},
		},
		{
			name:     "terminator followed by whitespace does not end the statement",
			lines:    []string{"SELECT 1; ", "SELECT 2;"},
			expected: []string{"\nSELECT 1; \nSELECT 2"},
		},
		{
			name:     "unterminated tail is dropped",
			lines:    []string{"SET a=b;", "CREATE TABLE t (id INT)"},
			expected: []string{"\nSET a=b"},
		},
		{
			name:     "lone terminator yields nothing",
			lines:    []string{";", "  ;"},
			expected: nil,
		},
		{
			name:     "whitespace only lines are skipped",
			lines:    []string{"   ", "\t", "SELECT 1;"},
			expected: []string{"\nSELECT 1"},
		},
		{
			name:     "no input",
			lines:    nil,
			expected: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Accumulate(tt.lines))
		})
	}
}

func TestAccumulator_Pending(t *testing.T) {
	var acc Accumulator
	_, ok := acc.Add("SELECT 1;")
	assert.True(t, ok)
	assert.Equal(t, "", acc.Pending())

	_, ok = acc.Add("CREATE TABLE t (")
	assert.False(t, ok)
	_, ok = acc.Add("  id INT)")
	assert.False(t, ok)
	assert.Equal(t, "\nCREATE TABLE t (\n  id INT)", acc.Pending())
}

// Test that every yielded statement is non-empty and its lines appear, in
// order, among the non-comment non-blank input lines
func TestAccumulate_OutputIsOrderedSubsequence(t *testing.T) {
	lines := []string{
		"-- header",
		"CREATE TABLE src (",
		"  id INT",
		") WITH ('connector' = 'datagen');",
		"",
		"SET 'parallelism.default' = '2';",
		"-- sink",
		"INSERT INTO dst",
		"SELECT * FROM src;",
		"SELECT 1",
	}
	var kept []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" && !strings.HasPrefix(l, "--") {
			kept = append(kept, l)
		}
	}

	out := Accumulate(lines)
	assert.Len(t, out, 3)

	pos := 0
	for _, stmt := range out {
		assert.NotEmpty(t, strings.TrimSpace(stmt))
		for _, l := range strings.Split(strings.TrimPrefix(stmt, "\n"), "\n") {
			for pos < len(kept) && strings.TrimSuffix(kept[pos], ";") != l {
				pos++
			}
			if assert.Less(t, pos, len(kept), "line %q out of order", l) {
				pos++
			}
		}
	}
}
