package statement

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScript = `-- source
CREATE TABLE orders (
  id BIGINT,
  amount DOUBLE
) WITH ('connector' = 'datagen');

SET 'pipeline.name' = 'orders-job';
SET;

INSERT INTO totals
SELECT id, SUM(amount) FROM orders GROUP BY id;
INSERT OVERWRITE archive SELECT * FROM orders;
EXPLAIN SET 'a' = 'b';
`

func TestParse(t *testing.T) {
	script, err := Parse(splitLines(sampleScript))
	require.NoError(t, err)
	require.Len(t, script.Statements, 6)

	kinds := make([]Kind, 0, len(script.Statements))
	for _, s := range script.Statements {
		kinds = append(kinds, s.Kind())
	}
	assert.Equal(t, []Kind{Generic, Set, Set, InsertInto, InsertOverwrite, Explain}, kinds)
	assert.Equal(t, []string{"pipeline.name", "orders-job"}, script.Statements[1].Operands())
	assert.Equal(t, 0, script.Statements[2].NumOperands())
	assert.Equal(t, "INSERT INTO totals\nSELECT id, SUM(amount) FROM orders GROUP BY id", script.Statements[3].Text())
	assert.Equal(t, "EXPLAIN PLAN FOR a b", script.Statements[5].Text())
	assert.False(t, script.HasPending())
}

func TestParse_Pending(t *testing.T) {
	script, err := Parse([]string{"SELECT 1;", "SELECT 2"})
	require.NoError(t, err)
	assert.Len(t, script.Statements, 1)
	assert.True(t, script.HasPending())
	assert.Equal(t, "\nSELECT 2", script.Pending)
}

func TestParse_ClassificationErrorNamesStatement(t *testing.T) {
	_, err := Parse([]string{"SELECT 1;", "EXPLAIN SELECT * FROM t;"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExplainArity)
	assert.Contains(t, err.Error(), "EXPLAIN SELECT * FROM t")
}

func TestReadLines(t *testing.T) {
	dir := t.TempDir()

	t.Run("crlf and bom", func(t *testing.T) {
		path := filepath.Join(dir, "crlf.sql")
		require.NoError(t, os.WriteFile(path, []byte("\ufeffSET a=b;\r\nSELECT 1;\r\n"), 0644))
		lines, err := ReadLines(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"SET a=b;", "SELECT 1;"}, lines)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.sql")
		require.NoError(t, os.WriteFile(path, nil, 0644))
		lines, err := ReadLines(path)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadLines(filepath.Join(dir, "missing.sql"))
		assert.Error(t, err)
	})
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.sql")
	require.NoError(t, os.WriteFile(path, []byte(sampleScript), 0644))

	script, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, script.Statements, 6)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
