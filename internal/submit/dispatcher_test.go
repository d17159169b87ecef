package submit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlsubmit/internal/statement"
)

// recordingEngine keeps every call in order; failOn makes Execute fail for
// SQL containing the given text.
type recordingEngine struct {
	calls  []string
	failOn string
}

func (e *recordingEngine) Configure(ctx context.Context, key, value string) error {
	e.calls = append(e.calls, "configure "+key+"="+value)
	return nil
}

func (e *recordingEngine) Execute(ctx context.Context, sql string) (string, error) {
	e.calls = append(e.calls, "execute "+sql)
	if e.failOn != "" && strings.Contains(sql, e.failOn) {
		return "", errors.New("engine rejected statement")
	}
	return "op", nil
}

func mustParse(t *testing.T, lines ...string) []statement.Statement {
	t.Helper()
	script, err := statement.Parse(lines)
	require.NoError(t, err)
	return script.Statements
}

func TestDispatcher_PreservesOrder(t *testing.T) {
	stmts := mustParse(t,
		"CREATE TABLE src (id INT) WITH ('connector' = 'datagen');",
		"SET 'parallelism.default' = '2';",
		"INSERT INTO a SELECT * FROM src;",
		"CREATE TABLE b (id INT) WITH ('connector' = 'blackhole');",
		"INSERT OVERWRITE b SELECT * FROM src;",
		"EXPLAIN SET 'x' = 'y';",
	)
	engine := &recordingEngine{}
	d := NewDispatcher(engine, nil)

	require.NoError(t, d.DispatchAll(context.Background(), stmts))
	assert.Equal(t, 2, d.PendingInserts())
	require.NoError(t, d.Flush(context.Background()))
	assert.Equal(t, 0, d.PendingInserts())

	assert.Equal(t, []string{
		"execute CREATE TABLE src (id INT) WITH ('connector' = 'datagen')",
		"configure parallelism.default=2",
		"execute CREATE TABLE b (id INT) WITH ('connector' = 'blackhole')",
		"execute EXPLAIN PLAN FOR x y",
		"execute EXECUTE STATEMENT SET\nBEGIN\nINSERT INTO a SELECT * FROM src;\nINSERT OVERWRITE b SELECT * FROM src;\nEND",
	}, engine.calls)
	assert.Equal(t, "2", d.Properties()["parallelism.default"])
}

func TestDispatcher_SingleInsertIsExecutedDirectly(t *testing.T) {
	engine := &recordingEngine{}
	d := NewDispatcher(engine, nil)
	require.NoError(t, d.DispatchAll(context.Background(), mustParse(t, "INSERT INTO a VALUES (1);")))
	require.NoError(t, d.Flush(context.Background()))
	assert.Equal(t, []string{"execute INSERT INTO a VALUES (1)"}, engine.calls)
}

func TestDispatcher_FlushWithoutInserts(t *testing.T) {
	engine := &recordingEngine{}
	d := NewDispatcher(engine, nil)
	require.NoError(t, d.Flush(context.Background()))
	assert.Empty(t, engine.calls)
}

func TestDispatcher_SetInquiryDoesNotCallEngine(t *testing.T) {
	engine := &recordingEngine{}
	d := NewDispatcher(engine, map[string]string{"a": "b"})
	require.NoError(t, d.DispatchAll(context.Background(), mustParse(t, "SET;")))
	assert.Empty(t, engine.calls)
	assert.Equal(t, map[string]string{"a": "b"}, d.Properties())
}

func TestDispatcher_StopsAtFirstError(t *testing.T) {
	engine := &recordingEngine{failOn: "broken"}
	d := NewDispatcher(engine, nil)

	var failed []int
	d.OnStatus = func(index int, kind statement.Kind, sql, handle string, err error) {
		if err != nil {
			failed = append(failed, index)
		}
	}

	err := d.DispatchAll(context.Background(), mustParse(t,
		"CREATE TABLE ok (id INT);",
		"CREATE TABLE broken;",
		"CREATE TABLE never (id INT);",
	))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CREATE TABLE broken")
	assert.Len(t, engine.calls, 2)
	assert.Equal(t, []int{2}, failed)
}

func TestDispatcher_FlushError(t *testing.T) {
	engine := &recordingEngine{failOn: "INSERT"}
	d := NewDispatcher(engine, nil)
	require.NoError(t, d.DispatchAll(context.Background(), mustParse(t, "INSERT INTO a VALUES (1);")))
	assert.Error(t, d.Flush(context.Background()))
	assert.Equal(t, 1, d.PendingInserts())
}

func TestStatementSet(t *testing.T) {
	assert.Equal(t, "INSERT INTO a SELECT 1", StatementSet([]string{"INSERT INTO a SELECT 1"}))
	assert.Equal(t,
		"EXECUTE STATEMENT SET\nBEGIN\nINSERT INTO a SELECT 1;\nINSERT INTO b SELECT 2;\nEND",
		StatementSet([]string{"INSERT INTO a SELECT 1", "INSERT INTO b SELECT 2"}))
}

func TestTruncateSQL(t *testing.T) {
	short := "SELECT *\n  FROM foo"
	long := "SELECT " + strings.Repeat("col, ", 40) + "x FROM bar"
	assert.Equal(t, "SELECT * FROM foo", truncateSQL(short))
	trunc := truncateSQL(long)
	assert.True(t, len(trunc) < len(long))
	assert.True(t, strings.HasSuffix(trunc, "..."))
}
