package submit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	logpkg "sqlsubmit/internal/log"
	"sqlsubmit/internal/statement"
)

// ErrUnsupportedStatement is returned for a statement the dispatcher has no
// action for.
var ErrUnsupportedStatement = errors.New("unsupported flink sql")

// Engine is the query engine statements are dispatched to.
type Engine interface {
	// Configure sets a session option visible to later statements.
	Configure(ctx context.Context, key, value string) error
	// Execute submits one statement and returns an engine side handle.
	Execute(ctx context.Context, sql string) (string, error)
}

// StatusCallback is notified after each engine call with the statement
// index (1-based, 0 for the statement set), the SQL sent and the outcome.
type StatusCallback func(index int, kind statement.Kind, sql, handle string, err error)

// Dispatcher hands classified statements to an Engine, strictly in order.
// Inserts are not executed one by one: they are collected and submitted
// together by Flush, so that they run as a single job.
type Dispatcher struct {
	engine     Engine
	logger     logpkg.Logger
	properties map[string]string
	inserts    []string
	count      int

	OnStatus StatusCallback
}

// NewDispatcher creates a dispatcher. properties is the option set the
// engine session was opened with; it is reported by the SET inquiry form.
func NewDispatcher(engine Engine, properties map[string]string) *Dispatcher {
	props := make(map[string]string, len(properties))
	for k, v := range properties {
		props[k] = v
	}
	return &Dispatcher{
		engine:     engine,
		logger:     logpkg.Global(),
		properties: props,
	}
}

// Properties returns a copy of the session options known to the dispatcher.
func (d *Dispatcher) Properties() map[string]string {
	out := make(map[string]string, len(d.properties))
	for k, v := range d.properties {
		out[k] = v
	}
	return out
}

// PendingInserts returns the number of inserts waiting for Flush.
func (d *Dispatcher) PendingInserts() int { return len(d.inserts) }

// DispatchAll dispatches statements in order and stops at the first error.
func (d *Dispatcher) DispatchAll(ctx context.Context, stmts []statement.Statement) error {
	for _, stmt := range stmts {
		if err := d.Dispatch(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Dispatch handles one statement.
func (d *Dispatcher) Dispatch(ctx context.Context, stmt statement.Statement) error {
	d.count++
	idx := d.count
	if stmt.Kind().IsInsert() {
		d.inserts = append(d.inserts, stmt.Operand(0))
		d.logger.Debug("insert added to statement set", "index", idx, "pending", len(d.inserts))
		return nil
	}
	switch stmt.Kind() {
	case statement.Set:
		return d.callSet(ctx, idx, stmt)
	case statement.Generic, statement.Explain:
		return d.execute(ctx, idx, stmt.Kind(), stmt.Operand(0))
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedStatement, stmt)
	}
}

func (d *Dispatcher) callSet(ctx context.Context, idx int, stmt statement.Statement) error {
	if stmt.NumOperands() == 0 {
		keys := make([]string, 0, len(d.properties))
		for k := range d.properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			d.logger.Info("session property", "key", k, "value", d.properties[k])
		}
		return nil
	}
	key, value := stmt.Operand(0), stmt.Operand(1)
	err := d.engine.Configure(ctx, key, value)
	d.notify(idx, statement.Set, stmt.Text(), "", err)
	if err != nil {
		return fmt.Errorf("statement %d: %w", idx, err)
	}
	d.properties[key] = value
	d.logger.Info("session property set", "key", key, "value", value)
	return nil
}

func (d *Dispatcher) execute(ctx context.Context, idx int, kind statement.Kind, sql string) error {
	d.logger.Info("executing statement", "index", idx, "kind", kind, "sql", truncateSQL(sql))
	handle, err := d.engine.Execute(ctx, sql)
	d.notify(idx, kind, sql, handle, err)
	if err != nil {
		return fmt.Errorf("statement %d failed '%s': %w", idx, sql, err)
	}
	return nil
}

// Flush submits the collected inserts. A single insert is executed as is;
// several are wrapped in one EXECUTE STATEMENT SET block.
func (d *Dispatcher) Flush(ctx context.Context) error {
	if len(d.inserts) == 0 {
		return nil
	}
	sql := StatementSet(d.inserts)
	d.logger.Info("submitting statement set", "inserts", len(d.inserts))
	handle, err := d.engine.Execute(ctx, sql)
	d.notify(0, statement.InsertInto, sql, handle, err)
	if err != nil {
		return fmt.Errorf("statement set failed: %w", err)
	}
	d.logger.Info("statement set submitted", "inserts", len(d.inserts), "handle", handle)
	d.inserts = nil
	return nil
}

// StatementSet renders inserts as a single job submission.
func StatementSet(inserts []string) string {
	if len(inserts) == 1 {
		return inserts[0]
	}
	var b strings.Builder
	b.WriteString("EXECUTE STATEMENT SET\nBEGIN\n")
	for _, ins := range inserts {
		b.WriteString(ins)
		b.WriteString(";\n")
	}
	b.WriteString("END")
	return b.String()
}

func (d *Dispatcher) notify(idx int, kind statement.Kind, sql, handle string, err error) {
	if d.OnStatus != nil {
		d.OnStatus(idx, kind, sql, handle, err)
	}
}

// truncateSQL truncates SQL for display purposes
func truncateSQL(sql string) string {
	const maxLength = 100
	cleaned := strings.Join(strings.Fields(sql), " ")
	if len(cleaned) > maxLength {
		return cleaned[:maxLength] + "..."
	}
	return cleaned
}
