package submit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sqlsubmit/internal/gateway"
	logpkg "sqlsubmit/internal/log"
	"sqlsubmit/internal/statement"
)

// Runner reads a SQL file and submits its statements to the SQL Gateway.
type Runner struct {
	config *Config
	logger logpkg.Logger
}

// NewRunner creates a new runner
func NewRunner(config *Config) (*Runner, error) {
	if strings.TrimSpace(config.SQLFile) == "" {
		return nil, fmt.Errorf("the sql file path must be specified: -f <sqlfile>")
	}
	config.Normalize()
	return &Runner{
		config: config,
		logger: logpkg.Global(),
	}, nil
}

// sessionName returns a unique session name so parallel runs never share one
func sessionName() string {
	return "sqlsubmit-" + uuid.New().String()[:8]
}

// Load parses the SQL file. Unterminated trailing text is reported as a
// warning, or as an error in strict mode.
func (r *Runner) Load() (*statement.Script, error) {
	script, err := statement.ParseFile(r.config.SQLFile)
	if err != nil {
		return nil, err
	}
	if script.HasPending() {
		pending := strings.TrimSpace(script.Pending)
		if r.config.Strict {
			return nil, fmt.Errorf("%w: '%s'", statement.ErrUnterminatedStatement, pending)
		}
		r.logger.Warn("ignoring trailing statement without ';'", "sql", truncateSQL(pending))
	}
	r.logger.Info("loaded sql file", "file", r.config.SQLFile, "statements", len(script.Statements))
	return script, nil
}

// Run executes the whole submission: load, open session, dispatch, flush.
func (r *Runner) Run(ctx context.Context) error {
	script, err := r.Load()
	if err != nil {
		return err
	}
	props := r.config.SessionProperties()

	if r.config.DryRun {
		r.logger.Info("dry run, statements are not submitted")
		return r.dispatch(ctx, &dryRunEngine{logger: r.logger}, props, script)
	}

	client := gateway.NewClient(r.config.SQLGatewayURL)
	client.PollInterval = r.config.PollInterval

	readinessCtx, cancel := context.WithTimeout(ctx, r.config.ReadyTimeout)
	if err := client.WaitReady(readinessCtx, r.config.ReadyTimeout); err != nil {
		r.logger.Warn("gateway readiness not confirmed; continuing", "error", err)
	}
	cancel()

	sess, err := client.OpenSession(ctx, sessionName(), props, r.config.SessionAttempts, r.config.SessionBackoff)
	if err != nil {
		return fmt.Errorf("failed to open sql gateway session: %w", err)
	}
	r.logger.Info("submitting to session", "session", sess.Name(), "gateway", client.BaseURL())
	defer func() {
		// the run context may already be cancelled
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sess.Close(closeCtx); err != nil {
			r.logger.Warn("failed to close session", "session_id", sess.ID(), "error", err)
		}
	}()

	return r.dispatch(ctx, sess, props, script)
}

func (r *Runner) dispatch(ctx context.Context, engine Engine, props map[string]string, script *statement.Script) error {
	d := NewDispatcher(engine, props)
	d.OnStatus = func(index int, kind statement.Kind, sql, handle string, err error) {
		if err != nil {
			r.logger.Error("statement failed", "index", index, "kind", kind, "error", err)
			return
		}
		r.logger.Debug("statement done", "index", index, "kind", kind, "handle", handle)
	}
	if err := d.DispatchAll(ctx, script.Statements); err != nil {
		return err
	}
	if err := d.Flush(ctx); err != nil {
		return err
	}
	r.logger.Info("all statements submitted", "count", len(script.Statements))
	return nil
}

// dryRunEngine logs what would be sent to the gateway.
type dryRunEngine struct {
	logger logpkg.Logger
	n      int
}

func (e *dryRunEngine) Configure(ctx context.Context, key, value string) error {
	e.logger.Info("would set", "key", key, "value", value)
	return nil
}

func (e *dryRunEngine) Execute(ctx context.Context, sql string) (string, error) {
	e.n++
	e.logger.Info("would execute", "sql", truncateSQL(sql))
	return fmt.Sprintf("dry-run-%d", e.n), nil
}
