package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	logpkg "sqlsubmit/internal/log"
	"sqlsubmit/internal/submit"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Submit a SQL file to the Flink SQL Gateway",
	Long: `Run submits every statement of a SQL file, in order, to one SQL Gateway session:
1. Splits the file into statements (a statement ends with ';' at the end of a line)
2. Opens a session with the default engine options and the job name
3. Applies SET statements to the session
4. Executes DDL, EXPLAIN and other statements as they appear
5. Submits all INSERT statements together as one job

Lines starting with '--' are comments. Text after the last ';' is ignored
with a warning; use --strict to fail instead.`,
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("file", "f", "", "SQL file path")
	runCmd.Flags().StringP("job-name", "j", "", "Job name (sets pipeline.name)")
	runCmd.Flags().Bool("dry-run", false, "Show what would be executed without contacting the gateway")
	runCmd.Flags().Bool("strict", false, "Fail when the file ends with a statement missing its ';'")
	runCmd.Flags().Duration("ready-timeout", 8*time.Second, "How long to wait for the SQL Gateway to become ready")
	runCmd.Flags().Int("session-attempts", 7, "Session creation attempts before giving up")
	_ = runCmd.MarkFlagRequired("file")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	sqlFile, _ := cmd.Flags().GetString("file")
	jobName, _ := cmd.Flags().GetString("job-name")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	strict, _ := cmd.Flags().GetBool("strict")
	readyTimeout, _ := cmd.Flags().GetDuration("ready-timeout")
	sessionAttempts, _ := cmd.Flags().GetInt("session-attempts")

	config := &submit.Config{
		SQLFile:         sqlFile,
		JobName:         jobName,
		FlinkURL:        viper.GetString("flink_url"),
		SQLGatewayURL:   viper.GetString("sql_gateway_url"),
		DryRun:          dryRun,
		Strict:          strict,
		ReadyTimeout:    readyTimeout,
		SessionAttempts: sessionAttempts,
		Properties:      viper.GetStringMapString("engine.properties"),
	}

	runner, err := submit.NewRunner(config)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	// Setup graceful shutdown
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			logpkg.Global().Warn("received interrupt signal, aborting submission")
			cancel()
		case <-ctx.Done():
		}
	}()

	logpkg.Global().Info("submitting sql file", "file", sqlFile, "gateway", config.SQLGatewayURL, "dry_run", dryRun)
	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}

	logpkg.Global().Info("submission completed")
	return nil
}
