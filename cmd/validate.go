package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	logpkg "sqlsubmit/internal/log"
	"sqlsubmit/internal/statement"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Split and classify a SQL file without submitting it",
	Long: `Validate parses a SQL file the same way run does and prints the plan:
- Splits the file into statements
- Classifies each statement (INSERT_INTO, INSERT_OVERWRITE, EXPLAIN, SET, GENERIC)
- Reports statements that cannot be classified and a missing final ';'`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("file", "f", "", "SQL file path")
	validateCmd.Flags().StringP("output", "o", "text", "Output format: text, yaml or json")
	validateCmd.Flags().Bool("strict", false, "Fail when the file ends with a statement missing its ';'")
	_ = validateCmd.MarkFlagRequired("file")
}

// planEntry is one classified statement in the validate output.
type planEntry struct {
	Index    int      `yaml:"index" json:"index"`
	Kind     string   `yaml:"kind" json:"kind"`
	Operands []string `yaml:"operands" json:"operands"`
}

type plan struct {
	File       string      `yaml:"file" json:"file"`
	Statements []planEntry `yaml:"statements" json:"statements"`
	Pending    string      `yaml:"pending,omitempty" json:"pending,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	sqlFile, _ := cmd.Flags().GetString("file")
	output, _ := cmd.Flags().GetString("output")
	strict, _ := cmd.Flags().GetBool("strict")

	script, err := statement.ParseFile(sqlFile)
	if err != nil {
		return fmt.Errorf("SQL validation failed: %w", err)
	}
	if script.HasPending() {
		pending := strings.TrimSpace(script.Pending)
		if strict {
			return fmt.Errorf("SQL validation failed: %w: '%s'", statement.ErrUnterminatedStatement, pending)
		}
		logpkg.Global().Warn("trailing statement without ';' will be ignored", "sql", pending)
	}

	p := buildPlan(sqlFile, script)
	if err := writePlan(cmd.OutOrStdout(), output, p); err != nil {
		return err
	}
	logpkg.Global().Info("sql file is valid", "file", sqlFile, "statements", len(p.Statements))
	return nil
}

func buildPlan(file string, script *statement.Script) plan {
	p := plan{File: file, Pending: strings.TrimSpace(script.Pending)}
	for i, s := range script.Statements {
		p.Statements = append(p.Statements, planEntry{
			Index:    i + 1,
			Kind:     s.Kind().String(),
			Operands: s.Operands(),
		})
	}
	return p
}

func writePlan(w io.Writer, format string, p plan) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("failed to encode plan: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "text", "":
		for _, e := range p.Statements {
			fmt.Fprintf(w, "%3d. %-16s %s\n", e.Index, e.Kind, describe(e))
		}
		if p.Pending != "" {
			fmt.Fprintf(w, "     ignored (no ';'): %s\n", oneLine(p.Pending))
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, yaml or json)", format)
	}
}

func describe(e planEntry) string {
	if e.Kind == statement.Set.String() {
		if len(e.Operands) == 0 {
			return "(show session options)"
		}
		return e.Operands[0] + " = " + e.Operands[1]
	}
	if len(e.Operands) == 0 {
		return ""
	}
	return oneLine(e.Operands[0])
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
