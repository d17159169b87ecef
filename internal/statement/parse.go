package statement

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnterminatedStatement marks text left after the last ';' of a script.
var ErrUnterminatedStatement = errors.New("statement not terminated by ';'")

// Script is the ordered result of splitting and classifying a SQL file.
type Script struct {
	Statements []Statement
	// Pending holds trailing text that was never terminated. It is not part
	// of Statements.
	Pending string
}

// HasPending reports whether the script ended with unterminated text.
func (s *Script) HasPending() bool {
	return strings.TrimSpace(s.Pending) != ""
}

// Parse splits lines into statements and classifies them in input order. The
// first classification failure aborts parsing and names the statement text.
func Parse(lines []string) (*Script, error) {
	var acc Accumulator
	script := &Script{}
	for _, line := range lines {
		body, ok := acc.Add(line)
		if !ok {
			continue
		}
		stmt, err := Classify(body)
		if err != nil {
			return nil, fmt.Errorf("unsupported sql '%s': %w", strings.TrimSpace(body), err)
		}
		script.Statements = append(script.Statements, stmt)
	}
	script.Pending = acc.Pending()
	return script, nil
}

// ReadLines reads a whole UTF-8 file into lines. Both "\n" and "\r\n" line
// endings are accepted.
func ReadLines(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sql file: %w", err)
	}
	text := strings.TrimPrefix(string(content), "\ufeff")
	if text == "" {
		return nil, nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, nil
}

// ParseFile reads and parses a SQL file.
func ParseFile(path string) (*Script, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, err
	}
	return Parse(lines)
}
