package statement

import "strings"

const (
	terminator    = ";"
	commentPrefix = "--"
)

// Accumulator groups physical lines into complete statements. A statement
// ends at the first line whose last raw character is ';'.
//
// Lines that are blank, or that start with "--" in their raw form, never
// join the buffer, even in the middle of a statement. A "--" line inside a
// multi-line string literal is therefore dropped as well.
type Accumulator struct {
	buf strings.Builder
}

// Add feeds one line. When the line completes a statement, the statement
// body is returned with complete set to true and the buffer is reset. The
// body keeps the leading newline separator of every joined line and has its
// final ';' removed. Empty statements are never reported.
func (a *Accumulator) Add(line string) (stmt string, complete bool) {
	if strings.TrimSpace(line) == "" || strings.HasPrefix(line, commentPrefix) {
		return "", false
	}
	a.buf.WriteString("\n")
	a.buf.WriteString(line)
	if !strings.HasSuffix(line, terminator) {
		return "", false
	}
	stmt = strings.TrimSuffix(a.buf.String(), terminator)
	a.buf.Reset()
	// a lone ";" closes nothing
	if strings.TrimSpace(stmt) == "" {
		return "", false
	}
	return stmt, true
}

// Pending returns buffered text that has not been terminated yet.
func (a *Accumulator) Pending() string {
	return a.buf.String()
}

// Accumulate splits lines into statement bodies in input order. Text after
// the last terminator is discarded; use an Accumulator directly to inspect it.
func Accumulate(lines []string) []string {
	var (
		acc Accumulator
		out []string
	)
	for _, line := range lines {
		if stmt, ok := acc.Add(line); ok {
			out = append(out, stmt)
		}
	}
	return out
}
