// Package statement splits a Flink SQL script into complete statements and
// classifies each one into a Kind with typed operands.
package statement

import (
	"fmt"
	"strings"
)

// Statement is one classified statement. Its operand shape is fixed by Kind:
//
//	INSERT_INTO, INSERT_OVERWRITE  [full text]
//	EXPLAIN                        [EXPLAIN PLAN FOR <inner0> <inner1>]
//	SET                            [] or [key, value]
//	GENERIC                        [full text]
type Statement struct {
	kind     Kind
	operands []string
}

func newStatement(kind Kind, operands ...string) Statement {
	return Statement{kind: kind, operands: operands}
}

// Kind returns the statement category.
func (s Statement) Kind() Kind { return s.kind }

// Operands returns a copy of the extracted operands.
func (s Statement) Operands() []string {
	out := make([]string, len(s.operands))
	copy(out, s.operands)
	return out
}

// Operand returns the i-th operand, or "" when it does not exist.
func (s Statement) Operand(i int) string {
	if i < 0 || i >= len(s.operands) {
		return ""
	}
	return s.operands[i]
}

// NumOperands returns the operand count.
func (s Statement) NumOperands() int { return len(s.operands) }

// Text returns the SQL to hand to the engine. SET statements are rendered
// back from their key and value.
func (s Statement) Text() string {
	if s.kind == Set {
		if len(s.operands) == 0 {
			return "SET"
		}
		return fmt.Sprintf("SET '%s' = '%s'", s.operands[0], s.operands[1])
	}
	return s.Operand(0)
}

// Equal reports whether two statements have the same kind and operands.
func (s Statement) Equal(o Statement) bool {
	if s.kind != o.kind || len(s.operands) != len(o.operands) {
		return false
	}
	for i := range s.operands {
		if s.operands[i] != o.operands[i] {
			return false
		}
	}
	return true
}

func (s Statement) String() string {
	return s.kind.String() + "([" + strings.Join(s.operands, ", ") + "])"
}
