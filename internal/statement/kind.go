package statement

import "fmt"

// Kind identifies the command category of a classified statement.
type Kind int

const (
	// Generic is the fallback for any statement not matched by a specific
	// pattern (DDL, queries, engine specific calls). It is submitted verbatim.
	Generic Kind = iota
	InsertInto
	InsertOverwrite
	Explain
	Set
)

// String returns the canonical upper-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Generic:
		return "GENERIC"
	case InsertInto:
		return "INSERT_INTO"
	case InsertOverwrite:
		return "INSERT_OVERWRITE"
	case Explain:
		return "EXPLAIN"
	case Set:
		return "SET"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsInsert reports whether statements of this kind write into a sink.
func (k Kind) IsInsert() bool {
	return k == InsertInto || k == InsertOverwrite
}
