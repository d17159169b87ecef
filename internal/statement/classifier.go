package statement

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNestedExplain is returned for EXPLAIN statements whose target is
	// itself an EXPLAIN.
	ErrNestedExplain = errors.New("nested EXPLAIN is not supported")

	// ErrExplainArity is returned when the explained statement does not
	// yield the two operands the EXPLAIN PLAN FOR text is built from.
	ErrExplainArity = errors.New("explained statement must yield two operands")
)

// pattern binds a kind to its anchored pattern and operand extractor. The
// extractor receives the submatches (groups[0] is the whole text, nil for a
// group that did not participate) and returns ok=false to reject the match.
type pattern struct {
	kind    Kind
	re      *regexp.Regexp
	extract func(groups []*string) (operands []string, ok bool)
}

// patterns is evaluated in order; the first match wins and Generic is the
// fallback when none matches.
var patterns = []pattern{
	{
		kind:    InsertInto,
		re:      regexp.MustCompile(`(?is)^(INSERT\s+INTO.*)$`),
		extract: singleOperand,
	},
	{
		kind:    InsertOverwrite,
		re:      regexp.MustCompile(`(?is)^(INSERT\s+OVERWRITE.*)$`),
		extract: singleOperand,
	},
	{
		kind:    Explain,
		re:      regexp.MustCompile(`(?is)^EXPLAIN\s+(.*)$`),
		extract: singleOperand,
	},
	{
		kind: Set,
		// whitespace is ignored around '=' but kept inside the value
		re:      regexp.MustCompile(`(?is)^SET(\s+(\S+)\s*=\s*(.*))?$`),
		extract: setOperands,
	},
}

func singleOperand(groups []*string) ([]string, bool) {
	if len(groups) < 2 || groups[1] == nil {
		return nil, false
	}
	return []string{*groups[1]}, true
}

func setOperands(groups []*string) ([]string, bool) {
	if len(groups) < 4 {
		return nil, false
	}
	if groups[1] == nil {
		return []string{}, true
	}
	if groups[2] == nil || groups[3] == nil {
		return nil, false
	}
	return []string{unquote(*groups[2]), unquote(*groups[3])}, true
}

func unquote(s string) string {
	return strings.ReplaceAll(s, "'", "")
}

// normalize trims the text and removes exactly one trailing terminator.
func normalize(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, terminator) {
		text = strings.TrimSpace(strings.TrimSuffix(text, terminator))
	}
	return text
}

// Classify determines the kind of one complete statement and extracts its
// operands. Every text classifies; the only errors come from EXPLAIN
// statements whose target cannot be turned into a plan request.
func Classify(text string) (Statement, error) {
	return classify(normalize(text), false)
}

func classify(text string, explained bool) (Statement, error) {
	for _, p := range patterns {
		groups := submatches(p.re, text)
		if groups == nil {
			continue
		}
		operands, ok := p.extract(groups)
		if !ok {
			continue
		}
		if p.kind == Explain {
			if explained {
				return Statement{}, ErrNestedExplain
			}
			return explain(operands[0])
		}
		return newStatement(p.kind, operands...), nil
	}
	return newStatement(Generic, text), nil
}

func explain(target string) (Statement, error) {
	inner, err := classify(normalize(target), true)
	if err != nil {
		return Statement{}, err
	}
	if inner.NumOperands() < 2 {
		return Statement{}, fmt.Errorf("%w: %s has %d", ErrExplainArity, inner.Kind(), inner.NumOperands())
	}
	return newStatement(Explain, "EXPLAIN PLAN FOR "+inner.operands[0]+" "+inner.operands[1]), nil
}

// submatches runs an anchored match and returns every group, using nil for
// groups that did not take part in the match. It returns nil on no match.
func submatches(re *regexp.Regexp, text string) []*string {
	idx := re.FindStringSubmatchIndex(text)
	if idx == nil {
		return nil
	}
	groups := make([]*string, len(idx)/2)
	for i := range groups {
		if idx[2*i] < 0 {
			continue
		}
		g := text[idx[2*i]:idx[2*i+1]]
		groups[i] = &g
	}
	return groups
}
