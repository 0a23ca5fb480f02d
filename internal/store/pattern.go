package store

import "strings"

// Wildcard is the name pattern marker accepted by list operations.
const Wildcard = "*"

// PatternKind says how a name pattern restricts a listing.
type PatternKind int

const (
	PatternExact PatternKind = iota
	PatternAll
	PatternRange
)

func (k PatternKind) String() string {
	switch k {
	case PatternExact:
		return "exact"
	case PatternAll:
		return "all"
	case PatternRange:
		return "range"
	default:
		return "unknown"
	}
}

// Pattern is a parsed list pattern. Range patterns cover the half-open
// interval [From, To); an empty To means the range is unbounded above.
type Pattern struct {
	Kind PatternKind
	Text string
	From string
	To   string
}

// ParsePattern interprets text the way list requests do: no wildcard is an
// exact match, a leading wildcard matches everything, otherwise everything
// starting with the text before the wildcard.
func ParsePattern(text string) Pattern {
	pos := strings.Index(text, Wildcard)
	switch {
	case pos < 0:
		return Pattern{Kind: PatternExact, Text: text, From: text}
	case pos == 0:
		return Pattern{Kind: PatternAll, Text: text}
	default:
		prefix := text[:pos]
		return Pattern{Kind: PatternRange, Text: text, From: prefix, To: successor(prefix)}
	}
}

// Match reports whether name is selected by the pattern.
func (p Pattern) Match(name string) bool {
	switch p.Kind {
	case PatternExact:
		return name == p.From
	case PatternAll:
		return true
	default:
		return name >= p.From && (p.To == "" || name < p.To)
	}
}

// where returns the predicate on column and its bind arguments.
func (p Pattern) where(column string) (string, []any) {
	switch p.Kind {
	case PatternExact:
		return column + " = ?", []any{p.From}
	case PatternAll:
		return "1 = 1", nil
	default:
		if p.To == "" {
			return column + " >= ?", []any{p.From}
		}
		return column + " >= ? and " + column + " < ?", []any{p.From, p.To}
	}
}

// successor returns the smallest string greater than every string having
// prefix as a prefix, comparing bytewise. It is empty when no such string
// exists (the prefix is all 0xFF bytes).
func successor(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xFF {
			b[i]++
			return string(b[:i+1])
		}
	}
	return ""
}
