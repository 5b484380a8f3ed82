package grex

import "github.com/coregx/ahocorasick"

// literalPrefilter wraps an Aho-Corasick automaton built over the literal
// alternatives of a pure-literal union: the single-rune and ligature
// symbols of one case-sensitive Literal Class. Alternate chunks get no
// prefilter. It is consulted before the slow per-character graph walk
// reaches a literal-only union node: if none of the literal alternatives
// occur anywhere at or after the current position, the whole union can
// never match here, so CanEnter short-circuits to false without the
// backtracking walk ever trying each branch by hand.
//
// This mirrors coregx's own use of an Aho-Corasick automaton as an
// accelerating prefilter ahead of its NFA/DFA engines rather than as the
// primary matcher; grex keeps the same division of labor, just scoped to
// one literal-only node instead of a whole pattern.
type literalPrefilter struct {
	automaton *ahocorasick.Automaton
	literals  []string
}

// buildLiteralPrefilter returns nil when the patterns aren't worth
// indexing (fewer than two alternatives — a single literal is cheaper to
// compare directly) or when building the automaton fails.
func buildLiteralPrefilter(literals []string) *literalPrefilter {
	if len(literals) < 2 {
		return nil
	}
	builder := ahocorasick.NewBuilder()
	for _, lit := range literals {
		builder.AddPattern([]byte(lit))
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &literalPrefilter{automaton: auto, literals: literals}
}

// rejects reports whether none of the prefilter's literals occur anywhere
// in the remainder of the text from it onward — a definitive "this union
// cannot match here or later" answer that lets the caller skip the
// branch-by-branch attempt entirely.
func (lp *literalPrefilter) rejects(it Iter) bool {
	if lp == nil {
		return false
	}
	remainder := []byte(it.Slice(it.AtEnd()))
	return !lp.automaton.IsMatch(remainder)
}

// classLiterals extracts the Aho-Corasick-eligible literal set from a
// Class, for wiring into a Literal node's prefilter at assembly time.
func classLiterals(c *Class) ([]string, bool) {
	return c.literals()
}
