package grex

import "unicode"

// Symbol is a single matchable unit inside a character class: either a
// (possibly single-character) rune range, or a ligature — a multi-rune
// sequence that only matches as a whole run starting at the current
// position.
type Symbol struct {
	Lo, Hi          rune
	Ligature        []rune
	CaseInsensitive bool
}

// NewRangeSymbol returns a symbol matching any rune in [lo, hi].
func NewRangeSymbol(lo, hi rune, caseInsensitive bool) Symbol {
	return Symbol{Lo: lo, Hi: hi, CaseInsensitive: caseInsensitive}
}

// NewCharSymbol returns a symbol matching exactly one rune.
func NewCharSymbol(r rune, caseInsensitive bool) Symbol {
	return NewRangeSymbol(r, r, caseInsensitive)
}

// NewLigatureSymbol returns a symbol matching only the exact rune sequence
// seq, starting at the current position.
func NewLigatureSymbol(seq []rune, caseInsensitive bool) Symbol {
	return Symbol{Ligature: seq, CaseInsensitive: caseInsensitive}
}

func (s Symbol) isLigature() bool { return len(s.Ligature) > 0 }

func foldEq(a, b rune, caseInsensitive bool) bool {
	if a == b {
		return true
	}
	return caseInsensitive && unicode.ToLower(a) == unicode.ToLower(b)
}

func inFoldedRange(c, lo, hi rune, caseInsensitive bool) bool {
	if lo <= c && c <= hi {
		return true
	}
	if !caseInsensitive {
		return false
	}
	fc := unicode.ToLower(c)
	return unicode.ToLower(lo) <= fc && fc <= unicode.ToLower(hi)
}

// match reports whether the symbol matches at it, and if so the rune width
// consumed (1 for a range symbol, len(Ligature) for a ligature).
func (s Symbol) match(it Iter) (ok bool, width int) {
	if s.isLigature() {
		for i, want := range s.Ligature {
			got, inBounds := it.At(i)
			if !inBounds || !foldEq(got, want, s.CaseInsensitive) {
				return false, 0
			}
		}
		return true, len(s.Ligature)
	}
	if it.IsEnd() || it.IsPreBegin() {
		return false, 0
	}
	if inFoldedRange(it.Current(), s.Lo, s.Hi, s.CaseInsensitive) {
		return true, 1
	}
	return false, 0
}

// Key returns a canonical spelling used by the parser's symbol index table
// to de-duplicate repeated symbol expressions.
func (s Symbol) Key() string {
	if s.isLigature() {
		tag := "L"
		if s.CaseInsensitive {
			tag = "Li"
		}
		return tag + ":" + string(s.Ligature)
	}
	tag := "R"
	if s.CaseInsensitive {
		tag = "Ri"
	}
	return tag + ":" + string(s.Lo) + "-" + string(s.Hi)
}

// ClassOp distinguishes the four composite forms a Class can take.
type ClassOp int

const (
	ClassLiteral ClassOp = iota
	ClassUnion
	ClassSubtract
	ClassIntersect
)

// Class is a character-class predicate: a literal set of symbols, or a
// boolean composition (union, subtract, intersect) of two sub-classes.
// Classes are immutable once built and shared by index from the parser's
// class table.
type Class struct {
	Op   ClassOp
	L, R *Class // set for Union/Subtract/Intersect

	Symbols         []Symbol // set for Literal
	Negate          bool     // set for Literal
	CaseInsensitive bool     // set for Literal
}

// NewLiteralClass builds a Literal class over the given symbols.
func NewLiteralClass(symbols []Symbol, negate, caseInsensitive bool) *Class {
	return &Class{Op: ClassLiteral, Symbols: symbols, Negate: negate, CaseInsensitive: caseInsensitive}
}

// NewUnionClass, NewSubtractClass, and NewIntersectClass compose two
// classes with the corresponding boolean law (§3: Union is OR, Subtract is
// AND-NOT, Intersect is AND).
func NewUnionClass(l, r *Class) *Class     { return &Class{Op: ClassUnion, L: l, R: r} }
func NewSubtractClass(l, r *Class) *Class  { return &Class{Op: ClassSubtract, L: l, R: r} }
func NewIntersectClass(l, r *Class) *Class { return &Class{Op: ClassIntersect, L: l, R: r} }

// Match reports whether c matches at it. On success it also reports the
// rune width consumed; composite ops report the width of the operand
// that matched (for Subtract and Intersect, the left operand).
func (c *Class) Match(it Iter) (ok bool, width int) {
	switch c.Op {
	case ClassLiteral:
		// A negated class with no symbols is the reserved encoding for an
		// unconditional zero-width match, used by empty alternation
		// branches; it must succeed even at or past the text's end, unlike
		// every other Literal class.
		if len(c.Symbols) == 0 && c.Negate {
			return true, 0
		}
		if it.IsEnd() || it.IsPreBegin() {
			return false, 0
		}
		anyMatched := false
		bestWidth := 1
		for _, sym := range c.Symbols {
			if symOK, w := sym.match(it); symOK {
				anyMatched = true
				bestWidth = w
				break
			}
		}
		if anyMatched != c.Negate {
			return true, bestWidth
		}
		return false, 0
	case ClassUnion:
		if ok, w := c.L.Match(it); ok {
			return true, w
		}
		return c.R.Match(it)
	case ClassSubtract:
		lok, w := c.L.Match(it)
		if !lok {
			return false, 0
		}
		if rok, _ := c.R.Match(it); rok {
			return false, 0
		}
		return true, w
	case ClassIntersect:
		lok, w := c.L.Match(it)
		if !lok {
			return false, 0
		}
		if rok, _ := c.R.Match(it); !rok {
			return false, 0
		}
		return true, w
	default:
		return false, 0
	}
}

// literals returns the finite set of ligature/single-char literal symbols
// this class accepts when it is a non-negated Literal class built purely
// from case-sensitive symbols with no ranges wider than one rune — i.e.
// when it is amenable to Aho-Corasick prefiltering (see literal.go).
func (c *Class) literals() ([]string, bool) {
	if c.Op != ClassLiteral || c.Negate {
		return nil, false
	}
	out := make([]string, 0, len(c.Symbols))
	for _, s := range c.Symbols {
		if s.CaseInsensitive {
			return nil, false
		}
		if s.isLigature() {
			out = append(out, string(s.Ligature))
			continue
		}
		if s.Lo != s.Hi {
			return nil, false
		}
		out = append(out, string(s.Lo))
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// Shorthand class builders, shared by the parser (for \d \w \s ...) and by
// the serialization decoder (which re-derives the same canonical classes
// from opcode arguments rather than shipping them as symbol lists).

func digitClass(negate bool) *Class {
	return NewLiteralClass([]Symbol{NewRangeSymbol('0', '9', false)}, negate, false)
}

func wordClass(negate bool) *Class {
	return NewLiteralClass([]Symbol{
		NewRangeSymbol('a', 'z', false),
		NewRangeSymbol('A', 'Z', false),
		NewRangeSymbol('0', '9', false),
		NewCharSymbol('_', false),
	}, negate, false)
}

func spaceClass(negate bool) *Class {
	return NewLiteralClass([]Symbol{
		NewCharSymbol(' ', false),
		NewCharSymbol('\t', false),
		NewCharSymbol('\n', false),
		NewCharSymbol('\r', false),
		NewCharSymbol('\f', false),
		NewCharSymbol('\v', false),
	}, negate, false)
}

func horizSpaceClass(negate bool) *Class {
	return NewLiteralClass([]Symbol{NewCharSymbol(' ', false), NewCharSymbol('\t', false)}, negate, false)
}

func vertSpaceClass(negate bool) *Class {
	return NewLiteralClass([]Symbol{
		NewCharSymbol('\n', false), NewCharSymbol('\r', false),
		NewCharSymbol('\f', false), NewCharSymbol('\v', false),
	}, negate, false)
}

func lowerClass(negate bool) *Class  { return NewLiteralClass([]Symbol{NewRangeSymbol('a', 'z', false)}, negate, false) }
func upperClass(negate bool) *Class  { return NewLiteralClass([]Symbol{NewRangeSymbol('A', 'Z', false)}, negate, false) }
func anyClass(dotAll bool) *Class {
	nl := NewLiteralClass([]Symbol{NewCharSymbol('\n', false)}, true, false)
	if dotAll {
		return universalClass()
	}
	return nl
}

// universalClass matches any single rune, bounded by the text's extent —
// unlike the reserved negated-empty-literal encoding (see Class.Match),
// which is zero-width and unconditional. Used for `.` under (?s) and for
// bracket-expression negation `[^...]`.
func universalClass() *Class {
	return NewLiteralClass([]Symbol{NewRangeSymbol(0, unicode.MaxRune, false)}, false, false)
}

func lineDelimiterClass(unixLines bool) *Class {
	if unixLines {
		return NewLiteralClass([]Symbol{NewCharSymbol('\n', false)}, false, false)
	}
	return NewLiteralClass([]Symbol{NewCharSymbol('\n', false), NewCharSymbol('\r', false)}, false, false)
}

func isWordRune(r rune) bool {
	c := wordClass(false)
	ok, _ := c.Match(NewIter([]rune{r}))
	return ok
}
