package grex

import "testing"

func TestClassLiteralMatch(t *testing.T) {
	digits := digitClass(false)
	it := NewIter([]rune("5a"))
	ok, w := digits.Match(it)
	if !ok || w != 1 {
		t.Fatalf("digitClass should match '5', got ok=%v w=%d", ok, w)
	}
	if ok, _ := digits.Match(it.Advance(1)); ok {
		t.Fatalf("digitClass should not match 'a'")
	}
}

func TestClassNegatedBounds(t *testing.T) {
	notDigit := digitClass(true)
	text := []rune("5")
	atEnd := NewIter(text).AtEnd()
	if ok, _ := notDigit.Match(atEnd); ok {
		t.Fatalf("negated non-empty class must not match past end of text")
	}
	preBegin := NewIter(text).Prev()
	if ok, _ := notDigit.Match(preBegin); ok {
		t.Fatalf("negated non-empty class must not match before begin")
	}
}

func TestReservedZeroWidthClass(t *testing.T) {
	zw := NewLiteralClass(nil, true, false)
	atEnd := NewIter([]rune("x")).AtEnd()
	ok, w := zw.Match(atEnd)
	if !ok || w != 0 {
		t.Fatalf("reserved zero-width class should always succeed with width 0, got ok=%v w=%d", ok, w)
	}
}

func TestUniversalClassBounded(t *testing.T) {
	u := universalClass()
	text := []rune("x")
	atEnd := NewIter(text).AtEnd()
	if ok, _ := u.Match(atEnd); ok {
		t.Fatalf("universalClass must not match past end of text")
	}
	it := NewIter(text)
	if ok, w := u.Match(it); !ok || w != 1 {
		t.Fatalf("universalClass should match any single rune, got ok=%v w=%d", ok, w)
	}
}

func TestAnyClassDotAll(t *testing.T) {
	text := []rune("\nx")
	it := NewIter(text)
	if ok, _ := anyClass(false).Match(it); ok {
		t.Fatalf("anyClass(false) must not match newline")
	}
	if ok, _ := anyClass(true).Match(it); !ok {
		t.Fatalf("anyClass(true) (dotAll) should match newline")
	}
	atEnd := NewIter(text).AtEnd()
	if ok, _ := anyClass(true).Match(atEnd); ok {
		t.Fatalf("anyClass(true) must still be bounded by text end")
	}
}

func TestClassComposition(t *testing.T) {
	vowels := NewLiteralClass([]Symbol{
		NewCharSymbol('a', false), NewCharSymbol('e', false), NewCharSymbol('i', false),
		NewCharSymbol('o', false), NewCharSymbol('u', false),
	}, false, false)
	letters := rangeClass('a', 'z')
	consonants := NewSubtractClass(letters, vowels)

	if ok, _ := consonants.Match(NewIter([]rune("b"))); !ok {
		t.Fatalf("consonants should match 'b'")
	}
	if ok, _ := consonants.Match(NewIter([]rune("a"))); ok {
		t.Fatalf("consonants should not match 'a'")
	}

	both := NewIntersectClass(letters, NewLiteralClass([]Symbol{NewRangeSymbol('a', 'm', false)}, false, false))
	if ok, _ := both.Match(NewIter([]rune("c"))); !ok {
		t.Fatalf("intersection should match 'c'")
	}
	if ok, _ := both.Match(NewIter([]rune("z"))); ok {
		t.Fatalf("intersection should not match 'z'")
	}
}

// rangeClass is a tiny test helper building a single-range literal class,
// saving the tests above from repeating the symbol-slice boilerplate.
func rangeClass(lo, hi rune) *Class {
	return NewLiteralClass([]Symbol{NewRangeSymbol(lo, hi, false)}, false, false)
}

func TestLigatureSymbolMatch(t *testing.T) {
	sym := NewLigatureSymbol([]rune("ss"), false)
	if ok, w := sym.match(NewIter([]rune("ssz"))); !ok || w != 2 {
		t.Fatalf("ligature should match full run, got ok=%v w=%d", ok, w)
	}
	if ok, _ := sym.match(NewIter([]rune("sz"))); ok {
		t.Fatalf("ligature should not match a partial run")
	}
}

func TestCaseInsensitiveRange(t *testing.T) {
	cls := NewLiteralClass([]Symbol{NewRangeSymbol('a', 'z', true)}, false, false)
	if ok, _ := cls.Match(NewIter([]rune("Z"))); !ok {
		t.Fatalf("case-insensitive range should fold 'Z' to 'z'")
	}
}

func TestShorthandClassesCoverage(t *testing.T) {
	cases := []struct {
		cls  *Class
		text string
		want bool
	}{
		{wordClass(false), "_", true},
		{wordClass(true), "_", false},
		{spaceClass(false), "\t", true},
		{horizSpaceClass(false), "\t", true},
		{horizSpaceClass(false), "\n", false},
		{vertSpaceClass(false), "\n", true},
		{vertSpaceClass(false), " ", false},
		{lowerClass(false), "m", true},
		{lowerClass(false), "M", false},
		{upperClass(false), "M", true},
		{upperClass(false), "m", false},
	}
	for _, c := range cases {
		ok, _ := c.cls.Match(NewIter([]rune(c.text)))
		if ok != c.want {
			t.Errorf("class.Match(%q) = %v, want %v", c.text, ok, c.want)
		}
	}
}
