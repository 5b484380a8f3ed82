package grex

import (
	"testing"

	"github.com/dlclark/regexp2"
)

// oracleCases covers the PCRE/.NET-compatible subset both engines agree on:
// plain literals, character classes, quantifiers, groups, alternation,
// anchors, backreferences and lookaround. Extensions unique to this engine
// (manual captures, capture collections, subroutines, recursion, the
// branch-reset group) have no regexp2 equivalent and are exercised by the
// rest of the test suite instead.
var oracleCases = []struct {
	pattern, text string
}{
	{"abc", "xxabcxx"},
	{"a.c", "xabcx"},
	{"a.*c", "aXXXc"},
	{"a.+c", "ac"},
	{"^abc$", "abc"},
	{"a?b", "b"},
	{"a+b", "aaab"},
	{"a*b", "b"},
	{"a{2,3}", "aaaa"},
	{"a{2,3}?", "aaaa"},
	{"[abc]+", "cabbage"},
	{"[^abc]+", "cabbage"},
	{"[a-z]+", "Hello"},
	{`\d+`, "room 237"},
	{`\w+`, "foo_bar baz"},
	{`\s+`, "a   b"},
	{"(ab)+", "ababab"},
	{"(a|b)+", "ababba"},
	{"a(b|c)d", "acd"},
	{`(\w+)@(\w+)`, "user@host"},
	{`(\w+) \1`, "echo echo"},
	{`(\w+) \1`, "echo golf"},
	{`\bcat\b`, "the cat sat"},
	{`\Bcat\B`, "concatenate"},
	{`foo(?=bar)`, "foobar"},
	{`foo(?!bar)`, "foobaz"},
	{`(?<=\$)\d+`, "$100"},
	{`(?<!\$)\d+`, "100"},
	{"(?i)ABC", "abc"},
}

// regexp2Match runs a pattern against text with regexp2 and reports whether
// it matched and, if so, the matched substring.
func regexp2Match(t *testing.T, pattern, text string) (bool, string) {
	t.Helper()
	re, err := regexp2.Compile(pattern, regexp2.RegexOptions(0))
	if err != nil {
		t.Fatalf("regexp2.Compile(%q) failed: %v", pattern, err)
	}
	m, err := re.FindStringMatch(text)
	if err != nil {
		t.Fatalf("regexp2 FindStringMatch(%q) against %q failed: %v", pattern, text, err)
	}
	if m == nil {
		return false, ""
	}
	return true, m.String()
}

// TestOracleAgreesWithRegexp2 checks that, for a subset of syntax both
// engines support, this engine's leftmost match agrees with regexp2's
// leftmost unanchored match. MatchFrom only tries the given offset, and
// several cases match later in the text, so the leftmost match is taken
// as the first result of MatchAll, which scans for the next start.
func TestOracleAgreesWithRegexp2(t *testing.T) {
	for _, tc := range oracleCases {
		wantOK, wantMatch := regexp2Match(t, tc.pattern, tc.text)
		autom := Compile(tc.pattern)
		if autom.CompileError != nil {
			t.Errorf("Compile(%q) failed: %v", tc.pattern, autom.CompileError)
			continue
		}
		all := autom.MatchAll([]rune(tc.text))
		gotOK, gotMatch := len(all) > 0, ""
		if gotOK {
			gotMatch = all[0]
		}
		if gotOK != wantOK {
			t.Errorf("pattern %q against %q: ok = %v, regexp2 says %v", tc.pattern, tc.text, gotOK, wantOK)
			continue
		}
		if gotOK && gotMatch != wantMatch {
			t.Errorf("pattern %q against %q: match = %q, regexp2 says %q", tc.pattern, tc.text, gotMatch, wantMatch)
		}
	}
}

// TestOracleAllMatchesAgree cross-checks MatchAll's non-overlapping scan
// against regexp2's repeated FindNextMatch for a handful of patterns where
// the first match doesn't necessarily start at offset 0.
func TestOracleAllMatchesAgree(t *testing.T) {
	cases := []struct{ pattern, text string }{
		{`\w+`, "foo bar baz"},
		{`\d+`, "12 apples, 7 oranges"},
		{"a+", "xaaxaaax"},
	}
	for _, tc := range cases {
		re, err := regexp2.Compile(tc.pattern, regexp2.RegexOptions(0))
		if err != nil {
			t.Fatalf("regexp2.Compile(%q) failed: %v", tc.pattern, err)
		}
		var want []string
		m, err := re.FindStringMatch(tc.text)
		for m != nil {
			if err != nil {
				t.Fatalf("regexp2 iteration over %q failed: %v", tc.text, err)
			}
			want = append(want, m.String())
			m, err = re.FindNextMatch(m)
		}

		autom := Compile(tc.pattern)
		if autom.CompileError != nil {
			t.Fatalf("Compile(%q) failed: %v", tc.pattern, autom.CompileError)
		}
		got := autom.MatchAll([]rune(tc.text))
		if len(got) != len(want) {
			t.Errorf("MatchAll(%q) = %+v, regexp2 says %+v", tc.pattern, got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("MatchAll(%q)[%d] = %q, regexp2 says %q", tc.pattern, i, got[i], want[i])
			}
		}
	}
}
