package grex

import "testing"

func TestCompileErrorRefusesToMatch(t *testing.T) {
	autom := Compile(`(unterminated`)
	if autom.CompileError == nil {
		t.Fatalf("expected a compile error")
	}
	if ok := autom.Match([]rune("unterminated")); ok {
		t.Fatalf("an automaton with a compile error must never match")
	}
}

func TestCompileInstrsSkipsTranslator(t *testing.T) {
	p := newParser(`ab`, 64)
	instrs, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	autom := CompileInstrs(instrs)
	if autom.CompileError != nil {
		t.Fatalf("unexpected compile error: %v", autom.CompileError)
	}
	ok, got := autom.MatchFrom([]rune("ab"), 0)
	if !ok || got != "ab" {
		t.Fatalf("MatchFrom = %v,%q, want true,%q", ok, got, "ab")
	}
}

func TestCodeHookInvoked(t *testing.T) {
	seen := ""
	hooks := NewHookRegistry().Register("mark", func(it Iter) Iter {
		seen = it.Slice(it.AtEnd())
		return it
	})
	autom := Compile(`a(?{mark})b`, WithHooks(hooks))
	if autom.CompileError != nil {
		t.Fatalf("unexpected compile error: %v", autom.CompileError)
	}
	ok, got := autom.MatchFrom([]rune("ab"), 0)
	if !ok || got != "ab" {
		t.Fatalf("MatchFrom = %v,%q, want true,%q", ok, got, "ab")
	}
	if seen != "b" {
		t.Fatalf("hook saw remainder %q, want %q", seen, "b")
	}
}

func TestCodeHookMissingIsNoOp(t *testing.T) {
	autom := Compile(`a(?{absent})b`)
	if autom.CompileError != nil {
		t.Fatalf("unexpected compile error: %v", autom.CompileError)
	}
	if ok, got := autom.MatchFrom([]rune("ab"), 0); !ok || got != "ab" {
		t.Fatalf("an unregistered hook name should be a harmless no-op, got ok=%v got=%q", ok, got)
	}
}

func TestPreSetAndPreResetManualCaptures(t *testing.T) {
	autom := Compile(`(?$<who>)hi \k<who>`)
	if autom.CompileError != nil {
		t.Fatalf("unexpected compile error: %v", autom.CompileError)
	}
	autom.PreSetCaptures(map[any]string{"who": "sam"})
	ok, got := autom.MatchFrom([]rune("hi sam"), 0)
	if !ok || got != "hi sam" {
		t.Fatalf("MatchFrom = %v,%q, want true,%q", ok, got, "hi sam")
	}

	autom.PreResetCaptures([]any{"who"})
	text, ok2 := autom.GetCapture("who")
	if ok2 {
		t.Fatalf("GetCapture(%q) after PreResetCaptures should report not-succeeded, got %q", "who", text)
	}
}

func TestMaxDepthAbortsDeepRecursion(t *testing.T) {
	autom := Compile(`a(?R)?`, WithMaxDepth(3))
	if autom.CompileError != nil {
		t.Fatalf("unexpected compile error: %v", autom.CompileError)
	}
	text := []rune("aaaaaaaaaa")
	ok, _ := autom.MatchFrom(text, 0)
	if ok {
		t.Fatalf("recursion past MaxDepth should not silently succeed")
	}
	if len(autom.RuntimeErrors) == 0 {
		t.Fatalf("expected a recorded runtime error once MaxDepth is exceeded")
	}
}

func TestWithMaxNestingDepthRejectsDeepPattern(t *testing.T) {
	pat := ""
	for i := 0; i < 10; i++ {
		pat += "(?:"
	}
	pat += "a"
	for i := 0; i < 10; i++ {
		pat += ")"
	}
	autom := Compile(pat, WithMaxNestingDepth(3))
	if autom.CompileError == nil {
		t.Fatalf("expected a nesting-limit compile error")
	}
	if autom.CompileError.Kind != ErrNestingLimitExceeded {
		t.Fatalf("Kind = %v, want ErrNestingLimitExceeded", autom.CompileError.Kind)
	}
}

func TestGetCaptureUnknownKey(t *testing.T) {
	autom := Compile(`(a)`)
	if _, ok := autom.GetCapture("nope"); ok {
		t.Fatalf("GetCapture on an unknown name should report not-ok")
	}
	if _, ok := autom.GetCapture(99); ok {
		t.Fatalf("GetCapture on an out-of-range index should report not-ok")
	}
}
