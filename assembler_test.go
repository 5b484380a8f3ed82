package grex

import "testing"

// compileFrom is a small helper chaining Parse+Assemble without going
// through the public Compile wrapper, for tests that want to inspect the
// assembler's error classification directly.
func compileFrom(pattern string) *Automaton {
	p := newParser(pattern, 64)
	instrs, err := p.Parse()
	if err != nil {
		return &Automaton{CompileError: toCompileError(err, -1)}
	}
	return Assemble(instrs, nil, 64, 64)
}

func TestAssembleSimpleLiteral(t *testing.T) {
	autom := compileFrom("abc")
	if autom.CompileError != nil {
		t.Fatalf("unexpected compile error: %v", autom.CompileError)
	}
	if len(autom.StartNodes) == 0 || len(autom.EndNodes) == 0 {
		t.Fatalf("expected non-empty StartNodes/EndNodes")
	}
}

func TestAssembleUnresolvedBackref(t *testing.T) {
	autom := compileFrom(`\1`)
	if autom.CompileError == nil {
		t.Fatalf("expected a compile error for an unresolved backreference")
	}
	if autom.CompileError.Kind != ErrUnresolvedReference {
		t.Fatalf("Kind = %v, want ErrUnresolvedReference", autom.CompileError.Kind)
	}
}

func TestAssembleUnresolvedNamedBackref(t *testing.T) {
	autom := compileFrom(`\k<ghost>`)
	if autom.CompileError == nil || autom.CompileError.Kind != ErrUnresolvedReference {
		t.Fatalf("expected ErrUnresolvedReference for an undefined name, got %v", autom.CompileError)
	}
}

func TestAssembleInstructionUnderflow(t *testing.T) {
	autom := Assemble([]Instr{{Op: OpConcat}}, nil, 64, 64)
	if autom.CompileError == nil {
		t.Fatalf("expected a compile error for an underflowing instruction stream")
	}
}

func TestAssembleUnknownOpcode(t *testing.T) {
	autom := Assemble([]Instr{{Op: Opcode(250)}}, nil, 64, 64)
	if autom.CompileError == nil || autom.CompileError.Kind != ErrUnknownOpcode {
		t.Fatalf("expected ErrUnknownOpcode, got %v", autom.CompileError)
	}
}

func TestAssembleNumberedCaptureBindsCorrectSlot(t *testing.T) {
	autom := compileFrom(`(a)(b)`)
	if autom.CompileError != nil {
		t.Fatalf("unexpected compile error: %v", autom.CompileError)
	}
	if len(autom.Captures) != 3 { // index 0 reserved + two groups
		t.Fatalf("Captures has %d slots, want 3", len(autom.Captures))
	}
	if autom.Captures[1] == nil || autom.Captures[2] == nil {
		t.Fatalf("expected both capture slots populated")
	}
}

func TestAssembleDefineRegistersSubroutineOnly(t *testing.T) {
	autom := compileFrom(`(?(DEFINE)(?<num>\d+))(?&num)`)
	if autom.CompileError != nil {
		t.Fatalf("unexpected compile error: %v", autom.CompileError)
	}
	if _, ok := autom.DefinedSubs["num"]; !ok {
		t.Fatalf("expected DEFINE to register a subroutine named %q", "num")
	}
	if _, ok := autom.NameToCapture["num"]; !ok {
		t.Fatalf("DEFINE'd subroutine should also be resolvable by name")
	}
}

func TestAssembleBranchResetRestartsNumbering(t *testing.T) {
	autom := compileFrom(`(?|(a)|(b)(c))`)
	if autom.CompileError != nil {
		t.Fatalf("unexpected compile error: %v", autom.CompileError)
	}
	if len(autom.Captures) != 3 {
		t.Fatalf("Captures has %d slots, want 3 (index 0 reserved + groups 1,2)", len(autom.Captures))
	}
}
