package grex

import "testing"

func TestEncodeDecodeInstrsRoundTrip(t *testing.T) {
	instrs := []Instr{
		{Op: OpMakeCharClassSymbol, Args: []string{"97", "122", "f"}},
		{Op: OpMakeLiteralCharClass, Args: []string{"f", "f", "0"}},
		{Op: OpLiteral, Args: []string{"0"}},
		{Op: OpCaptureGroupNamed, Args: []string{"greeting", "f"}},
		{Op: OpBackrefNamed, Args: []string{"greeting"}},
		{Op: OpConcat, Args: nil},
	}

	wire := EncodeInstrs(instrs)
	got, err := DecodeInstrs(wire)
	if err != nil {
		t.Fatalf("DecodeInstrs failed: %v", err)
	}
	if len(got) != len(instrs) {
		t.Fatalf("decoded %d instructions, want %d", len(got), len(instrs))
	}
	for i, ins := range instrs {
		if got[i].Op != ins.Op {
			t.Errorf("instr %d: Op = %v, want %v", i, got[i].Op, ins.Op)
		}
		if len(got[i].Args) != len(ins.Args) {
			t.Errorf("instr %d: %d args, want %d", i, len(got[i].Args), len(ins.Args))
			continue
		}
		for j, a := range ins.Args {
			if got[i].Args[j] != a {
				t.Errorf("instr %d arg %d = %q, want %q", i, j, got[i].Args[j], a)
			}
		}
	}
}

func TestEncodeDecodeEmptyArgText(t *testing.T) {
	instrs := []Instr{{Op: OpConcat, Args: []string{""}}}
	wire := EncodeInstrs(instrs)
	got, err := DecodeInstrs(wire)
	if err != nil {
		t.Fatalf("DecodeInstrs failed: %v", err)
	}
	if len(got) != 1 || len(got[0].Args) != 1 || got[0].Args[0] != "" {
		t.Fatalf("round-trip of an empty argument failed: %+v", got)
	}
}

func TestDecodeInstrsUnknownOpcode(t *testing.T) {
	wire := []byte("1\n999 0\n")
	if _, err := DecodeInstrs(wire); err == nil {
		t.Fatalf("DecodeInstrs should reject an opcode beyond OpAlternate")
	}
}

func TestDecodeInstrsTruncated(t *testing.T) {
	wire := []byte("1\n0 1 5 ab\n")
	if _, err := DecodeInstrs(wire); err == nil {
		t.Fatalf("DecodeInstrs should reject a truncated argument")
	}
}

func TestBoolArgRoundTrip(t *testing.T) {
	if !parseBoolArg(boolArg(true)) {
		t.Fatalf("boolArg/parseBoolArg round-trip of true failed")
	}
	if parseBoolArg(boolArg(false)) {
		t.Fatalf("boolArg/parseBoolArg round-trip of false failed")
	}
}
