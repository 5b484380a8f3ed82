package grex

import (
	"bytes"
	"fmt"
	"strconv"
)

// Opcode enumerates the postfix instruction stream's record types. The
// parser emits these in postfix order; the assembler consumes them with a
// stack machine.
type Opcode byte

const (
	OpMakeCapture Opcode = iota
	OpMakeCaptureCollection
	OpMakeCharClassSymbol
	OpMakeCharClassLigatureSymbol
	OpMakeLiteralCharClass
	OpMakeUnitedCharClass
	OpMakeSubtractedCharClass
	OpMakeIntersectedCharClass
	OpLiteral
	OpStartCheck
	OpEndCheck
	OpWordBoundary
	OpBackrefNumbered
	OpBackrefNamed
	OpSubroutineNumbered
	OpSubroutineNamed
	OpRecursion
	OpCaptureGroupNumbered
	OpCaptureGroupNamed
	OpNonCaptureGroup
	OpLookAhead
	OpLookBehind
	OpDefineAsSubroutine
	OpCodeHook
	OpConditional
	OpNOnce
	OpNOnceLazy
	OpNPlus
	OpNPlusLazy
	OpOPlus
	OpOPlusLazy
	OpRepeat
	OpRepeatLazy
	OpConcat
	OpAlternate
)

// Instr is one postfix instruction stream record: an opcode plus its
// per-opcode string arguments. Booleans are spelled "t"/"f", indices as
// decimal text, matching the wire format in §6.3.
type Instr struct {
	Op   Opcode
	Args []string
}

func boolArg(b bool) string {
	if b {
		return "t"
	}
	return "f"
}

func parseBoolArg(s string) bool { return s == "t" }

// EncodeInstrs serializes a postfix instruction stream: the instruction
// count, then for each instruction its opcode byte, argument count, and
// each argument as a decimal length followed by its literal text.
func EncodeInstrs(instrs []Instr) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d\n", len(instrs))
	for _, ins := range instrs {
		fmt.Fprintf(&buf, "%d %d", ins.Op, len(ins.Args))
		for _, a := range ins.Args {
			fmt.Fprintf(&buf, " %d %s", len(a), a)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

type instrReader struct {
	data []byte
	pos  int
}

func (r *instrReader) skipSpace() {
	for r.pos < len(r.data) && isWireSpace(r.data[r.pos]) {
		r.pos++
	}
}

func isWireSpace(b byte) bool { return b == ' ' || b == '\n' || b == '\t' || b == '\r' }

func (r *instrReader) readToken() (string, bool) {
	r.skipSpace()
	start := r.pos
	for r.pos < len(r.data) && !isWireSpace(r.data[r.pos]) {
		r.pos++
	}
	if start == r.pos {
		return "", false
	}
	return string(r.data[start:r.pos]), true
}

func (r *instrReader) readInt() (int, error) {
	tok, ok := r.readToken()
	if !ok {
		return 0, fmt.Errorf("grex: unexpected end of instruction stream")
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("grex: malformed integer field %q: %w", tok, err)
	}
	return n, nil
}

func (r *instrReader) readText(n int) (string, error) {
	// EncodeInstrs writes exactly one space before the text, and the text
	// itself may begin with whitespace, so only that one space is skipped.
	if r.pos < len(r.data) && r.data[r.pos] == ' ' {
		r.pos++
	}
	if r.pos+n > len(r.data) {
		return "", fmt.Errorf("grex: truncated instruction stream argument")
	}
	s := string(r.data[r.pos : r.pos+n])
	r.pos += n
	return s, nil
}

// DecodeInstrs parses the wire format produced by EncodeInstrs.
func DecodeInstrs(data []byte) ([]Instr, error) {
	r := &instrReader{data: data}
	count, err := r.readInt()
	if err != nil {
		return nil, err
	}
	instrs := make([]Instr, 0, count)
	for i := 0; i < count; i++ {
		opInt, err := r.readInt()
		if err != nil {
			return nil, fmt.Errorf("grex: instruction %d: %w", i, err)
		}
		if opInt < 0 || opInt > int(OpAlternate) {
			return nil, &CompileError{Kind: ErrUnknownOpcode, Pos: -1, Msg: fmt.Sprintf("opcode %d", opInt)}
		}
		argc, err := r.readInt()
		if err != nil {
			return nil, fmt.Errorf("grex: instruction %d: %w", i, err)
		}
		args := make([]string, argc)
		for j := 0; j < argc; j++ {
			length, err := r.readInt()
			if err != nil {
				return nil, fmt.Errorf("grex: instruction %d arg %d: %w", i, j, err)
			}
			text, err := r.readText(length)
			if err != nil {
				return nil, fmt.Errorf("grex: instruction %d arg %d: %w", i, j, err)
			}
			args[j] = text
		}
		instrs = append(instrs, Instr{Op: Opcode(opInt), Args: args})
	}
	return instrs, nil
}
