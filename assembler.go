package grex

import "fmt"

// Automaton is the compiled graph plus everything a match needs to walk
// it: capture slots in declaration order, a name→slot index, defined-only
// subroutines, loop tickers, the automaton-level start/end boundary used
// by recursion and the top-level matcher, and the mutable bookkeeping a
// match leaves behind (RuntimeErrors, LastMatchEnd).
//
// An Automaton is not safe for concurrent matches: Match mutates Captures
// and Tickers in place. Compile separate Automatons from the same source
// (or pattern) to match concurrently.
type Automaton struct {
	Captures        []*CaptureSlot
	NameToCapture   map[string]*CaptureSlot
	DefinedSubs     map[string]*CaptureSlot
	Tickers         []Ticker
	StartNodes      []*Node
	EndNodes        []*Node
	Hooks           map[string]HookFunc

	StartsWithAnchor bool
	EndsWithAnchor   bool

	MaxNestingDepth int
	MaxDepth        int

	CompileError  *CompileError
	RuntimeErrors []error
	LastMatchEnd  int

	prefilters []*literalPrefilter
}

// HookFunc is a user-supplied code-hook body: given the iterator at the
// hook's position, it returns the iterator the match should continue
// from (advancing it is the hook's prerogative).
type HookFunc func(Iter) Iter

type captureSnap struct {
	cap         Capture
	coll        CaptureCollection
	lastCapture *Node
}

type stateSnapshot struct {
	caps    []captureSnap
	tickers []Ticker
}

func (a *Automaton) snapshot() stateSnapshot {
	caps := make([]captureSnap, len(a.Captures))
	for i, cs := range a.Captures {
		if cs == nil {
			continue
		}
		caps[i] = captureSnap{cap: cs.Cap, coll: cs.CapColl.snapshot(), lastCapture: cs.LastCapture}
	}
	return stateSnapshot{caps: caps, tickers: append([]Ticker(nil), a.Tickers...)}
}

func (a *Automaton) restore(s stateSnapshot) {
	for i, cs := range a.Captures {
		if cs == nil {
			continue
		}
		cs.Cap = s.caps[i].cap
		cs.CapColl.restore(s.caps[i].coll)
		cs.LastCapture = s.caps[i].lastCapture
	}
	copy(a.Tickers, s.tickers)
}

// resetForMatch clears every non-manual capture, every defined-only
// subroutine capture, and every ticker before a fresh match attempt.
// Captures[0] is reserved and nil, so it is skipped here and in
// snapshot/restore.
func (a *Automaton) resetForMatch() {
	a.RuntimeErrors = nil
	for _, cs := range a.Captures {
		if cs == nil {
			continue
		}
		cs.reset()
	}
	for _, cs := range a.DefinedSubs {
		cs.reset()
	}
	for i := range a.Tickers {
		a.Tickers[i] = a.Tickers[i].Reset()
	}
}

// pendingLink records a referential node's binding intent, to be resolved
// once every capture group in the pattern has been seen.
type pendingLink struct {
	node  *Node
	index int
	name  string
}

type assembler struct {
	autom *Automaton

	symbols []Symbol
	classes []*Class

	stack []LooseEnds

	backrefNumbered    []pendingLink
	backrefNamed       []pendingLink
	subroutineNumbered []pendingLink
	subroutineNamed    []pendingLink
	captureLinks       []pendingLink
	recursionNodes     []*Node

	err *CompileError
}

func newAssembler(hooks map[string]HookFunc, maxDepth int) *assembler {
	a := &Automaton{
		NameToCapture: map[string]*CaptureSlot{},
		DefinedSubs:   map[string]*CaptureSlot{},
		Hooks:         hooks,
		MaxDepth:      maxDepth,
		Captures:      []*CaptureSlot{nil}, // index 0 reserved, unused
	}
	return &assembler{autom: a}
}

func (as *assembler) push(le LooseEnds) { as.stack = append(as.stack, le) }

func (as *assembler) pop() (LooseEnds, error) {
	if len(as.stack) == 0 {
		return LooseEnds{}, fmt.Errorf("grex: instruction stream underflow")
	}
	le := as.stack[len(as.stack)-1]
	as.stack = as.stack[:len(as.stack)-1]
	return le, nil
}

func (as *assembler) captureSlot(index int, name string, collection bool) *CaptureSlot {
	for len(as.autom.Captures) <= index {
		as.autom.Captures = append(as.autom.Captures, nil)
	}
	if cs := as.autom.Captures[index]; cs != nil {
		return cs // every branch of a branch-reset group declares the same index
	}
	cs := &CaptureSlot{Index: index, Name: name, Collection: collection}
	as.autom.Captures[index] = cs
	if name != "" {
		as.autom.NameToCapture[name] = cs
	}
	return cs
}

// passthrough is a zero-cost, zero-width chunk: a single ghost-in wired
// straight to a single ghost-out, with no real node in between. It backs
// DEFINE blocks, which contribute nothing at their own lexical position.
func passthrough() LooseEnds {
	gin, gout := newGhostIn(), newGhostOut()
	gin.Nexts = []*Node{gout}
	c := &Chunk{Nodes: []*Node{gin, gout}, Ins: []*Node{gin}, Outs: []*Node{gout}}
	return LooseEnds{Chunks: []*Chunk{c}, Ins: []*Node{gin}, Outs: []*Node{gout}}
}

// buildNoneOrOnce implements `?`: one optional pass through body. Taking
// body and skipping it both flow to the same continuation; no back-edge.
func buildNoneOrOnce(body LooseEnds, greedy bool) LooseEnds {
	decisionIn := newGhostIn()
	skip := newGhostOut()
	bodyNexts := flattenNexts(body.Ins)
	if greedy {
		decisionIn.Nexts = append(append([]*Node{}, bodyNexts...), skip)
	} else {
		decisionIn.Nexts = append([]*Node{skip}, bodyNexts...)
	}
	outs := append([]*Node{skip}, body.Outs...)
	c := &Chunk{Nodes: []*Node{decisionIn, skip}, Ins: []*Node{decisionIn}, Outs: outs}
	le := LooseEnds{Chunks: append([]*Chunk{c}, body.Chunks...), Ins: []*Node{decisionIn}, Outs: outs}
	return le
}

// buildNoneOrMore implements `*`: body's exit loops back to the same
// decision point instead of flowing onward, the classic Kleene-star NFA
// shape (entry --body--> entry, entry --direct--> exit).
func buildNoneOrMore(body LooseEnds, greedy bool) LooseEnds {
	decisionIn := newGhostIn()
	skip := newGhostOut()
	bodyNexts := flattenNexts(body.Ins)
	if greedy {
		decisionIn.Nexts = append(append([]*Node{}, bodyNexts...), skip)
	} else {
		decisionIn.Nexts = append([]*Node{skip}, bodyNexts...)
	}
	for _, o := range body.Outs {
		o.Targets = append(o.Targets, decisionIn)
	}
	c := &Chunk{Nodes: []*Node{decisionIn, skip}, Ins: []*Node{decisionIn}, Outs: []*Node{skip}}
	le := LooseEnds{Chunks: append([]*Chunk{c}, body.Chunks...), Ins: []*Node{decisionIn}, Outs: []*Node{skip}}
	return le
}

// buildOnePlus implements `+` by desugaring to a mandatory first pass
// concatenated with a none-or-more tail over an independent clone of the
// body; there is no dedicated one-or-more node kind.
func buildOnePlus(mandatory, tailBody LooseEnds, greedy bool) LooseEnds {
	return Concat(mandatory, buildNoneOrMore(tailBody, greedy))
}

func (as *assembler) newTicker(min, max int) int {
	as.autom.Tickers = append(as.autom.Tickers, NewTicker(min, max))
	return len(as.autom.Tickers) - 1
}

func (as *assembler) detectBackrefCondition(cond LooseEnds) (*CaptureSlot, bool) {
	cands := expandGhosts(flattenNexts(cond.Ins))
	if len(cands) != 1 || cands[0].Kind != NodeBackref {
		return nil, false
	}
	return cands[0].Ref, true
}

// cloneLooseEnds deep-copies every node reachable from le's chunks and
// rewires all internal pointers to the clones, used by `+` to obtain an
// independent tail instance of a body that was only emitted once in the
// instruction stream. Pending referential links (backref/subroutine/
// capture bindings not yet resolved by post-link) are duplicated for any
// cloned node, so post-link binds the clone as well as the original.
func (as *assembler) cloneLooseEnds(le LooseEnds) LooseEnds {
	cloneMap := map[*Node]*Node{}
	get := func(n *Node) *Node {
		if n == nil {
			return nil
		}
		if c, ok := cloneMap[n]; ok {
			return c
		}
		c := &Node{}
		*c = *n
		cloneMap[n] = c
		return c
	}
	seenChunk := map[*Chunk]bool{}
	var allOrig []*Node
	for _, ch := range le.Chunks {
		if seenChunk[ch] {
			continue
		}
		seenChunk[ch] = true
		allOrig = append(allOrig, ch.Nodes...)
	}
	for _, n := range allOrig {
		get(n)
	}
	mapList := func(ns []*Node) []*Node {
		if ns == nil {
			return nil
		}
		out := make([]*Node, len(ns))
		for i, x := range ns {
			out[i] = get(x)
		}
		return out
	}
	for orig, clone := range cloneMap {
		clone.Nexts = mapList(orig.Nexts)
		clone.Targets = mapList(orig.Targets)
		clone.Ins = mapList(orig.Ins)
		clone.Outs = mapList(orig.Outs)
		clone.CondIns = mapList(orig.CondIns)
		clone.CondOuts = mapList(orig.CondOuts)
		clone.ThenIns = mapList(orig.ThenIns)
		clone.ThenOuts = mapList(orig.ThenOuts)
		clone.ElseIns = mapList(orig.ElseIns)
		clone.ElseOuts = mapList(orig.ElseOuts)
	}

	dup := func(links []pendingLink) []pendingLink {
		var extra []pendingLink
		for _, pl := range links {
			if c, ok := cloneMap[pl.node]; ok {
				extra = append(extra, pendingLink{node: c, index: pl.index, name: pl.name})
			}
		}
		return extra
	}
	as.backrefNumbered = append(as.backrefNumbered, dup(as.backrefNumbered)...)
	as.backrefNamed = append(as.backrefNamed, dup(as.backrefNamed)...)
	as.subroutineNumbered = append(as.subroutineNumbered, dup(as.subroutineNumbered)...)
	as.subroutineNamed = append(as.subroutineNamed, dup(as.subroutineNamed)...)
	as.captureLinks = append(as.captureLinks, dup(as.captureLinks)...)

	newChunks := make([]*Chunk, 0, len(le.Chunks))
	for _, ch := range le.Chunks {
		newChunks = append(newChunks, &Chunk{Nodes: mapList(ch.Nodes), Ins: mapList(ch.Ins), Outs: mapList(ch.Outs)})
	}
	return LooseEnds{Chunks: newChunks, Ins: mapList(le.Ins), Outs: mapList(le.Outs)}
}

// Assemble consumes a postfix instruction stream and builds the graph
// automaton it describes: a stack machine for the atomic/binary/grouping
// instructions, six pending-link tables for referential instructions, and
// a post-link pass that resolves every backref/subroutine/recursion/
// capture binding once every capture group in the pattern has been seen.
func Assemble(instrs []Instr, hooks HookRegistry, maxNestingDepth, maxDepth int) *Automaton {
	as := newAssembler(hooks, maxDepth)
	as.autom.MaxNestingDepth = maxNestingDepth

	for i, ins := range instrs {
		if err := as.step(ins); err != nil {
			as.autom.CompileError = toCompileError(err, i)
			return as.autom
		}
	}
	if len(as.stack) != 1 {
		as.autom.CompileError = newCompileErr(ErrUnknownOpcode, -1, "instruction stream left %d loose ends on the stack, want 1", len(as.stack))
		return as.autom
	}

	if err := as.postLink(); err != nil {
		as.autom.CompileError = toCompileError(err, -1)
		return as.autom
	}

	final, _ := Collapse(as.stack[0])
	final = Prune(final)
	as.autom.StartNodes = final.Ins
	as.autom.EndNodes = final.Outs
	as.autom.StartsWithAnchor = startsWithAnchor(final.Ins)
	as.autom.EndsWithAnchor = endsWithAnchor(final)
	return as.autom
}

func toCompileError(err error, pos int) *CompileError {
	if ce, ok := err.(*CompileError); ok {
		return ce
	}
	return newCompileErr(ErrUnknownOpcode, pos, "%s", err.Error())
}

func startsWithAnchor(ins []*Node) bool {
	for _, n := range expandGhosts(flattenNexts(ins)) {
		if n.Kind == NodeAnchorStart {
			return true
		}
		return false
	}
	return false
}

func endsWithAnchor(le LooseEnds) bool {
	targets := nodeSet(le.Outs)
	seen := map[*Node]bool{}
	var rec func(n *Node) bool
	rec = func(n *Node) bool {
		if seen[n] {
			return false
		}
		seen[n] = true
		if n.Kind == NodeAnchorEnd && reachesAny(n.Nexts, targets) {
			return true
		}
		return false
	}
	for _, n := range expandGhosts(flattenNexts(le.Ins)) {
		if rec(n) {
			return true
		}
	}
	return false
}

func (as *assembler) step(ins Instr) error {
	switch ins.Op {
	case OpMakeCharClassSymbol:
		lo, hi := runeArg(ins.Args[0]), runeArg(ins.Args[1])
		as.symbols = append(as.symbols, NewRangeSymbol(lo, hi, parseBoolArg(ins.Args[2])))

	case OpMakeCharClassLigatureSymbol:
		as.symbols = append(as.symbols, NewLigatureSymbol([]rune(ins.Args[0]), parseBoolArg(ins.Args[1])))

	case OpMakeLiteralCharClass:
		negate, ci := parseBoolArg(ins.Args[0]), parseBoolArg(ins.Args[1])
		var syms []Symbol
		for _, a := range ins.Args[2:] {
			idx := intArg(a)
			if idx >= 0 && idx < len(as.symbols) {
				syms = append(syms, as.symbols[idx])
			}
		}
		as.classes = append(as.classes, NewLiteralClass(syms, negate, ci))

	case OpMakeUnitedCharClass:
		as.classes = append(as.classes, NewUnionClass(as.classAt(ins.Args[0]), as.classAt(ins.Args[1])))

	case OpMakeSubtractedCharClass:
		as.classes = append(as.classes, NewSubtractClass(as.classAt(ins.Args[0]), as.classAt(ins.Args[1])))

	case OpMakeIntersectedCharClass:
		as.classes = append(as.classes, NewIntersectClass(as.classAt(ins.Args[0]), as.classAt(ins.Args[1])))

	case OpLiteral:
		cls := as.classAt(ins.Args[0])
		n := &Node{Kind: NodeLiteral, Class: cls}
		if lits, ok := classLiterals(cls); ok {
			n.Prefilter = buildLiteralPrefilter(lits)
		}
		as.push(newAtomChunk(n))

	case OpStartCheck:
		as.push(newAtomChunk(&Node{
			Kind: NodeAnchorStart, Exclusive: parseBoolArg(ins.Args[0]),
			GateLastMatchEnd: parseBoolArg(ins.Args[1]), MultiLine: parseBoolArg(ins.Args[2]),
			UnixLines: parseBoolArg(ins.Args[3]),
		}))

	case OpEndCheck:
		as.push(newAtomChunk(&Node{
			Kind: NodeAnchorEnd, Exclusive: parseBoolArg(ins.Args[0]),
			MultiLine: parseBoolArg(ins.Args[1]), UnixLines: parseBoolArg(ins.Args[2]),
		}))

	case OpWordBoundary:
		as.push(newAtomChunk(&Node{Kind: NodeWordBoundary, Negate: parseBoolArg(ins.Args[0])}))

	case OpBackrefNumbered:
		// Referential nodes are bound at once when their target is already
		// declared: grouping instructions Collapse (and so clone) nodes
		// before postLink runs, and a clone keeps the Ref its original had
		// then. postLink still binds the originals and forward references.
		n := &Node{Kind: NodeBackref}
		n.Ref, _ = as.resolveNumbered(intArg(ins.Args[0]))
		as.backrefNumbered = append(as.backrefNumbered, pendingLink{node: n, index: intArg(ins.Args[0])})
		as.push(newAtomChunk(n))

	case OpBackrefNamed:
		n := &Node{Kind: NodeBackref}
		n.Ref, _ = as.resolveNamed(ins.Args[0])
		as.backrefNamed = append(as.backrefNamed, pendingLink{node: n, name: ins.Args[0]})
		as.push(newAtomChunk(n))

	case OpSubroutineNumbered:
		n := &Node{Kind: NodeSubroutine}
		n.Ref, _ = as.resolveNumbered(intArg(ins.Args[0]))
		as.subroutineNumbered = append(as.subroutineNumbered, pendingLink{node: n, index: intArg(ins.Args[0])})
		as.push(newAtomChunk(n))

	case OpSubroutineNamed:
		n := &Node{Kind: NodeSubroutine, Name: ins.Args[0]}
		n.Ref, _ = as.resolveNamed(ins.Args[0])
		as.subroutineNamed = append(as.subroutineNamed, pendingLink{node: n, name: ins.Args[0]})
		as.push(newAtomChunk(n))

	case OpRecursion:
		as.push(newAtomChunk(&Node{Kind: NodeRecursion}))

	case OpMakeCapture, OpMakeCaptureCollection:
		idx := intArg(ins.Args[0])
		name := ins.Args[1]
		cs := as.captureSlot(idx, name, ins.Op == OpMakeCaptureCollection)
		cs.Manual = len(ins.Args) > 2 && parseBoolArg(ins.Args[2])

	case OpCaptureGroupNumbered:
		body, err := as.popCollapsed()
		if err != nil {
			return err
		}
		idx := intArg(ins.Args[0])
		n := &Node{Kind: NodeCapture, Lazy: parseBoolArg(ins.Args[1])}
		n.Ref, _ = as.resolveNumbered(idx)
		as.captureLinks = append(as.captureLinks, pendingLink{node: n, index: idx})
		as.push(Collapse1(WrapAsGroup(n, body)))

	case OpCaptureGroupNamed:
		body, err := as.popCollapsed()
		if err != nil {
			return err
		}
		name := ins.Args[0]
		n := &Node{Kind: NodeCapture, Name: name, Lazy: parseBoolArg(ins.Args[1])}
		n.Ref = as.autom.NameToCapture[name]
		as.captureLinks = append(as.captureLinks, pendingLink{node: n, name: name})
		as.push(Collapse1(WrapAsGroup(n, body)))

	case OpNonCaptureGroup:
		body, err := as.popCollapsed()
		if err != nil {
			return err
		}
		n := &Node{Kind: NodeNonCapture, Lazy: parseBoolArg(ins.Args[0])}
		as.push(Collapse1(WrapAsGroup(n, body)))

	case OpLookAhead:
		body, err := as.popCollapsed()
		if err != nil {
			return err
		}
		n := &Node{Kind: NodeLookAhead, Negate: parseBoolArg(ins.Args[0])}
		as.push(Collapse1(WrapAsGroup(n, body)))

	case OpLookBehind:
		body, err := as.popCollapsed()
		if err != nil {
			return err
		}
		n := &Node{Kind: NodeLookBehind, Negate: parseBoolArg(ins.Args[0])}
		as.push(Collapse1(WrapAsGroup(n, body)))

	case OpDefineAsSubroutine:
		body, err := as.popCollapsed()
		if err != nil {
			return err
		}
		name := ins.Args[0]
		n := &Node{Kind: NodeNonCapture}
		wrapped := WrapAsGroup(n, body)
		cs := &CaptureSlot{Name: name, InitialCapture: n, LastCapture: n}
		as.autom.DefinedSubs[name] = cs
		as.autom.NameToCapture[name] = cs
		_ = wrapped
		as.push(passthrough())

	case OpCodeHook:
		as.push(newAtomChunk(&Node{Kind: NodeCodeHook, HookName: ins.Args[0]}))

	case OpConditional:
		hasElse := parseBoolArg(ins.Args[0])
		var els LooseEnds
		if hasElse {
			e, err := as.pop()
			if err != nil {
				return err
			}
			els = e
		}
		then, err := as.pop()
		if err != nil {
			return err
		}
		cond, err := as.pop()
		if err != nil {
			return err
		}
		n := &Node{Kind: NodeConditional}
		if ref, ok := as.detectBackrefCondition(cond); ok {
			n.CondIsBackref = true
			n.Ref = ref
		}
		var elsPtr *LooseEnds
		if hasElse {
			elsPtr = &els
		}
		as.push(Collapse1(wrapConditional(n, cond, then, elsPtr)))

	case OpNOnce:
		body, err := as.pop()
		if err != nil {
			return err
		}
		as.push(buildNoneOrOnce(body, true))

	case OpNOnceLazy:
		body, err := as.pop()
		if err != nil {
			return err
		}
		as.push(buildNoneOrOnce(body, false))

	case OpNPlus:
		body, err := as.pop()
		if err != nil {
			return err
		}
		as.push(buildNoneOrMore(body, true))

	case OpNPlusLazy:
		body, err := as.pop()
		if err != nil {
			return err
		}
		as.push(buildNoneOrMore(body, false))

	case OpOPlus:
		body, err := as.pop()
		if err != nil {
			return err
		}
		tail := as.cloneLooseEnds(body)
		as.push(buildOnePlus(body, tail, true))

	case OpOPlusLazy:
		body, err := as.pop()
		if err != nil {
			return err
		}
		tail := as.cloneLooseEnds(body)
		as.push(buildOnePlus(body, tail, false))

	case OpRepeat, OpRepeatLazy:
		body, err := as.pop()
		if err != nil {
			return err
		}
		min, max := intArg(ins.Args[0]), intArg(ins.Args[1])
		idx := as.newTicker(min, max)
		n := &Node{Kind: NodeLoop, Lazy: ins.Op == OpRepeatLazy, TickerIdx: idx, Min: min, Max: max}
		as.push(Collapse1(WrapAsGroup(n, body)))

	case OpConcat:
		rhs, err := as.pop()
		if err != nil {
			return err
		}
		lhs, err := as.pop()
		if err != nil {
			return err
		}
		as.push(Concat(lhs, rhs))

	case OpAlternate:
		rhs, err := as.pop()
		if err != nil {
			return err
		}
		lhs, err := as.pop()
		if err != nil {
			return err
		}
		as.push(Alternate(lhs, rhs))

	default:
		return &CompileError{Kind: ErrUnknownOpcode, Pos: -1, Msg: fmt.Sprintf("opcode %d", ins.Op)}
	}
	return nil
}

// popCollapsed pops a loose-ends and immediately Collapses+Prunes it,
// done on the body before wrapping so the group's own single-node chunk
// wraps a clean inner graph.
func (as *assembler) popCollapsed() (LooseEnds, error) {
	le, err := as.pop()
	if err != nil {
		return LooseEnds{}, err
	}
	return Collapse1(le), nil
}

// Collapse1 is Collapse with Prune applied immediately after, the pairing
// every grouping instruction performs.
func Collapse1(le LooseEnds) LooseEnds {
	out, _ := Collapse(le)
	return Prune(out)
}

func (as *assembler) classAt(arg string) *Class {
	idx := intArg(arg)
	if idx < 0 || idx >= len(as.classes) {
		return universalClass()
	}
	return as.classes[idx]
}

func runeArg(s string) rune {
	n := intArg(s)
	return rune(n)
}

func intArg(s string) int {
	n := 0
	neg := false
	for i, c := range s {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		return -n
	}
	return n
}

// postLink resolves every pending referential binding once the whole
// instruction stream has been consumed and every capture group is known.
func (as *assembler) postLink() error {
	for _, pl := range as.backrefNumbered {
		cs, err := as.resolveNumbered(pl.index)
		if err != nil {
			return err
		}
		pl.node.Ref = cs
	}
	for _, pl := range as.backrefNamed {
		cs, err := as.resolveNamed(pl.name)
		if err != nil {
			return err
		}
		pl.node.Ref = cs
	}
	for _, pl := range as.subroutineNumbered {
		cs, err := as.resolveNumbered(pl.index)
		if err != nil {
			return err
		}
		pl.node.Ref = cs
	}
	for _, pl := range as.subroutineNamed {
		cs, err := as.resolveNamed(pl.name)
		if err != nil {
			return err
		}
		pl.node.Ref = cs
	}
	for _, pl := range as.captureLinks {
		var cs *CaptureSlot
		if pl.name != "" {
			cs = as.autom.NameToCapture[pl.name]
		} else {
			if pl.index < 0 || pl.index >= len(as.autom.Captures) {
				return newCompileErr(ErrUnresolvedReference, -1, "capture index %d has no declaration", pl.index)
			}
			cs = as.autom.Captures[pl.index]
		}
		if cs == nil {
			return newCompileErr(ErrUnresolvedReference, -1, "capture %q/%d has no declaration", pl.name, pl.index)
		}
		pl.node.Ref = cs
		if cs.InitialCapture == nil {
			cs.InitialCapture = pl.node
		}
		cs.LastCapture = cs.InitialCapture
	}
	// For every subroutine whose target capture never got an
	// InitialCapture, fall back to the
	// subroutine node itself, ensuring reset semantics still have
	// somewhere to point LastCapture back to.
	for _, pl := range as.subroutineNumbered {
		if pl.node.Ref != nil && pl.node.Ref.InitialCapture == nil {
			pl.node.Ref.InitialCapture = pl.node
			pl.node.Ref.LastCapture = pl.node
		}
	}
	for _, pl := range as.subroutineNamed {
		if pl.node.Ref != nil && pl.node.Ref.InitialCapture == nil {
			pl.node.Ref.InitialCapture = pl.node
			pl.node.Ref.LastCapture = pl.node
		}
	}
	return nil
}

func (as *assembler) resolveNumbered(index int) (*CaptureSlot, error) {
	if index <= 0 || index >= len(as.autom.Captures) || as.autom.Captures[index] == nil {
		return nil, newCompileErr(ErrUnresolvedReference, -1, "numbered reference %d has no matching group", index)
	}
	return as.autom.Captures[index], nil
}

func (as *assembler) resolveNamed(name string) (*CaptureSlot, error) {
	if cs, ok := as.autom.NameToCapture[name]; ok {
		return cs, nil
	}
	if cs, ok := as.autom.DefinedSubs[name]; ok {
		return cs, nil
	}
	return nil, newCompileErr(ErrUnresolvedReference, -1, "named reference %q has no matching group", name)
}
