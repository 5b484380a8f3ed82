package grex

// NodeKind tags the variant a Node carries. Node is a single tagged
// struct rather than an interface hierarchy: one concrete type, a kind
// tag, and a handful of kind-specific fields left zero for every other
// kind.
type NodeKind int

const (
	NodeLiteral NodeKind = iota
	NodeAnchorStart
	NodeAnchorEnd
	NodeWordBoundary
	NodeBackref
	NodeCapture
	NodeNonCapture
	NodeLookAhead
	NodeLookBehind
	NodeLoop
	NodeRecursion
	NodeSubroutine
	NodeConditional
	NodeCodeHook
	NodeGhostIn
	NodeGhostOut
)

// CaptureSlot is a capture site's persistent record across a match: a
// success flag (embedded in Cap/CapColl), a manual flag skipping
// automatic reset, and pointers to the initial and most-recently-written
// group node, used by subroutines and by Reset.
type CaptureSlot struct {
	Index      int
	Name       string
	Collection bool

	Cap     Capture
	CapColl CaptureCollection

	Manual         bool
	InitialCapture *Node
	LastCapture    *Node
}

func (cs *CaptureSlot) succeeded() bool {
	if cs.Collection {
		return cs.CapColl.Last.Succeeded
	}
	return cs.Cap.Succeeded
}

func (cs *CaptureSlot) text() string {
	if cs.Collection {
		return cs.CapColl.Last.text()
	}
	return cs.Cap.text()
}

// reset clears a non-manual slot back to its declaration-time empty state
// and points LastCapture back at InitialCapture, per the design notes on
// subroutine call targets.
func (cs *CaptureSlot) reset() {
	if cs.Manual {
		return
	}
	cs.Cap = Capture{}
	cs.CapColl = CaptureCollection{}
	cs.LastCapture = cs.InitialCapture
}

// Node is a single vertex of the graph automaton. Exactly one set of the
// kind-specific fields below is meaningful for any given Kind.
type Node struct {
	Kind NodeKind

	// Nexts holds ordered real-successor candidates for every kind except
	// GhostOut. Order matters: the shared backtracking walk in chunk.go
	// tries them in this order, which is what implements quantifier
	// ceding without any separate "try outer takers" mechanism. A bounded
	// Loop's Nexts holds only the continuation after the repeat;
	// successorsAfter in chunk.go adds the loop itself first (greedy) or
	// last (lazy). None-or-once/more are not
	// separate node kinds at all — they are ghost-wiring patterns built in
	// assembler.go, using a shared ghost-in as the branch/loop point, since
	// Ghost-In/Ghost-Out already supply the zero-width connector the
	// construct needs.
	Nexts []*Node

	// Targets holds the ghost-ins an GhostOut feeds; meaningful only when
	// Kind == NodeGhostOut.
	Targets []*Node

	// Literal
	Class     *Class
	Prefilter *literalPrefilter

	// AnchorStart / AnchorEnd. MultiLine means different things for each:
	// on AnchorStart it allows matching right after any line delimiter; on
	// AnchorEnd it allows matching right before any line delimiter. \A and
	// \z set Exclusive and leave MultiLine false (absolute start/end only).
	// \Z leaves MultiLine false too (always "end, or just before a single
	// trailing newline") regardless of the pattern's own (?m) setting.
	Exclusive        bool
	GateLastMatchEnd bool // \G
	MultiLine        bool
	UnixLines        bool

	// WordBoundary / class-based negation shared by a few kinds
	Negate bool

	// Backref / Subroutine
	Ref  *CaptureSlot
	Name string

	// Capture / NonCapture / LookAhead / LookBehind / Loop: inner
	// sub-automaton boundary.
	Ins  []*Node
	Outs []*Node
	Lazy bool

	// Loop
	TickerIdx int
	Min, Max  int

	// Conditional
	CondIns, CondOuts []*Node
	ThenIns, ThenOuts []*Node
	ElseIns, ElseOuts []*Node
	CondIsBackref     bool
	HasElse           bool

	// CodeHook
	HookName string
}

// Frame is one entry of the outer-node stack threaded through CanEnter:
// the lexical chain of enclosing group/loop/recursion nodes. Those nodes
// push a frame while their inner walk runs, but nothing reads the stack
// back: depth limits use the counters on MatchState, and quantifier ceding
// itself falls out of ordinary
// backtracking over GetNexts (see chunk.go) and needs no separate walk.
type Frame struct {
	Node *Node
}

// MatchState is the per-match context threaded through every CanEnter
// call: the outer-node stack, recursion/subroutine depth counters, and a
// handle back to the owning Automaton for recursion re-entry, hooks, and
// runtime-error recording.
type MatchState struct {
	Automaton       *Automaton
	Outer           []*Frame
	RecursionDepth  int
	SubroutineDepth int
	MaxDepth        int
	Aborted         bool

	zeroGuard map[zeroWidthKey]bool
}

func (ms *MatchState) push(n *Node) func() {
	ms.Outer = append(ms.Outer, &Frame{Node: n})
	return func() { ms.Outer = ms.Outer[:len(ms.Outer)-1] }
}

// CanEnter is the single predicate+advance contract shared by every node
// kind. It reports whether the node accepts at it, and if so the iterator
// position the match should continue from: each kind returns the
// iterator already at its exact resulting position, so there is no
// separate outer-loop advance step to compensate for.
func (n *Node) CanEnter(it Iter, ms *MatchState) (Iter, bool) {
	switch n.Kind {
	case NodeLiteral:
		if n.Prefilter != nil && n.Prefilter.rejects(it) {
			return it, false
		}
		ok, w := n.Class.Match(it)
		if !ok {
			return it, false
		}
		return it.Advance(w), true

	case NodeAnchorStart:
		return it, n.matchAnchorStart(it, ms)

	case NodeAnchorEnd:
		return it, n.matchAnchorEnd(it)

	case NodeWordBoundary:
		return it, n.matchWordBoundary(it)

	case NodeBackref:
		return n.matchBackref(it)

	case NodeCapture, NodeNonCapture:
		return n.matchGroup(it, ms)

	case NodeLookAhead:
		return n.matchLookAhead(it, ms)

	case NodeLookBehind:
		return n.matchLookBehind(it, ms)

	case NodeLoop:
		return n.matchLoop(it, ms)

	case NodeRecursion:
		return n.matchRecursion(it, ms)

	case NodeSubroutine:
		return n.matchSubroutine(it, ms)

	case NodeConditional:
		return n.matchConditional(it, ms)

	case NodeCodeHook:
		return n.matchCodeHook(it, ms)

	case NodeGhostIn, NodeGhostOut:
		return it, true

	default:
		return it, false
	}
}

// GetNexts returns this node's ordered list of real successor candidates.
// Ghost-In and Ghost-Out already store their successors in Nexts/Targets
// in a form the matcher's expandGhosts helper knows how to flatten.
func (n *Node) GetNexts() []*Node {
	if n.Kind == NodeGhostOut {
		return n.Targets
	}
	return n.Nexts
}

// SimilarTo reports whether two nodes are interchangeable for Collapse
// purposes: only plain (non-group, non-referential) literal/anchor/word-
// boundary nodes with identical predicates ever compare similar. Group
// and referential nodes carry identity-sensitive bindings and must never
// merge with a sibling.
func (n *Node) SimilarTo(other *Node) bool {
	if other == nil || n.Kind != other.Kind {
		return false
	}
	switch n.Kind {
	case NodeLiteral:
		return classKey(n.Class) == classKey(other.Class)
	case NodeAnchorStart:
		return n.Exclusive == other.Exclusive && n.GateLastMatchEnd == other.GateLastMatchEnd &&
			n.MultiLine == other.MultiLine && n.UnixLines == other.UnixLines
	case NodeAnchorEnd:
		return n.Exclusive == other.Exclusive && n.MultiLine == other.MultiLine &&
			n.UnixLines == other.UnixLines
	case NodeWordBoundary:
		return n.Negate == other.Negate
	case NodeGhostIn, NodeGhostOut:
		return true
	default:
		// Capture, NonCapture, LookAhead/Behind, loops, backrefs,
		// subroutines, recursion, conditionals, code-hooks: never similar.
		return false
	}
}

// Incorporate merges other's real/ghost successor sets into n, used when
// Collapse decides other is SimilarTo n and folds it away.
func (n *Node) Incorporate(other *Node) {
	n.Nexts = append(n.Nexts, other.Nexts...)
	n.Targets = append(n.Targets, other.Targets...)
}

func classKey(c *Class) string {
	if c == nil {
		return ""
	}
	switch c.Op {
	case ClassLiteral:
		neg := "0"
		if c.Negate {
			neg = "1"
		}
		s := neg
		for _, sym := range c.Symbols {
			s += "|" + sym.Key()
		}
		return s
	case ClassUnion:
		return "U(" + classKey(c.L) + "," + classKey(c.R) + ")"
	case ClassSubtract:
		return "S(" + classKey(c.L) + "," + classKey(c.R) + ")"
	case ClassIntersect:
		return "I(" + classKey(c.L) + "," + classKey(c.R) + ")"
	default:
		return ""
	}
}
