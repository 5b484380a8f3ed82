package grex

// Chunk is an owned fragment of the graph: a flat bag of the nodes built
// while translating one piece of pattern syntax, bounded by ghost-in and
// ghost-out connectors. Chunks exist mainly as the unit Collapse and
// Prune operate over; once assembly finishes, matching walks the node
// graph directly and never consults Chunk again.
type Chunk struct {
	Nodes []*Node
	Ins   []*Node // boundary ghost-ins, members of Nodes
	Outs  []*Node // boundary ghost-outs, members of Nodes
}

func (c *Chunk) has(n *Node) bool {
	for _, m := range c.Nodes {
		if m == n {
			return true
		}
	}
	return false
}

// LooseEnds is the working value threaded through the parser/assembler
// boundary: which chunks currently participate in an in-progress
// construction, and which of their ghost-ins/outs are exposed at its
// boundary.
type LooseEnds struct {
	Chunks []*Chunk
	Ins    []*Node
	Outs   []*Node
}

// StartChunks returns every chunk containing one of le's boundary ins.
func (le LooseEnds) StartChunks() []*Chunk {
	var out []*Chunk
	for _, c := range le.Chunks {
		for _, in := range le.Ins {
			if c.has(in) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// EndChunks returns every chunk containing one of le's boundary outs.
func (le LooseEnds) EndChunks() []*Chunk {
	var out []*Chunk
	for _, c := range le.Chunks {
		for _, out2 := range le.Outs {
			if c.has(out2) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func newGhostIn() *Node  { return &Node{Kind: NodeGhostIn} }
func newGhostOut() *Node { return &Node{Kind: NodeGhostOut} }

// newAtomChunk builds the smallest possible fragment: a ghost-in feeding
// a real node feeding a ghost-out, all owned by one fresh chunk.
func newAtomChunk(n *Node) LooseEnds {
	gin, gout := newGhostIn(), newGhostOut()
	gin.Nexts = []*Node{n}
	n.Nexts = []*Node{gout}
	c := &Chunk{Nodes: []*Node{gin, n, gout}, Ins: []*Node{gin}, Outs: []*Node{gout}}
	return LooseEnds{Chunks: []*Chunk{c}, Ins: []*Node{gin}, Outs: []*Node{gout}}
}

// Concat wires every ghost-out in lhs.Outs to feed every ghost-in in
// rhs.Ins, and reports the combined loose-ends as (lhs.Ins, rhs.Outs).
func Concat(lhs, rhs LooseEnds) LooseEnds {
	for _, o := range lhs.Outs {
		o.Targets = append(o.Targets, rhs.Ins...)
	}
	return LooseEnds{
		Chunks: append(append([]*Chunk{}, lhs.Chunks...), rhs.Chunks...),
		Ins:    lhs.Ins,
		Outs:   rhs.Outs,
	}
}

// Alternate builds the NFA-style union of lhs and rhs: both sides' ins and
// outs are simply pooled. A later Collapse turns this into a deduplicated
// graph; Alternate itself never merges anything.
func Alternate(lhs, rhs LooseEnds) LooseEnds {
	return LooseEnds{
		Chunks: append(append([]*Chunk{}, lhs.Chunks...), rhs.Chunks...),
		Ins:    append(append([]*Node{}, lhs.Ins...), rhs.Ins...),
		Outs:   append(append([]*Node{}, lhs.Outs...), rhs.Outs...),
	}
}

// WrapAsGroup assigns inner's loose-ends as focus's boundary (focus.Ins,
// focus.Outs) and returns a fresh one-node chunk wrapping focus.
func WrapAsGroup(focus *Node, inner LooseEnds) LooseEnds {
	focus.Ins = inner.Ins
	focus.Outs = inner.Outs
	le := newAtomChunk(focus)
	le.Chunks = append(le.Chunks, inner.Chunks...)
	return le
}

// wrapConditional is WrapAsGroup's three-chunk cousin for Conditional
// nodes, which own a condition/then/else triple instead of a single inner
// boundary.
func wrapConditional(focus *Node, cond, then LooseEnds, els *LooseEnds) LooseEnds {
	focus.CondIns, focus.CondOuts = cond.Ins, cond.Outs
	focus.ThenIns, focus.ThenOuts = then.Ins, then.Outs
	le := newAtomChunk(focus)
	le.Chunks = append(le.Chunks, cond.Chunks...)
	le.Chunks = append(le.Chunks, then.Chunks...)
	if els != nil {
		focus.ElseIns, focus.ElseOuts = els.Ins, els.Outs
		focus.HasElse = true
		le.Chunks = append(le.Chunks, els.Chunks...)
	}
	return le
}

// expandGhosts flattens a successor list down to real (non-ghost) nodes,
// walking through any chain of ghost-in/ghost-out connectors. A visited
// set guards against ghost cycles left behind by an incomplete prune.
func expandGhosts(nodes []*Node) []*Node {
	var out []*Node
	visited := map[*Node]bool{}
	var rec func([]*Node)
	rec = func(ns []*Node) {
		for _, n := range ns {
			if n == nil {
				continue
			}
			if n.Kind == NodeGhostIn || n.Kind == NodeGhostOut {
				if visited[n] {
					continue
				}
				visited[n] = true
				rec(n.GetNexts())
				continue
			}
			out = append(out, n)
		}
	}
	rec(nodes)
	return out
}

func flattenNexts(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		out = append(out, n.Nexts...)
	}
	return out
}

// reachesAny reports whether any of nodes is a member of targets, either
// directly or by walking through a chain of ghost connectors — this is
// the "current node's ghost-outs intersect the target Outs" test from the
// spec's shared Match loop.
func reachesAny(nodes []*Node, targets map[*Node]bool) bool {
	visited := map[*Node]bool{}
	var rec func([]*Node) bool
	rec = func(ns []*Node) bool {
		for _, n := range ns {
			if n == nil {
				continue
			}
			if targets[n] {
				return true
			}
			if n.Kind == NodeGhostIn || n.Kind == NodeGhostOut {
				if visited[n] {
					continue
				}
				visited[n] = true
				if rec(n.GetNexts()) {
					return true
				}
			}
		}
		return false
	}
	return rec(nodes)
}

func nodeSet(nodes []*Node) map[*Node]bool {
	m := make(map[*Node]bool, len(nodes))
	for _, n := range nodes {
		m[n] = true
	}
	return m
}

type zeroWidthKey struct {
	n   *Node
	pos int
}

// chunkMatch is the Chunk-and-Loose-Ends module's "Match" operation: a
// shared backtracking walk used both for matching a group's inner
// sub-automaton and, from matcher.go, for the top-level match. It tries
// candidates in order, recurses into the first one whose CanEnter
// succeeds, and backtracks to the next candidate on ultimate failure.
// Lazy mode accepts the first path that reaches outs; greedy mode keeps
// extending and only settles for a shorter path when no longer one pans
// out.
func chunkMatch(ins, outs []*Node, lazy bool, it Iter, ms *MatchState) (Iter, bool) {
	targets := nodeSet(outs)
	candidates := expandGhosts(flattenNexts(ins))
	return walkChunk(candidates, targets, lazy, it, ms)
}

// successorsAfter computes what a matcher should try once cand has been
// entered. For every kind but Loop this is just cand's ghost-expanded
// Nexts. A bounded Loop is special: its stored Nexts is the continuation
// *after* the repeat, and re-taking the loop is expressed as cand
// appearing again among the candidates, ordered by greediness, but only
// once its ticker's minimum has been satisfied — before that, the only
// legal next step is another iteration of the loop itself.
func successorsAfter(cand *Node, ms *MatchState) []*Node {
	if cand.Kind != NodeLoop {
		return expandGhosts(cand.Nexts)
	}
	t := ms.Automaton.Tickers[cand.TickerIdx]
	if !t.SatisfiesMin() {
		return []*Node{cand}
	}
	exit := expandGhosts(cand.Nexts)
	if cand.Lazy {
		return append(exit, cand)
	}
	return append([]*Node{cand}, exit...)
}

// loopBlocksExit reports whether cand is a Loop whose ticker has not yet
// satisfied its minimum, in which case reaching the target Outs through
// its static continuation graph must not count as a completed match yet.
func loopBlocksExit(cand *Node, ms *MatchState) bool {
	if cand.Kind != NodeLoop {
		return false
	}
	return !ms.Automaton.Tickers[cand.TickerIdx].SatisfiesMin()
}

func walkChunk(candidates []*Node, targets map[*Node]bool, lazy bool, it Iter, ms *MatchState) (Iter, bool) {
	if ms.Aborted {
		return it, false
	}
	if ms.zeroGuard == nil {
		ms.zeroGuard = map[zeroWidthKey]bool{}
	}
	for _, cand := range candidates {
		key := zeroWidthKey{cand, it.Pos()}
		if ms.zeroGuard[key] {
			continue
		}
		snap := ms.Automaton.snapshot()
		nit, ok := cand.CanEnter(it, ms)
		if ms.Aborted {
			return it, false
		}
		if !ok {
			ms.Automaton.restore(snap)
			continue
		}
		guarded := false
		if nit.Pos() == it.Pos() {
			ms.zeroGuard[key] = true
			guarded = true
		}
		reachedEnd := !loopBlocksExit(cand, ms) && reachesAny(cand.Nexts, targets)
		if reachedEnd {
			if lazy {
				if guarded {
					delete(ms.zeroGuard, key)
				}
				return nit, true
			}
			further := successorsAfter(cand, ms)
			if fit, fok := walkChunk(further, targets, lazy, nit, ms); fok {
				if guarded {
					delete(ms.zeroGuard, key)
				}
				return fit, true
			}
			if guarded {
				delete(ms.zeroGuard, key)
			}
			return nit, true
		}
		next := successorsAfter(cand, ms)
		rit, rok := walkChunk(next, targets, lazy, nit, ms)
		if guarded {
			delete(ms.zeroGuard, key)
		}
		if rok {
			return rit, true
		}
		ms.Automaton.restore(snap)
	}
	return it, false
}

// Collapse rebuilds a fresh chunk C that is language-equivalent to the
// chunk reachable from ins/outs, in one depth-first pass over the original
// real nodes. Two real nodes share one clone only when they are SimilarTo
// one another and lead to exactly the same successors (and both or
// neither reach the original Outs); siblings whose successors differ stay
// separate clones.
// cloneOf maps every original real node to the clone in C that replaces it.
func Collapse(le LooseEnds) (result LooseEnds, cloneOf map[*Node]*Node) {
	cloneOf = map[*Node]*Node{}
	outSet := nodeSet(le.Outs)

	mergedIn := newGhostIn()
	seedReal := map[*Node]*Node{} // original real node -> its clone in C
	endOut := newGhostOut()

	var nodes []*Node
	nodes = append(nodes, mergedIn, endOut)

	// CollapseIns: gather the real successors reachable from every input
	// ghost-in, merging nodes that are SimilarTo one another and share
	// their successors.
	origCandidates := expandGhosts(flattenNexts(le.Ins))
	// sameExits reports whether a and b lead to exactly the same
	// successors, so folding them into one clone cannot change the language.
	sameExits := func(a, b *Node) bool {
		as, bs := expandGhosts(a.Nexts), expandGhosts(b.Nexts)
		if len(as) != len(bs) || reachesAny(a.Nexts, outSet) != reachesAny(b.Nexts, outSet) {
			return false
		}
		for i := range as {
			if as[i] != bs[i] {
				return false
			}
		}
		return true
	}
	var cloneReal func(orig *Node) *Node
	cloneReal = func(orig *Node) *Node {
		if c, ok := seedReal[orig]; ok {
			return c
		}
		for existingOrig, existingClone := range seedReal {
			if orig.SimilarTo(existingOrig) && sameExits(orig, existingOrig) {
				existingClone.Incorporate(orig)
				seedReal[orig] = existingClone
				cloneOf[orig] = existingClone
				return existingClone
			}
		}
		clone := &Node{}
		*clone = *orig
		clone.Nexts = nil
		clone.Targets = nil
		seedReal[orig] = clone
		cloneOf[orig] = clone
		nodes = append(nodes, clone)
		return clone
	}
	var clones []*Node
	for _, orig := range origCandidates {
		clones = append(clones, cloneReal(orig))
	}
	mergedIn.Nexts = clones

	// CollapseNodes + CollapseOuts: for every cloned real node, walk its
	// original successors; those that terminate at a member of the
	// original Outs are folded into the single endOut; everything else is
	// recursively collapsed the same way as the ins were.
	visitedOrig := map[*Node]bool{}
	var processOrig func(orig *Node) *Node // returns clone
	processOrig = func(orig *Node) *Node {
		clone := cloneReal(orig)
		if visitedOrig[orig] {
			return clone
		}
		visitedOrig[orig] = true
		var nextClones []*Node
		// expandGhosts never yields a ghost, so the original Outs (all
		// ghost-outs) are detected with reachesAny instead.
		if reachesAny(orig.Nexts, outSet) {
			nextClones = append(nextClones, endOut)
		}
		for _, succ := range expandGhosts(orig.Nexts) {
			nextClones = append(nextClones, processOrig(succ))
		}
		clone.Nexts = nextClones
		return clone
	}
	for _, orig := range origCandidates {
		processOrig(orig)
	}

	c := &Chunk{Nodes: nodes, Ins: []*Node{mergedIn}, Outs: []*Node{endOut}}
	return LooseEnds{Chunks: []*Chunk{c}, Ins: []*Node{mergedIn}, Outs: []*Node{endOut}}, cloneOf
}

// Prune removes zero-width ghost hops that neither start nor end le: any
// ghost-out that is not itself one of le.Outs gets short-circuited, its
// targets' successors spliced directly into whatever fed it.
func Prune(le LooseEnds) LooseEnds {
	outSet := nodeSet(le.Outs)
	visited := map[*Node]bool{}

	var prunedSuccessors func(n *Node) []*Node
	prunedSuccessors = func(n *Node) []*Node {
		var out []*Node
		for _, s := range n.Nexts {
			if s.Kind == NodeGhostOut && !outSet[s] {
				for _, gin := range s.Targets {
					out = append(out, prunedSuccessors(gin)...)
				}
				continue
			}
			if s.Kind == NodeGhostIn {
				out = append(out, prunedSuccessors(s)...)
				continue
			}
			out = append(out, s)
		}
		return out
	}

	var walk func(n *Node)
	walk = func(n *Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		if n.Kind != NodeGhostOut {
			n.Nexts = prunedSuccessors(n)
		}
		for _, s := range n.Nexts {
			walk(s)
		}
	}
	for _, in := range le.Ins {
		for _, s := range in.Nexts {
			walk(s)
		}
	}
	return le
}
