package grex

// This file holds the per-kind CanEnter bodies referenced from node.go's
// dispatch switch, kept separate from the dispatch table itself so each
// kind's matching logic reads as its own self-contained block.

func (n *Node) matchAnchorStart(it Iter, ms *MatchState) bool {
	if it.IsBegin() {
		return true
	}
	if n.GateLastMatchEnd {
		return it.Pos() == ms.Automaton.LastMatchEnd
	}
	if n.Exclusive {
		return false
	}
	if !n.MultiLine {
		return false
	}
	prev, ok := it.At(-1)
	if !ok {
		return false
	}
	return isLineDelimiter(prev, n.UnixLines)
}

func (n *Node) matchAnchorEnd(it Iter) bool {
	if it.IsEnd() {
		return true
	}
	if n.Exclusive {
		return false
	}
	if n.MultiLine {
		return isLineDelimiter(it.Current(), n.UnixLines)
	}
	// \Z, and plain $ without (?m): end of subject, or immediately
	// before a single trailing newline at the very end of the subject.
	if it.Pos() == it.Len()-1 {
		c, _ := it.At(0)
		return isLineDelimiter(c, false)
	}
	return false
}

func isLineDelimiter(r rune, unixLines bool) bool {
	if unixLines {
		return r == '\n'
	}
	return r == '\n' || r == '\r'
}

func (n *Node) matchWordBoundary(it Iter) bool {
	before := false
	if prev, ok := it.At(-1); ok {
		before = isWordRune(prev)
	}
	after := false
	if !it.IsEnd() {
		after = isWordRune(it.Current())
	}
	atBoundary := before != after
	return atBoundary != n.Negate
}

func (n *Node) matchBackref(it Iter) (Iter, bool) {
	if n.Ref == nil || !n.Ref.succeeded() {
		return it, false
	}
	want := []rune(n.Ref.text())
	for i, r := range want {
		got, ok := it.At(i)
		if !ok || got != r {
			return it, false
		}
	}
	return it.Advance(len(want)), true
}

// matchGroup runs a Capture or NonCapture group's inner sub-automaton and,
// for Capture, records the matched span into the bound slot. A manual
// slot's value comes from PreSetCaptures, not from its own (typically
// placeholder) body, so a manual group still participates in the match at
// its lexical position but never overwrites what was preset.
func (n *Node) matchGroup(it Iter, ms *MatchState) (Iter, bool) {
	pop := ms.push(n)
	defer pop()
	end, ok := chunkMatch(n.Ins, n.Outs, n.Lazy, it, ms)
	if !ok {
		return it, false
	}
	if n.Kind == NodeCapture && n.Ref != nil && !n.Ref.Manual {
		cap := Capture{Succeeded: true, Begin: it, End: end}
		if n.Ref.Collection {
			n.Ref.CapColl.push(cap)
		} else {
			n.Ref.Cap = cap
		}
		n.Ref.LastCapture = n
	}
	return end, true
}

func (n *Node) matchLookAhead(it Iter, ms *MatchState) (Iter, bool) {
	pop := ms.push(n)
	defer pop()
	_, ok := chunkMatch(n.Ins, n.Outs, false, it, ms)
	if ok != n.Negate {
		return it, true
	}
	return it, false
}

// matchLookBehind implements the look-behind assertion by scanning every
// candidate start offset forward from text-begin up to it, rather than
// literally re-running the matcher in reverse over a backwards-built
// chunk. Each candidate's horizon is bounded at it, so a variable-width
// body (a quantified run, an alternation of different lengths) can never
// overshoot the assertion point chasing its own greedy preference: a
// candidate succeeds only when its bounded forward walk lands exactly on
// it, which a quantifier inside the body satisfies by backtracking to
// whatever repeat count fits within the bound rather than its unbounded
// maximum.
func (n *Node) matchLookBehind(it Iter, ms *MatchState) (Iter, bool) {
	pop := ms.push(n)
	defer pop()
	found := false
	start0 := it.AtBegin().bounded(it.Pos())
	for start := start0; start.Pos() <= it.Pos(); start = start.Next() {
		end, ok := chunkMatch(n.Ins, n.Outs, false, start, ms)
		if ms.Aborted {
			return it, false
		}
		if ok && end.Pos() == it.Pos() {
			found = true
			break
		}
	}
	if found != n.Negate {
		return it, true
	}
	return it, false
}

// matchLoop runs one iteration of a bounded repeat's body, refusing if the
// ticker is already exhausted. Repeated iterations happen by this same
// node reappearing among the outer walk's candidates (see
// successorsAfter in chunk.go); matchLoop itself only ever takes one step.
func (n *Node) matchLoop(it Iter, ms *MatchState) (Iter, bool) {
	t := ms.Automaton.Tickers[n.TickerIdx]
	if t.IsExhausted() {
		return it, false
	}
	pop := ms.push(n)
	end, ok := chunkMatch(n.Ins, n.Outs, n.Lazy, it, ms)
	pop()
	if !ok {
		return it, false
	}
	ms.Automaton.Tickers[n.TickerIdx] = t.Tick()
	return end, true
}

func (n *Node) matchRecursion(it Iter, ms *MatchState) (Iter, bool) {
	if ms.RecursionDepth >= ms.MaxDepth {
		ms.Automaton.RuntimeErrors = append(ms.Automaton.RuntimeErrors,
			newRuntimeErr(ErrRecursionDepthExceeded, "recursion depth %d exceeds max %d", ms.RecursionDepth+1, ms.MaxDepth))
		ms.Aborted = true
		return it, false
	}
	ms.RecursionDepth++
	pop := ms.push(n)
	end, ok := chunkMatch(ms.Automaton.StartNodes, ms.Automaton.EndNodes, false, it, ms)
	pop()
	ms.RecursionDepth--
	return end, ok
}

func (n *Node) matchSubroutine(it Iter, ms *MatchState) (Iter, bool) {
	if n.Ref == nil {
		return it, false
	}
	target := n.Ref.LastCapture
	if target == nil {
		target = n.Ref.InitialCapture
	}
	if target == nil {
		return it, false
	}
	if ms.SubroutineDepth >= ms.MaxDepth {
		ms.Automaton.RuntimeErrors = append(ms.Automaton.RuntimeErrors,
			newRuntimeErr(ErrRecursionDepthExceeded, "subroutine depth %d exceeds max %d", ms.SubroutineDepth+1, ms.MaxDepth))
		ms.Aborted = true
		return it, false
	}
	ms.SubroutineDepth++
	pop := ms.push(n)
	end, ok := chunkMatch(target.Ins, target.Outs, target.Lazy, it, ms)
	pop()
	ms.SubroutineDepth--
	return end, ok
}

func (n *Node) matchConditional(it Iter, ms *MatchState) (Iter, bool) {
	var branchOK bool
	pop := ms.push(n)
	if n.CondIsBackref && n.Ref != nil {
		branchOK = n.Ref.succeeded()
	} else {
		_, branchOK = chunkMatch(n.CondIns, n.CondOuts, false, it, ms)
	}
	pop()
	if ms.Aborted {
		return it, false
	}
	if branchOK {
		return chunkMatch(n.ThenIns, n.ThenOuts, false, it, ms)
	}
	if n.HasElse {
		return chunkMatch(n.ElseIns, n.ElseOuts, false, it, ms)
	}
	return it, false
}

func (n *Node) matchCodeHook(it Iter, ms *MatchState) (Iter, bool) {
	hook := ms.Automaton.Hooks[n.HookName]
	if hook == nil {
		return it, true
	}
	return hook(it), true
}
