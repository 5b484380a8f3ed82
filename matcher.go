package grex

// Match reports whether the automaton matches all of text, from begin.
// It checks the one match MatchFrom(text, 0) settles on; a whole-text
// match reachable only through a lower-priority alternative is not found.
func (a *Automaton) Match(text []rune) bool {
	ok, sub := a.MatchFrom(text, 0)
	return ok && len([]rune(sub)) == len(text)
}

// MatchFrom attempts a match starting at begin+offset and reports whether
// it succeeded together with the substring consumed, from offset to
// wherever the walk stopped. A non-empty CompileError refuses to match at
// all; a runtime error mid-walk is recorded on RuntimeErrors and the call
// returns false with the instance left usable for later matches.
func (a *Automaton) MatchFrom(text []rune, offset int) (bool, string) {
	if a.CompileError != nil {
		a.RuntimeErrors = append(a.RuntimeErrors, newRuntimeErr(ErrCompileErrorOnUse, "automaton has a compile error"))
		return false, ""
	}
	a.resetForMatch()

	it := NewIterAt(text, offset)
	ms := &MatchState{Automaton: a, MaxDepth: a.MaxDepth}

	end, ok := chunkMatch(a.StartNodes, a.EndNodes, false, it, ms)
	if !ok {
		return false, ""
	}
	start := NewIterAt(text, offset)
	return true, start.Slice(end)
}

// MatchAll repeatedly finds the next non-overlapping match across text,
// advancing LastMatchEnd to the end of each accepted match before
// searching for the next, per the convention \G compares against.
func (a *Automaton) MatchAll(text []rune) []string {
	var out []string
	offset := 0
	for offset <= len(text) {
		ok, sub := a.MatchFrom(text, offset)
		if !ok {
			offset++
			continue
		}
		out = append(out, sub)
		matchLen := len([]rune(sub))
		a.LastMatchEnd = offset + matchLen
		if matchLen == 0 {
			offset++
		} else {
			offset += matchLen
		}
	}
	return out
}
