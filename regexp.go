package grex

// Option configures a Compile call. The functional-option surface mirrors
// coregx's struct-of-options style instead of a long positional parameter
// list: MaxNestingDepth, a code-hook registry, the recursion/subroutine
// depth cap, and a preset LastMatchEnd (for resuming a \G-anchored scan
// against an automaton built elsewhere) are all set this way.
type Option func(*options)

type options struct {
	maxNestingDepth int
	maxDepth        int
	hooks           HookRegistry
	presetLastEnd   int
	havePreset      bool
}

func defaultOptions() options {
	return options{maxNestingDepth: 64, maxDepth: 64}
}

// WithMaxNestingDepth caps how deep classes and groups may nest before the
// translator raises a "nesting surpasses limit" compile error.
func WithMaxNestingDepth(n int) Option {
	return func(o *options) { o.maxNestingDepth = n }
}

// WithMaxDepth caps recursion and subroutine call depth before a match
// aborts with a "recursion depth exceeded" runtime error.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// WithHooks supplies the named code-hook bodies a `(?{name})` construct in
// the pattern may invoke.
func WithHooks(hooks HookRegistry) Option {
	return func(o *options) { o.hooks = hooks }
}

// WithPresetLastMatchEnd seeds LastMatchEnd before the first match, so a
// leading \G can gate against a scan position established elsewhere (for
// example, resuming a MatchAll loop carried over from a previous text).
func WithPresetLastMatchEnd(pos int) Option {
	return func(o *options) { o.presetLastEnd = pos; o.havePreset = true }
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Compile translates pattern text and assembles it into a ready-to-use
// Automaton. A syntax or semantic error leaves Automaton.CompileError
// non-empty; the returned automaton refuses to match rather than panic.
func Compile(pattern string, opts ...Option) *Automaton {
	o := applyOptions(opts)
	p := newParser(pattern, o.maxNestingDepth)
	instrs, err := p.Parse()
	if err != nil {
		a := &Automaton{CompileError: toCompileError(err, -1)}
		return a
	}
	return CompileInstrs(instrs, opts...)
}

// CompileInstrs assembles an already-translated postfix instruction
// stream directly, skipping the translator stage. This is the entry point
// for re-assembling a stream produced by EncodeInstrs/DecodeInstrs
// elsewhere, or one hand-built by a caller.
func CompileInstrs(instrs []Instr, opts ...Option) *Automaton {
	o := applyOptions(opts)
	autom := Assemble(instrs, o.hooks, o.maxNestingDepth, o.maxDepth)
	if o.havePreset {
		autom.LastMatchEnd = o.presetLastEnd
	}
	return autom
}

// GetCapture returns a numbered or named capture's matched text and
// whether it participated in the most recent match.
func (a *Automaton) GetCapture(indexOrName any) (string, bool) {
	cs := a.lookupSlot(indexOrName)
	if cs == nil || cs.Collection {
		return "", false
	}
	return cs.Cap.text(), cs.Cap.Succeeded
}

// GetCaptureCollection returns every span a `(?@...)` capture-collection
// group recorded during the most recent match, in visit order.
func (a *Automaton) GetCaptureCollection(indexOrName any) ([]string, bool) {
	cs := a.lookupSlot(indexOrName)
	if cs == nil || !cs.Collection {
		return nil, false
	}
	out := make([]string, len(cs.CapColl.All))
	for i, c := range cs.CapColl.All {
		out[i] = c.text()
	}
	return out, true
}

// PreSetCaptures populates manual captures (declared `(?$...)` or
// `(?$@...)`) before a match; resetForMatch skips any slot whose Manual
// flag is set, so the value set here survives into the match.
func (a *Automaton) PreSetCaptures(values map[any]string) {
	for key, text := range values {
		cs := a.lookupSlot(key)
		if cs == nil {
			continue
		}
		cap := Capture{Succeeded: true, Manual: true, Preset: text}
		if cs.Collection {
			cs.CapColl.push(cap)
		} else {
			cs.Cap = cap
		}
	}
}

// PreResetCaptures clears the manual captures named by keys back to their
// empty, unsucceeded state.
func (a *Automaton) PreResetCaptures(keys []any) {
	for _, key := range keys {
		cs := a.lookupSlot(key)
		if cs == nil {
			continue
		}
		cs.Cap = Capture{}
		cs.CapColl = CaptureCollection{}
	}
}

func (a *Automaton) lookupSlot(indexOrName any) *CaptureSlot {
	switch key := indexOrName.(type) {
	case int:
		if key < 0 || key >= len(a.Captures) {
			return nil
		}
		return a.Captures[key]
	case string:
		return a.NameToCapture[key]
	default:
		return nil
	}
}
