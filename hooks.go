package grex

// HookRegistry is a named table of user-supplied code-hook bodies,
// looked up by the name written in a pattern's `(?{name})` construct.
// It is built independently of any one pattern and handed to Compile via
// WithHooks, so the same registry can back several compiled Automatons.
type HookRegistry map[string]HookFunc

// NewHookRegistry returns an empty registry ready for Register calls.
func NewHookRegistry() HookRegistry { return HookRegistry{} }

// Register adds or replaces the hook bound to name and returns the
// registry, so calls can be chained.
func (r HookRegistry) Register(name string, fn HookFunc) HookRegistry {
	r[name] = fn
	return r
}
