// Package grex implements a PCRE-family regular expression engine that
// compiles an infix surface syntax into a graph automaton and walks that
// graph against input text.
//
// Compilation happens in two stages: the translator (parser.go) turns pattern text into a
// flat postfix instruction stream, and [Assemble] consumes that stream to
// build the graph automaton (the [Automaton] type). [Compile] runs both
// stages and returns a ready-to-use Automaton. The instruction stream itself
// can be serialized with [EncodeInstrs] and [DecodeInstrs], so a pattern can
// be translated once and assembled elsewhere.
//
// Automaton is not safe for concurrent matches: a match mutates capture
// records, loop tickers, LastMatchEnd and RuntimeErrors owned by the
// Automaton.
// Compile distinct Automatons (from the same pattern, if needed) to match
// concurrently from multiple goroutines.
package grex
