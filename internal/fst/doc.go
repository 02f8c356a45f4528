// Package fst is the automaton engine under the two-level rule compiler.
//
// Automata are same-length pair transducers: every arc carries a Label
// (an input symbol and an output symbol), and the only length-changing
// arcs are pure epsilon arcs. That is exactly the class two-level rules
// live in, so composition, intersection and cross product are computed
// as synchronous products.
//
// An *Automaton is immutable once built. Every operation on *Engine
// returns a fresh automaton and never touches its arguments, which lets
// compiled definitions be shared between rules and between goroutines.
//
// # Limits
//
// Determinization and products can blow up. An Engine carries a state
// budget and an optional context; when either is exhausted the running
// operation panics with *LimitError or *CanceledError. Callers convert
// the panic back into an error at a statement boundary:
//
//	func compileOne() (err error) {
//		defer fst.Catch(&err)
//		...
//	}
//
// Any other panic is re-raised by Catch.
package fst
