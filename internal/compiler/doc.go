// Package compiler turns parsed two-level rules into automata.
//
// Every rule reduces to one construction, the generalized restriction of
// Yli-Jyrä and Koskenniemi:
//
//	GR(pre, post) = PI* - remove◇(pre - post)
//
// where pre and post are conditions over pair strings with two diamond
// markers around a center occurrence. The five rule operators differ only
// in how they build pre and post:
//
//	X => C      pre = PI* ◇ X ◇ PI*             post = C
//	X <= C      pre = PI* ◇ X.u∘PI* ◇ PI* & C    post = PI* ◇ X ◇ PI*
//	X <-- C     pre = PI* ◇ PI*∘X.l ◇ PI* & C    post = PI* ◇ X ◇ PI*
//	X <=> C     [X => C] & [X <= C]
//	X /<= C     pre = C & PI* ◇ X ◇ PI*         post = nothing
//
// A context LC _ RC becomes the condition trim(PI* LC) ◇ PI* ◇ trim(RC PI*),
// where trim cuts the strings at word boundaries so that a context can
// never match across the boundary between two words.
//
// Alongside each rule the compiler derives a selector, which picks the
// examples a rule is about, and a scrambler, an encoded transducer that
// turns correct examples into plausible incorrect ones for negative
// testing.
//
// Automaton limits surface as panics inside package fst. Every exported
// entry point here recovers them and returns a LimitExceeded
// *CompileError instead.
package compiler
