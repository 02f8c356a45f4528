// Package alphabet holds the symbol-pair alphabet a rule set is compiled
// against.
//
// The alphabet is never declared. It is collected from a file of
// examples, one example per line, each a space separated sequence of
// pair symbols:
//
//	k a u p {pØ}:Ø {ao}:a s s {aä}:a
//
// A pair symbol is either a single symbol x (the pair x:x) or in:out.
// The pairs that occur in the examples are the legal pairs; their input
// and output sides form the input and output alphabets. The examples
// themselves are kept as an automaton used to test compiled rules.
//
// Symbols are normalized to Unicode NFC so that precomposed and
// decomposed spellings of the same letter compare equal.
package alphabet
