// Package syntax parses two-level rule files.
//
// A rule file is a sequence of statements, each ending in ';'. A
// statement is either a definition
//
//	V = a | e | i | o | u ;
//
// or a rule with a center, an operator and one or more contexts
//
//	{ij}:j <=> V :Ø* _ :Ø* V ;
//
// Expressions are built from pair symbols (a, a:b, a:, :b, :), defined
// names, the word boundary .#., brackets [ ], optional parts ( ), union
// |, intersection &, difference -, concatenation, Kleene * and +, the
// projections .m and .s, and the complement \ of a single pair.
//
// The parser only builds the tree. Resolving names and pairs against an
// alphabet is left to the compiler.
package syntax
