// Package harness runs conformance scenarios for rule files.
//
// A scenario names an example set and a rule file (inline or by path),
// compiles the rules through the driver and checks the outcome:
//
//	name: vowel_harmony
//	description: "back vowels spread rightwards"
//	examples:
//	  - "k a t {aä}:a"
//	rules: |
//	  {aä}:a <=> a [PI - a]* _ ;
//	accept:
//	  - "k a t {aä}:a"
//	reject:
//	  - "k a t {aä}:ä"
//	expect_errors:
//	  - kind: UndefinedSymbol
//	    line: 4
//	expect_lost: []
//	expect_wrong: []
//
// accept and reject are pair strings tested against the whole compiled
// rule set: accepted strings must pass every rule, rejected ones must
// fail at least one. expect_errors lists every compile error in file
// order; a scenario that omits it expects none. expect_lost and
// expect_wrong, when present, are compared with the whole-set check.
//
// RunWithGolden additionally compares a canonical JSON summary of the
// compile against testdata/golden/<name>.golden.
package harness
