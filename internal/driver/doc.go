// Package driver compiles a whole rule file against an alphabet and tests
// each rule against the examples.
//
// Compilation runs in two passes. The first pass scans the file into
// statements, parses them and compiles definitions in file order, so
// that every rule captures the definitions that precede it. The second
// pass compiles and tests the rules on a bounded worker pool. Results are
// stored by statement index, so the report is in file order no matter
// how the workers are scheduled.
//
// A statement that fails never stops the run. Its error is collected,
// the rule is left out of the output, and compilation continues with the
// next statement.
//
// Testing follows the thoroughness level:
//
//	0  compile only
//	1  check that the rule accepts every example it selects
//	2  also check that it rejects negative examples made by its scrambler
package driver
