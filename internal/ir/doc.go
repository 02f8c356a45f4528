// Package ir holds the serializable records of the rule compiler: the
// rule bundle written after a compile, the compile and check reports, and
// the content hashes that identify them.
//
// Every other internal package may import ir; ir imports nothing
// internal. All JSON tags are snake_case, and records carry no floats
// and no wall-clock times, so two compiles of the same input produce
// byte-identical canonical JSON.
package ir
