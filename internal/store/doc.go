// Package store keeps compile runs in a SQLite database.
//
// A run is one successful write of a rule bundle: the ordered rule
// automata, the alphabet they were compiled against and the diagnostics
// of the compile. Tables:
//   - runs: one row per distinct bundle, keyed by a UUIDv7
//   - rules: the rule automata of a run, by ordinal
//   - diagnostics: errors and example mismatches of a run, in report order
//
// # Identity
//
// Runs are identified by ir.BundleHash, so writing the same bundle twice
// returns the existing run. Rule rows carry ir.RuleHash, which lets the
// same rule be found across runs.
//
// # Ordering
//
// Runs are ordered by seq, a counter assigned at insert time. Rules are
// ordered by ordinal and diagnostics by position. No query orders by wall
// time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
