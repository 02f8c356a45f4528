package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/twolc/internal/ir"
)

// Run is one stored compile.
type Run struct {
	ID              string `json:"id"`
	Seq             int64  `json:"seq"`
	BundleHash      string `json:"bundle_hash"`
	Source          string `json:"source"`
	Examples        string `json:"examples"`
	AlphabetHash    string `json:"alphabet_hash"`
	BundleVersion   string `json:"bundle_version"`
	CompilerVersion string `json:"compiler_version"`
	Rules           int    `json:"rules"`
}

const runColumns = `
	r.id, r.seq, r.bundle_hash, r.source, r.examples, r.alphabet_hash,
	r.bundle_version, r.compiler_version,
	(SELECT COUNT(*) FROM rules WHERE run_id = r.id)
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.BundleHash,
		&run.Source,
		&run.Examples,
		&run.AlphabetHash,
		&run.BundleVersion,
		&run.CompilerVersion,
		&run.Rules,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}

// ReadRun returns the run with the given id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// LatestRun returns the most recently written run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r ORDER BY r.seq DESC LIMIT 1`)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

func (s *Store) runByBundleHash(ctx context.Context, hash string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.bundle_hash = ?`, hash)
	return scanRun(row)
}

// ListRuns returns all runs in the order they were written.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs r ORDER BY r.seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadBundle rebuilds the rule bundle of a run.
func (s *Store) ReadBundle(ctx context.Context, runID string) (*ir.RuleBundle, error) {
	var pairs string
	b := &ir.RuleBundle{}
	err := s.db.QueryRowContext(ctx, `
		SELECT source, alphabet_hash, pairs, bundle_version FROM runs WHERE id = ?
	`, runID).Scan(&b.Source, &b.AlphabetHash, &pairs, &b.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read bundle %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read bundle %s: %w", runID, err)
	}
	if b.Pairs, err = unmarshalStrings(pairs); err != nil {
		return nil, fmt.Errorf("read bundle %s: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ordinal, hash, name, operator, first_line, last_line, automaton
		FROM rules
		WHERE run_id = ?
		ORDER BY ordinal ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	b.Rules = []ir.RuleRecord{}
	for rows.Next() {
		var (
			r         ir.RuleRecord
			automaton string
		)
		if err := rows.Scan(&r.Ordinal, &r.Hash, &r.Name, &r.Operator, &r.FirstLine, &r.LastLine, &automaton); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		if r.Automaton, err = unmarshalAutomaton(automaton); err != nil {
			return nil, fmt.Errorf("rule %d: %w", r.Ordinal, err)
		}
		b.Rules = append(b.Rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return b, nil
}

// ReadDiagnostics returns the diagnostics of a run in report order.
func (s *Store) ReadDiagnostics(ctx context.Context, runID string) ([]ir.Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT severity, code, kind, statement, first_line, last_line, message, examples
		FROM diagnostics
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	diags := []ir.Diagnostic{}
	for rows.Next() {
		var (
			d        ir.Diagnostic
			examples string
		)
		if err := rows.Scan(&d.Severity, &d.Code, &d.Kind, &d.Statement, &d.FirstLine, &d.LastLine, &d.Message, &examples); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		if d.Examples, err = unmarshalStrings(examples); err != nil {
			return nil, err
		}
		if len(d.Examples) == 0 {
			d.Examples = nil
		}
		diags = append(diags, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagnostics: %w", err)
	}
	return diags, nil
}

// FindRule returns the runs containing a rule with the given hash, by
// run sequence.
func (s *Store) FindRule(ctx context.Context, hash string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT r.id, r.seq
		FROM rules ru
		JOIN runs r ON ru.run_id = r.id
		WHERE ru.hash = ?
		ORDER BY r.seq ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query rule: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var (
			id  string
			seq int64
		)
		if err := rows.Scan(&id, &seq); err != nil {
			return nil, fmt.Errorf("scan rule run: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rule runs: %w", err)
	}
	return ids, nil
}
