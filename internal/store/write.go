package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/twolc/internal/ir"
)

// RunInput is everything written for one compile.
type RunInput struct {
	Examples string // path of the example file
	Bundle   *ir.RuleBundle
	Report   ir.CompileReport
}

// WriteRun stores a compile run in one transaction. If a run with the
// same bundle hash already exists, nothing is written and that run is
// returned with created set to false.
func (s *Store) WriteRun(ctx context.Context, in RunInput) (run Run, created bool, err error) {
	if in.Bundle == nil {
		return Run{}, false, fmt.Errorf("write run: no bundle")
	}
	bundleHash, err := ir.BundleHash(in.Bundle)
	if err != nil {
		return Run{}, false, fmt.Errorf("write run: %w", err)
	}

	existing, err := s.runByBundleHash(ctx, bundleHash)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, ErrNotFound):
		return Run{}, false, err
	}

	pairs, err := marshalStrings(in.Bundle.Pairs)
	if err != nil {
		return Run{}, false, fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, false, fmt.Errorf("write run: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var seq int64
	if err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return Run{}, false, fmt.Errorf("write run: next seq: %w", err)
	}

	run = Run{
		ID:              s.ids.Generate(),
		Seq:             seq,
		BundleHash:      bundleHash,
		Source:          in.Bundle.Source,
		Examples:        in.Examples,
		AlphabetHash:    in.Bundle.AlphabetHash,
		BundleVersion:   in.Bundle.Version,
		CompilerVersion: ir.CompilerVersion,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, bundle_hash, source, examples, alphabet_hash, pairs, bundle_version, compiler_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.BundleHash,
		run.Source,
		run.Examples,
		run.AlphabetHash,
		pairs,
		run.BundleVersion,
		run.CompilerVersion,
	)
	if err != nil {
		return Run{}, false, fmt.Errorf("write run: %w", err)
	}

	if err = writeRules(ctx, tx, run.ID, in.Bundle.Rules); err != nil {
		return Run{}, false, err
	}
	if err = writeDiagnostics(ctx, tx, run.ID, in.Report.Diagnostics); err != nil {
		return Run{}, false, err
	}

	if err = tx.Commit(); err != nil {
		return Run{}, false, fmt.Errorf("write run: commit: %w", err)
	}
	run.Rules = len(in.Bundle.Rules)
	return run, true, nil
}

func writeRules(ctx context.Context, tx *sql.Tx, runID string, rules []ir.RuleRecord) error {
	for _, r := range rules {
		automaton, err := marshalAutomaton(r.Automaton)
		if err != nil {
			return fmt.Errorf("write rule %d: %w", r.Ordinal, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO rules
			(run_id, ordinal, hash, name, operator, first_line, last_line, automaton)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, ordinal) DO NOTHING
		`,
			runID,
			r.Ordinal,
			r.Hash,
			r.Name,
			r.Operator,
			r.FirstLine,
			r.LastLine,
			automaton,
		)
		if err != nil {
			return fmt.Errorf("write rule %d: %w", r.Ordinal, err)
		}
	}
	return nil
}

func writeDiagnostics(ctx context.Context, tx *sql.Tx, runID string, diags []ir.Diagnostic) error {
	for i, d := range diags {
		examples, err := marshalStrings(d.Examples)
		if err != nil {
			return fmt.Errorf("write diagnostic %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO diagnostics
			(run_id, position, severity, code, kind, statement, first_line, last_line, message, examples)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, position) DO NOTHING
		`,
			runID,
			i,
			d.Severity,
			d.Code,
			d.Kind,
			d.Statement,
			d.FirstLine,
			d.LastLine,
			d.Message,
			examples,
		)
		if err != nil {
			return fmt.Errorf("write diagnostic %d: %w", i, err)
		}
	}
	return nil
}
