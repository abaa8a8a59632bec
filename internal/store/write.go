package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/sophon/internal/canon"
	"github.com/roach88/sophon/internal/engine"
	"github.com/roach88/sophon/internal/hypergraph"
)

// Run statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
)

// CreateRun records a new run with its seed and configuration and returns
// it. The configuration is stored as JSON; its fingerprint hashes that
// JSON together with the seed, so identical reruns share a config_hash.
func (s *Store) CreateRun(ctx context.Context, seed int64, cfg any) (Run, error) {
	cfgJSON, err := marshalJSON(cfg)
	if err != nil {
		return Run{}, fmt.Errorf("create run: marshal config: %w", err)
	}
	hash, err := canon.Fingerprint(map[string]any{
		"config": cfgJSON,
		"seed":   seed,
	})
	if err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("create run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return Run{}, fmt.Errorf("create run: next seq: %w", err)
	}

	run := Run{
		ID:         s.ids.Generate(),
		Seq:        seq,
		Seed:       seed,
		Config:     cfgJSON,
		ConfigHash: hash,
		Status:     StatusRunning,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, seed, config, config_hash, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Seq, run.Seed, run.Config, run.ConfigHash, run.Status)
	if err != nil {
		return Run{}, fmt.Errorf("create run: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("create run: commit: %w", err)
	}
	return run, nil
}

// WriteStep appends one step summary and its applications, and advances
// the run's step count, energy and mass. All writes share a transaction.
//
// Uses ON CONFLICT DO NOTHING for idempotency: writing the same step twice
// leaves the first record in place.
func (s *Store) WriteStep(ctx context.Context, runID string, sum *engine.Summary) error {
	summaryJSON, err := marshalJSON(sum)
	if err != nil {
		return fmt.Errorf("write step %d: marshal summary: %w", sum.Step, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write step %d: begin tx: %w", sum.Step, err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO steps
		(run_id, step, candidates, chosen, reward, energy, mass, fallback_used, explored, released, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, step) DO NOTHING
	`,
		runID,
		sum.Step,
		sum.Candidates,
		sum.Chosen,
		sum.TotalReward(),
		sum.Energy,
		sum.Mass,
		boolInt(sum.FallbackUsed),
		boolInt(sum.Explored),
		boolInt(sum.Released),
		summaryJSON,
	)
	if err != nil {
		return fmt.Errorf("write step %d: insert: %w", sum.Step, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("write step %d: rows affected: %w", sum.Step, err)
	} else if n == 0 {
		return nil
	}

	for i, a := range sum.Attempts {
		if err := writeApplication(ctx, tx, runID, sum.Step, i, a); err != nil {
			return fmt.Errorf("write step %d: %w", sum.Step, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE runs SET steps = ?, energy = ?, mass = ? WHERE id = ?
	`, sum.Step, sum.Energy, sum.Mass, runID)
	if err != nil {
		return fmt.Errorf("write step %d: update run: %w", sum.Step, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write step %d: commit: %w", sum.Step, err)
	}
	return nil
}

func writeApplication(ctx context.Context, tx *sql.Tx, runID string, step, idx int, a engine.Attempt) error {
	inputs, err := marshalIDs(a.Inputs)
	if err != nil {
		return fmt.Errorf("application %d: %w", idx, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO applications
		(run_id, step, idx, op, inputs, application_key, reward, invariants_ok, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID,
		step,
		idx,
		a.Op,
		inputs,
		canon.ApplicationKey(a.Op, int64s(a.Inputs)),
		a.Reward,
		boolInt(a.InvariantsOK),
		a.Error,
	)
	if err != nil {
		return fmt.Errorf("application %d: insert: %w", idx, err)
	}
	return nil
}

// FinishRun marks a run complete.
func (s *Store) FinishRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET status = ? WHERE id = ?`, StatusComplete, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: %w", &NotFoundError{RunID: runID})
	}
	return nil
}

// SaveGraph replaces the run's persisted graph with a snapshot of g.
func (s *Store) SaveGraph(ctx context.Context, runID string, g *hypergraph.Graph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save graph: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, table := range []string{"edges", "nodes"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?", runID); err != nil {
			return fmt.Errorf("save graph: clear %s: %w", table, err)
		}
	}

	for _, n := range g.Nodes() {
		attrs, err := marshalAttrs(n.Attrs)
		if err != nil {
			return fmt.Errorf("save graph: node %d: %w", n.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO nodes (run_id, id, type, attrs) VALUES (?, ?, ?, ?)
		`, runID, int64(n.ID), string(n.Type), attrs)
		if err != nil {
			return fmt.Errorf("save graph: node %d: %w", n.ID, err)
		}
	}

	for _, e := range g.Edges() {
		nodes, err := marshalIDs(e.Nodes)
		if err != nil {
			return fmt.Errorf("save graph: edge %d: %w", e.ID, err)
		}
		attrs, err := marshalAttrs(e.Attrs)
		if err != nil {
			return fmt.Errorf("save graph: edge %d: %w", e.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO edges (run_id, id, type, nodes, attrs) VALUES (?, ?, ?, ?, ?)
		`, runID, int64(e.ID), string(e.Type), nodes, attrs)
		if err != nil {
			return fmt.Errorf("save graph: edge %d: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save graph: commit: %w", err)
	}
	return nil
}
