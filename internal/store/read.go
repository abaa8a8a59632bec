package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/sophon/internal/engine"
	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
)

// Run is one persisted engine run.
type Run struct {
	ID         string  `json:"id"`
	Seq        int64   `json:"seq"`
	Seed       int64   `json:"seed"`
	Config     string  `json:"config"`
	ConfigHash string  `json:"config_hash"`
	Status     string  `json:"status"`
	Steps      int     `json:"steps"`
	Energy     float64 `json:"energy"`
	Mass       float64 `json:"mass"`
}

// StepRecord is one persisted step. Summary holds the full JSON summary.
type StepRecord struct {
	RunID        string  `json:"run_id"`
	Step         int     `json:"step"`
	Candidates   int     `json:"candidates"`
	Chosen       int     `json:"chosen"`
	Reward       float64 `json:"reward"`
	Energy       float64 `json:"energy"`
	Mass         float64 `json:"mass"`
	FallbackUsed bool    `json:"fallback_used"`
	Explored     bool    `json:"explored"`
	Released     bool    `json:"released"`
	Summary      string  `json:"-"`
}

// Decode parses the stored summary. Attempt.Err is not persisted; only
// its message survives in Attempt.Error.
func (r StepRecord) Decode() (*engine.Summary, error) {
	var s engine.Summary
	if err := json.Unmarshal([]byte(r.Summary), &s); err != nil {
		return nil, fmt.Errorf("decode step %d: %w", r.Step, err)
	}
	return &s, nil
}

// ApplicationRecord is one persisted application attempt.
type ApplicationRecord struct {
	RunID        string     `json:"run_id"`
	Step         int        `json:"step"`
	Index        int        `json:"index"`
	Op           string     `json:"op"`
	Inputs       ops.Inputs `json:"inputs"`
	Key          string     `json:"application_key"`
	Reward       float64    `json:"reward"`
	InvariantsOK bool       `json:"invariants_ok"`
	Error        string     `json:"error,omitempty"`
}

// NotFoundError reports a run id with no record.
type NotFoundError struct {
	RunID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("run %q not found", e.RunID)
}

// IsNotFound returns true if err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

const runColumns = `id, seq, seed, config, config_hash, status, steps, energy, mass`

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.Seq, &r.Seed, &r.Config, &r.ConfigHash, &r.Status, &r.Steps, &r.Energy, &r.Mass)
	return r, err
}

// GetRun returns the run with the given id.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, &NotFoundError{RunID: runID}
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns returns every run ordered by seq ASC.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadSteps returns a run's steps ordered by step ASC.
// Returns an empty slice (not nil) if the run has none.
func (s *Store) ReadSteps(ctx context.Context, runID string) ([]StepRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, step, candidates, chosen, reward, energy, mass, fallback_used, explored, released, summary
		FROM steps
		WHERE run_id = ?
		ORDER BY step ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []StepRecord{}
	for rows.Next() {
		var r StepRecord
		if err := rows.Scan(&r.RunID, &r.Step, &r.Candidates, &r.Chosen, &r.Reward, &r.Energy, &r.Mass,
			&r.FallbackUsed, &r.Explored, &r.Released, &r.Summary); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

// ReadApplications returns a run's applications ordered by step, idx.
func (s *Store) ReadApplications(ctx context.Context, runID string) ([]ApplicationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, step, idx, op, inputs, application_key, reward, invariants_ok, error
		FROM applications
		WHERE run_id = ?
		ORDER BY step ASC, idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	apps := []ApplicationRecord{}
	for rows.Next() {
		var (
			r      ApplicationRecord
			inputs string
		)
		if err := rows.Scan(&r.RunID, &r.Step, &r.Index, &r.Op, &inputs, &r.Key, &r.Reward,
			&r.InvariantsOK, &r.Error); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		if r.Inputs, err = unmarshalInputs(inputs); err != nil {
			return nil, err
		}
		apps = append(apps, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

// LoadGraph rebuilds a run's persisted graph with its original ids.
// Attrs come back JSON-decoded: numbers as float64, lists as []any.
func (s *Store) LoadGraph(ctx context.Context, runID string) (*hypergraph.Graph, error) {
	g := hypergraph.New()

	nodeRows, err := s.db.QueryContext(ctx, `
		SELECT id, type, attrs FROM nodes WHERE run_id = ? ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer nodeRows.Close()

	for nodeRows.Next() {
		var (
			id          int64
			typ, attrsS string
		)
		if err := nodeRows.Scan(&id, &typ, &attrsS); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		attrs, err := unmarshalAttrs(attrsS)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
		n := hypergraph.Node{ID: hypergraph.ID(id), Type: hypergraph.NodeType(typ), Attrs: attrs}
		if err := g.Restore(n); err != nil {
			return nil, err
		}
	}
	if err := nodeRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}

	edgeRows, err := s.db.QueryContext(ctx, `
		SELECT id, type, nodes, attrs FROM edges WHERE run_id = ? ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var (
			id                  int64
			typ, nodesS, attrsS string
		)
		if err := edgeRows.Scan(&id, &typ, &nodesS, &attrsS); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		nodes, err := unmarshalIDs(nodesS)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", id, err)
		}
		attrs, err := unmarshalAttrs(attrsS)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", id, err)
		}
		e := hypergraph.Edge{ID: hypergraph.ID(id), Type: hypergraph.EdgeType(typ), Nodes: nodes, Attrs: attrs}
		if err := g.RestoreEdge(e); err != nil {
			return nil, err
		}
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}
	return g, nil
}
