package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sophon/internal/store"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Database     string
	Applications bool
}

// RunDetail is the json output of inspect for one run.
type RunDetail struct {
	Run          store.Run                 `json:"run"`
	Steps        []store.StepRecord        `json:"steps"`
	Applications []store.ApplicationRecord `json:"applications,omitempty"`
	Nodes        int                       `json:"nodes"`
	Edges        int                       `json:"edges"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect [run-id]",
		Short: "Inspect recorded runs",
		Long: `Inspect runs recorded with "sophon run --db".

Without a run id, lists every run in creation order. With a run id,
prints the run's step summaries and the size of its saved graph.

Examples:
  sophon inspect --db ./sophon.db
  sophon inspect --db ./sophon.db 0192f0c4-... --applications
  sophon inspect --db ./sophon.db 0192f0c4-... --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runInspectList(opts, cmd)
			}
			return runInspectRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().BoolVar(&opts.Applications, "applications", false, "also list every application of the run")

	return cmd
}

func inspectFormatter(opts *InspectOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func runInspectList(opts *InspectOptions, cmd *cobra.Command) error {
	formatter := inspectFormatter(opts, cmd)
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to list runs", err)
	}

	return formatter.Emit(runs, func(w io.Writer) error {
		if len(runs) == 0 {
			fmt.Fprintln(w, "No runs recorded.")
			return nil
		}
		fmt.Fprintf(w, "%-4s %-36s %-8s %6s %8s %8s %s\n", "SEQ", "ID", "STATUS", "STEPS", "E", "M", "SEED")
		for _, r := range runs {
			fmt.Fprintf(w, "%-4d %-36s %-8s %6d %8.3f %8.3f %d\n", r.Seq, r.ID, r.Status, r.Steps, r.Energy, r.Mass, r.Seed)
		}
		return nil
	})
}

func runInspectRun(opts *InspectOptions, runID string, cmd *cobra.Command) error {
	formatter := inspectFormatter(opts, cmd)
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.GetRun(ctx, runID)
	if err != nil {
		if store.IsNotFound(err) {
			return formatter.Fail(ExitFailure, ErrCodeStore, "run not found", err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to read run", err)
	}

	steps, err := st.ReadSteps(ctx, runID)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to read steps", err)
	}

	detail := RunDetail{Run: run, Steps: steps}
	if opts.Applications {
		detail.Applications, err = st.ReadApplications(ctx, runID)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to read applications", err)
		}
	}

	g, err := st.LoadGraph(ctx, runID)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to load graph", err)
	}
	detail.Nodes, detail.Edges = g.NodeCount(), g.EdgeCount()

	return formatter.Emit(detail, func(w io.Writer) error {
		fmt.Fprintf(w, "Run %s (seq %d, seed %d, %s)\n", run.ID, run.Seq, run.Seed, run.Status)
		fmt.Fprintf(w, "  Steps: %d  Energy: %.3f  Mass: %.3f\n", run.Steps, run.Energy, run.Mass)
		fmt.Fprintf(w, "  Graph: %d nodes, %d edges\n", detail.Nodes, detail.Edges)
		fmt.Fprintf(w, "  Config: %s\n\n", run.ConfigHash)

		fmt.Fprintf(w, "%6s %6s %6s %8s %8s %8s %s\n", "STEP", "CANDS", "CHOSEN", "REWARD", "E", "M", "FLAGS")
		for _, s := range steps {
			fmt.Fprintf(w, "%6d %6d %6d %8.3f %8.3f %8.3f %s\n",
				s.Step, s.Candidates, s.Chosen, s.Reward, s.Energy, s.Mass, stepFlags(s))
		}

		if opts.Applications {
			fmt.Fprintf(w, "\n%6s %3s %-20s %-12s %8s %s\n", "STEP", "#", "OP", "INPUTS", "REWARD", "STATUS")
			for _, a := range detail.Applications {
				status := "ok"
				switch {
				case a.Error != "":
					status = "error: " + a.Error
				case !a.InvariantsOK:
					status = "invariants failed"
				}
				fmt.Fprintf(w, "%6d %3d %-20s %-12s %8.3f %s\n", a.Step, a.Index, a.Op, a.Inputs.String(), a.Reward, status)
			}
		}
		return nil
	})
}

// stepFlags renders the boolean step markers: f(allback), x (explored),
// r(eleased).
func stepFlags(s store.StepRecord) string {
	flags := ""
	if s.FallbackUsed {
		flags += "f"
	}
	if s.Explored {
		flags += "x"
	}
	if s.Released {
		flags += "r"
	}
	if flags == "" {
		return "-"
	}
	return flags
}
