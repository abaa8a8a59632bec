package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/ops"
	"github.com/roach88/sophon/internal/ops/euclid"
)

// OpsOptions holds flags for the ops command.
type OpsOptions struct {
	*RootOptions
	Books []string
}

// OpInfo describes one registered op.
type OpInfo struct {
	Name string  `json:"name"`
	Cost float64 `json:"cost"`

	// Candidates counts the op's applicable input tuples on the seed
	// segment graph. -1 means Precond failed on it.
	Candidates int `json:"candidates"`
}

// OpsResult is the json output of the ops command.
type OpsResult struct {
	Books []string `json:"books"`
	Ops   []OpInfo `json:"ops"`
}

// NewOpsCommand creates the ops command.
func NewOpsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OpsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ops",
		Short: "List registered ops",
		Long: `List the ops a run would register, in registration order.

Each op is shown with its cost and the number of candidates it offers on
the seed segment a fresh run starts from.

Example:
  sophon ops
  sophon ops --books I --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOps(opts, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Books, "books", nil, fmt.Sprintf("op books to list %v (default all)", euclid.Books()))

	return cmd
}

func runOps(opts *OpsOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	reg := ops.NewRegistry()
	if err := euclid.RegisterBooks(reg, opts.Books...); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBooks, "failed to register ops", err)
	}

	books := opts.Books
	if len(books) == 0 {
		books = euclid.Books()
	}
	result := OpsResult{Books: books, Ops: describeOps(reg)}

	return formatter.Emit(result, func(w io.Writer) error {
		fmt.Fprintf(w, "%-20s %6s %10s\n", "OP", "COST", "CANDIDATES")
		for _, op := range result.Ops {
			fmt.Fprintf(w, "%-20s %6.2f %10d\n", op.Name, op.Cost, op.Candidates)
		}
		fmt.Fprintf(w, "\n%d ops from books %v\n", len(result.Ops), result.Books)
		return nil
	})
}

// describeOps evaluates every op of reg against a fresh seed segment.
func describeOps(reg *ops.Registry) []OpInfo {
	g := hypergraph.New()
	euclid.SeedSegment(g)

	out := make([]OpInfo, 0, reg.Len())
	for _, op := range reg.Ops() {
		info := OpInfo{Name: op.Name(), Cost: op.Cost()}
		tuples, err := op.Precond(g)
		if err != nil {
			info.Candidates = -1
		} else {
			info.Candidates = len(tuples)
		}
		out = append(out, info)
	}
	return out
}
