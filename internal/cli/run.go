package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/sophon/internal/config"
	"github.com/roach88/sophon/internal/engine"
	"github.com/roach88/sophon/internal/hypergraph"
	"github.com/roach88/sophon/internal/metrics"
	"github.com/roach88/sophon/internal/ops"
	"github.com/roach88/sophon/internal/ops/euclid"
	"github.com/roach88/sophon/internal/store"
)

// metricsShutdownTimeout bounds how long the metrics server may take to
// drain once the run ends.
const metricsShutdownTimeout = 5 * time.Second

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigPath  string
	Steps       int
	Seed        int64
	ReportEvery int
	Database    string
	MetricsAddr string
	Books       []string
	Resume      string

	// IDGenerator overrides the store's run id generator (for testing).
	IDGenerator store.IDGenerator
}

// Report is one periodic progress line of a run.
type Report struct {
	Step   int     `json:"step"`
	Nodes  int     `json:"nodes"`
	Edges  int     `json:"edges"`
	Energy float64 `json:"energy"`
	Mass   float64 `json:"mass"`
}

// RunResult is the json output of the run command.
type RunResult struct {
	RunID             string   `json:"run_id,omitempty"`
	Seed              int64    `json:"seed"`
	Ops               int      `json:"ops"`
	Steps             int      `json:"steps"`
	Completed         int      `json:"completed_steps"`
	Nodes             int      `json:"nodes"`
	Edges             int      `json:"edges"`
	Energy            float64  `json:"energy"`
	Mass              float64  `json:"mass"`
	Propositions      int      `json:"propositions"`
	InvariantFailures int      `json:"invariant_failures"`
	Reports           []Report `json:"reports"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

// newRunCommand binds the run flags to opts. Tests use it to preset
// fields that have no flag.
func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the engine for a number of steps",
		Long: `Run the sophon engine over the Euclid op library.

The graph starts from a seed segment, the engine steps the requested
number of times, and progress (nodes, edges, energy, mass) is reported
every --report-every steps. With --db every step summary is recorded to
SQLite and the final graph is saved with the run. With --metrics-addr
Prometheus metrics are served on /metrics for the lifetime of the run.

Flags override values from --config.

Example:
  sophon run --steps 500 --seed 7
  sophon run --config run.yaml --db ./sophon.db --metrics-addr 127.0.0.1:9464
  sophon run --db ./sophon.db --resume <run-id> --steps 100`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSophon(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "run configuration file (.yaml, .yml or .cue)")
	cmd.Flags().IntVar(&opts.Steps, "steps", config.DefaultSteps, "number of steps to run")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed")
	cmd.Flags().IntVar(&opts.ReportEvery, "report-every", config.DefaultReportEvery, "report progress every N steps (0 disables)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for recording the run")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on host:port")
	cmd.Flags().StringSliceVar(&opts.Books, "books", nil, fmt.Sprintf("op books to register %v (default all)", euclid.Books()))
	cmd.Flags().StringVar(&opts.Resume, "resume", "", "continue from the saved graph of a recorded run (requires --db)")

	return cmd
}

// resolveConfig loads --config over the defaults and applies the flags
// the user set explicitly.
func resolveConfig(opts *RunOptions, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Run.Steps = opts.Steps
	}
	if flags.Changed("seed") {
		cfg.Run.Seed = opts.Seed
	}
	if flags.Changed("report-every") {
		cfg.Run.ReportEvery = opts.ReportEvery
	}
	if flags.Changed("db") {
		cfg.Run.DB = opts.Database
	}
	if flags.Changed("metrics-addr") {
		cfg.Run.MetricsAddr = opts.MetricsAddr
	}
	if flags.Changed("books") {
		cfg.Run.Books = opts.Books
	}

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runSophon(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := resolveConfig(opts, cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if opts.Resume != "" && cfg.Run.DB == "" {
		return NewExitError(ExitCommandError, "--resume requires --db")
	}

	reg := ops.NewRegistry()
	if err := euclid.RegisterBooks(reg, cfg.Run.Books...); err != nil {
		return WrapExitError(ExitCommandError, "failed to register ops", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		graph     = hypergraph.New()
		st        *store.Store
		recorder  *store.Recorder
		observers []engine.Option
	)

	if cfg.Run.DB != "" {
		var storeOpts []store.Option
		if opts.IDGenerator != nil {
			storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDGenerator))
		}
		slog.Info("opening database", "path", cfg.Run.DB)
		st, err = store.Open(cfg.Run.DB, storeOpts...)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()

		if opts.Resume != "" {
			prev, err := st.GetRun(ctx, opts.Resume)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load run", err)
			}
			graph, err = st.LoadGraph(ctx, prev.ID)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load graph", err)
			}
			cfg.Engine.InitialEnergy, cfg.Engine.InitialMass = prev.Energy, prev.Mass
			slog.Info("resuming run", "from", prev.ID, "nodes", graph.NodeCount(), "edges", graph.EdgeCount())
		}

		run, err := st.CreateRun(ctx, cfg.Run.Seed, cfg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create run", err)
		}
		recorder = store.NewRecorder(st, run.ID)
		observers = append(observers, engine.WithObserver(recorder))
		slog.Info("recording run", "run_id", run.ID, "seq", run.Seq, "config_hash", run.ConfigHash)
	}

	if graph.NodeCount() == 0 {
		euclid.SeedSegment(graph)
	}

	var (
		srv *http.Server
		ln  net.Listener
	)
	if cfg.Run.MetricsAddr != "" {
		rec := metrics.NewRecorder()
		observers = append(observers, engine.WithObserver(rec))

		ln, err = net.Listen("tcp", cfg.Run.MetricsAddr)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to listen for metrics", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", rec.Handler())
		srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}

	engOpts := append([]engine.Option{engine.WithValuator(cfg.ToValuator())}, observers...)
	eng, err := engine.New(graph, reg, engine.NewRand(cfg.Run.Seed), cfg.ToEngine(), engOpts...)
	if err != nil {
		if ln != nil {
			ln.Close()
		}
		return WrapExitError(ExitCommandError, "failed to create engine", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	result := &RunResult{Seed: cfg.Run.Seed, Ops: reg.Len(), Steps: cfg.Run.Steps, Reports: []Report{}}
	if recorder != nil {
		result.RunID = recorder.RunID()
	}
	if !formatter.JSON() {
		fmt.Fprintf(formatter.Writer, "Starting sophon with %d ops (seed %d)\n", reg.Len(), cfg.Run.Seed)
	}

	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()
	grp, gctx := errgroup.WithContext(loopCtx)

	if srv != nil {
		slog.Info("serving metrics", "addr", ln.Addr().String())
		grp.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		grp.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	grp.Go(func() error {
		defer cancelLoop()
		return stepLoop(gctx, eng, cfg, result, formatter)
	})

	runErr := grp.Wait()
	interrupted := errors.Is(runErr, context.Canceled) && ctx.Err() != nil
	if runErr != nil && !interrupted {
		return WrapExitError(ExitFailure, "engine error", runErr)
	}

	state := eng.State()
	result.Nodes, result.Edges = graph.NodeCount(), graph.EdgeCount()
	result.Energy, result.Mass = state.Energy, state.Mass
	result.Propositions = state.SeenPropositions()

	if st != nil {
		// The run context may already be cancelled by a signal; the final
		// snapshot is still written.
		saveCtx := context.WithoutCancel(ctx)
		if err := st.SaveGraph(saveCtx, recorder.RunID(), graph); err != nil {
			return WrapExitError(ExitCommandError, "failed to save graph", err)
		}
		if !interrupted {
			if err := st.FinishRun(saveCtx, recorder.RunID()); err != nil {
				return WrapExitError(ExitCommandError, "failed to finish run", err)
			}
		}
	}

	if interrupted {
		slog.Info("run interrupted", "completed_steps", result.Completed)
	}
	slog.Info("run complete",
		"steps", result.Completed,
		"nodes", result.Nodes,
		"edges", result.Edges,
		"energy", result.Energy,
		"mass", result.Mass,
	)

	return formatter.Emit(result, func(w io.Writer) error {
		fmt.Fprintln(w, "\nRun complete.")
		if result.InvariantFailures > 0 {
			fmt.Fprintf(w, "Invariant failures: %d\n", result.InvariantFailures)
		}
		if result.RunID != "" {
			fmt.Fprintf(w, "Recorded run %s\n", result.RunID)
		}
		return nil
	})
}

// stepLoop steps the engine cfg.Run.Steps times. Steps without candidates
// still count, matching engine.Run.
func stepLoop(ctx context.Context, eng *engine.Engine, cfg config.Config, result *RunResult, f *OutputFormatter) error {
	params := cfg.ToStep()
	g := eng.Graph()

	for i := 1; i <= cfg.Run.Steps; i++ {
		summary, err := eng.Step(ctx, params)
		if err != nil {
			return err
		}
		result.Completed = i

		if summary != nil {
			for _, a := range summary.Attempts {
				if !a.Failed() && !a.InvariantsOK {
					result.InvariantFailures++
				}
			}
		} else {
			f.VerboseLog("step %d: no candidates", i)
		}

		if cfg.Run.ReportEvery > 0 && i%cfg.Run.ReportEvery == 0 {
			state := eng.State()
			r := Report{Step: i, Nodes: g.NodeCount(), Edges: g.EdgeCount(), Energy: state.Energy, Mass: state.Mass}
			result.Reports = append(result.Reports, r)
			if !f.JSON() {
				writeReport(f.Writer, r)
			}
		}
	}
	return nil
}

func writeReport(w io.Writer, r Report) {
	fmt.Fprintf(w, "Step %d:\n", r.Step)
	fmt.Fprintf(w, "  Nodes: %d\n", r.Nodes)
	fmt.Fprintf(w, "  Edges: %d\n", r.Edges)
	fmt.Fprintf(w, "  Energy: %.2f\n", r.Energy)
	fmt.Fprintf(w, "  Mass: %.2f\n", r.Mass)
}
