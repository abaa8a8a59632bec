package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sophon/internal/config"
	"github.com/roach88/sophon/internal/ops"
	"github.com/roach88/sophon/internal/ops/euclid"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Path   string         `json:"path"`
	Valid  bool           `json:"valid"`
	Errors []string       `json:"errors,omitempty"`
	Config *config.Config `json:"config,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a run configuration",
		Long: `Validate a run configuration file without running the engine.

The file is decoded over the defaults (.yaml/.yml with unknown keys
rejected, .cue resolved to concrete values), checked against the field
constraints, and its op books are resolved.

Exit codes: 0 valid, 1 invalid, 2 unreadable or unsupported file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("Loading %s", path)
	cfg, err := config.Load(path)
	if err != nil {
		var loadErr *config.LoadError
		if !errors.As(err, &loadErr) || loadErr.Code != config.ErrCodeInvalid {
			return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
		}
		var fields []string
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			fields = verr.Fields
		} else {
			fields = []string{loadErr.Err.Error()}
		}
		return outputValidationErrors(formatter, path, fields)
	}

	// Books are only known to the op library, so they are resolved here.
	if err := euclid.RegisterBooks(ops.NewRegistry(), cfg.Run.Books...); err != nil {
		return outputValidationErrors(formatter, path, []string{err.Error()})
	}

	result := ValidationResult{Path: path, Valid: true}
	if opts.Verbose {
		result.Config = &cfg
	}
	return formatter.Emit(result, func(w io.Writer) error {
		fmt.Fprintf(w, "OK %s is valid\n", path)
		return nil
	})
}

// outputValidationErrors reports every failed constraint. Validation
// failures exit with ExitFailure.
func outputValidationErrors(formatter *OutputFormatter, path string, fields []string) error {
	if formatter.JSON() {
		err := formatter.encode(Response{
			Status: "error",
			Data:   ValidationResult{Path: path, Valid: false, Errors: fields},
			Error:  &ResponseError{Code: ErrCodeConfig, Message: fields[0]},
		})
		if err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "INVALID %s\n", path)
		for _, f := range fields {
			fmt.Fprintf(formatter.Writer, "  - %s\n", f)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(fields)))
}
