package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/starfall/internal/dataset"
	"github.com/roach88/starfall/internal/logic"
	"github.com/roach88/starfall/internal/rules"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	Root    *RootOptions
	Dataset string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{Root: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a world dataset without generating",
		Long: "Loads the dataset, checks world invariants, and compiles every\n" +
			"rule. Named predicate cycles, unresolved references, and malformed\n" +
			"expressions are reported without running a fill.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Dataset, "dataset", "", "path to the world dataset directory (required)")
	cmd.MarkFlagRequired("dataset")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions) error {
	formatter := &OutputFormatter{
		Format:    opts.Root.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Root.Verbose,
	}

	w, err := dataset.LoadDir(opts.Dataset)
	if err != nil {
		formatter.Error("DATASET", err.Error(), nil)
		return WrapExitError(ExitFailure, "dataset invalid", err)
	}

	compiler, err := rules.NewCompiler(w.Named)
	if err != nil {
		formatter.Error(validateErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "rules invalid", err)
	}
	if _, err := logic.NewOracle(w, compiler, nil); err != nil {
		formatter.Error(validateErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "rules invalid", err)
	}

	if opts.Root.Format == "json" {
		return formatter.Success(map[string]any{
			"dataset":    opts.Dataset,
			"locations":  len(w.Locations),
			"regions":    len(w.Regions),
			"predicates": len(w.Named),
			"items":      len(w.Items),
		})
	}
	fmt.Fprintf(formatter.Writer, "ok: %d locations, %d regions, %d predicates, %d item kinds\n",
		len(w.Locations), len(w.Regions), len(w.Named), len(w.Items))
	return nil
}

func validateErrorCode(err error) string {
	switch {
	case rules.IsCycleError(err):
		return "PREDICATE_CYCLE"
	case rules.IsMalformedError(err):
		return "MALFORMED_RULE"
	default:
		return "COMPILE"
	}
}
