package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/starfall/internal/dataset"
	"github.com/roach88/starfall/internal/fill"
	"github.com/roach88/starfall/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	Root     *RootOptions
	Dataset  string
	Settings string
	Seed     int64
	DBPath   string
	Attempts int
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{Root: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a certified item placement",
		Long: "Loads the world dataset, applies player settings, and runs the\n" +
			"fill engine until a placement passes validation. The result is\n" +
			"printed and, when --db is given, persisted under its token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Dataset, "dataset", "", "path to the world dataset directory (required)")
	cmd.Flags().StringVar(&opts.Settings, "settings", "", "path to a player settings YAML file")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "seed (0 draws a random one)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database to persist the result in")
	cmd.Flags().IntVar(&opts.Attempts, "attempts", 0, "override the attempt ceiling")
	cmd.MarkFlagRequired("dataset")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	formatter := &OutputFormatter{
		Format:    opts.Root.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Root.Verbose,
	}

	base, err := dataset.LoadDir(opts.Dataset)
	if err != nil {
		formatter.Error("DATASET", err.Error(), nil)
		return WrapExitError(ExitCommandError, "load dataset", err)
	}
	formatter.VerboseLog("dataset: %d locations, %d item kinds", len(base.Locations), len(base.Items))

	settings := dataset.DefaultSettings()
	if opts.Settings != "" {
		settings, err = dataset.LoadSettings(opts.Settings)
		if err != nil {
			formatter.Error("SETTINGS", err.Error(), nil)
			return WrapExitError(ExitCommandError, "load settings", err)
		}
	}
	if opts.Seed != 0 {
		settings.Seed = opts.Seed
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: verboseLevel(opts.Root.Verbose),
	}))

	engineOpts := []fill.Option{fill.WithLogger(logger)}
	if opts.Attempts > 0 {
		engineOpts = append(engineOpts, fill.WithMaxAttempts(opts.Attempts))
	}

	result, err := fill.New(base, settings, engineOpts...).Generate()
	if err != nil {
		code := "GENERATION"
		if fill.IsConfigurationError(err) {
			code = "CONFIGURATION"
		}
		var genErr *fill.GenError
		if errors.As(err, &genErr) {
			formatter.Error(code, genErr.Message, genErr.Details)
		} else {
			formatter.Error(code, err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "generation failed", err)
	}

	if opts.DBPath != "" {
		if err := persistResult(opts.DBPath, result); err != nil {
			formatter.Error("STORE", err.Error(), nil)
			return WrapExitError(ExitCommandError, "persist result", err)
		}
		formatter.VerboseLog("persisted token %s to %s", result.Token, opts.DBPath)
	}

	if opts.Root.Format == "json" {
		return formatter.Success(result)
	}
	printResultText(formatter, result)
	return nil
}

func persistResult(path string, result *fill.Result) error {
	seeds, err := store.Open(path)
	if err != nil {
		return err
	}
	defer seeds.Close()
	return seeds.SaveResult(context.Background(), result)
}

func printResultText(f *OutputFormatter, r *fill.Result) {
	fmt.Fprintf(f.Writer, "token:          %s\n", r.Token)
	fmt.Fprintf(f.Writer, "seed:           %d\n", r.Seed)
	fmt.Fprintf(f.Writer, "attempts:       %d\n", r.Summary.Attempts)
	fmt.Fprintf(f.Writer, "spheres:        %d\n", r.Summary.Spheres)
	fmt.Fprintf(f.Writer, "locations:      %d\n", r.Summary.Locations)
	fmt.Fprintf(f.Writer, "swaps:          %d\n", r.Summary.Swaps)
	fmt.Fprintf(f.Writer, "goal reachable: %t\n", r.GoalReachable)
}

func verboseLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
