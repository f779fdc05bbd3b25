package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/starfall/internal/store"
)

// SpoilerOptions holds flags for the spoiler command.
type SpoilerOptions struct {
	Root   *RootOptions
	DBPath string
	Token  string
}

// NewSpoilerCommand creates the spoiler command.
func NewSpoilerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SpoilerOptions{Root: rootOpts}

	cmd := &cobra.Command{
		Use:   "spoiler",
		Short: "Print the sphere trace of a stored seed",
		Long: "Reads a persisted generation from the seed store and prints its\n" +
			"collection order, sphere by sphere.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpoiler(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database holding stored seeds (required)")
	cmd.Flags().StringVar(&opts.Token, "token", "", "generation token (required)")
	cmd.MarkFlagRequired("db")
	cmd.MarkFlagRequired("token")

	return cmd
}

func runSpoiler(cmd *cobra.Command, opts *SpoilerOptions) error {
	formatter := &OutputFormatter{
		Format:    opts.Root.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Root.Verbose,
	}

	seeds, err := store.Open(opts.DBPath)
	if err != nil {
		formatter.Error("STORE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "open seed store", err)
	}
	defer seeds.Close()

	ctx := context.Background()
	record, err := seeds.GetSeed(ctx, opts.Token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			formatter.Error("NOT_FOUND", fmt.Sprintf("no seed with token %s", opts.Token), nil)
			return WrapExitError(ExitCommandError, "seed not found", err)
		}
		formatter.Error("STORE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "read seed", err)
	}

	trace, err := seeds.GetTrace(ctx, opts.Token)
	if err != nil {
		formatter.Error("STORE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "read trace", err)
	}

	if opts.Root.Format == "json" {
		return formatter.Success(map[string]any{
			"seed":  record,
			"trace": trace,
		})
	}

	fmt.Fprintf(formatter.Writer, "token %s, seed %d, %d attempts, %d spheres, goal reachable: %t\n",
		record.Token, record.Seed, record.Attempts, record.Spheres, record.GoalReachable)
	sphere := -1
	for _, entry := range trace {
		if entry.Sphere != sphere {
			sphere = entry.Sphere
			fmt.Fprintf(formatter.Writer, "sphere %d:\n", sphere)
		}
		marker := ""
		if entry.Locked {
			marker = " (locked)"
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s%s\n", entry.Location, entry.Item, marker)
	}
	return nil
}
