package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/starfall/internal/dataset"
	"github.com/roach88/starfall/internal/server"
	"github.com/roach88/starfall/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	Root    *RootOptions
	Dataset string
	Addr    string
	DBPath  string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{Root: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the generation HTTP API",
		Long: "Serves POST /api/generate and GET /api/seeds/:token. When --db is\n" +
			"given, every successful generation is persisted and retrievable by\n" +
			"token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Dataset, "dataset", "", "path to the world dataset directory (required)")
	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database to persist generations in")
	cmd.MarkFlagRequired("dataset")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: verboseLevel(opts.Root.Verbose),
	}))

	base, err := dataset.LoadDir(opts.Dataset)
	if err != nil {
		return WrapExitError(ExitCommandError, "load dataset", err)
	}

	var seeds *store.Store
	if opts.DBPath != "" {
		seeds, err = store.Open(opts.DBPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "open seed store", err)
		}
		defer seeds.Close()
	}

	srv := server.New(base, seeds, logger)
	logger.Info("listening", "addr", opts.Addr)
	if err := srv.Router().Run(opts.Addr); err != nil {
		return WrapExitError(ExitFailure, "server stopped", err)
	}
	return nil
}
