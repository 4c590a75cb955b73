package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/payday-dev/payday/internal/buildinfo"
	"github.com/payday-dev/payday/internal/logger"
)

type rootOptions struct {
	repo    string
	verbose bool
	logJSON bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "payday",
		Short:   "Track recurring bills and paychecks against bank statements",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.repo, "repo", ".", "workspace directory")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "log as JSON instead of console text")

	rootCmd.AddCommand(
		newInitCommand(),
		newProjectCommand(opts),
		newReconcileCommand(opts),
		newIncomeCommand(opts),
		newAnchorCommand(opts),
		newNextDueCommand(opts),
		newHistoryCommand(opts),
	)

	return rootCmd
}

// setup loads <repo>/.env and attaches a logger to the command context.
// Variables already set in the environment win over .env.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	envPath := filepath.Join(o.repo, ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", envPath, err)
	}

	log := logger.New(cmd.ErrOrStderr(), o.verbose)
	if o.logJSON {
		log = logger.NewJSON(cmd.ErrOrStderr(), o.verbose)
	}
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	return nil
}
