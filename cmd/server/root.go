package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/iudanet/facialanalyzer/internal/config"
)

// NewRootCmd создает корневую команду сервера. Без подкоманды запускает API.
func NewRootCmd() *cobra.Command {
	cfg := config.Defaults()

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Facial Analyzer account API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, &cfg)
		},
	}

	cfg.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(newServeCmd(&cfg))
	cmd.AddCommand(newMigrateCmd(&cfg))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API. Pending migrations are applied on startup.
Settings come from flags, environment variables and an optional .env file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, cfg)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Facial Analyzer Server\n")
	fmt.Fprintf(w, "Version:    %s\n", Version)
	fmt.Fprintf(w, "Build Date: %s\n", BuildDate)
	fmt.Fprintf(w, "Git Commit: %s\n", GitCommit)
}
