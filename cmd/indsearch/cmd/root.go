// Package cmd provides the CLI commands for indsearch.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/indsearch/internal/logging"
	"github.com/Aman-CERP/indsearch/internal/profiling"
	"github.com/Aman-CERP/indsearch/pkg/version"
)

// globalOptions holds persistent flags shared by every command.
type globalOptions struct {
	debug   bool
	catalog string
	dir     string
	profile profiling.Options
}

// NewRootCmd creates the root command for the indsearch CLI.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	var loggingCleanup func()
	var profiler *profiling.Session

	cmd := &cobra.Command{
		Use:   "indsearch",
		Short: "Search the climate indicator catalog",
		Long: `indsearch loads an indicators.json catalog, indexes titles, abstracts,
input variables and keywords, and answers free-text queries with typo
tolerance and prefix matching.

Results are served as a live HTML page, printed to the terminal, written to a
static page or exposed to AI assistants over MCP.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.debug {
				logger, cleanup, err := logging.Setup(logging.DebugConfig())
				if err != nil {
					return fmt.Errorf("failed to setup debug logging: %w", err)
				}
				loggingCleanup = cleanup
				slog.SetDefault(logger)
				slog.Info("debug_logging_enabled",
					slog.String("log_file", logging.DefaultLogPath()),
					slog.String("version", version.Version))
			}

			if opts.profile.Enabled() {
				session, err := profiling.Start(opts.profile)
				if err != nil {
					return err
				}
				profiler = session
			}
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if profiler != nil {
				if err := profiler.Stop(); err != nil {
					return err
				}
				profiler = nil
			}
			if loggingCleanup != nil {
				slog.Info("debug_logging_stopped")
				loggingCleanup()
				loggingCleanup = nil
			}
			return nil
		},
	}

	cmd.SetVersionTemplate("indsearch version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging to ~/.indsearch/logs/")
	cmd.PersistentFlags().StringVarP(&opts.catalog, "catalog", "c", "", "Catalog file or http(s) URL (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.dir, "dir", ".", "Project directory holding .indsearch.yaml and .env")

	cmd.PersistentFlags().StringVar(&opts.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&opts.profile.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&opts.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newBuildCmd(opts))
	cmd.AddCommand(newBrowseCmd(opts))
	cmd.AddCommand(newMCPCmd(opts))
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newDoctorCmd(opts))
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
