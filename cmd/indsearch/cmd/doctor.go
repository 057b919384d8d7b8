package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/indsearch/internal/logging"
	"github.com/Aman-CERP/indsearch/internal/output"
	"github.com/Aman-CERP/indsearch/internal/preflight"
)

func newDoctorCmd(global *globalOptions) *cobra.Command {
	var verbose, jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the configuration, catalog and environment",
		Long: `Run diagnostics on the current setup.

Checks:
  - Configuration loads and validates
  - Catalog can be fetched, decoded and validated
  - Catalog indexes and answers a sample query
  - Debug log directory is writable (warning only)
  - Serve address is free (warning only)`,
		Example: `  # Run diagnostics
  indsearch doctor

  # Against another catalog, with details
  indsearch doctor -c https://example.org/indicators.json --verbose

  # JSON output for scripting
  indsearch doctor --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, global, verbose, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed diagnostic info")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// doctorReport is the JSON form of a doctor run.
type doctorReport struct {
	Status string                  `json:"status"`
	Checks []preflight.CheckResult `json:"checks"`
}

func runDoctor(cmd *cobra.Command, global *globalOptions, verbose, jsonOutput bool) error {
	target := preflight.Target{LogDir: logging.DefaultLogDir()}
	cfg, err := loadConfig(global)
	if err != nil {
		target.ConfigErr = err
	} else {
		target.Config = cfg
		target.Source = resolveSource(cfg.Catalog.Source, global.dir)
		target.Index = indexConfig(cfg)
	}

	checker := preflight.New(
		preflight.WithVerbose(verbose),
		preflight.WithOutput(cmd.OutOrStdout()),
	)
	results := checker.RunAll(cmd.Context(), target)

	if jsonOutput {
		if err := output.New(cmd.OutOrStdout()).JSON(doctorReport{
			Status: checker.SummaryStatus(results),
			Checks: results,
		}); err != nil {
			return err
		}
	} else {
		checker.PrintResults(results)
	}

	if checker.HasCriticalFailures(results) {
		return errors.New("setup check failed")
	}
	return nil
}
