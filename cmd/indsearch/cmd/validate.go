package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/indsearch/internal/output"
	"github.com/Aman-CERP/indsearch/internal/validation"
)

func newValidateCmd(global *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate <queries.yaml>",
		Short: "Check search relevance against a query file",
		Long: `Run the queries of a YAML file against the configured catalog and report
which ones return their expected indicators.

  tier1:     an expected indicator must rank first
  tier2:     an expected indicator must rank within "top" (default 3)
  negative:  the query must be answered without an error

The command fails when any query fails.`,
		Example: `  indsearch validate relevance.yaml
  indsearch validate relevance.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			queries, err := validation.LoadQueries(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			a, err := newApp(ctx, global, cfg, newLogger(global, nil, cfg.Server.LogLevel))
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			if a.loadErr != nil {
				return a.loadErr
			}

			result := validation.NewValidator(a.service).RunAll(ctx, queries)

			out := output.New(cmd.OutOrStdout())
			if jsonOutput {
				if err := out.JSON(result); err != nil {
					return err
				}
			} else {
				printValidation(out, result)
			}

			if !result.Passed() {
				return fmt.Errorf("relevance validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}

func printValidation(out *output.Writer, result *validation.ValidationResult) {
	for _, tier := range [][]validation.TestResult{result.Tier1, result.Tier2, result.Negative} {
		for _, tr := range tier {
			switch {
			case tr.Passed:
				out.Successf("%s %q", tr.Spec.ID, tr.Spec.Query)
			case tr.Error != "":
				out.Errorf("%s %q: %s", tr.Spec.ID, tr.Spec.Query, tr.Error)
			default:
				out.Errorf("%s %q: expected %v within top %d, got %v",
					tr.Spec.ID, tr.Spec.Query, tr.Spec.Expected, tr.Spec.Top, head(tr.TopResults, 5))
			}
		}
	}
	out.Newline()
	out.Code(result.Summary())
}

func head(ids []string, n int) []string {
	if len(ids) > n {
		return ids[:n]
	}
	return ids
}
