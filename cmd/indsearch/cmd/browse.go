package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/indsearch/internal/ui"
)

func newBrowseCmd(global *globalOptions) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Search the catalog interactively in the terminal",
		Long: `Open a terminal search box over the catalog. Results are re-queried on
every keystroke; use the arrow keys to select an indicator and esc to quit.

When input or output is not a terminal (or with --plain) each input line is
read as a query and answered with a listing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
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

			in, out := cmd.InOrStdin(), cmd.OutOrStdout()
			if !plain && ui.Interactive(in, out) {
				styles := ui.GetStyles(ui.DetectNoColor())
				return ui.RunBrowser(ctx, a.service, in, out, styles)
			}
			return ui.RunPlain(ctx, a.service, in, out, ui.StylesFor(out))
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Read queries line by line instead of opening the full-screen browser")

	return cmd
}
