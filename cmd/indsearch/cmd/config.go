package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/indsearch/configs"
	"github.com/Aman-CERP/indsearch/internal/config"
	"github.com/Aman-CERP/indsearch/internal/output"
)

func newConfigCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage indsearch configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/indsearch/config.yaml)
  3. Project config (.indsearch.yaml)
  4. .env file in the project directory
  5. Environment variables (INDSEARCH_*)`,
		Example: `  # Create a project config with the defaults
  indsearch config init

  # Create the user config instead
  indsearch config init --user

  # Snapshot the merged configuration (env and .env included)
  indsearch config init --effective --force

  # Show effective configuration
  indsearch config show`,
	}

	cmd.AddCommand(newConfigInitCmd(global))
	cmd.AddCommand(newConfigShowCmd(global))
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd(global *globalOptions) *cobra.Command {
	var force, user, effective bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the defaults",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := filepath.Join(global.dir, config.ProjectConfigFile)
			template := configs.ProjectConfigTemplate
			if user {
				path = config.GetUserConfigPath()
				template = configs.UserConfigTemplate
			}
			write := func(p string) error { return os.WriteFile(p, []byte(template), 0o644) }
			if effective {
				cfg, err := loadConfig(global)
				if err != nil {
					return err
				}
				write = cfg.WriteYAML
			}
			return runConfigInit(cmd, path, write, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&user, "user", false, "Write the user config instead of the project config")
	cmd.Flags().BoolVar(&effective, "effective", false, "Write the current effective configuration instead of the commented template")

	return cmd
}

func newConfigShowCmd(global *globalOptions) *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, global, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func runConfigInit(cmd *cobra.Command, path string, write func(string) error, force bool) error {
	out := output.New(cmd.OutOrStdout())

	if _, err := os.Stat(path); err == nil && !force {
		out.Warning("Configuration already exists")
		out.Statusf("📁", "Location: %s", path)
		out.Newline()
		out.Status("", "Use --force to overwrite")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := write(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Successf("Created configuration at %s", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, global *globalOptions, jsonOutput bool, source string) error {
	var cfg *config.Config
	switch source {
	case "defaults":
		cfg = config.NewConfig()
	case "merged", "":
		var err error
		cfg, err = loadConfig(global)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid source %q: must be merged or defaults", source)
	}

	out := output.New(cmd.OutOrStdout())
	if jsonOutput {
		return out.JSON(cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return out.Raw(string(data))
}
