package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sgmi/proddash/internal/config"
	"github.com/sgmi/proddash/internal/logging"
)

// projectConfigFile is merged over the user config when present in the
// working directory.
const projectConfigFile = ".proddash.yaml"

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the proddash CLI.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "proddash",
		Short:         "Production tracking dashboard",
		Long:          "proddash: production reports, KPIs and planning from the terminal",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.SetOut(os.Stdout)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Err: err}
	})

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file (default ~/.proddash/config.yaml)")
	cmd.PersistentFlags().String("api-url", "", "backend base URL (overrides api.base_url)")
	cmd.PersistentFlags().Bool("no-cache", false, "bypass the response cache")

	cmd.AddCommand(
		NewReportCmd(), NewSessionsCmd(), NewTotalsCmd(), NewMetricsCmd(), NewProductsCmd(),
		newPlanCmd(),
		NewLoginCmd(), NewLogoutCmd(), NewWhoamiCmd(),
		NewChatCmd(), NewDashboardCmd(),
		newConfigCmd(), newCacheCmd(),
		NewSetupCmd(), NewVersionCmd(ver),
	)
	return cmd
}

const rootCmdExample = `  # Production report for the last 7 days
  proddash report

  # One product, custom range, sorted by kilograms
  proddash report --product "Pão Francês" --from 2025-08-01 --to 2025-08-07 --sort approxKg:desc

  # KPIs as JSON
  proddash metrics --output json

  # Schedule a plan
  proddash plan create --product broa --quantity 120 --shift morning --date 2025-08-13

  # Interactive dashboard
  proddash dashboard`

// loadConfig reads the config file, merges a project overlay and applies
// flag overrides, then publishes the result as the global config.
func loadConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(projectConfigFile); statErr == nil {
		if err := config.ShallowMergeYAML(cfg, projectConfigFile); err != nil {
			return err
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return fmt.Errorf("cannot access %s: %w", projectConfigFile, statErr)
	}

	if apiURL, _ := cmd.Flags().GetString("api-url"); apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	config.SetGlobalConfig(cfg)
	return nil
}

// newPlanCmd creates the plan command group.
func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "plan", Short: "Production planning commands"}
	cmd.AddCommand(NewPlanCreateCmd(), NewPlanImportCmd())
	return cmd
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigGetCmd(), NewConfigPathCmd(), NewConfigValidateCmd())
	return cmd
}
