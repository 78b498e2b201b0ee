package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sgmi/proddash/internal/config"
)

// NewConfigInitCmd creates the config init command. With --project it writes
// the overlay file in the working directory instead of the user config.
func NewConfigInitCmd() *cobra.Command {
	var (
		force   bool
		project bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a commented configuration file with default values at
~/.proddash/config.yaml (or $PRODDASH_HOME/config.yaml).

With --project, creates ./.proddash.yaml instead. Sections in that file
replace the matching sections of the user configuration when proddash runs
from this directory.`,
		Example: `  # Create the user configuration
  proddash config init

  # Create a project overlay, overwriting an existing one
  proddash config init --project --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.Path()
			if project {
				path = projectConfigFile
			}
			if err := config.WriteDefault(path, force); err != nil {
				if errors.Is(err, config.ErrConfigExists) {
					return errors.New("configuration file already exists, use --force to overwrite")
				}
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				abs = path
			}
			cmd.Printf("Configuration initialized at %s\n", abs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&project, "project", false, "create ./"+projectConfigFile+" instead of the user config")
	return cmd
}

// NewConfigPathCmd prints where configuration is read from.
func NewConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Println(config.Path())
			if _, err := os.Stat(projectConfigFile); err == nil {
				abs, absErr := filepath.Abs(projectConfigFile)
				if absErr != nil {
					abs = projectConfigFile
				}
				cmd.Printf("%s (project overlay)\n", abs)
			}
			return nil
		},
	}
}

// NewConfigGetCmd prints one effective configuration value by dotted key,
// or the whole configuration without a key.
func NewConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Show an effective configuration value",
		Example: `  proddash config get api.base_url
  proddash config get dashboard`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) > 0 {
				key = args[0]
			}
			v, err := lookupConfig(config.GetGlobalConfig(), key)
			if err != nil {
				return err
			}
			if s, ok := v.(string); ok {
				cmd.Println(s)
				return nil
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(v); err != nil {
				return fmt.Errorf("encoding value: %w", err)
			}
			return enc.Close()
		},
	}
}

// lookupConfig walks cfg's YAML form along a dotted key.
func lookupConfig(cfg *config.Config, key string) (any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if key == "" {
		return tree, nil
	}

	var cur any = tree
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unknown config key %q", key)
		}
		if cur, ok = m[part]; !ok {
			return nil, fmt.Errorf("unknown config key %q", key)
		}
	}
	switch v := cur.(type) {
	case map[string]any:
		return v, nil
	default:
		return fmt.Sprint(v), nil
	}
}

// NewConfigValidateCmd loads and validates a configuration file.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate configuration file",
		Long: `Loads the configuration file (the user config when no file is given),
applies PRODDASH_* environment overrides and checks value ranges.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			cmd.Println("✅ Configuration is valid")
			if verbose {
				cmd.Printf("  API:        %s (timeout %s)\n", cfg.API.BaseURL, cfg.API.Timeout)
				cmd.Printf("  Dashboard:  %d rows per page, %d days, locale %s\n",
					cfg.Dashboard.PageSize, cfg.Dashboard.DefaultDays, cfg.Dashboard.Locale)
				cmd.Printf("  Cache:      enabled=%t ttl=%ds dir=%s\n",
					cfg.Cache.Enabled, cfg.Cache.TTLSeconds, cfg.Cache.Directory)
				cmd.Printf("  Session:    %s\n", cfg.Auth.SessionFile)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")
	return cmd
}
