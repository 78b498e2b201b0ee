package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgmi/proddash/internal/auth"
	"github.com/sgmi/proddash/internal/config"
	"github.com/sgmi/proddash/internal/logging"
	"github.com/sgmi/proddash/pkg/version"
)

// StepStatus represents the outcome of a single setup step.
type StepStatus int

const (
	// StepSuccess indicates the step completed successfully.
	StepSuccess StepStatus = iota
	// StepWarning indicates the step completed with a non-fatal issue.
	StepWarning
	// StepSkipped indicates the step was intentionally skipped via flag.
	StepSkipped
	// StepError indicates the step failed.
	StepError
)

// StepResult describes the outcome of executing a single setup step.
type StepResult struct {
	Name     string
	Status   StepStatus
	Message  string
	Critical bool
	Err      error
}

// SetupOptions holds the configuration for the setup command, derived from CLI flags.
type SetupOptions struct {
	SkipBackend    bool
	NonInteractive bool
}

// SetupResult is the aggregate outcome of all setup steps.
type SetupResult struct {
	Steps       []StepResult
	HasErrors   bool
	HasWarnings bool
}

// dirPermBase is the permission mode for the base and standard directories.
const dirPermBase = 0o700

// backendCheckTimeout bounds the reachability probe.
const backendCheckTimeout = 5 * time.Second

// formatStatus returns a status marker appropriate for the output mode.
func formatStatus(status StepStatus, nonInteractive bool) string {
	if nonInteractive {
		switch status {
		case StepSuccess:
			return "[OK]"
		case StepWarning:
			return "[WARN]"
		case StepSkipped:
			return "[SKIP]"
		case StepError:
			return "[ERR]"
		default:
			return "[??]"
		}
	}

	switch status {
	case StepSuccess:
		return "\u2713" // ✓
	case StepWarning:
		return "!"
	case StepSkipped:
		return "-"
	case StepError:
		return "\u2717" // ✗
	default:
		return "?"
	}
}

// NewSetupCmd creates the setup command that prepares a workstation.
func NewSetupCmd() *cobra.Command {
	var opts SetupOptions

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Prepare the proddash environment",
		Long: `Creates the proddash directories and default configuration, then checks
that the backend answers and whether a session is stored.

Safe to run repeatedly: existing configuration is preserved.`,
		Example: `  # Full setup
  proddash setup

  # CI setup (no TTY-dependent output, no network)
  proddash setup --non-interactive --skip-backend`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetup(cmd, &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.NonInteractive, "non-interactive", false,
		"Disable TTY-dependent output (status symbols, color)")
	cmd.Flags().BoolVar(&opts.SkipBackend, "skip-backend", false,
		"Skip the backend reachability check")

	return cmd
}

// runSetup runs every step even when earlier ones fail and returns an error
// only if a critical step failed.
func runSetup(cmd *cobra.Command, opts *SetupOptions) error {
	ctx := commandContext(cmd)
	log := logging.FromContext(ctx)

	if !opts.NonInteractive && !isTerminal(os.Stdin) {
		opts.NonInteractive = true
	}

	result := &SetupResult{}
	record := func(steps ...StepResult) {
		for _, s := range steps {
			printStep(cmd, s, opts.NonInteractive)
			result.Steps = append(result.Steps, s)
		}
	}

	record(stepDisplayVersion())
	record(stepCreateDirectories()...)
	record(stepInitConfig())
	if opts.SkipBackend {
		record(StepResult{
			Name:    "Backend check",
			Status:  StepSkipped,
			Message: "Skipped backend check",
		})
	} else {
		record(stepCheckBackend(ctx))
	}
	record(stepSessionStatus(time.Now()))

	for _, s := range result.Steps {
		if s.Status == StepError && s.Critical {
			result.HasErrors = true
		}
		if s.Status == StepWarning {
			result.HasWarnings = true
		}
	}

	printSummary(cmd, result)

	if result.HasErrors {
		log.Error().
			Ctx(ctx).
			Str("component", "setup").
			Msg("setup completed with critical errors")
		return errors.New("setup failed: one or more critical steps failed")
	}
	return nil
}

// printStep outputs a single step's status line.
func printStep(cmd *cobra.Command, step StepResult, nonInteractive bool) {
	marker := formatStatus(step.Status, nonInteractive)
	cmd.Printf("%s %s\n", marker, step.Message)
}

// printSummary outputs the final completion message.
func printSummary(cmd *cobra.Command, result *SetupResult) {
	cmd.Println()
	if result.HasErrors {
		cmd.Println("Setup completed with errors. Review the messages above for remediation steps.")
	} else {
		cmd.Println("Setup complete! Run 'proddash login' and then 'proddash dashboard' to get started.")
	}
}

// stepDisplayVersion reports the proddash version and Go runtime.
func stepDisplayVersion() StepResult {
	return StepResult{
		Name:    "Version display",
		Status:  StepSuccess,
		Message: fmt.Sprintf("proddash v%s (%s)", version.GetVersion(), runtime.Version()),
	}
}

// stepCreateDirectories creates the base, cache and logs directories.
// Returns one StepResult per directory.
func stepCreateDirectories() []StepResult {
	baseDir := config.Dir()
	dirs := []string{
		baseDir,
		filepath.Join(baseDir, "cache"),
		filepath.Join(baseDir, "logs"),
	}

	results := make([]StepResult, 0, len(dirs))
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			results = append(results, StepResult{
				Name:     "Directory creation",
				Status:   StepSuccess,
				Message:  fmt.Sprintf("Directory exists: %s", dir),
				Critical: true,
			})
			continue
		}

		if err := os.MkdirAll(dir, dirPermBase); err != nil {
			results = append(results, StepResult{
				Name:   "Directory creation",
				Status: StepError,
				Message: fmt.Sprintf(
					"Failed to create %s: %v\n  Try: export %s=/path/to/writable/directory",
					dir, err, config.EnvConfigDir,
				),
				Critical: true,
				Err:      err,
			})
			continue
		}

		results = append(results, StepResult{
			Name:     "Directory creation",
			Status:   StepSuccess,
			Message:  fmt.Sprintf("Created %s", dir),
			Critical: true,
		})
	}
	return results
}

// stepInitConfig writes the default config file if one does not exist.
func stepInitConfig() StepResult {
	path := config.Path()
	err := config.WriteDefault(path, false)
	switch {
	case errors.Is(err, config.ErrConfigExists):
		return StepResult{
			Name:     "Config initialization",
			Status:   StepSuccess,
			Message:  fmt.Sprintf("Config already exists (%s)", path),
			Critical: true,
		}
	case err != nil:
		return StepResult{
			Name:     "Config initialization",
			Status:   StepError,
			Message:  fmt.Sprintf("Failed to initialize config: %v", err),
			Critical: true,
			Err:      err,
		}
	default:
		return StepResult{
			Name:     "Config initialization",
			Status:   StepSuccess,
			Message:  fmt.Sprintf("Initialized config (%s)", path),
			Critical: true,
		}
	}
}

// stepCheckBackend asks the backend for the product catalog.
func stepCheckBackend(ctx context.Context) StepResult {
	e, err := newEnv()
	if err != nil {
		return StepResult{
			Name:    "Backend check",
			Status:  StepWarning,
			Message: fmt.Sprintf("Backend client could not be created: %v", err),
			Err:     err,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, backendCheckTimeout)
	defer cancel()
	products, err := e.client.ActiveProducts(ctx)
	if err != nil {
		return StepResult{
			Name:   "Backend check",
			Status: StepWarning,
			Message: fmt.Sprintf(
				"Backend at %s did not answer: %v\n  Try: proddash --api-url <url> setup, or login --offline",
				e.client.BaseURL(), err,
			),
			Err: err,
		}
	}
	return StepResult{
		Name:    "Backend check",
		Status:  StepSuccess,
		Message: fmt.Sprintf("Backend reachable at %s (%d active products)", e.client.BaseURL(), len(products)),
	}
}

// stepSessionStatus reports whether a usable session is stored.
func stepSessionStatus(now time.Time) StepResult {
	store := auth.NewStore(config.GetGlobalConfig().Auth.SessionFile)
	sess, err := store.Load()
	if err != nil || !sess.Valid(now) {
		return StepResult{
			Name:    "Session",
			Status:  StepWarning,
			Message: "Not logged in. Run: proddash login",
			Err:     err,
		}
	}
	return StepResult{
		Name:    "Session",
		Status:  StepSuccess,
		Message: fmt.Sprintf("Logged in as %s", sess.User.Username),
	}
}
