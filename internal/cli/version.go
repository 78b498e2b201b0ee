package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sgmi/proddash/internal/engine"
	"github.com/sgmi/proddash/pkg/version"
)

// versionInfo is the structured form of the version command.
type versionInfo struct {
	Version   string `json:"version"   yaml:"version"`
	Commit    string `json:"commit"    yaml:"commit"`
	BuildDate string `json:"buildDate" yaml:"build_date"`
	GoVersion string `json:"goVersion" yaml:"go_version"`
}

// NewVersionCmd prints build metadata.
func NewVersionCmd(ver string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := engine.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			info := versionInfo{
				Version:   ver,
				Commit:    version.GetGitCommit(),
				BuildDate: version.GetBuildDate(),
				GoVersion: runtime.Version(),
			}
			return renderValue(cmd, format, info, func() error {
				cmd.Printf("proddash %s (commit %s, built %s, %s)\n",
					info.Version, info.Commit, info.BuildDate, info.GoVersion)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, json, yaml")
	return cmd
}
