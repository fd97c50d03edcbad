package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

// versionInfo is the structured form of the version command's output.
type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number",
	Annotations: map[string]string{noServices: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := versionInfo{Version: version, GoVersion: runtime.Version()}
		return render(cmd, info, func() {
			cmd.Printf("lexmerge version %s\n", info.Version)
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
