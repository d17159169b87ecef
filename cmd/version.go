package cmd

import (
	"fmt"

	"sqlsubmit/internal/version"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display version, build time, commit and the targeted Flink release.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sqlsubmit %s\n", version.Version)
		fmt.Fprintf(out, "Commit: %s\n", version.Commit)
		fmt.Fprintf(out, "Built: %s\n", version.BuildTime)
		fmt.Fprintf(out, "Flink: %s (SQL Gateway API %s)\n", version.FlinkVersion, version.GatewayAPIVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
