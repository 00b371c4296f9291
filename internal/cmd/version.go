package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bselens/bselens/internal/server/handlers"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information. Use --extended for Go, Gofulmen and Crucible versions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		extended, err := cmd.Flags().GetBool("extended")
		if err != nil {
			return err
		}

		info := handlers.CurrentVersion()
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "%s %s\n", info.App.Name, versionInfo.Version)
		if !extended {
			return nil
		}

		_, _ = fmt.Fprintf(out, "Commit: %s\n", versionInfo.Commit)
		_, _ = fmt.Fprintf(out, "Built: %s\n", versionInfo.BuildDate)
		_, _ = fmt.Fprintf(out, "Go: %s\n\n", info.App.GoVersion)
		_, _ = fmt.Fprintf(out, "Gofulmen: %s\n", info.Dependencies.Gofulmen)
		_, _ = fmt.Fprintf(out, "Crucible: %s\n", info.Dependencies.Crucible)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("extended", "e", false, "show extended version information")
}
