package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bselens/bselens/internal/output"
	"github.com/bselens/bselens/internal/throttle"
)

var throttleCmd = &cobra.Command{
	Use:   "throttle",
	Short: "Show the configured requests-per-second buckets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return render(cmd, output.Throttle(throttle.New(cfg.ThrottleSettings()).Snapshot()))
	},
}

func init() {
	rootCmd.AddCommand(throttleCmd)
}
