package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/bselens/bselens/internal/observability"
	"github.com/bselens/bselens/internal/output"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <scrip-code>",
	Short: "Show the OHLC and last traded price of a scrip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		weekly, err := cmd.Flags().GetBool("weekly")
		if err != nil {
			return err
		}

		s, err := newSession(cmd.Context(), observability.CLILogger)
		if err != nil {
			return err
		}
		defer s.Close()

		code := strings.TrimSpace(args[0])
		if weekly {
			hl, err := s.client.QuoteWeeklyHL(cmd.Context(), code)
			if err != nil {
				return err
			}
			return render(cmd, output.WeeklyHighLow(code, hl))
		}

		quote, err := s.client.Quote(cmd.Context(), code)
		if err != nil {
			return err
		}
		return render(cmd, output.Quote(code, quote))
	},
}

func init() {
	quoteCmd.Flags().Bool("weekly", false, "Show 52 week, monthly and weekly highs and lows instead")
	rootCmd.AddCommand(quoteCmd)
}
