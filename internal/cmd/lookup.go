package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/bselens/bselens/internal/observability"
	"github.com/bselens/bselens/internal/output"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <text>",
	Short: "Search scrips by name, symbol, ISIN or code",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), observability.CLILogger)
		if err != nil {
			return err
		}
		defer s.Close()

		entries, err := s.client.LookupEntries(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return render(cmd, output.Entries(entries))
	},
}

var scripCmd = &cobra.Command{
	Use:   "scrip",
	Short: "Resolve scrip codes and trading symbols",
}

var scripNameCmd = &cobra.Command{
	Use:   "name <scrip-code>",
	Short: "Print the trading symbol for a scrip code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), observability.CLILogger)
		if err != nil {
			return err
		}
		defer s.Close()

		code := strings.TrimSpace(args[0])
		symbol, err := s.client.ScripName(cmd.Context(), code)
		if err != nil {
			return err
		}
		return render(cmd, scripDataset(code, symbol))
	},
}

var scripCodeCmd = &cobra.Command{
	Use:   "code <symbol>",
	Short: "Print the scrip code for a trading symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), observability.CLILogger)
		if err != nil {
			return err
		}
		defer s.Close()

		symbol := strings.ToUpper(strings.TrimSpace(args[0]))
		code, err := s.client.ScripCode(cmd.Context(), symbol)
		if err != nil {
			return err
		}
		return render(cmd, scripDataset(code, symbol))
	},
}

func scripDataset(code, symbol string) *output.Dataset {
	d := output.NewDataset("Scrip", map[string]string{"scrip_code": code, "symbol": symbol}, "Scrip code", "Symbol")
	d.AddRow(code, symbol)
	return d
}

func init() {
	scripCmd.AddCommand(scripNameCmd)
	scripCmd.AddCommand(scripCodeCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(scripCmd)
}
