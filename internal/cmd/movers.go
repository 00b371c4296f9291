package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bselens/bselens/internal/exchange"
	"github.com/bselens/bselens/internal/observability"
	"github.com/bselens/bselens/internal/output"
)

func moversQuery(cmd *cobra.Command) exchange.MoversQuery {
	by, _ := cmd.Flags().GetString("by")
	name, _ := cmd.Flags().GetString("name")
	q := exchange.MoversQuery{By: exchange.MoversBy(by), Name: name}
	if cmd.Flags().Lookup("pct") != nil {
		q.PctChange, _ = cmd.Flags().GetString("pct")
	}
	return q
}

func newMoversCmd(use, short string, losers bool) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), observability.CLILogger)
			if err != nil {
				return err
			}
			defer s.Close()

			fetch, title := s.client.Gainers, "Gainers"
			if losers {
				fetch, title = s.client.Losers, "Losers"
			}
			records, err := fetch(cmd.Context(), moversQuery(cmd))
			if err != nil {
				return err
			}
			return render(cmd, output.Records(title, records))
		},
	}
	addMoversFlags(c)
	c.Flags().String("pct", "all", "Percent change filter: all, 10, 5, 2, 0")
	return c
}

func addMoversFlags(c *cobra.Command) {
	c.Flags().String("by", string(exchange.MoversByGroup), "Group by: group, index, all")
	c.Flags().String("name", "", "Group or index name (defaults to group A or "+exchange.DefaultIndex+")")
}

var highLowCmd = &cobra.Command{
	Use:   "highlow",
	Short: "List scrips near their 52 week high or low",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), observability.CLILogger)
		if err != nil {
			return err
		}
		defer s.Close()

		payload, err := s.client.Near52WeekHighLow(cmd.Context(), moversQuery(cmd))
		if err != nil {
			return err
		}
		return render(cmd, output.Payload("52 week high/low", payload)...)
	},
}

var advanceDeclineCmd = &cobra.Command{
	Use:   "advance-decline",
	Short: "Show advance/decline counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), observability.CLILogger)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.client.AdvanceDecline(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, output.Records("Advance/decline", records))
	},
}

var securitiesCmd = &cobra.Command{
	Use:   "securities",
	Short: "List listed securities",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		q := exchange.SecuritiesQuery{}
		q.Industry, _ = flags.GetString("industry")
		q.ScripCode, _ = flags.GetString("scrip")
		q.Group, _ = flags.GetString("group")
		q.Segment, _ = flags.GetString("segment")
		q.Status, _ = flags.GetString("status")

		s, err := newSession(cmd.Context(), observability.CLILogger)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.client.ListSecurities(cmd.Context(), q)
		if err != nil {
			return err
		}
		return render(cmd, output.Records("Securities", records))
	},
}

func init() {
	addMoversFlags(highLowCmd)

	securitiesCmd.Flags().String("industry", "", "Industry name")
	securitiesCmd.Flags().String("scrip", "", "Scrip code")
	securitiesCmd.Flags().String("group", "A", "Stock group")
	securitiesCmd.Flags().String("segment", "Equity", "Segment")
	securitiesCmd.Flags().String("status", "Active", "Listing status")

	rootCmd.AddCommand(newMoversCmd("gainers", "List top gainers", false))
	rootCmd.AddCommand(newMoversCmd("losers", "List top losers", true))
	rootCmd.AddCommand(highLowCmd)
	rootCmd.AddCommand(advanceDeclineCmd)
	rootCmd.AddCommand(securitiesCmd)
}
