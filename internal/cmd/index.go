package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bselens/bselens/internal/exchange"
	"github.com/bselens/bselens/internal/observability"
	"github.com/bselens/bselens/internal/output"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Query index names, snapshots and history",
}

func parsePeriod(value string) (exchange.IndexPeriod, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "d", "daily":
		return exchange.PeriodDaily, nil
	case "m", "monthly":
		return exchange.PeriodMonthly, nil
	case "y", "yearly":
		return exchange.PeriodYearly, nil
	default:
		return "", fmt.Errorf("unsupported period: %s", value)
	}
}

var indexNamesCmd = &cobra.Command{
	Use:   "names",
	Short: "List index names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), observability.CLILogger)
		if err != nil {
			return err
		}
		defer s.Close()

		payload, err := s.client.IndexNames(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, output.Payload("Indices", payload)...)
	},
}

var indexHistoryCmd = &cobra.Command{
	Use:   "history <index>",
	Short: "Show historical values for one index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := dateRangeFlags(cmd)
		if err != nil {
			return err
		}
		if from.IsZero() {
			return fmt.Errorf("--from and --to are required")
		}
		periodName, _ := cmd.Flags().GetString("period")
		period, err := parsePeriod(periodName)
		if err != nil {
			return err
		}

		s, err := newSession(cmd.Context(), observability.CLILogger)
		if err != nil {
			return err
		}
		defer s.Close()

		name := strings.Join(args, " ")
		records, err := s.client.IndexHistory(cmd.Context(), exchange.IndexHistoryQuery{
			Index:  name,
			From:   from,
			To:     to,
			Period: period,
		})
		if err != nil {
			return err
		}
		return render(cmd, output.Records(name, records))
	},
}

var indexSnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Show every index for one day (defaults to today)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dateFlag(cmd, "date")
		if err != nil {
			return err
		}
		if day.IsZero() {
			day = time.Now()
		}
		periodName, _ := cmd.Flags().GetString("period")
		period, err := parsePeriod(periodName)
		if err != nil {
			return err
		}

		s, err := newSession(cmd.Context(), observability.CLILogger)
		if err != nil {
			return err
		}
		defer s.Close()

		payload, err := s.client.IndexSnapshot(cmd.Context(), day, period)
		if err != nil {
			return err
		}
		return render(cmd, output.Payload("Indices on "+day.Format("2006-01-02"), payload)...)
	},
}

var indexMetadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Show when the index archive was last updated",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), observability.CLILogger)
		if err != nil {
			return err
		}
		defer s.Close()

		payload, err := s.client.IndexReportMetadata(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, output.Payload("Index archive", payload)...)
	},
}

func init() {
	addDateRangeFlags(indexHistoryCmd)
	indexHistoryCmd.Flags().String("period", "daily", "Period: daily, monthly, yearly")

	indexSnapshotCmd.Flags().String("date", "", "Day (YYYY-MM-DD)")
	indexSnapshotCmd.Flags().String("period", "daily", "Period: daily, monthly, yearly")

	indexCmd.AddCommand(indexNamesCmd)
	indexCmd.AddCommand(indexHistoryCmd)
	indexCmd.AddCommand(indexSnapshotCmd)
	indexCmd.AddCommand(indexMetadataCmd)
	rootCmd.AddCommand(indexCmd)
}
