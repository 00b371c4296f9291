package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bselens/bselens/internal/exchange"
	"github.com/bselens/bselens/internal/observability"
	"github.com/bselens/bselens/internal/output"
)

var announcementsCmd = &cobra.Command{
	Use:   "announcements",
	Short: "List corporate announcements (defaults to today)",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := dateRangeFlags(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		page, _ := flags.GetInt("page")
		segmentName, _ := flags.GetString("segment")
		scrip, _ := flags.GetString("scrip")
		category, _ := flags.GetString("category")
		subcategory, _ := flags.GetString("subcategory")

		segment, err := exchange.ParseSegment(segmentName)
		if err != nil {
			return err
		}

		s, err := newSession(cmd.Context(), observability.CLILogger)
		if err != nil {
			return err
		}
		defer s.Close()

		payload, err := s.client.Announcements(cmd.Context(), exchange.AnnouncementQuery{
			Page:        page,
			From:        from,
			To:          to,
			Segment:     segment,
			ScripCode:   scrip,
			Category:    category,
			Subcategory: subcategory,
		})
		if err != nil {
			return err
		}
		return render(cmd, output.Payload("Announcements", payload)...)
	},
}

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List forthcoming corporate actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := dateRangeFlags(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		segmentName, _ := flags.GetString("segment")
		by, _ := flags.GetString("by")
		scrip, _ := flags.GetString("scrip")
		sector, _ := flags.GetString("sector")
		purpose, _ := flags.GetString("purpose")

		segment, err := exchange.ParseSegment(segmentName)
		if err != nil {
			return err
		}
		byDate := exchange.ActionDate(by)
		switch byDate {
		case exchange.ActionDateEx, exchange.ActionDateRecord, exchange.ActionDateBCStart:
		default:
			return fmt.Errorf("unsupported --by value: %s", by)
		}

		s, err := newSession(cmd.Context(), observability.CLILogger)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.client.Actions(cmd.Context(), exchange.ActionQuery{
			Segment:     segment,
			From:        from,
			To:          to,
			ByDate:      byDate,
			ScripCode:   scrip,
			Sector:      sector,
			PurposeCode: purpose,
		})
		if err != nil {
			return err
		}
		return render(cmd, output.Records("Corporate actions", records))
	},
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List the corporate results calendar",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := dateRangeFlags(cmd)
		if err != nil {
			return err
		}
		scrip, _ := cmd.Flags().GetString("scrip")

		s, err := newSession(cmd.Context(), observability.CLILogger)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.client.ResultCalendar(cmd.Context(), exchange.ResultCalendarQuery{
			From:      from,
			To:        to,
			ScripCode: scrip,
		})
		if err != nil {
			return err
		}
		return render(cmd, output.Records("Result calendar", records))
	},
}

func init() {
	addDateRangeFlags(announcementsCmd)
	announcementsCmd.Flags().Int("page", 1, "Result page")
	announcementsCmd.Flags().String("segment", "equity", "Segment: equity, debt, mf_etf")
	announcementsCmd.Flags().String("scrip", "", "Scrip code")
	announcementsCmd.Flags().String("category", "", "Announcement category")
	announcementsCmd.Flags().String("subcategory", "", "Announcement subcategory (requires --category)")

	addDateRangeFlags(actionsCmd)
	actionsCmd.Flags().String("segment", "equity", "Segment: equity, debt, mf_etf")
	actionsCmd.Flags().String("by", string(exchange.ActionDateEx), "Filter dates by: ex, record, bc_start")
	actionsCmd.Flags().String("scrip", "", "Scrip code")
	actionsCmd.Flags().String("sector", "", "Industry sector")
	actionsCmd.Flags().String("purpose", "", "Purpose code")

	addDateRangeFlags(resultsCmd)
	resultsCmd.Flags().String("scrip", "", "Scrip code")

	rootCmd.AddCommand(announcementsCmd)
	rootCmd.AddCommand(actionsCmd)
	rootCmd.AddCommand(resultsCmd)
}
