package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var dateLayouts = []string{"2006-01-02", "20060102", "02/01/2006"}

// parseDate accepts ISO, compact and dd/mm/yyyy dates. Empty yields zero.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", value)
}

func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return time.Time{}, err
	}
	t, err := parseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return t, nil
}

// dateRangeFlags reads --from and --to. Supplying only one is an error.
func dateRangeFlags(cmd *cobra.Command) (from, to time.Time, err error) {
	if from, err = dateFlag(cmd, "from"); err != nil {
		return
	}
	if to, err = dateFlag(cmd, "to"); err != nil {
		return
	}
	if from.IsZero() != to.IsZero() {
		err = fmt.Errorf("--from and --to must be given together")
	}
	return
}

func addDateRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "End date (YYYY-MM-DD)")
}
