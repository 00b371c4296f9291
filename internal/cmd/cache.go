package cmd

import (
	"fmt"
	"time"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/spf13/cobra"

	"github.com/bselens/bselens/internal/output"
	"github.com/bselens/bselens/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and purge the scrip lookup cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached scrips",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		scrips, err := db.ListScrips(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, cachedScripsDataset(scrips, time.Now()))
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired cache entries (all entries with --all)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := cmd.Flags().GetBool("all")
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		removed, err := db.PurgeScrips(cmd.Context(), !all)
		if err != nil {
			return err
		}

		scope := "expired"
		if all {
			scope = "all"
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), ascii.DrawBox(fmt.Sprintf("Scrip cache\n\nremoved %d (%s)", removed, scope), 0))
		return err
	},
}

func cachedScripsDataset(scrips []store.CachedScrip, now time.Time) *output.Dataset {
	d := output.NewDataset("Scrip cache", scrips, "Scrip code", "Symbol", "Company", "ISIN", "Cached", "Expires", "Expired")
	for _, s := range scrips {
		d.AddRow(s.BSECode, s.Symbol, s.CompanyName, s.ISIN, s.CachedAt, s.ExpiresAt, s.Expired(now))
	}
	d.Footer = fmt.Sprintf("%d cached", len(scrips))
	return d
}

func init() {
	cachePurgeCmd.Flags().Bool("all", false, "Delete every entry, not only expired ones")

	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
