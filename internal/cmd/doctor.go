package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bselens/bselens/internal/config"
	"github.com/bselens/bselens/internal/observability"
)

type doctorCheck struct {
	name string
	run  func(ctx context.Context, cfg *config.Config) (string, error)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long:  "Check configuration, the scrip cache database and, with --online, connectivity to the exchange.",
	RunE: func(cmd *cobra.Command, args []string) error {
		online, err := cmd.Flags().GetBool("online")
		if err != nil {
			return err
		}

		checks := []doctorCheck{
			{"Go version", checkGoVersion},
			{"Gofulmen", checkGofulmen},
			{"config directory", checkConfigDir},
			{"database", checkDatabase},
		}
		if online {
			checks = append(checks, doctorCheck{"exchange", checkExchange})
		}

		logger := observability.CLILogger
		logger.Info("=== bselens doctor ===")

		cfg, cfgErr := loadConfig()
		if cfgErr != nil {
			logger.Error("Configuration is invalid", zap.Error(cfgErr))
			return cfgErr
		}

		failed := 0
		for i, check := range checks {
			prefix := fmt.Sprintf("[%d/%d] Checking %s...", i+1, len(checks), check.name)
			detail, err := check.run(cmd.Context(), cfg)
			if err != nil {
				failed++
				logger.Warn(prefix+" ⚠️  "+err.Error(), zap.String("check", check.name))
				continue
			}
			logger.Info(prefix+" ✅ "+detail, zap.String("check", check.name))
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d checks failed", failed, len(checks))
		}
		logger.Info("✅ All checks passed")
		return nil
	},
}

func checkGoVersion(context.Context, *config.Config) (string, error) {
	return runtime.Version(), nil
}

func checkGofulmen(context.Context, *config.Config) (string, error) {
	version := crucible.GetVersion()
	if version.Gofulmen == "" {
		return "", fmt.Errorf("gofulmen version unavailable")
	}
	return fmt.Sprintf("v%s (crucible v%s)", version.Gofulmen, version.Crucible), nil
}

func checkConfigDir(context.Context, *config.Config) (string, error) {
	dir := config.ConfigDir()
	if dir == "" {
		return "", fmt.Errorf("cannot resolve config directory")
	}
	return dir, nil
}

func checkDatabase(ctx context.Context, cfg *config.Config) (string, error) {
	db, err := openStore(ctx, cfg.Store)
	if err != nil {
		return "", err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	if err := db.CheckHealth(ctx); err != nil {
		return "", err
	}
	scrips, err := db.ListScrips(ctx)
	if err != nil {
		return "", err
	}

	location := cfg.Store.URL
	if location == "" {
		location, _ = filepath.Abs(strings.TrimPrefix(cfg.Store.Path, "file:"))
		if info, statErr := os.Stat(location); statErr == nil {
			location = fmt.Sprintf("%s (%d bytes)", location, info.Size())
		}
	}
	return fmt.Sprintf("%s, %d cached scrips", location, len(scrips)), nil
}

func checkExchange(ctx context.Context, cfg *config.Config) (string, error) {
	s, err := newSession(ctx, observability.CLILogger)
	if err != nil {
		return "", err
	}
	defer s.Close()

	started := time.Now()
	entries, err := s.client.LookupEntries(ctx, "reliance")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s reachable in %s, %d lookup entries", cfg.Exchange.APIURL, time.Since(started).Round(time.Millisecond), len(entries)), nil
}

func init() {
	doctorCmd.Flags().Bool("online", false, "Also issue one lookup request against the exchange")
	rootCmd.AddCommand(doctorCmd)
}
