package cmd

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bselens/bselens/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display version, runtime and effective configuration details.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := observability.CLILogger
		version := crucible.GetVersion()

		log.Info("=== bselens Environment Information ===")
		log.Info("Application:")
		log.Info("  Version:    " + versionInfo.Version)
		log.Info("  Commit:     " + versionInfo.Commit)
		log.Info("  Built:      " + versionInfo.BuildDate)
		log.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		log.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))

		log.Info("Runtime:")
		log.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		log.Info("  Platform:   " + runtime.GOOS + "/" + runtime.GOARCH)
		log.Info(fmt.Sprintf("  NumCPU:     %d", runtime.NumCPU()))

		cfg, err := loadConfig()
		if err != nil {
			log.Warn("Config load failed", zap.Error(err))
			return err
		}

		configFile := viper.ConfigFileUsed()
		if configFile == "" {
			configFile = "(none)"
		}

		log.Info("Configuration:")
		log.Info("  Config File:   " + configFile)
		log.Info("  API URL:       " + cfg.Exchange.APIURL)
		log.Info("  Timeout:       " + cfg.Exchange.Timeout.String())
		log.Info(fmt.Sprintf("  Default Rate:  %d/s", cfg.Throttle.DefaultRate))
		buckets := make([]string, 0, len(cfg.Throttle.Buckets))
		for name, rate := range cfg.Throttle.Buckets {
			buckets = append(buckets, fmt.Sprintf("%s=%d", name, rate))
		}
		sort.Strings(buckets)
		log.Info("  Buckets:       " + strings.Join(buckets, ", "))
		log.Info("  Lookup TTL:    " + cfg.Cache.LookupTTL.String())
		if strings.TrimSpace(cfg.Store.URL) != "" {
			log.Info("  DB URL:        " + cfg.Store.URL)
		} else {
			log.Info("  DB Path:       " + cfg.Store.Path)
		}
		log.Info(fmt.Sprintf("  Server:        %s:%d", cfg.Server.Host, cfg.Server.Port))
		log.Info(fmt.Sprintf("  Metrics:       enabled=%t port=%d", cfg.Metrics.Enabled, cfg.Metrics.Port))
		log.Info("  Log Level:     " + cfg.Logging.Level)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
