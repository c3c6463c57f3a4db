package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/light_api/internal/config"
	"github.com/R3E-Network/light_api/internal/logging"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "light-api",
		Short: "Light API server",
		Long: `Serves paymaster and wallet lookups and Ethereum gas estimates.

Configuration is read from --config (or LIGHT_API_CONFIG), a .env file in the
working directory, and environment overrides such as DATABASE_URL.`,
		SilenceUsage: true,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
}

func loadConfig() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log := logging.New("light-api", cfg.Logging.Level, cfg.Logging.Format)
	return cfg, log, nil
}
