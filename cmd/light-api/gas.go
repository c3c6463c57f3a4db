package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/light_api/internal/cli"
	"github.com/R3E-Network/light_api/internal/gas"
)

var gasCmd = &cobra.Command{
	Use:   "gas <chain-id>",
	Short: "Print one gas estimation as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chainID, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chain id %q: %w", args[0], err)
		}

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		fetcher := gas.NewFetcher(
			gas.WithTimeout(cfg.Gas.Timeout),
			gas.WithUserAgent(cfg.Gas.UserAgent),
			gas.WithLogger(log),
		)
		est, err := fetcher.Estimate(cmd.Context(), chainID)
		if err != nil {
			cli.Error(cmd.ErrOrStderr(), err.Error())
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(est)
	},
}

func init() {
	rootCmd.AddCommand(gasCmd)
}
