package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/light_api/internal/cli"
	"github.com/R3E-Network/light_api/internal/platform/database"
	"github.com/R3E-Network/light_api/internal/platform/migrations"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|version]",
	Short:     "Apply or roll back the embedded database schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "version"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := database.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		start := time.Now()
		switch args[0] {
		case "up":
			err = migrations.Up(db.DB)
		case "down":
			err = migrations.Down(db.DB)
		case "version":
			version, dirty, ok, verr := migrations.Version(db.DB)
			if verr != nil {
				return verr
			}
			switch {
			case !ok:
				cli.Info(cmd.OutOrStdout(), "no migrations applied")
			case dirty:
				cli.Warning(cmd.OutOrStdout(), fmt.Sprintf("schema version %d is dirty", version))
			default:
				cli.Info(cmd.OutOrStdout(), fmt.Sprintf("schema version %d", version))
			}
			return nil
		}
		if err != nil {
			cli.Error(cmd.ErrOrStderr(), err.Error())
			return err
		}

		cli.Success(cmd.OutOrStdout(), fmt.Sprintf("migrate %s done in %s", args[0], cli.FormatDuration(time.Since(start))))
		log.WithFields(map[string]interface{}{"direction": args[0]}).Info("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
