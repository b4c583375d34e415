package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/bidgate-backend/internal/app"
	"github.com/yungbote/bidgate-backend/internal/data/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := app.NewLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			gdb, err := app.OpenDB(log, db.ConfigFromEnv(log))
			if err != nil {
				return err
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}
			log.Info("schema up to date")
			return nil
		},
	}
}
