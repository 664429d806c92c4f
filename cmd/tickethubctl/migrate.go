package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbService, err := openDatabase()
		if err != nil {
			return err
		}
		defer dbService.Close()
		log.Info("Schema is up to date", "driver", dbService.Driver())
		return nil
	},
}
