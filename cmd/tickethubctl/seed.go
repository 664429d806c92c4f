package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/tickethub-backend/internal/data/repos"
	"github.com/yungbote/tickethub-backend/internal/seed"
)

var seedFixturePath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo users and tickets",
	Long: `Loads the built-in demo fixture (one admin, two staff members and three
tickets) or a YAML fixture of the same shape given with --fixture.

Existing users are matched by email and existing tickets by title, so the
command can be run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fixture, err := loadFixture(seedFixturePath)
		if err != nil {
			return err
		}
		dbService, err := openDatabase()
		if err != nil {
			return err
		}
		defer dbService.Close()

		theDB := dbService.DB()
		seeder := seed.NewSeeder(theDB, log,
			repos.NewUserRepo(theDB, log),
			repos.NewTicketRepo(theDB, log),
			repos.NewActivityRepo(theDB, log),
		)
		res, err := seeder.Apply(cmd.Context(), fixture)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d users and %d tickets\n", res.UsersCreated, res.TicketsCreated)
		return nil
	},
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.DefaultFixture()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return seed.ParseFixture(raw)
}

func init() {
	seedCmd.Flags().StringVar(&seedFixturePath, "fixture", "", "path to a YAML fixture (defaults to the built-in demo data)")
}
