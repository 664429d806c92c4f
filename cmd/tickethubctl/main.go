package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/tickethub-backend/internal/config"
	"github.com/yungbote/tickethub-backend/internal/data/db"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tickethubctl",
	Short: "Operator commands for the TicketHub backend",
	Long: `tickethubctl runs one-off maintenance tasks against the TicketHub database.

Configuration is read the same way the server reads it: defaults, then the
YAML file named by TICKETHUB_CONFIG_PATH, then environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log, err = logger.New(cfg.Env)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

// openDatabase connects and brings the schema up to date.
func openDatabase() (*db.DatabaseService, error) {
	dbService, err := db.NewDatabaseService(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrateAll(dbService.DB()); err != nil {
		_ = dbService.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	if err := db.EnsureTicketIndexes(dbService.DB()); err != nil {
		_ = dbService.Close()
		return nil, fmt.Errorf("ticket indexes: %w", err)
	}
	return dbService, nil
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd, tokenCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
