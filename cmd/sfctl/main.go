// Command sfctl runs maintenance tasks against the SF FORMATION database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"sfformation_backend/internals/configs"
	database "sfformation_backend/internals/databases"
)

var driverFlag string

// openDB loads the env, honours --driver and connects.
func openDB() (*gorm.DB, error) {
	configs.LoadEnv()
	if driverFlag != "" {
		configs.DBDriver = driverFlag
	}
	return database.Open(configs.DBDriver)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "sfctl",
		Short:         "Administration SF FORMATION",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "DB driver: postgres, pq or sqlite (default DB_DRIVER)")

	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newCreateAdminCmd())
	rootCmd.AddCommand(newSeedCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
}
