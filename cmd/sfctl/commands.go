package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sfformation_backend/internals/databases/migrations"
	userService "sfformation_backend/internals/features/users/user/service"
	"sfformation_backend/internals/seeds"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the tables and their unique indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)
			return migrations.AutoMigrate(db.WithContext(cmd.Context()))
		},
	}
}

func newCreateAdminCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account with a known password",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)
			u, err := userService.CreateAdmin(cmd.Context(), db, username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin créé: %s (%s)\n", u.UserName, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "admin", "Admin username")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (6 characters minimum)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load formations, documents and questions from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)
			return seeds.RunAllSeeds(cmd.Context(), db, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", seeds.DefaultFormationsFile, "Seed JSON file")
	return cmd
}
