package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"musicfy/config"
	"musicfy/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  `Run GORM auto-migration for all models against the configured database.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if err := db.Migrate(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Database schema is up to date.")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
