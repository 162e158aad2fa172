package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"musicfy/config"
	"musicfy/storage"
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Check the MinIO connection",
	Long:  `Connect to the configured MinIO endpoint and make sure the media bucket exists.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("MinIO: %s, bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		if _, err := storage.New(cfg); err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}

		fmt.Println("MinIO connection OK, bucket ready.")
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)
}
