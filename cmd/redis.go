package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"musicfy/cache"
	"musicfy/config"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Check the Redis connection",
	Long:  `Connect to the configured Redis instance and run a basic read/write round trip.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("Redis: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		client, err := cache.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		key := "musicfy:connection-check"
		if err := client.Set(ctx, key, "ok", time.Minute).Err(); err != nil {
			log.Fatalf("Redis write failed: %v", err)
		}
		val, err := client.Get(ctx, key).Result()
		if err != nil || val != "ok" {
			log.Fatalf("Redis read failed: val=%q err=%v", val, err)
		}
		client.Del(ctx, key)

		fmt.Println("Redis connection and basic operations OK.")
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
