package cmd

import (
	"github.com/spf13/cobra"

	"musicfy/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Musicfy HTTP server",
	Long:  `Start the Musicfy API server: authentication, songs, playlists and liked songs.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
