package cmd

import (
	"github.com/spf13/cobra"
	"vidgate/config"
	gateway "vidgate/server"
)

func server(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "start the video gateway http server",
		Run: func(cmd *cobra.Command, args []string) {
			gateway.RunHttp(config)
		},
	}
}
