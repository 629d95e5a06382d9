package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stay connected and print incoming push messages",
		Long: `Log in and print every message the server pushes, such as game_started
when another room member's ready completes the start condition.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.WatchEvents(timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "How long to watch before exiting")

	return cmd
}
