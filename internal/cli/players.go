package cli

import (
	"github.com/spf13/cobra"

	"github.com/arcadelab/gamehub/internal/protocol"
)

func newPlayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Player commands",
	}

	cmd.AddCommand(newPlayersListCmd())

	return cmd
}

func newPlayersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List players currently online",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := client.Call(protocol.ActionListPlayers, nil)
			if err != nil {
				return err
			}

			var result protocol.PlayerListData
			if err := Unmarshal(env, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
