package cli

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcadelab/gamehub/internal/model"
	"github.com/arcadelab/gamehub/internal/protocol"
)

func newDevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Developer commands (requires a developer account)",
	}

	cmd.AddCommand(newDevListCmd())
	cmd.AddCommand(newDevUploadCmd())
	cmd.AddCommand(newDevDeleteCmd())

	return cmd
}

func newDevListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your published games",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := client.Call(protocol.ActionDevListGames, nil)
			if err != nil {
				return err
			}

			var result protocol.GameListData
			if err := Unmarshal(env, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newDevUploadCmd() *cobra.Command {
	var (
		name        string
		description string
		version     string
		minPlayers  int
		maxPlayers  int
	)

	cmd := &cobra.Command{
		Use:   "upload <game-id> <zip-file>",
		Short: "Upload or update a game archive",
		Long: `Upload a game archive. The archive's game_info.json manifest supplies
defaults for name, description and player bounds.

The --version flag takes an explicit version string, or one of:
  auto      bump the patch component of the current version
  use_info  take the version from the archive's manifest`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading archive: %w", err)
			}

			_, err = client.Call(protocol.ActionDevUploadGame, protocol.DevUploadGameRequest{
				GameID:      model.GameID(args[0]),
				Name:        name,
				Description: description,
				Version:     version,
				MinPlayers:  minPlayers,
				MaxPlayers:  maxPlayers,
				ZipB64:      base64.StdEncoding.EncodeToString(archive),
			})
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Uploaded %s (%d bytes)", args[0], len(archive)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Game display name (default: manifest)")
	cmd.Flags().StringVar(&description, "description", "", "Game description (default: manifest)")
	cmd.Flags().StringVar(&version, "version", protocol.VersionAuto, "Version directive: explicit, auto, or use_info")
	cmd.Flags().IntVar(&minPlayers, "min-players", 0, "Minimum players (default: manifest)")
	cmd.Flags().IntVar(&maxPlayers, "max-players", 0, "Maximum players (default: manifest)")

	return cmd
}

func newDevDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <game-id>",
		Short: "Delete one of your games",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := client.Call(protocol.ActionDevDeleteGame, protocol.DevDeleteGameRequest{
				GameID: model.GameID(args[0]),
			})
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Deleted %s", args[0]))
			return nil
		},
	}
}
