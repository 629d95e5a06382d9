package cli

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcadelab/gamehub/internal/model"
	"github.com/arcadelab/gamehub/internal/protocol"
)

func newGamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Game catalog commands",
	}

	cmd.AddCommand(newGamesListCmd())
	cmd.AddCommand(newGamesRateCmd())
	cmd.AddCommand(newGamesDownloadCmd())

	return cmd
}

func newGamesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all games in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := client.Call(protocol.ActionListGames, nil)
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

func newGamesRateCmd() *cobra.Command {
	var rating int
	var comment string

	cmd := &cobra.Command{
		Use:   "rate <game-id>",
		Short: "Rate a game (1-5)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := client.Call(protocol.ActionRateGame, protocol.RateGameRequest{
				GameID:  model.GameID(args[0]),
				Rating:  rating,
				Comment: comment,
			})
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Rated %s: %d/5", args[0], rating))
			return nil
		},
	}

	cmd.Flags().IntVar(&rating, "rating", 0, "Rating from 1 to 5 (required)")
	cmd.Flags().StringVar(&comment, "comment", "", "Review comment")
	_ = cmd.MarkFlagRequired("rating")

	return cmd
}

func newGamesDownloadCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "download <game-id>",
		Short: "Download a game archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := client.Call(protocol.ActionDownloadGame, protocol.DownloadGameRequest{
				GameID: model.GameID(args[0]),
			})
			if err != nil {
				return err
			}

			var result protocol.DownloadGameData
			if err := Unmarshal(env, &result); err != nil {
				return err
			}
			if result.Status != "ok" {
				return fmt.Errorf("download failed: %s", result.Reason)
			}

			archive, err := base64.StdEncoding.DecodeString(result.ZipB64)
			if err != nil {
				return fmt.Errorf("decoding archive: %w", err)
			}

			path := outFile
			if path == "" {
				path = fmt.Sprintf("%s-%s.zip", result.GameID, result.Version)
			}
			if err := os.WriteFile(path, archive, 0644); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Saved %s v%s to %s (%d bytes)",
				result.GameID, result.Version, path, len(archive)))
			return nil
		},
	}

	cmd.Flags().StringVar(&outFile, "out", "", "Output file (default: <game-id>-<version>.zip)")

	return cmd
}
