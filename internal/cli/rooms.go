package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arcadelab/gamehub/internal/model"
	"github.com/arcadelab/gamehub/internal/protocol"
)

func newRoomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomsListCmd())
	cmd.AddCommand(newRoomsCreateCmd())
	cmd.AddCommand(newRoomsJoinCmd())
	cmd.AddCommand(newRoomsLeaveCmd())
	cmd.AddCommand(newRoomsGetCmd())
	cmd.AddCommand(newRoomsReadyCmd())

	return cmd
}

func parseRoomID(arg string) (model.RoomID, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid room id %q", arg)
	}
	return model.RoomID(id), nil
}

func newRoomsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := client.Call(protocol.ActionListRooms, nil)
			if err != nil {
				return err
			}

			var result protocol.RoomListData
			if err := Unmarshal(env, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomsCreateCmd() *cobra.Command {
	var maxPlayers int

	cmd := &cobra.Command{
		Use:   "create <game-id>",
		Short: "Create a new room for a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := protocol.CreateRoomRequest{GameID: model.GameID(args[0])}
			if maxPlayers > 0 {
				req.MaxPlayers = &maxPlayers
			}

			env, err := client.Call(protocol.ActionCreateRoom, req)
			if err != nil {
				return err
			}

			var result protocol.OKData
			if err := Unmarshal(env, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxPlayers, "max-players", 0, "Room capacity (default: game limit)")

	return cmd
}

func newRoomsJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <room-id>",
		Short: "Join a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := parseRoomID(args[0])
			if err != nil {
				return err
			}

			if _, err := client.Call(protocol.ActionJoinRoom, protocol.JoinRoomRequest{RoomID: roomID}); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Joined room #%d", roomID))
			return nil
		},
	}
}

func newRoomsLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <room-id>",
		Short: "Leave a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := parseRoomID(args[0])
			if err != nil {
				return err
			}

			if _, err := client.Call(protocol.ActionLeaveRoom, protocol.LeaveRoomRequest{RoomID: roomID}); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Left room #%d", roomID))
			return nil
		},
	}
}

func newRoomsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <room-id>",
		Short: "Get room details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := parseRoomID(args[0])
			if err != nil {
				return err
			}

			env, err := client.Call(protocol.ActionGetRoom, protocol.GetRoomRequest{RoomID: roomID})
			if err != nil {
				return err
			}

			var result protocol.RoomData
			if err := Unmarshal(env, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomsReadyCmd() *cobra.Command {
	var gameVersion string

	cmd := &cobra.Command{
		Use:   "ready <room-id>",
		Short: "Mark yourself ready in a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := parseRoomID(args[0])
			if err != nil {
				return err
			}

			env, err := client.Call(protocol.ActionReady, protocol.ReadyRequest{
				RoomID:        roomID,
				ClientVersion: gameVersion,
			})
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			if env.Action == protocol.ActionGameStarted {
				var started protocol.GameStartedData
				if err := Unmarshal(env, &started); err != nil {
					return err
				}
				out.Print(started)
				return nil
			}

			var result protocol.ReadyData
			if err := Unmarshal(env, &result); err != nil {
				return err
			}
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&gameVersion, "game-version", "", "Version of the game held locally (required)")
	_ = cmd.MarkFlagRequired("game-version")

	return cmd
}
