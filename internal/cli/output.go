package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/arcadelab/gamehub/internal/model"
	"github.com/arcadelab/gamehub/internal/protocol"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case protocol.GameListData:
		o.printGameList(v)
	case protocol.RoomListData:
		o.printRoomList(v)
	case protocol.PlayerListData:
		o.printPlayerList(v)
	case protocol.RoomData:
		o.printRoom(v.Room)
	case protocol.ReadyData:
		o.printReady(v)
	case protocol.GameStartedData:
		o.printGameStarted(v)
	case protocol.OKData:
		o.printOK(v)
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult is the admin health endpoint response
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printGameList(l protocol.GameListData) {
	fmt.Printf("Games (%d):\n", len(l.Games))
	for _, g := range l.Games {
		rating := "unrated"
		if g.AvgRating != nil {
			rating = fmt.Sprintf("%.1f/5 (%d reviews)", *g.AvgRating, len(g.Reviews))
		}
		fmt.Printf("  %s v%s - %s [%d-%d players] by %s, %s\n",
			g.ID, g.Version, g.Name, g.MinPlayers, g.MaxPlayers, g.Author, rating)
	}
}

func (o *Output) printRoomList(l protocol.RoomListData) {
	fmt.Printf("Rooms (%d):\n", len(l.Rooms))
	for _, r := range l.Rooms {
		fmt.Printf("  #%d %s (%s) - %s, %d/%d players, host %s\n",
			r.ID, r.GameName, r.GameID, r.Status, len(r.Players), r.MaxPlayers, r.Host)
	}
}

func (o *Output) printPlayerList(l protocol.PlayerListData) {
	names := make([]string, 0, len(l.Players))
	for _, p := range l.Players {
		names = append(names, p.Username)
	}
	fmt.Printf("Online players (%d): %s\n", len(names), strings.Join(names, ", "))
}

func (o *Output) printRoom(r *model.Room) {
	if r == nil {
		return
	}
	fmt.Printf("Room #%d\n", r.ID)
	fmt.Printf("Game: %s (%s)\n", r.GameName, r.GameID)
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Host: %s\n", r.Host)
	fmt.Printf("Capacity: %d-%d\n", r.MinPlayers, r.MaxPlayers)
	if r.Port != 0 {
		fmt.Printf("Port: %d\n", r.Port)
	}
	fmt.Printf("Players (%d):\n", len(r.Players))
	for _, p := range r.Players {
		readyStr := ""
		if r.Ready[p] {
			readyStr = " [ready]"
		}
		fmt.Printf("  - %s%s\n", p, readyStr)
	}
}

func (o *Output) printReady(r protocol.ReadyData) {
	if r.Status == protocol.ReadyStatusNeedUpdate {
		fmt.Printf("Update required: %s is now v%s\n", r.GameID, r.LatestVersion)
		if r.Description != "" {
			fmt.Printf("Description: %s\n", r.Description)
		}
		fmt.Println("Download the latest version and retry")
		return
	}
	fmt.Println("Ready recorded, waiting for the other players")
}

func (o *Output) printGameStarted(g protocol.GameStartedData) {
	fmt.Printf("Match started for room #%d\n", g.RoomID)
	fmt.Printf("Game: %s\n", g.GameID)
	fmt.Printf("Connect to %s:%d\n", g.Host, g.Port)
}

func (o *Output) printOK(ok protocol.OKData) {
	switch {
	case ok.RoomID != 0:
		fmt.Printf("OK, room #%d\n", ok.RoomID)
	case ok.Msg != "":
		fmt.Printf("OK: %s\n", ok.Msg)
	default:
		fmt.Println("OK")
	}
}
