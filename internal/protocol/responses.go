package protocol

import "github.com/arcadelab/gamehub/internal/model"

// OKData is the generic success payload
type OKData struct {
	Msg    string       `json:"msg,omitempty"`
	Role   model.Role   `json:"role,omitempty"`
	RoomID model.RoomID `json:"room_id,omitempty"`
}

// ErrorData carries the reason code for an error response
type ErrorData struct {
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// GameListData is the payload for list_games and dev_list_games
type GameListData struct {
	Games []*model.Game `json:"games"`
}

// RoomListData is the payload for list_rooms
type RoomListData struct {
	Rooms []*model.Room `json:"rooms"`
}

// OnlinePlayer is one entry in a list_players response
type OnlinePlayer struct {
	Username string `json:"username"`
}

// PlayerListData is the payload for list_players
type PlayerListData struct {
	Players []OnlinePlayer `json:"players"`
}

// RoomData is the payload for get_room
type RoomData struct {
	Room *model.Room `json:"room"`
}

// Ready response statuses
const (
	ReadyStatusSet        = "ready_set"
	ReadyStatusNeedUpdate = "need_update"
)

// ReadyData is the payload answering a ready request that did not start
// the match: either the ready flag was recorded, or the client's game
// version is stale and it must download the latest archive first.
type ReadyData struct {
	Status        string       `json:"status"`
	GameID        model.GameID `json:"game_id,omitempty"`
	LatestVersion string       `json:"latest_version,omitempty"`
	Description   string       `json:"description,omitempty"`
}

// GameStartedData announces a spawned match. The ready caller receives
// it synchronously; every other online room member receives it as a push.
type GameStartedData struct {
	GameID model.GameID `json:"game_id"`
	RoomID model.RoomID `json:"room_id"`
	Host   string       `json:"host"`
	Port   int          `json:"port"`
}

// DownloadGameData carries a game archive to the client
type DownloadGameData struct {
	Status  string       `json:"status"`
	GameID  model.GameID `json:"game_id,omitempty"`
	Version string       `json:"version,omitempty"`
	ZipB64  string       `json:"zip_b64,omitempty"`
	Reason  string       `json:"reason,omitempty"`
}
