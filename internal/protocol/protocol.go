package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/arcadelab/gamehub/internal/model"
)

// Wire actions recognized by the lobby. Every client request is a single
// JSON object {"action": <action>, "data": {...}} on one line; every
// response and push uses the same envelope.
const (
	ActionRegister       = "register"
	ActionLogin          = "login"
	ActionListGames      = "list_games"
	ActionListRooms      = "list_rooms"
	ActionListPlayers    = "list_players"
	ActionCreateRoom     = "create_room"
	ActionJoinRoom       = "join_room"
	ActionLeaveRoom      = "leave_room"
	ActionGetRoom        = "get_room"
	ActionReady          = "ready"
	ActionDownloadGame   = "download_game"
	ActionRateGame       = "rate_game"
	ActionDevListGames   = "dev_list_games"
	ActionDevUploadGame  = "dev_upload_game"
	ActionDevDeleteGame  = "dev_delete_game"
	ActionQuit           = "quit"
	ActionOK             = "ok"
	ActionError          = "error"
	ActionGameStarted    = "game_started"
)

// Version directives accepted by dev_upload_game
const (
	VersionAuto    = "auto"     // bump the patch component of the previous version
	VersionUseInfo = "use_info" // take the version from the archive's manifest
)

// Envelope is the wire framing shared by requests, responses and pushes
type Envelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Request is the closed set of decoded client requests. Exactly one
// concrete type exists per recognized action; dispatch switches over the
// concrete type so the compiler keeps the handling exhaustive.
type Request interface {
	isRequest()
}

type RegisterRequest struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

type LoginRequest struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

type ListGamesRequest struct{}

type ListRoomsRequest struct{}

type ListPlayersRequest struct{}

type CreateRoomRequest struct {
	GameID model.GameID `json:"game_id"`
	// MaxPlayers optionally lowers the room capacity below the game's
	// limit; nil means use the game's limit.
	MaxPlayers *int `json:"max_players"`
}

type JoinRoomRequest struct {
	RoomID model.RoomID `json:"room_id"`
}

type LeaveRoomRequest struct {
	RoomID model.RoomID `json:"room_id"`
}

type GetRoomRequest struct {
	RoomID model.RoomID `json:"room_id"`
}

type ReadyRequest struct {
	RoomID model.RoomID `json:"room_id"`
	// ClientVersion is the game version the client holds locally. A
	// mismatch with the catalog yields a need_update response instead of
	// marking the player ready.
	ClientVersion string `json:"client_version"`
}

type DownloadGameRequest struct {
	GameID model.GameID `json:"game_id"`
}

type RateGameRequest struct {
	GameID  model.GameID `json:"game_id"`
	Rating  int          `json:"rating"`
	Comment string       `json:"comment"`
}

type DevListGamesRequest struct{}

type DevUploadGameRequest struct {
	GameID      model.GameID `json:"game_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Version     string       `json:"version"`
	MinPlayers  int          `json:"min_players"`
	MaxPlayers  int          `json:"max_players"`
	ZipB64      string       `json:"zip_b64"`
}

type DevDeleteGameRequest struct {
	GameID model.GameID `json:"game_id"`
}

type QuitRequest struct{}

func (RegisterRequest) isRequest()      {}
func (LoginRequest) isRequest()         {}
func (ListGamesRequest) isRequest()     {}
func (ListRoomsRequest) isRequest()     {}
func (ListPlayersRequest) isRequest()   {}
func (CreateRoomRequest) isRequest()    {}
func (JoinRoomRequest) isRequest()      {}
func (LeaveRoomRequest) isRequest()     {}
func (GetRoomRequest) isRequest()       {}
func (ReadyRequest) isRequest()         {}
func (DownloadGameRequest) isRequest()  {}
func (RateGameRequest) isRequest()      {}
func (DevListGamesRequest) isRequest()  {}
func (DevUploadGameRequest) isRequest() {}
func (DevDeleteGameRequest) isRequest() {}
func (QuitRequest) isRequest()          {}

// UnknownActionError is returned by Decode for a well-formed envelope
// whose action tag is not recognized. It is recoverable: the session
// answers with an unknown_action error and keeps the connection.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action %q", e.Action)
}

// MalformedError is returned by Decode when the frame cannot be parsed.
// It is fatal to the connection: framing state cannot be trusted after a
// garbled message.
type MalformedError struct {
	Cause error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed message: %v", e.Cause)
}

func (e *MalformedError) Unwrap() error {
	return e.Cause
}

// Decode parses one wire frame into its typed request. The payload is
// decoded exactly once here, at the boundary; handlers only ever see
// typed structs.
func Decode(line []byte) (Request, error) {
	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, &MalformedError{Cause: err}
	}

	var req Request
	switch env.Action {
	case ActionRegister:
		req = &RegisterRequest{}
	case ActionLogin:
		req = &LoginRequest{}
	case ActionListGames:
		return &ListGamesRequest{}, nil
	case ActionListRooms:
		return &ListRoomsRequest{}, nil
	case ActionListPlayers:
		return &ListPlayersRequest{}, nil
	case ActionCreateRoom:
		req = &CreateRoomRequest{}
	case ActionJoinRoom:
		req = &JoinRoomRequest{}
	case ActionLeaveRoom:
		req = &LeaveRoomRequest{}
	case ActionGetRoom:
		req = &GetRoomRequest{}
	case ActionReady:
		req = &ReadyRequest{}
	case ActionDownloadGame:
		req = &DownloadGameRequest{}
	case ActionRateGame:
		req = &RateGameRequest{}
	case ActionDevListGames:
		return &DevListGamesRequest{}, nil
	case ActionDevUploadGame:
		req = &DevUploadGameRequest{}
	case ActionDevDeleteGame:
		req = &DevDeleteGameRequest{}
	case ActionQuit:
		return &QuitRequest{}, nil
	default:
		return nil, &UnknownActionError{Action: env.Action}
	}

	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, req); err != nil {
			return nil, &MalformedError{Cause: err}
		}
	}
	return req, nil
}

// Encode renders a message into its single-line wire form, newline
// terminated.
func Encode(action string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	frame, err := json.Marshal(Envelope{Action: action, Data: payload})
	if err != nil {
		return nil, err
	}
	return append(frame, '\n'), nil
}
