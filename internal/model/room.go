package model

// RoomID is a server-assigned monotonic room identifier
type RoomID int

// RoomStatus represents the current state of a room
type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "waiting" // gathering players
	RoomStatusInGame  RoomStatus = "in_game" // worker spawned, match running
)

// Room is a reserved group of players bound to one game instance.
// Invariants maintained by the room manager:
//   - Players is non-empty while the room exists
//   - the key set of Ready equals the Players set
//   - Status only ever moves waiting -> in_game
//   - Port is non-zero if and only if Status is in_game
type Room struct {
	ID       RoomID          `json:"id"`
	GameID   GameID          `json:"game_id"`
	GameName string          `json:"game_name"`
	Host     string          `json:"host"`
	Players  []string        `json:"players"`
	Ready    map[string]bool `json:"ready"`
	Status   RoomStatus      `json:"status"`
	Port     int             `json:"port"` // 0 until the match starts

	// Player bounds snapshotted from the game at creation time, so
	// catalog updates never retroactively break a live room.
	MinPlayers int `json:"min_players"`
	MaxPlayers int `json:"max_players"`
}

// HasPlayer reports whether the player is currently a member
func (r *Room) HasPlayer(username string) bool {
	for _, p := range r.Players {
		if p == username {
			return true
		}
	}
	return false
}

// AllReady reports whether every current member has marked ready
func (r *Room) AllReady() bool {
	for _, p := range r.Players {
		if !r.Ready[p] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy safe to hand out of the manager's lock
func (r *Room) Clone() *Room {
	c := *r
	c.Players = append([]string(nil), r.Players...)
	c.Ready = make(map[string]bool, len(r.Ready))
	for k, v := range r.Ready {
		c.Ready[k] = v
	}
	return &c
}
