package model

import "time"

// WorkerInfo is the diagnostics view of one spawned worker
type WorkerInfo struct {
	ID        string    `json:"id"`
	GameID    GameID    `json:"game_id"`
	RoomID    RoomID    `json:"room_id"`
	Port      int       `json:"port"`
	State     string    `json:"state"`
	StartedAt time.Time `json:"started_at"`
}

// Snapshot is a point-in-time record of volatile server state, persisted
// at graceful shutdown and served by the admin endpoint for diagnostics.
type Snapshot struct {
	Rooms            []*Room      `json:"rooms"`
	OnlinePlayers    []string     `json:"online_players"`
	OnlineDevelopers []string     `json:"online_developers"`
	Workers          []WorkerInfo `json:"workers"`
	SavedAt          time.Time    `json:"saved_at"`
}
