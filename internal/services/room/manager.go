package room

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/arcadelab/gamehub/internal/model"
	"github.com/arcadelab/gamehub/internal/protocol"
)

// GameProvider supplies catalog records to the room manager
type GameProvider interface {
	Get(ctx context.Context, id model.GameID) (*model.Game, error)
}

// Spawner launches and tracks per-room worker processes
type Spawner interface {
	Spawn(gameID model.GameID, roomID model.RoomID, playerCount int) (int, error)
	Release(roomID model.RoomID)
	Host() string
}

// Notifier delivers asynchronous push messages to online players
type Notifier interface {
	NotifyPlayer(username string, action string, data any) bool
}

// ReadyResult reports the outcome of MarkReady to the calling session
type ReadyResult struct {
	// NeedUpdate is set when the caller's game version is stale; no
	// state changed and the client is expected to download and retry.
	NeedUpdate *UpdateInfo
	// Started is set when the room is in_game: either this call met the
	// start condition, or the match had already started.
	Started *protocol.GameStartedData
}

// UpdateInfo tells a stale client what to fetch
type UpdateInfo struct {
	GameID        model.GameID
	LatestVersion string
	Description   string
}

// Manager owns the in-memory room table and its state machine. A single
// mutex guards the table and every room's mutable fields; the worker
// spawn happens with no lock held so a slow process launch never
// serializes unrelated rooms, and the visible waiting -> in_game
// transition is applied atomically afterwards.
type Manager struct {
	games    GameProvider
	spawner  Spawner
	notifier Notifier
	logger   *slog.Logger

	mu     sync.Mutex
	rooms  map[model.RoomID]*model.Room
	nextID model.RoomID
	// starting guards rooms whose spawn is in flight, so a ready resend
	// cannot trigger a second spawn while the lock is released
	starting map[model.RoomID]bool
}

// NewManager creates a new room manager
func NewManager(games GameProvider, spawner Spawner, notifier Notifier, logger *slog.Logger) *Manager {
	return &Manager{
		games:    games,
		spawner:  spawner,
		notifier: notifier,
		logger:   logger,
		rooms:    make(map[model.RoomID]*model.Room),
		starting: make(map[model.RoomID]bool),
	}
}

// Create opens a new room for a game with the creator as host. Player
// bounds are snapshotted from the game so later catalog updates never
// break a live room; requestedMax may lower the capacity within
// [minPlayers, game limit].
func (m *Manager) Create(ctx context.Context, gameID model.GameID, creator string, requestedMax *int) (*model.Room, error) {
	game, err := m.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	minPlayers := game.MinPlayers
	if minPlayers < 2 {
		minPlayers = 2
	}
	limit := game.MaxPlayers
	if limit < minPlayers {
		limit = minPlayers
	}
	maxPlayers := limit
	if requestedMax != nil {
		maxPlayers = *requestedMax
		if maxPlayers > limit {
			maxPlayers = limit
		}
		if maxPlayers < minPlayers {
			maxPlayers = minPlayers
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	room := &model.Room{
		ID:         m.nextID,
		GameID:     gameID,
		GameName:   game.Name,
		Host:       creator,
		Players:    []string{creator},
		Ready:      map[string]bool{creator: false},
		Status:     model.RoomStatusWaiting,
		MinPlayers: minPlayers,
		MaxPlayers: maxPlayers,
	}
	m.rooms[room.ID] = room

	m.logger.Info("room created",
		slog.Int("room_id", int(room.ID)),
		slog.String("game_id", string(gameID)),
		slog.String("host", creator))
	return room.Clone(), nil
}

// Join adds a player to a room. Joining a room the player is already in
// is a no-op success.
func (m *Manager) Join(roomID model.RoomID, player string) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	if room.HasPlayer(player) {
		return room.Clone(), nil
	}
	if len(room.Players) >= room.MaxPlayers {
		return nil, model.ErrRoomFull
	}

	room.Players = append(room.Players, player)
	room.Ready[player] = false
	return room.Clone(), nil
}

// Leave removes a player from a room. The last member leaving deletes
// the room and releases its worker allocation. Leaving a room the
// player is not in is a no-op.
func (m *Manager) Leave(roomID model.RoomID, player string) {
	m.mu.Lock()
	room, ok := m.rooms[roomID]
	if !ok || !room.HasPlayer(player) {
		m.mu.Unlock()
		return
	}

	for i, p := range room.Players {
		if p == player {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			break
		}
	}
	delete(room.Ready, player)

	deleted := len(room.Players) == 0
	if deleted {
		delete(m.rooms, roomID)
	}
	m.mu.Unlock()

	if deleted {
		m.spawner.Release(roomID)
		m.logger.Info("room deleted", slog.Int("room_id", int(roomID)))
	}
}

// DropIfSoleMember discards every room whose only member is the given
// player. Sessions call it on disconnect: a departing last member must
// not leave a dangling room behind, but memberships in populated rooms
// survive so a returning player still belongs to their match.
func (m *Manager) DropIfSoleMember(player string) {
	m.mu.Lock()
	var dropped []model.RoomID
	for id, room := range m.rooms {
		if len(room.Players) == 1 && room.Players[0] == player {
			delete(m.rooms, id)
			dropped = append(dropped, id)
		}
	}
	m.mu.Unlock()

	for _, id := range dropped {
		m.spawner.Release(id)
		m.logger.Info("room discarded on disconnect", slog.Int("room_id", int(id)))
	}
}

// Get returns a read-only snapshot of a room
func (m *Manager) Get(roomID model.RoomID) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room.Clone(), nil
}

// List returns snapshots of all rooms, ordered by id
func (m *Manager) List() []*model.Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms := make([]*model.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room.Clone())
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}

// GameInUse reports whether any live room references the game. The
// catalog refuses deletion while this holds.
func (m *Manager) GameInUse(gameID model.GameID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, room := range m.rooms {
		if room.GameID == gameID {
			return true
		}
	}
	return false
}

// MarkReady records a player's readiness. A stale declared game version
// yields a needs-update result with no state change. When the update
// makes every member ready with at least MinPlayers present, the worker
// is spawned and the room transitions to in_game; every other online
// member is notified through the presence registry, and the caller gets
// the start payload in the returned result.
func (m *Manager) MarkReady(ctx context.Context, roomID model.RoomID, player, clientVersion string) (*ReadyResult, error) {
	m.mu.Lock()
	room, ok := m.rooms[roomID]
	if !ok {
		m.mu.Unlock()
		return nil, model.ErrRoomNotFound
	}
	if !room.HasPlayer(player) {
		m.mu.Unlock()
		return nil, model.ErrBadRequest
	}
	gameID := room.GameID
	m.mu.Unlock()

	// Catalog read happens outside the room lock: storage may be remote
	game, err := m.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if clientVersion != game.Version {
		return &ReadyResult{NeedUpdate: &UpdateInfo{
			GameID:        gameID,
			LatestVersion: game.Version,
			Description:   game.Description,
		}}, nil
	}

	m.mu.Lock()
	room, ok = m.rooms[roomID]
	if !ok {
		m.mu.Unlock()
		return nil, model.ErrRoomNotFound
	}
	room.Ready[player] = true

	if room.Status == model.RoomStatusInGame && room.Port != 0 {
		// Match already started; hand the late caller the endpoint
		started := m.startPayload(room)
		m.mu.Unlock()
		return &ReadyResult{Started: started}, nil
	}

	shouldStart := room.Status == model.RoomStatusWaiting &&
		!m.starting[roomID] &&
		room.AllReady() &&
		len(room.Players) >= room.MinPlayers
	if shouldStart {
		m.starting[roomID] = true
	}
	playerCount := len(room.Players)
	m.mu.Unlock()

	if !shouldStart {
		return &ReadyResult{}, nil
	}

	// Spawn with no lock held so other rooms keep making progress
	port, err := m.spawner.Spawn(gameID, roomID, playerCount)

	m.mu.Lock()
	delete(m.starting, roomID)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	room, ok = m.rooms[roomID]
	if !ok {
		// Room emptied during the spawn; drop the allocation
		m.mu.Unlock()
		m.spawner.Release(roomID)
		return &ReadyResult{}, nil
	}

	room.Status = model.RoomStatusInGame
	room.Port = port
	started := m.startPayload(room)
	members := append([]string(nil), room.Players...)
	m.mu.Unlock()

	m.logger.Info("match started",
		slog.Int("room_id", int(roomID)),
		slog.String("game_id", string(gameID)),
		slog.Int("port", port))

	// Push to every other online member; the caller gets the payload
	// synchronously in the result
	for _, member := range members {
		if member == player {
			continue
		}
		m.notifier.NotifyPlayer(member, protocol.ActionGameStarted, started)
	}

	return &ReadyResult{Started: started}, nil
}

func (m *Manager) startPayload(room *model.Room) *protocol.GameStartedData {
	return &protocol.GameStartedData{
		GameID: room.GameID,
		RoomID: room.ID,
		Host:   m.spawner.Host(),
		Port:   room.Port,
	}
}

// Snapshot returns room snapshots for the shutdown diagnostics record
func (m *Manager) Snapshot() []*model.Room {
	return m.List()
}
