package worker

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arcadelab/gamehub/internal/dependencies/clock"
	"github.com/arcadelab/gamehub/internal/model"
)

// HandleState is the observable lifecycle of a spawned worker
type HandleState string

const (
	// StateRunning means the process was launched and has not exited.
	// The orchestrator never waits for the worker to become ready;
	// clients connecting to the port are expected to retry briefly.
	StateRunning HandleState = "running"
	// StateExited means the process has been reaped
	StateExited HandleState = "exited"
	// StateDegraded means no process was launched because the game's
	// entry point was missing. The port is still handed out so the room
	// can transition; the handle records that nothing is listening.
	StateDegraded HandleState = "degraded"
)

// Handle tracks one spawned worker process
type Handle struct {
	ID     string
	GameID model.GameID
	RoomID model.RoomID
	Port   int

	mu        sync.Mutex
	state     HandleState
	startedAt time.Time
	cmd       *exec.Cmd
}

// State returns the handle's current lifecycle state
func (h *Handle) State() HandleState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Handle) setState(s HandleState) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// Config holds orchestrator settings
type Config struct {
	// Host is the address advertised to clients for spawned workers
	Host string
	// BasePort is the first port considered for allocation
	BasePort int
	// GamesDir is the root of installed game directories
	GamesDir string
	// EntryName is the executable looked up inside a game's directory
	EntryName string
}

// DefaultConfig returns default orchestrator settings
func DefaultConfig() Config {
	return Config{
		Host:      "127.0.0.1",
		BasePort:  6000,
		GamesDir:  "data/games",
		EntryName: "server_entry",
	}
}

// Orchestrator allocates ports and spawns per-room game-server
// processes. Workers are fire-and-forget: they are never terminated by
// the lobby, but each spawn is tracked through a Handle whose state a
// background reaper keeps current.
type Orchestrator struct {
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.Mutex
	ports   map[model.RoomID]int
	handles map[model.RoomID]*Handle
}

// New creates a new worker orchestrator
func New(cfg Config, clock clock.Clock, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		clock:   clock,
		logger:  logger,
		ports:   make(map[model.RoomID]int),
		handles: make(map[model.RoomID]*Handle),
	}
}

// Spawn allocates the lowest free port from the base, launches the
// game's server process for the room, and returns the port without
// waiting for the worker to finish initializing.
func (o *Orchestrator) Spawn(gameID model.GameID, roomID model.RoomID, playerCount int) (int, error) {
	port := o.allocatePort(roomID)

	handle := &Handle{
		ID:        uuid.NewString(),
		GameID:    gameID,
		RoomID:    roomID,
		Port:      port,
		state:     StateDegraded,
		startedAt: o.clock.Now(),
	}

	entry := filepath.Join(o.cfg.GamesDir, string(gameID), o.cfg.EntryName)
	if _, err := os.Stat(entry); err != nil {
		// Degraded mode: the port is still returned so the room can
		// transition; the handle records that nothing is listening.
		o.logger.Warn("game entry point missing, spawning skipped",
			slog.String("game_id", string(gameID)),
			slog.Int("room_id", int(roomID)),
			slog.String("entry", entry))
		o.track(roomID, handle)
		return port, nil
	}

	cmd := exec.Command(entry,
		"--host", o.cfg.Host,
		"--port", strconv.Itoa(port),
		"--room", strconv.Itoa(int(roomID)),
		"--players", strconv.Itoa(playerCount),
	)
	cmd.Dir = filepath.Dir(entry)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		o.release(roomID)
		return 0, fmt.Errorf("starting worker for game %s: %w", gameID, err)
	}

	handle.cmd = cmd
	handle.setState(StateRunning)
	o.track(roomID, handle)

	o.logger.Info("worker spawned",
		slog.String("game_id", string(gameID)),
		slog.Int("room_id", int(roomID)),
		slog.Int("port", port),
		slog.Int("pid", cmd.Process.Pid))

	// Reap in the background so exited workers never linger as zombies
	go func() {
		err := cmd.Wait()
		handle.setState(StateExited)
		if err != nil {
			o.logger.Warn("worker exited with error",
				slog.Int("room_id", int(roomID)),
				slog.String("error", err.Error()))
		} else {
			o.logger.Info("worker exited", slog.Int("room_id", int(roomID)))
		}
	}()

	return port, nil
}

// allocatePort picks the lowest port from the base not held by a live
// allocation. Linear scan is fine at the expected scale of concurrent
// rooms.
func (o *Orchestrator) allocatePort(roomID model.RoomID) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	used := make(map[int]bool, len(o.ports))
	for _, p := range o.ports {
		used[p] = true
	}
	port := o.cfg.BasePort
	for used[port] {
		port++
	}
	o.ports[roomID] = port
	return port
}

// Release frees the room's port allocation. The worker process, if any,
// is left running; only the bookkeeping is dropped.
func (o *Orchestrator) Release(roomID model.RoomID) {
	o.release(roomID)
}

func (o *Orchestrator) release(roomID model.RoomID) {
	o.mu.Lock()
	delete(o.ports, roomID)
	delete(o.handles, roomID)
	o.mu.Unlock()
}

func (o *Orchestrator) track(roomID model.RoomID, h *Handle) {
	o.mu.Lock()
	o.handles[roomID] = h
	o.mu.Unlock()
}

// Host returns the address advertised for spawned workers
func (o *Orchestrator) Host() string {
	return o.cfg.Host
}

// Workers returns the diagnostics view of all tracked handles
func (o *Orchestrator) Workers() []model.WorkerInfo {
	o.mu.Lock()
	defer o.mu.Unlock()

	infos := make([]model.WorkerInfo, 0, len(o.handles))
	for _, h := range o.handles {
		infos = append(infos, model.WorkerInfo{
			ID:        h.ID,
			GameID:    h.GameID,
			RoomID:    h.RoomID,
			Port:      h.Port,
			State:     string(h.State()),
			StartedAt: h.startedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].RoomID < infos[j].RoomID })
	return infos
}
