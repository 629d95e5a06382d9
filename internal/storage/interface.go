package storage

import (
	"context"

	"github.com/arcadelab/gamehub/internal/model"
)

// Storage defines the interface for data persistence. Users and games
// are durable records; the snapshot is a diagnostics record overwritten
// at each graceful shutdown.
type Storage interface {
	// User operations. Usernames are unique per role.
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, role model.Role, username string) (*model.User, error)

	// Game catalog operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	ListGames(ctx context.Context) ([]*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error

	// Runtime snapshot operations
	SaveSnapshot(ctx context.Context, snap *model.Snapshot) error
	GetSnapshot(ctx context.Context) (*model.Snapshot, error)
}
