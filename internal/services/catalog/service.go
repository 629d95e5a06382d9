package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/arcadelab/gamehub/internal/dependencies/clock"
	"github.com/arcadelab/gamehub/internal/model"
	"github.com/arcadelab/gamehub/internal/protocol"
	"github.com/arcadelab/gamehub/internal/storage"
)

// UsageChecker reports whether a game is referenced by a live room. The
// room manager implements it; deletion is refused while any room still
// points at the game.
type UsageChecker interface {
	GameInUse(id model.GameID) bool
}

// Service owns the game catalog: listing, uploads with version
// management, deletion, ratings and archive downloads.
type Service struct {
	storage storage.Storage
	archive *ArchiveStore
	clock   clock.Clock
	logger  *slog.Logger
	usage   UsageChecker

	// mu serializes the read-modify-write operations (Upload, Delete,
	// Rate). The storage layer is last-write-wins, so two concurrent
	// raters reading the same record would otherwise drop each other's
	// reviews on save.
	mu sync.Mutex
}

// New creates a new catalog service
func New(storage storage.Storage, archive *ArchiveStore, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		archive: archive,
		clock:   clock,
		logger:  logger,
	}
}

// BindUsage wires the room manager's in-use check. Set once at startup;
// a setter rather than a constructor argument because the room manager
// itself depends on the catalog.
func (s *Service) BindUsage(usage UsageChecker) {
	s.usage = usage
}

// List returns all catalog games
func (s *Service) List(ctx context.Context) ([]*model.Game, error) {
	return s.storage.ListGames(ctx)
}

// ListByAuthor returns the games owned by a developer
func (s *Service) ListByAuthor(ctx context.Context, author string) ([]*model.Game, error) {
	games, err := s.storage.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	var mine []*model.Game
	for _, g := range games {
		if g.Author == author {
			mine = append(mine, g)
		}
	}
	return mine, nil
}

// Get returns one catalog game
func (s *Service) Get(ctx context.Context, id model.GameID) (*model.Game, error) {
	return s.storage.GetGame(ctx, id)
}

// UploadInput carries a developer upload request
type UploadInput struct {
	GameID      model.GameID
	Name        string
	Description string
	// Version is an explicit version string, "auto", or "use_info"
	Version     string
	MinPlayers  int
	MaxPlayers  int
	Archive     []byte
}

// Upload creates or updates a game. A manifest inside the archive
// provides defaults for name, description, player bounds and (with the
// use_info directive) the version. Player bounds are clamped, not
// rejected: min >= 2 and max >= min.
func (s *Service) Upload(ctx context.Context, author string, in UploadInput) (*model.Game, error) {
	if in.GameID == "" || len(in.Archive) == 0 {
		return nil, model.ErrBadRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.storage.GetGame(ctx, in.GameID)
	if err != nil && !errors.Is(err, model.ErrGameNotFound) {
		return nil, err
	}
	if existing != nil && existing.Author != author {
		return nil, model.ErrNotOwner
	}

	manifest, mErr := ReadManifest(in.Archive)
	if mErr != nil {
		s.logger.Warn("unreadable game manifest",
			slog.String("game_id", string(in.GameID)),
			slog.String("error", mErr.Error()))
		manifest = nil
	}

	name := in.Name
	description := in.Description
	minPlayers := in.MinPlayers
	maxPlayers := in.MaxPlayers
	if manifest != nil {
		if manifest.Name != "" {
			name = manifest.Name
		}
		if manifest.Description != "" {
			description = manifest.Description
		}
		if manifest.MinPlayers > 0 {
			minPlayers = manifest.MinPlayers
		}
		if manifest.MaxPlayers > 0 {
			maxPlayers = manifest.MaxPlayers
		}
	}
	if name == "" {
		return nil, model.ErrBadRequest
	}

	// Bounds are clamped, never rejected
	if minPlayers < 2 {
		minPlayers = 2
	}
	if maxPlayers < minPlayers {
		maxPlayers = minPlayers
	}

	version, err := s.resolveVersion(in.Version, existing, manifest)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	game := &model.Game{
		ID:          in.GameID,
		Name:        name,
		Description: description,
		Version:     version,
		MinPlayers:  minPlayers,
		MaxPlayers:  maxPlayers,
		Author:      author,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if existing != nil {
		game.Reviews = existing.Reviews
		game.AvgRating = existing.AvgRating
		game.CreatedAt = existing.CreatedAt
	}

	if err := s.archive.Store(game.ID, in.Archive); err != nil {
		return nil, fmt.Errorf("storing archive: %w", err)
	}
	if err := s.archive.WriteManifest(game); err != nil {
		return nil, err
	}
	if err := s.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	s.logger.Info("game uploaded",
		slog.String("game_id", string(game.ID)),
		slog.String("version", game.Version),
		slog.String("author", author))
	return game, nil
}

func (s *Service) resolveVersion(directive string, existing *model.Game, manifest *Manifest) (string, error) {
	switch strings.ToLower(directive) {
	case "", protocol.VersionAuto:
		if existing == nil {
			return "1.0.0", nil
		}
		return bumpPatch(existing.Version), nil
	case protocol.VersionUseInfo:
		if manifest == nil || manifest.Version == "" {
			return "", model.ErrBadRequest
		}
		return manifest.Version, nil
	default:
		return directive, nil
	}
}

// bumpPatch increments the patch component of a three-part version.
// Unparseable versions reset to 1.0.0.
func bumpPatch(version string) string {
	parts := strings.SplitN(version, ".", 3)
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return "1.0.0"
		}
		nums[i] = n
	}
	return fmt.Sprintf("%d.%d.%d", nums[0], nums[1], nums[2]+1)
}

// Delete removes a game's record and stored archive. Only the author
// may delete, and never while a live room references the game.
func (s *Service) Delete(ctx context.Context, id model.GameID, author string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, err := s.storage.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if game.Author != author {
		return model.ErrNotOwner
	}
	if s.usage != nil && s.usage.GameInUse(id) {
		return model.ErrGameInUse
	}

	if err := s.storage.DeleteGame(ctx, id); err != nil {
		return err
	}
	if err := s.archive.Remove(id); err != nil {
		return err
	}

	s.logger.Info("game deleted", slog.String("game_id", string(id)))
	return nil
}

// Rate appends a review and recomputes the game's average rating
func (s *Service) Rate(ctx context.Context, id model.GameID, user string, rating int, comment string) (*model.Game, error) {
	if rating < 1 || rating > 5 {
		return nil, model.ErrInvalidRating
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	game, err := s.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	game.Reviews = append(game.Reviews, model.Review{User: user, Rating: rating, Comment: comment})
	game.RecomputeRating()
	game.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// Download returns the game's current archive bytes and record
func (s *Service) Download(ctx context.Context, id model.GameID) (*model.Game, []byte, error) {
	game, err := s.storage.GetGame(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.archive.Zip(id)
	if err != nil {
		return nil, nil, err
	}
	return game, data, nil
}
