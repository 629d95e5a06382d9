package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/arcadelab/gamehub/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	user := &model.User{
		Username:     "alice",
		PasswordHash: "hash",
		Role:         model.RolePlayer,
		CreatedAt:    time.Now(),
	}

	err := s.storage.SaveUser(s.ctx, user)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetUser(s.ctx, model.RolePlayer, "alice")
	s.Require().NoError(err)
	s.Equal("alice", retrieved.Username)
	s.Equal("hash", retrieved.PasswordHash)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, model.RolePlayer, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestUsernamesAreScopedPerRole() {
	player := &model.User{Username: "alice", Role: model.RolePlayer}
	dev := &model.User{Username: "alice", Role: model.RoleDeveloper, PasswordHash: "devhash"}

	s.Require().NoError(s.storage.SaveUser(s.ctx, player))
	s.Require().NoError(s.storage.SaveUser(s.ctx, dev))

	retrieved, err := s.storage.GetUser(s.ctx, model.RoleDeveloper, "alice")
	s.Require().NoError(err)
	s.Equal("devhash", retrieved.PasswordHash)
}

// Game tests

func (s *StorageSuite) TestSaveAndGetGame() {
	game := &model.Game{ID: "chess", Name: "Chess", Version: "1.0.0", Author: "dev"}

	err := s.storage.SaveGame(s.ctx, game)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetGame(s.ctx, "chess")
	s.Require().NoError(err)
	s.Equal("Chess", retrieved.Name)
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestListGamesSortedByID() {
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "checkers"})
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "backgammon"})
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "chess"})

	games, err := s.storage.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(games, 3)
	s.Equal(model.GameID("backgammon"), games[0].ID)
	s.Equal(model.GameID("checkers"), games[1].ID)
	s.Equal(model.GameID("chess"), games[2].ID)
}

func (s *StorageSuite) TestGameRecordsAreIsolatedFromCallers() {
	saved := &model.Game{ID: "chess", Name: "Chess", Reviews: []model.Review{{User: "alice", Rating: 5}}}
	s.Require().NoError(s.storage.SaveGame(s.ctx, saved))

	// Mutating the caller's record after save must not leak in
	saved.Name = "Mutated"
	saved.Reviews[0].Rating = 1

	first, err := s.storage.GetGame(s.ctx, "chess")
	s.Require().NoError(err)
	s.Equal("Chess", first.Name)
	s.Equal(5, first.Reviews[0].Rating)

	// Mutating a retrieved record must not leak into later reads
	first.Reviews = append(first.Reviews, model.Review{User: "bob", Rating: 2})

	second, err := s.storage.GetGame(s.ctx, "chess")
	s.Require().NoError(err)
	s.Len(second.Reviews, 1)
}

func (s *StorageSuite) TestDeleteGame() {
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "chess"})

	err := s.storage.DeleteGame(s.ctx, "chess")
	s.Require().NoError(err)

	_, err = s.storage.GetGame(s.ctx, "chess")
	s.ErrorIs(err, model.ErrGameNotFound)
}

// Snapshot tests

func (s *StorageSuite) TestSnapshotRoundTrip() {
	_, err := s.storage.GetSnapshot(s.ctx)
	s.ErrorIs(err, model.ErrSnapshotNotFound)

	snap := &model.Snapshot{
		OnlinePlayers: []string{"alice", "bob"},
		SavedAt:       time.Now(),
	}
	s.Require().NoError(s.storage.SaveSnapshot(s.ctx, snap))

	retrieved, err := s.storage.GetSnapshot(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"alice", "bob"}, retrieved.OnlinePlayers)
}
