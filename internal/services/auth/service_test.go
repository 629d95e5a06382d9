package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/arcadelab/gamehub/internal/dependencies/mocks"
	"github.com/arcadelab/gamehub/internal/model"
	"github.com/arcadelab/gamehub/internal/storage/memory"
	"github.com/arcadelab/gamehub/internal/testutil"
)

// fakePusher records pushes delivered to a session
type fakePusher struct {
	pushes []pushedMsg
	fail   bool
}

type pushedMsg struct {
	action string
	data   any
}

func (p *fakePusher) Push(action string, data any) error {
	if p.fail {
		return errors.New("connection closed")
	}
	p.pushes = append(p.pushes, pushedMsg{action: action, data: data})
	return nil
}

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	err := s.service.Register(s.ctx, "alice", "password123", model.RolePlayer)
	s.Require().NoError(err)

	user, err := s.storage.GetUser(s.ctx, model.RolePlayer, "alice")
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
	s.NotEmpty(user.PasswordHash)
	s.NotEqual("password123", user.PasswordHash) // Should be hashed
	s.Equal(s.clock.Now(), user.CreatedAt)
}

func (s *ServiceSuite) TestRegisterFailsIfUsernameExists() {
	_ = s.service.Register(s.ctx, "alice", "password123", model.RolePlayer)

	err := s.service.Register(s.ctx, "alice", "different", model.RolePlayer)
	s.ErrorIs(err, model.ErrUserExists)
}

func (s *ServiceSuite) TestRegisterSameUsernameAcrossRoles() {
	s.Require().NoError(s.service.Register(s.ctx, "alice", "pw1", model.RolePlayer))
	s.Require().NoError(s.service.Register(s.ctx, "alice", "pw2", model.RoleDeveloper))
}

func (s *ServiceSuite) TestRegisterRejectsEmptyFields() {
	s.ErrorIs(s.service.Register(s.ctx, "", "pw", model.RolePlayer), model.ErrBadRequest)
	s.ErrorIs(s.service.Register(s.ctx, "alice", "", model.RolePlayer), model.ErrBadRequest)
	s.ErrorIs(s.service.Register(s.ctx, "alice", "pw", "wizard"), model.ErrBadRequest)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	_ = s.service.Register(s.ctx, "alice", "password123", model.RolePlayer)

	err := s.service.Login(s.ctx, "alice", "password123", model.RolePlayer, &fakePusher{})
	s.Require().NoError(err)
	s.True(s.service.IsOnline("alice", model.RolePlayer))
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	_ = s.service.Register(s.ctx, "alice", "password123", model.RolePlayer)

	err := s.service.Login(s.ctx, "alice", "wrongpassword", model.RolePlayer, &fakePusher{})
	s.ErrorIs(err, model.ErrAuthFailed)
}

func (s *ServiceSuite) TestLoginFailsWithUnknownUser() {
	err := s.service.Login(s.ctx, "nobody", "password123", model.RolePlayer, &fakePusher{})
	s.ErrorIs(err, model.ErrAuthFailed)
}

func (s *ServiceSuite) TestLoginFailsWithWrongRole() {
	_ = s.service.Register(s.ctx, "alice", "password123", model.RolePlayer)

	err := s.service.Login(s.ctx, "alice", "password123", model.RoleDeveloper, &fakePusher{})
	s.ErrorIs(err, model.ErrAuthFailed)
}

func (s *ServiceSuite) TestSecondLoginIsRejectedWhileOnline() {
	_ = s.service.Register(s.ctx, "alice", "password123", model.RolePlayer)
	s.Require().NoError(s.service.Login(s.ctx, "alice", "password123", model.RolePlayer, &fakePusher{}))

	err := s.service.Login(s.ctx, "alice", "password123", model.RolePlayer, &fakePusher{})
	s.ErrorIs(err, model.ErrAlreadyOnline)
}

func (s *ServiceSuite) TestLogoutFreesIdentityForRelogin() {
	_ = s.service.Register(s.ctx, "alice", "password123", model.RolePlayer)
	s.Require().NoError(s.service.Login(s.ctx, "alice", "password123", model.RolePlayer, &fakePusher{}))

	s.service.Logout("alice", model.RolePlayer)
	s.False(s.service.IsOnline("alice", model.RolePlayer))

	err := s.service.Login(s.ctx, "alice", "password123", model.RolePlayer, &fakePusher{})
	s.NoError(err)
}

func (s *ServiceSuite) TestLogoutOfUnknownIdentityIsANoOp() {
	s.service.Logout("ghost", model.RolePlayer)
}

// OnlineUsers tests

func (s *ServiceSuite) TestOnlineUsersSortedPerRole() {
	for _, name := range []string{"carol", "alice", "bob"} {
		_ = s.service.Register(s.ctx, name, "pw", model.RolePlayer)
		s.Require().NoError(s.service.Login(s.ctx, name, "pw", model.RolePlayer, &fakePusher{}))
	}
	_ = s.service.Register(s.ctx, "dev", "pw", model.RoleDeveloper)
	s.Require().NoError(s.service.Login(s.ctx, "dev", "pw", model.RoleDeveloper, &fakePusher{}))

	s.Equal([]string{"alice", "bob", "carol"}, s.service.OnlineUsers(model.RolePlayer))
	s.Equal([]string{"dev"}, s.service.OnlineUsers(model.RoleDeveloper))
}

// NotifyPlayer tests

func (s *ServiceSuite) TestNotifyPlayerDeliversToOnlineSession() {
	pusher := &fakePusher{}
	_ = s.service.Register(s.ctx, "alice", "pw", model.RolePlayer)
	s.Require().NoError(s.service.Login(s.ctx, "alice", "pw", model.RolePlayer, pusher))

	delivered := s.service.NotifyPlayer("alice", "game_started", map[string]int{"port": 6000})
	s.True(delivered)
	s.Require().Len(pusher.pushes, 1)
	s.Equal("game_started", pusher.pushes[0].action)
}

func (s *ServiceSuite) TestNotifyPlayerSkipsOfflinePlayer() {
	delivered := s.service.NotifyPlayer("ghost", "game_started", nil)
	s.False(delivered)
}

func (s *ServiceSuite) TestNotifyPlayerToleratesFailedWrite() {
	pusher := &fakePusher{fail: true}
	_ = s.service.Register(s.ctx, "alice", "pw", model.RolePlayer)
	s.Require().NoError(s.service.Login(s.ctx, "alice", "pw", model.RolePlayer, pusher))

	delivered := s.service.NotifyPlayer("alice", "game_started", nil)
	s.False(delivered)
}
