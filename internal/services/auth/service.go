package auth

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/arcadelab/gamehub/internal/dependencies/clock"
	"github.com/arcadelab/gamehub/internal/model"
	"github.com/arcadelab/gamehub/internal/storage"
)

// Pusher is the send half of a live session: the registry uses it to
// deliver asynchronous push messages to an online identity. Push must be
// safe to call concurrently with the session's own responses.
type Pusher interface {
	Push(action string, data any) error
}

// Service validates credentials against the record store and owns the
// online-identity registry that enforces at most one live session per
// (role, username) pair.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	mu     sync.Mutex
	online map[model.Identity]Pusher
}

// New creates a new auth service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
		online:  make(map[model.Identity]Pusher),
	}
}

// Register creates a new account for the given role. Usernames are
// unique per role.
func (s *Service) Register(ctx context.Context, username, password string, role model.Role) error {
	if username == "" || password == "" || !role.Valid() {
		return model.ErrBadRequest
	}

	_, err := s.storage.GetUser(ctx, role, username)
	if err == nil {
		return model.ErrUserExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.clock.Now(),
	}
	return s.storage.SaveUser(ctx, user)
}

// Login checks credentials and binds the identity to the session's push
// channel. A second login for an identity that is already online fails
// with ErrAlreadyOnline; the identity is freed only by Logout.
func (s *Service) Login(ctx context.Context, username, password string, role model.Role, pusher Pusher) error {
	if username == "" || password == "" || !role.Valid() {
		return model.ErrBadRequest
	}

	user, err := s.storage.GetUser(ctx, role, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.ErrAuthFailed
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.ErrAuthFailed
	}

	id := model.Identity{Role: role, Username: username}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.online[id]; exists {
		return model.ErrAlreadyOnline
	}
	s.online[id] = pusher

	s.logger.Info("identity online",
		slog.String("username", username),
		slog.String("role", string(role)))
	return nil
}

// Logout unconditionally frees the identity. Sessions call it on clean
// quit and on transport failure alike; it is the only way an identity
// becomes loginable again.
func (s *Service) Logout(username string, role model.Role) {
	id := model.Identity{Role: role, Username: username}

	s.mu.Lock()
	_, existed := s.online[id]
	delete(s.online, id)
	s.mu.Unlock()

	if existed {
		s.logger.Info("identity offline",
			slog.String("username", username),
			slog.String("role", string(role)))
	}
}

// IsOnline reports whether the identity currently has a live session
func (s *Service) IsOnline(username string, role model.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.online[model.Identity{Role: role, Username: username}]
	return ok
}

// OnlineUsers returns the usernames currently online for a role, sorted
func (s *Service) OnlineUsers(role model.Role) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var names []string
	for id := range s.online {
		if id.Role == role {
			names = append(names, id.Username)
		}
	}
	sort.Strings(names)
	return names
}

// NotifyPlayer pushes a message to an online player's session. Delivery
// is best effort: offline peers are skipped, and a failed write is
// logged but never propagated to the initiating request.
func (s *Service) NotifyPlayer(username string, action string, data any) bool {
	s.mu.Lock()
	pusher, ok := s.online[model.Identity{Role: model.RolePlayer, Username: username}]
	s.mu.Unlock()

	if !ok {
		return false
	}
	if err := pusher.Push(action, data); err != nil {
		s.logger.Warn("push delivery failed",
			slog.String("username", username),
			slog.String("action", action),
			slog.String("error", err.Error()))
		return false
	}
	return true
}
