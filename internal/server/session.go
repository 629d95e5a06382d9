package server

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/arcadelab/gamehub/internal/model"
	"github.com/arcadelab/gamehub/internal/protocol"
	"github.com/arcadelab/gamehub/internal/services/auth"
	"github.com/arcadelab/gamehub/internal/services/catalog"
	"github.com/arcadelab/gamehub/internal/services/room"
)

// Session serves one client connection: a read-decode-dispatch loop
// that exits on disconnect, quit, or a malformed frame. All writes --
// synchronous responses and asynchronous pushes alike -- go through one
// mutex-guarded send path, so interleaved pushes can never corrupt a
// response frame.
type Session struct {
	conn   net.Conn
	reader *bufio.Reader
	logger *slog.Logger

	auth    *auth.Service
	catalog *catalog.Service
	rooms   *room.Manager

	writeMu sync.Mutex

	// Identity; empty until login succeeds
	username string
	role     model.Role
}

// Ensure Session satisfies the presence registry's push channel
var _ auth.Pusher = (*Session)(nil)

func newSession(conn net.Conn, authSvc *auth.Service, catalogSvc *catalog.Service, rooms *room.Manager, logger *slog.Logger) *Session {
	return &Session{
		conn:    conn,
		reader:  bufio.NewReaderSize(conn, 64*1024),
		logger:  logger.With(slog.String("remote", conn.RemoteAddr().String())),
		auth:    authSvc,
		catalog: catalogSvc,
		rooms:   rooms,
	}
}

// Push writes one message to the client. Safe for concurrent use; the
// presence registry calls it from other sessions' request handlers.
func (s *Session) Push(action string, data any) error {
	frame, err := protocol.Encode(action, data)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err = s.conn.Write(frame)
	return err
}

func (s *Session) sendError(reason string) {
	_ = s.Push(protocol.ActionError, protocol.ErrorData{Reason: reason})
}

func (s *Session) sendErr(err error) {
	s.sendError(protocol.ReasonFor(err))
}

// serve runs the session until the transport closes, a quit is seen, or
// a malformed message arrives. Teardown frees the identity in the
// online registry and discards any room the player was the last member
// of; other memberships survive so a returning player still receives
// the match-start push on a fresh session.
func (s *Session) serve(ctx context.Context) {
	s.logger.Info("connection opened")

	defer func() {
		if s.username != "" {
			s.auth.Logout(s.username, s.role)
			if s.role == model.RolePlayer {
				s.rooms.DropIfSoleMember(s.username)
			}
		}
		_ = s.conn.Close()
		s.logger.Info("connection closed")
	}()

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			return // disconnect is an implicit quit
		}

		req, err := protocol.Decode(line)
		if err != nil {
			var unknown *protocol.UnknownActionError
			if errors.As(err, &unknown) {
				s.sendError(protocol.ReasonUnknownAction)
				continue
			}
			// Framing state cannot be trusted after a garbled message
			s.logger.Warn("protocol error, closing connection",
				slog.String("error", err.Error()))
			return
		}

		if !s.dispatch(ctx, req) {
			return
		}
	}
}

// requireLogin reports whether the session is authenticated (and, when
// role is non-empty, holds that role), answering with the appropriate
// error otherwise.
func (s *Session) requireLogin(role model.Role) bool {
	if s.username == "" {
		s.sendError(protocol.ReasonNotLoggedIn)
		return false
	}
	if role != "" && s.role != role {
		s.sendError(protocol.ReasonWrongRole)
		return false
	}
	return true
}

// dispatch handles one decoded request, returning false when the
// session should end
func (s *Session) dispatch(ctx context.Context, req protocol.Request) bool {
	switch r := req.(type) {
	case *protocol.RegisterRequest:
		s.handleRegister(ctx, r)
	case *protocol.LoginRequest:
		s.handleLogin(ctx, r)
	case *protocol.ListGamesRequest:
		s.handleListGames(ctx)
	case *protocol.ListRoomsRequest:
		s.handleListRooms()
	case *protocol.ListPlayersRequest:
		s.handleListPlayers()
	case *protocol.CreateRoomRequest:
		s.handleCreateRoom(ctx, r)
	case *protocol.JoinRoomRequest:
		s.handleJoinRoom(r)
	case *protocol.LeaveRoomRequest:
		s.handleLeaveRoom(r)
	case *protocol.GetRoomRequest:
		s.handleGetRoom(r)
	case *protocol.ReadyRequest:
		s.handleReady(ctx, r)
	case *protocol.DownloadGameRequest:
		s.handleDownloadGame(ctx, r)
	case *protocol.RateGameRequest:
		s.handleRateGame(ctx, r)
	case *protocol.DevListGamesRequest:
		s.handleDevListGames(ctx)
	case *protocol.DevUploadGameRequest:
		s.handleDevUploadGame(ctx, r)
	case *protocol.DevDeleteGameRequest:
		s.handleDevDeleteGame(ctx, r)
	case *protocol.QuitRequest:
		_ = s.Push(protocol.ActionOK, protocol.OKData{Msg: "bye"})
		return false
	}
	return true
}

func (s *Session) handleRegister(ctx context.Context, r *protocol.RegisterRequest) {
	if err := s.auth.Register(ctx, r.Username, r.Password, r.Role); err != nil {
		s.sendErr(err)
		return
	}
	_ = s.Push(protocol.ActionOK, protocol.OKData{Msg: "registered"})
}

func (s *Session) handleLogin(ctx context.Context, r *protocol.LoginRequest) {
	if s.username != "" {
		s.sendError(protocol.ReasonBadRequest)
		return
	}
	if err := s.auth.Login(ctx, r.Username, r.Password, r.Role, s); err != nil {
		s.sendErr(err)
		return
	}
	s.username = r.Username
	s.role = r.Role
	s.logger = s.logger.With(
		slog.String("username", s.username),
		slog.String("role", string(s.role)))
	_ = s.Push(protocol.ActionOK, protocol.OKData{Role: s.role})
}

func (s *Session) handleListGames(ctx context.Context) {
	if !s.requireLogin("") {
		return
	}
	games, err := s.catalog.List(ctx)
	if err != nil {
		s.sendErr(err)
		return
	}
	_ = s.Push(protocol.ActionListGames, protocol.GameListData{Games: games})
}

func (s *Session) handleListRooms() {
	if !s.requireLogin("") {
		return
	}
	_ = s.Push(protocol.ActionListRooms, protocol.RoomListData{Rooms: s.rooms.List()})
}

func (s *Session) handleListPlayers() {
	if !s.requireLogin("") {
		return
	}
	online := s.auth.OnlineUsers(model.RolePlayer)
	players := make([]protocol.OnlinePlayer, 0, len(online))
	for _, u := range online {
		players = append(players, protocol.OnlinePlayer{Username: u})
	}
	_ = s.Push(protocol.ActionListPlayers, protocol.PlayerListData{Players: players})
}

func (s *Session) handleCreateRoom(ctx context.Context, r *protocol.CreateRoomRequest) {
	if !s.requireLogin(model.RolePlayer) {
		return
	}
	created, err := s.rooms.Create(ctx, r.GameID, s.username, r.MaxPlayers)
	if err != nil {
		s.sendErr(err)
		return
	}
	_ = s.Push(protocol.ActionOK, protocol.OKData{RoomID: created.ID})
}

func (s *Session) handleJoinRoom(r *protocol.JoinRoomRequest) {
	if !s.requireLogin(model.RolePlayer) {
		return
	}
	if _, err := s.rooms.Join(r.RoomID, s.username); err != nil {
		s.sendErr(err)
		return
	}
	_ = s.Push(protocol.ActionOK, protocol.OKData{RoomID: r.RoomID})
}

func (s *Session) handleLeaveRoom(r *protocol.LeaveRoomRequest) {
	if !s.requireLogin(model.RolePlayer) {
		return
	}
	s.rooms.Leave(r.RoomID, s.username)
	_ = s.Push(protocol.ActionOK, protocol.OKData{RoomID: r.RoomID})
}

func (s *Session) handleGetRoom(r *protocol.GetRoomRequest) {
	if !s.requireLogin("") {
		return
	}
	snapshot, err := s.rooms.Get(r.RoomID)
	if err != nil {
		s.sendErr(err)
		return
	}
	_ = s.Push(protocol.ActionGetRoom, protocol.RoomData{Room: snapshot})
}

func (s *Session) handleReady(ctx context.Context, r *protocol.ReadyRequest) {
	if !s.requireLogin(model.RolePlayer) {
		return
	}
	result, err := s.rooms.MarkReady(ctx, r.RoomID, s.username, r.ClientVersion)
	if err != nil {
		s.sendErr(err)
		return
	}

	switch {
	case result.NeedUpdate != nil:
		_ = s.Push(protocol.ActionReady, protocol.ReadyData{
			Status:        protocol.ReadyStatusNeedUpdate,
			GameID:        result.NeedUpdate.GameID,
			LatestVersion: result.NeedUpdate.LatestVersion,
			Description:   result.NeedUpdate.Description,
		})
	case result.Started != nil:
		_ = s.Push(protocol.ActionGameStarted, result.Started)
	default:
		_ = s.Push(protocol.ActionReady, protocol.ReadyData{Status: protocol.ReadyStatusSet})
	}
}

func (s *Session) handleDownloadGame(ctx context.Context, r *protocol.DownloadGameRequest) {
	if !s.requireLogin(model.RolePlayer) {
		return
	}
	game, archive, err := s.catalog.Download(ctx, r.GameID)
	if err != nil {
		if errors.Is(err, model.ErrGameNotFound) {
			_ = s.Push(protocol.ActionDownloadGame, protocol.DownloadGameData{
				Status: "error",
				Reason: protocol.ReasonGameNotFound,
			})
			return
		}
		s.sendErr(err)
		return
	}
	_ = s.Push(protocol.ActionDownloadGame, protocol.DownloadGameData{
		Status:  "ok",
		GameID:  game.ID,
		Version: game.Version,
		ZipB64:  base64.StdEncoding.EncodeToString(archive),
	})
}

func (s *Session) handleRateGame(ctx context.Context, r *protocol.RateGameRequest) {
	if !s.requireLogin(model.RolePlayer) {
		return
	}
	if _, err := s.catalog.Rate(ctx, r.GameID, s.username, r.Rating, r.Comment); err != nil {
		s.sendErr(err)
		return
	}
	_ = s.Push(protocol.ActionOK, protocol.OKData{Msg: "rated"})
}

func (s *Session) handleDevListGames(ctx context.Context) {
	if !s.requireLogin(model.RoleDeveloper) {
		return
	}
	games, err := s.catalog.ListByAuthor(ctx, s.username)
	if err != nil {
		s.sendErr(err)
		return
	}
	_ = s.Push(protocol.ActionDevListGames, protocol.GameListData{Games: games})
}

func (s *Session) handleDevUploadGame(ctx context.Context, r *protocol.DevUploadGameRequest) {
	if !s.requireLogin(model.RoleDeveloper) {
		return
	}
	archive, err := base64.StdEncoding.DecodeString(r.ZipB64)
	if err != nil {
		s.sendError(protocol.ReasonBadRequest)
		return
	}
	_, err = s.catalog.Upload(ctx, s.username, catalog.UploadInput{
		GameID:      r.GameID,
		Name:        r.Name,
		Description: r.Description,
		Version:     r.Version,
		MinPlayers:  r.MinPlayers,
		MaxPlayers:  r.MaxPlayers,
		Archive:     archive,
	})
	if err != nil {
		s.sendErr(err)
		return
	}
	_ = s.Push(protocol.ActionOK, protocol.OKData{Msg: "game_uploaded"})
}

func (s *Session) handleDevDeleteGame(ctx context.Context, r *protocol.DevDeleteGameRequest) {
	if !s.requireLogin(model.RoleDeveloper) {
		return
	}
	if err := s.catalog.Delete(ctx, r.GameID, s.username); err != nil {
		s.sendErr(err)
		return
	}
	_ = s.Push(protocol.ActionOK, protocol.OKData{Msg: "game_deleted"})
}
