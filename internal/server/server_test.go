package server

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/arcadelab/gamehub/internal/dependencies/mocks"
	"github.com/arcadelab/gamehub/internal/model"
	"github.com/arcadelab/gamehub/internal/protocol"
	"github.com/arcadelab/gamehub/internal/services/auth"
	"github.com/arcadelab/gamehub/internal/services/catalog"
	"github.com/arcadelab/gamehub/internal/services/room"
	"github.com/arcadelab/gamehub/internal/services/worker"
	"github.com/arcadelab/gamehub/internal/storage/memory"
	"github.com/arcadelab/gamehub/internal/testutil"
)

// testZipB64 builds a minimal base64-encoded game archive
func testZipB64(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("game_info.json")
	if err != nil {
		t.Fatal(err)
	}
	manifest := `{"id":"chess","name":"Chess","version":"1.0.0","min_players":2,"max_players":4}`
	if _, err := w.Write([]byte(manifest)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// testClient is a minimal line-framed protocol client for tests
type testClient struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dialTest(t *testing.T, addr string) *testClient {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &testClient{t: t, conn: conn, r: bufio.NewReader(conn)}
}

func (c *testClient) send(action string, data any) {
	frame, err := protocol.Encode(action, data)
	if err != nil {
		c.t.Fatalf("encode %s: %v", action, err)
	}
	if _, err := c.conn.Write(frame); err != nil {
		c.t.Fatalf("send %s: %v", action, err)
	}
}

func (c *testClient) sendRaw(line string) {
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		c.t.Fatalf("send raw: %v", err)
	}
}

func (c *testClient) recv() (*protocol.Envelope, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := c.r.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	var env protocol.Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		c.t.Fatalf("parse frame %q: %v", line, err)
	}
	return &env, nil
}

func (c *testClient) call(action string, data any) *protocol.Envelope {
	c.send(action, data)
	env, err := c.recv()
	if err != nil {
		c.t.Fatalf("awaiting %s response: %v", action, err)
	}
	return env
}

func (c *testClient) errorReason(env *protocol.Envelope) string {
	var data protocol.ErrorData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		c.t.Fatalf("parse error payload: %v", err)
	}
	return data.Reason
}

type ServerSuite struct {
	suite.Suite
	server *Server
	cancel context.CancelFunc
	addr   string
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	store := memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()

	gamesDir := s.T().TempDir()
	archive, err := catalog.NewArchiveStore(gamesDir)
	s.Require().NoError(err)

	authSvc := auth.New(store, clk, logger)
	catalogSvc := catalog.New(store, archive, clk, logger)

	workerCfg := worker.DefaultConfig()
	workerCfg.GamesDir = gamesDir
	orch := worker.New(workerCfg, clk, logger)

	rooms := room.NewManager(catalogSvc, orch, authSvc, logger)
	catalogSvc.BindUsage(rooms)

	s.server = New(Config{Addr: "127.0.0.1:0"}, authSvc, catalogSvc, rooms, logger)
	s.Require().NoError(s.server.Listen())
	s.addr = s.server.Addr()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() { _ = s.server.Serve(ctx) }()
}

func (s *ServerSuite) TearDownTest() {
	_ = s.server.Shutdown()
	s.cancel()
}

func (s *ServerSuite) registerAndLogin(c *testClient, username string, role model.Role) {
	env := c.call(protocol.ActionRegister, protocol.RegisterRequest{
		Username: username, Password: "pw", Role: role,
	})
	s.Require().Equal(protocol.ActionOK, env.Action)

	env = c.call(protocol.ActionLogin, protocol.LoginRequest{
		Username: username, Password: "pw", Role: role,
	})
	s.Require().Equal(protocol.ActionOK, env.Action)
}

func (s *ServerSuite) TestRequestBeforeLoginRejected() {
	c := dialTest(s.T(), s.addr)

	env := c.call(protocol.ActionListGames, nil)
	s.Equal(protocol.ActionError, env.Action)
	s.Equal(protocol.ReasonNotLoggedIn, c.errorReason(env))
}

func (s *ServerSuite) TestRegisterAndLogin() {
	c := dialTest(s.T(), s.addr)
	s.registerAndLogin(c, "alice", model.RolePlayer)

	env := c.call(protocol.ActionListGames, nil)
	s.Equal(protocol.ActionListGames, env.Action)
}

func (s *ServerSuite) TestLoginWithBadCredentials() {
	c := dialTest(s.T(), s.addr)
	c.call(protocol.ActionRegister, protocol.RegisterRequest{Username: "alice", Password: "pw", Role: model.RolePlayer})

	env := c.call(protocol.ActionLogin, protocol.LoginRequest{Username: "alice", Password: "wrong", Role: model.RolePlayer})
	s.Equal(protocol.ActionError, env.Action)
	s.Equal(protocol.ReasonAuthFailed, c.errorReason(env))
}

func (s *ServerSuite) TestDuplicateLoginRejected() {
	c1 := dialTest(s.T(), s.addr)
	s.registerAndLogin(c1, "alice", model.RolePlayer)

	c2 := dialTest(s.T(), s.addr)
	env := c2.call(protocol.ActionLogin, protocol.LoginRequest{Username: "alice", Password: "pw", Role: model.RolePlayer})
	s.Equal(protocol.ActionError, env.Action)
	s.Equal(protocol.ReasonAlreadyOnline, c2.errorReason(env))
}

func (s *ServerSuite) TestDisconnectFreesIdentity() {
	c1 := dialTest(s.T(), s.addr)
	s.registerAndLogin(c1, "alice", model.RolePlayer)
	_ = c1.conn.Close()

	// Session teardown is asynchronous; the identity frees shortly after
	c2 := dialTest(s.T(), s.addr)
	s.Eventually(func() bool {
		env := c2.call(protocol.ActionLogin, protocol.LoginRequest{Username: "alice", Password: "pw", Role: model.RolePlayer})
		return env.Action == protocol.ActionOK
	}, 5*time.Second, 50*time.Millisecond)
}

func (s *ServerSuite) TestWrongRoleRejected() {
	c := dialTest(s.T(), s.addr)
	s.registerAndLogin(c, "alice", model.RolePlayer)

	env := c.call(protocol.ActionDevListGames, nil)
	s.Equal(protocol.ActionError, env.Action)
	s.Equal(protocol.ReasonWrongRole, c.errorReason(env))
}

func (s *ServerSuite) TestUnknownActionKeepsConnection() {
	c := dialTest(s.T(), s.addr)

	c.sendRaw(`{"action":"dance","data":{}}`)
	env, err := c.recv()
	s.Require().NoError(err)
	s.Equal(protocol.ActionError, env.Action)
	s.Equal(protocol.ReasonUnknownAction, c.errorReason(env))

	// The connection survives and keeps serving
	env = c.call(protocol.ActionRegister, protocol.RegisterRequest{Username: "alice", Password: "pw", Role: model.RolePlayer})
	s.Equal(protocol.ActionOK, env.Action)
}

func (s *ServerSuite) TestMalformedFrameClosesConnection() {
	c := dialTest(s.T(), s.addr)

	c.sendRaw(`{"action":`)
	_, err := c.recv()
	s.Error(err)
}

func (s *ServerSuite) TestQuitClosesConnection() {
	c := dialTest(s.T(), s.addr)

	env := c.call(protocol.ActionQuit, nil)
	s.Equal(protocol.ActionOK, env.Action)

	_, err := c.recv()
	s.Error(err)
}

func (s *ServerSuite) TestRoomLifecycleOverWire() {
	dev := dialTest(s.T(), s.addr)
	s.registerAndLogin(dev, "dev", model.RoleDeveloper)

	env := dev.call(protocol.ActionDevUploadGame, protocol.DevUploadGameRequest{
		GameID:  "chess",
		Name:    "Chess",
		Version: "1.0.0",
		ZipB64:  testZipB64(s.T()),
	})
	s.Require().Equal(protocol.ActionOK, env.Action)

	alice := dialTest(s.T(), s.addr)
	s.registerAndLogin(alice, "alice", model.RolePlayer)

	env = alice.call(protocol.ActionCreateRoom, protocol.CreateRoomRequest{GameID: "chess"})
	s.Require().Equal(protocol.ActionOK, env.Action)
	var ok protocol.OKData
	s.Require().NoError(json.Unmarshal(env.Data, &ok))
	s.NotZero(ok.RoomID)

	env = alice.call(protocol.ActionGetRoom, protocol.GetRoomRequest{RoomID: ok.RoomID})
	s.Require().Equal(protocol.ActionGetRoom, env.Action)
	var roomData protocol.RoomData
	s.Require().NoError(json.Unmarshal(env.Data, &roomData))
	s.Equal("alice", roomData.Room.Host)
	s.Equal(model.RoomStatusWaiting, roomData.Room.Status)

	// Deleting a game referenced by a live room is refused
	env = dev.call(protocol.ActionDevDeleteGame, protocol.DevDeleteGameRequest{GameID: "chess"})
	s.Equal(protocol.ActionError, env.Action)
	s.Equal(protocol.ReasonGameInUse, dev.errorReason(env))

	env = alice.call(protocol.ActionLeaveRoom, protocol.LeaveRoomRequest{RoomID: ok.RoomID})
	s.Require().Equal(protocol.ActionOK, env.Action)

	env = dev.call(protocol.ActionDevDeleteGame, protocol.DevDeleteGameRequest{GameID: "chess"})
	s.Equal(protocol.ActionOK, env.Action)
}
