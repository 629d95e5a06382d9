package worker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/arcadelab/gamehub/internal/dependencies/mocks"
	"github.com/arcadelab/gamehub/internal/model"
	"github.com/arcadelab/gamehub/internal/testutil"
)

type OrchestratorSuite struct {
	suite.Suite
	dir   string
	clock *mocks.MockClock
	orch  *Orchestrator
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	cfg := DefaultConfig()
	cfg.GamesDir = s.dir
	s.orch = New(cfg, s.clock, testutil.NopLogger())
}

// installGame creates a game directory with an executable entry point
func (s *OrchestratorSuite) installGame(id model.GameID) {
	dir := filepath.Join(s.dir, string(id))
	s.Require().NoError(os.MkdirAll(dir, 0o755))
	script := "#!/bin/sh\nexit 0\n"
	s.Require().NoError(os.WriteFile(filepath.Join(dir, "server_entry"), []byte(script), 0o755))
}

func (s *OrchestratorSuite) TestSpawnAllocatesFromBasePort() {
	s.installGame("chess")

	port, err := s.orch.Spawn("chess", 1, 2)
	s.Require().NoError(err)
	s.Equal(6000, port)

	port, err = s.orch.Spawn("chess", 2, 2)
	s.Require().NoError(err)
	s.Equal(6001, port)
}

func (s *OrchestratorSuite) TestReleaseFreesLowestPortForReuse() {
	s.installGame("chess")

	_, _ = s.orch.Spawn("chess", 1, 2)
	_, _ = s.orch.Spawn("chess", 2, 2)

	s.orch.Release(1)

	port, err := s.orch.Spawn("chess", 3, 2)
	s.Require().NoError(err)
	s.Equal(6000, port)
}

func (s *OrchestratorSuite) TestSpawnMissingEntryIsDegraded() {
	// No game installed: the port is still handed out, nothing launched
	port, err := s.orch.Spawn("ghost", 1, 2)
	s.Require().NoError(err)
	s.Equal(6000, port)

	workers := s.orch.Workers()
	s.Require().Len(workers, 1)
	s.Equal(string(StateDegraded), workers[0].State)
}

func (s *OrchestratorSuite) TestSpawnedWorkerIsReaped() {
	s.installGame("chess")

	_, err := s.orch.Spawn("chess", 1, 2)
	s.Require().NoError(err)

	// The script exits immediately; the reaper should observe it
	s.Eventually(func() bool {
		workers := s.orch.Workers()
		return len(workers) == 1 && workers[0].State == string(StateExited)
	}, 5*time.Second, 10*time.Millisecond)
}

func (s *OrchestratorSuite) TestWorkersSortedByRoom() {
	s.installGame("chess")
	_, _ = s.orch.Spawn("chess", 2, 2)
	_, _ = s.orch.Spawn("chess", 1, 2)

	workers := s.orch.Workers()
	s.Require().Len(workers, 2)
	s.Equal(model.RoomID(1), workers[0].RoomID)
	s.Equal(model.RoomID(2), workers[1].RoomID)
	s.NotEmpty(workers[0].ID)
	s.Equal(s.clock.Now(), workers[0].StartedAt)
}

func (s *OrchestratorSuite) TestHostFromConfig() {
	s.Equal("127.0.0.1", s.orch.Host())
}
