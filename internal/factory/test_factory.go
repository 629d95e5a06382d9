package factory

import (
	"time"

	"github.com/arcadelab/gamehub/internal/dependencies/mocks"
	"github.com/arcadelab/gamehub/internal/server"
	"github.com/arcadelab/gamehub/internal/services/worker"
	"github.com/arcadelab/gamehub/internal/storage/memory"
	"github.com/arcadelab/gamehub/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with mocked
// dependencies. The lobby binds port 0 and games live in a temp dir the
// caller provides.
func NewTestApp(gamesDir string) (*TestApp, error) {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	serverCfg := server.Config{Addr: "127.0.0.1:0"}
	workerCfg := worker.DefaultConfig()
	workerCfg.GamesDir = gamesDir

	app, err := newWithDependencies(store, mockClock, serverCfg, workerCfg, testutil.NopLogger())
	if err != nil {
		return nil, err
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}, nil
}
