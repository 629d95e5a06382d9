package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/arcadelab/gamehub/internal/middleware"
	"github.com/arcadelab/gamehub/internal/model"
)

// StateProvider builds the runtime diagnostics snapshot served by
// /debug/state
type StateProvider interface {
	State() *model.Snapshot
}

// NewRouter creates the admin/diagnostics router
func NewRouter(state StateProvider, logger *slog.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))

	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/debug/state", stateHandler(state)).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func stateHandler(state StateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(state.State())
	}
}
