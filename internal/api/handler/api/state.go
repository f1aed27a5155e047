// internal/api/handler/api/state.go
package api

import (
	"net/http"

	"github.com/newthinker/pickboard/internal/api/response"
	"github.com/newthinker/pickboard/internal/dashboard"
)

// StateReader exposes the board state.
type StateReader interface {
	Snapshot() dashboard.State
}

// StateHandler serves the board state as JSON.
type StateHandler struct {
	board StateReader
}

// NewStateHandler creates a new state handler.
func NewStateHandler(board StateReader) *StateHandler {
	return &StateHandler{board: board}
}

// StateData is the JSON form of the board.
type StateData struct {
	dashboard.State
	Phase dashboard.Phase `json:"phase"`
}

// Get returns the current board state.
func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := h.board.Snapshot()
	response.JSON(w, http.StatusOK, StateData{State: s, Phase: s.Phase()})
}
