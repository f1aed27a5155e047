// internal/api/handler/api/refresh.go
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/newthinker/pickboard/internal/api/response"
	"github.com/newthinker/pickboard/internal/core"
	"github.com/newthinker/pickboard/internal/dashboard"
)

// RefreshBoard is the part of the board a manual refresh needs.
type RefreshBoard interface {
	Snapshot() dashboard.State
	Refresh(ctx context.Context) error
}

// RefreshHandler handles manual refresh API requests.
type RefreshHandler struct {
	board RefreshBoard
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(board RefreshBoard) *RefreshHandler {
	return &RefreshHandler{board: board}
}

// Trigger asks the engine to recompute. The board fetches the result on
// its own, so the response only acknowledges the request.
func (h *RefreshHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if err := h.board.Refresh(r.Context()); err != nil {
		switch {
		case errors.Is(err, core.ErrRefreshInProgress):
			response.Error(w, http.StatusConflict, err)
		case errors.Is(err, core.ErrNotRunning):
			response.Error(w, http.StatusServiceUnavailable, err)
		default:
			response.Error(w, http.StatusInternalServerError, err)
		}
		return
	}

	s := h.board.Snapshot()
	response.JSON(w, http.StatusAccepted, map[string]any{
		"triggered": true,
		"loading":   s.Loading,
	})
}
