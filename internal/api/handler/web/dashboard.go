// internal/api/handler/web/dashboard.go
package web

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/newthinker/pickboard/internal/core"
	"github.com/newthinker/pickboard/internal/dashboard"
	"go.uber.org/zap"
)

// PageTitle heads the dashboard page.
const PageTitle = "Warren Buffett Stock Recommendations"

// DashboardData holds data for the dashboard template
type DashboardData struct {
	Title string
	Board dashboard.View
}

// Dashboard renders the full page.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, "dashboard.html", DashboardData{
		Title: PageTitle,
		Board: dashboard.BuildView(h.board.Snapshot()),
	})
}

// Fragment renders only the board, for clients without a live stream.
func (h *Handler) Fragment(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.RenderBoard(&buf, h.board.Snapshot()); err != nil {
		h.logger.Error("rendering board", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// Refresh handles the refresh button. The outcome is shown on the board
// itself, so the browser is always sent back to the page.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.board.Refresh(r.Context()); err != nil {
		if errors.Is(err, core.ErrRefreshInProgress) {
			h.logger.Debug("refresh ignored while loading")
		} else {
			h.logger.Warn("refresh rejected", zap.Error(err))
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
