package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/newthinker/pickboard/internal/core"
	"github.com/newthinker/pickboard/internal/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBoard struct {
	state      dashboard.State
	refreshErr error
	refreshes  int
}

func (f *fakeBoard) Snapshot() dashboard.State { return f.state }

func (f *fakeBoard) Refresh(ctx context.Context) error {
	f.refreshes++
	return f.refreshErr
}

func newTestHandler(t *testing.T, board *fakeBoard) *Handler {
	t.Helper()
	h, err := NewHandler("", board, nil)
	require.NoError(t, err)
	return h
}

func idleState() dashboard.State {
	return dashboard.State{
		Stocks: []core.StockRecommendation{
			{Ticker: "AAPL", CompanyName: "Apple Inc.", CurrentPrice: 189.5, ReasonForRecommendation: "Durable moat", PotentialUpside: 12.5},
			{Ticker: "MSFT", CompanyName: "Microsoft", CurrentPrice: 410, ReasonForRecommendation: "Cloud cash flows", PotentialUpside: 8},
		},
		LastUpdated: "2024-01-01 09:30:00",
	}
}

func TestDashboard_RendersCardsInOrder(t *testing.T) {
	h := newTestHandler(t, &fakeBoard{state: idleState()})

	w := httptest.NewRecorder()
	h.Dashboard(w, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<title>"+PageTitle+"</title>")
	assert.Contains(t, body, `id="board"`)
	assert.Contains(t, body, "Last updated: 2024-01-01 09:30:00")
	assert.Contains(t, body, "Refresh Recommendations")
	assert.Contains(t, body, "Current Price:</strong> $189.50")
	assert.Contains(t, body, "12.5%")
	assert.Equal(t, 2, strings.Count(body, `class="stock-card" data-key=`))

	aapl := strings.Index(body, "1. AAPL")
	msft := strings.Index(body, "2. MSFT")
	require.NotEqual(t, -1, aapl)
	require.NotEqual(t, -1, msft)
	assert.Less(t, aapl, msft)
}

func TestFragment_Loading(t *testing.T) {
	h := newTestHandler(t, &fakeBoard{state: dashboard.State{Loading: true, LastUpdated: core.NeverUpdated}})

	w := httptest.NewRecorder()
	h.Fragment(w, httptest.NewRequest("GET", "/board", nil))

	body := w.Body.String()
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, "Updating...")
	assert.Contains(t, body, " disabled")
	assert.Contains(t, body, dashboard.LoadingText)
	assert.Contains(t, body, "Last updated: Never")
}

func TestFragment_EmptyAndError(t *testing.T) {
	h := newTestHandler(t, &fakeBoard{state: dashboard.State{
		Stocks: []core.StockRecommendation{},
		Error:  "Failed to fetch stock recommendations: HTTP error! Status: 500",
	}})

	w := httptest.NewRecorder()
	h.Fragment(w, httptest.NewRequest("GET", "/board", nil))

	body := w.Body.String()
	assert.Contains(t, body, dashboard.EmptyText)
	assert.Contains(t, body, `<div class="error">Failed to fetch stock recommendations: HTTP error! Status: 500</div>`)
	assert.NotContains(t, body, "data-key=")
}

func TestFragment_EscapesUpstreamText(t *testing.T) {
	h := newTestHandler(t, &fakeBoard{state: dashboard.State{
		Stocks: []core.StockRecommendation{{Ticker: "XSS", ReasonForRecommendation: "<script>alert(1)</script>"}},
	}})

	w := httptest.NewRecorder()
	h.Fragment(w, httptest.NewRequest("GET", "/board", nil))

	assert.NotContains(t, w.Body.String(), "<script>alert(1)</script>")
	assert.Contains(t, w.Body.String(), "&lt;script&gt;")
}

func TestRefresh_RedirectsBack(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"accepted", nil},
		{"busy", core.WrapError(core.ErrRefreshInProgress, nil)},
		{"not running", core.WrapError(core.ErrNotRunning, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := &fakeBoard{state: idleState(), refreshErr: tt.err}
			h := newTestHandler(t, board)

			w := httptest.NewRecorder()
			h.Refresh(w, httptest.NewRequest("POST", "/refresh", nil))

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/", w.Header().Get("Location"))
			assert.Equal(t, 1, board.refreshes)
		})
	}
}

func TestNewHandlerWithFS_CustomTemplates(t *testing.T) {
	fsys := fstest.MapFS{
		"layout.html":    {Data: []byte(`{{template "content" .}}`)},
		"dashboard.html": {Data: []byte(`{{define "content"}}[{{template "board" .Board}}]{{end}}`)},
		"board.html":     {Data: []byte(`{{define "board"}}{{len .Cards}} cards{{end}}`)},
	}

	h, err := NewHandlerWithFS(fsys, &fakeBoard{state: idleState()}, nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Dashboard(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, "[2 cards]", w.Body.String())
}

func TestNewHandlerWithFS_MissingTemplate(t *testing.T) {
	_, err := NewHandlerWithFS(fstest.MapFS{}, &fakeBoard{}, nil)
	assert.Error(t, err)
}
