package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/newthinker/pickboard/internal/core"
	"github.com/newthinker/pickboard/internal/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBoard struct {
	states       chan dashboard.State
	refreshErr   error
	refreshes    int
	unsubscribed bool
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{states: make(chan dashboard.State, 1)}
}

func (f *fakeBoard) Subscribe() (<-chan dashboard.State, func()) {
	return f.states, func() { f.unsubscribed = true }
}

func (f *fakeBoard) Refresh(ctx context.Context) error {
	f.refreshes++
	return f.refreshErr
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func withState(t *testing.T, m Model, s dashboard.State) Model {
	t.Helper()
	next, cmd := m.Update(stateMsg(s))
	require.NotNil(t, cmd, "expected to keep listening for states")
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_BeforeResize(t *testing.T) {
	m := New(newFakeBoard())
	assert.Equal(t, dashboard.LoadingText, m.View())
}

func TestModel_InitWaitsForState(t *testing.T) {
	board := newFakeBoard()
	m := New(board)

	board.states <- dashboard.State{Version: 4, LastUpdated: "2024-01-01"}
	msg := m.Init()()

	s, ok := msg.(stateMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(4), s.Version)
}

func TestModel_RendersCards(t *testing.T) {
	m := sized(t, New(newFakeBoard()))
	m = withState(t, m, dashboard.State{
		Stocks: []core.StockRecommendation{
			{Ticker: "AAPL", CompanyName: "Apple Inc.", CurrentPrice: 189.5, ReasonForRecommendation: "Durable moat", PotentialUpside: 12.5},
			{Ticker: "MSFT", CompanyName: "Microsoft", CurrentPrice: 410, ReasonForRecommendation: "Cloud", PotentialUpside: -3},
		},
		LastUpdated: "2024-01-01 09:30:00",
	})

	out := m.View()
	assert.Contains(t, out, Title)
	assert.Contains(t, out, "Last updated: 2024-01-01 09:30:00")
	assert.Contains(t, out, "1. AAPL")
	assert.Contains(t, out, "2. MSFT")
	assert.Contains(t, out, "$189.50")
	assert.Contains(t, out, "-3.0%")
	assert.Contains(t, out, "Durable moat")
	assert.Less(t, strings.Index(out, "1. AAPL"), strings.Index(out, "2. MSFT"))
	assert.NotContains(t, out, dashboard.UpdatingLabel)
}

func TestModel_LoadingAndError(t *testing.T) {
	m := sized(t, New(newFakeBoard()))
	m = withState(t, m, dashboard.State{
		Loading:     true,
		Error:       "Failed to trigger update: HTTP error! Status: 503",
		LastUpdated: core.NeverUpdated,
	})

	out := m.View()
	assert.Contains(t, out, dashboard.UpdatingLabel)
	assert.Contains(t, out, dashboard.LoadingText)
	assert.Contains(t, out, "Failed to trigger update: HTTP error! Status: 503")
}

func TestModel_Empty(t *testing.T) {
	m := sized(t, New(newFakeBoard()))
	m = withState(t, m, dashboard.State{Stocks: []core.StockRecommendation{}})

	assert.Contains(t, m.View(), dashboard.EmptyText)
}

func TestModel_RefreshKey(t *testing.T) {
	board := newFakeBoard()
	m := sized(t, New(board))
	m = withState(t, m, dashboard.State{Stocks: []core.StockRecommendation{}})

	next, cmd := m.Update(key("r"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, 1, board.refreshes)

	next, _ = next.(Model).Update(msg)
	assert.NotContains(t, next.(Model).View(), "refresh already in progress")
}

func TestModel_RefreshIgnoredWhileLoading(t *testing.T) {
	board := newFakeBoard()
	m := sized(t, New(board))
	m = withState(t, m, dashboard.State{Loading: true})

	next, cmd := m.Update(key("r"))
	assert.Nil(t, cmd)
	assert.Equal(t, 0, board.refreshes)
	assert.Contains(t, next.(Model).View(), "refresh already in progress")
}

func TestModel_RefreshErrorShownInFooter(t *testing.T) {
	m := sized(t, New(newFakeBoard()))

	next, _ := m.Update(refreshDoneMsg{err: errors.New("dashboard not running")})
	assert.Contains(t, next.(Model).View(), "dashboard not running")
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []tea.KeyMsg{key("q"), {Type: tea.KeyCtrlC}} {
		board := newFakeBoard()
		m := New(board)

		_, cmd := m.Update(k)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
		assert.True(t, board.unsubscribed)
	}
}

func TestPadOrTrunc(t *testing.T) {
	assert.Equal(t, "ab  ", padOrTrunc("ab", 4))
	assert.Equal(t, "abc", padOrTrunc("abcdef", 3))
	assert.Equal(t, "abc", padOrTrunc("abc", 0))
}
