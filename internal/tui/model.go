// Package tui renders the dashboard in a terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/newthinker/pickboard/internal/core"
	"github.com/newthinker/pickboard/internal/dashboard"
)

// Title heads the terminal view.
const Title = "Warren Buffett Stock Recommendations"

const refreshTimeout = 30 * time.Second

// Board is the dashboard as seen by the terminal view.
type Board interface {
	Subscribe() (<-chan dashboard.State, func())
	Refresh(ctx context.Context) error
}

type stateMsg dashboard.State

type refreshDoneMsg struct {
	err error
}

// Model is the bubbletea model for the watch command.
type Model struct {
	board       Board
	states      <-chan dashboard.State
	unsubscribe func()

	view          dashboard.View
	notice        string
	viewport      viewport.Model
	ready         bool
	width, height int
}

// New subscribes to board. The subscription ends when the user quits.
func New(board Board) Model {
	states, unsubscribe := board.Subscribe()
	return Model{
		board:       board,
		states:      states,
		unsubscribe: unsubscribe,
		view:        dashboard.BuildView(dashboard.State{Loading: true, LastUpdated: core.NeverUpdated}),
	}
}

// Init starts listening for board states.
func (m Model) Init() tea.Cmd {
	return waitForState(m.states)
}

func waitForState(states <-chan dashboard.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-states
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		return refreshDoneMsg{err: m.board.Refresh(ctx)}
	}
}

// Update handles keys, resizes and board states.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.unsubscribe()
			return m, tea.Quit
		case "r":
			if m.view.ButtonDisabled {
				m.notice = "refresh already in progress"
				return m, nil
			}
			m.notice = ""
			return m, m.refreshCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 2
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.viewport.SetContent(renderBoard(m.view, m.width))
		return m, nil

	case stateMsg:
		m.view = dashboard.BuildView(dashboard.State(msg))
		if m.ready {
			m.viewport.SetContent(renderBoard(m.view, m.width))
		}
		return m, waitForState(m.states)

	case refreshDoneMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
		}
		return m, nil
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// View draws header, cards and footer.
func (m Model) View() string {
	if !m.ready {
		return dashboard.LoadingText
	}

	headerText := fmt.Sprintf(" %s    Last updated: %s ", Title, m.view.LastUpdated)
	header := headerStyle.Render(padOrTrunc(headerText, m.width))
	if m.view.Loading {
		header = busyStyle.Render(padOrTrunc(headerText+"   "+dashboard.UpdatingLabel, m.width))
	}

	footerLeft := " q quit  r refresh  pgup/dn scroll"
	if m.notice != "" {
		footerLeft += "    " + m.notice
	}
	footerRight := fmt.Sprintf("%.0f%% ", m.viewport.ScrollPercent()*100)
	gap := m.width - len(footerLeft) - len(footerRight)
	if gap < 0 {
		gap = 0
	}
	footer := footerStyle.Render(padOrTrunc(footerLeft+strings.Repeat(" ", gap)+footerRight, m.width))

	return header + "\n" + m.viewport.View() + "\n" + footer
}

// renderBoard lays out the view as plain terminal text.
func renderBoard(v dashboard.View, width int) string {
	var b strings.Builder

	if v.Error != "" {
		b.WriteString(errorStyle.Render(v.Error))
		b.WriteString("\n\n")
	}

	switch {
	case v.Loading:
		b.WriteString(dimStyle.Render(dashboard.LoadingText))
		b.WriteString("\n")
		return b.String()
	case v.Empty:
		b.WriteString(dimStyle.Render(dashboard.EmptyText))
		b.WriteString("\n")
		return b.String()
	}

	wrap := lipgloss.NewStyle().PaddingLeft(3)
	if width > 3 {
		wrap = wrap.Width(width)
	}
	for _, c := range v.Cards {
		fmt.Fprintf(&b, "%s  %s\n",
			tickerStyle.Render(fmt.Sprintf("%d. %s", c.Position, c.Ticker)),
			companyStyle.Render(c.CompanyName),
		)
		fmt.Fprintf(&b, "   %s %s    %s %s\n",
			labelStyle.Render("Current Price:"), priceStyle.Render(c.Price),
			labelStyle.Render("Potential Upside:"), upsideStyle(c.UpsideUp).Render(c.Upside),
		)
		b.WriteString(wrap.Render(labelStyle.Render(dashboard.ReasonLabel) + " " + c.Reason))
		b.WriteString("\n\n")
	}
	return b.String()
}

func padOrTrunc(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) > width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
