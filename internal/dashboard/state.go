package dashboard

import (
	"time"

	"github.com/newthinker/pickboard/internal/core"
)

// Phase is the coarse state of the board.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseIdle    Phase = "idle"
	PhaseError   Phase = "error"
)

// State is the displayed dashboard state. Stocks is shared between snapshots
// and must not be modified by readers.
type State struct {
	Loading     bool                       `json:"loading"`
	Error       string                     `json:"error,omitempty"`
	Stocks      []core.StockRecommendation `json:"stocks"`
	LastUpdated string                     `json:"lastUpdated"`
	Version     uint64                     `json:"version"`
	UpdatedAt   time.Time                  `json:"updatedAt"`
}

// initialState is the state entered on mount.
func initialState() State {
	return State{
		Loading:     true,
		Stocks:      []core.StockRecommendation{},
		LastUpdated: core.NeverUpdated,
	}
}

// Phase reports the state machine phase. An outstanding request wins over a
// recorded error.
func (s State) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case s.Error != "":
		return PhaseError
	default:
		return PhaseIdle
	}
}
