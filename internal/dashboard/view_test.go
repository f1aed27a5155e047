package dashboard

import (
	"testing"

	"github.com/newthinker/pickboard/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildView_Loading(t *testing.T) {
	v := BuildView(initialState())

	assert.True(t, v.Loading)
	assert.True(t, v.ButtonDisabled)
	assert.Equal(t, UpdatingLabel, v.ButtonLabel)
	assert.Equal(t, core.NeverUpdated, v.LastUpdated)
	assert.False(t, v.Empty)
	assert.Empty(t, v.Cards)
}

func TestBuildView_Empty(t *testing.T) {
	v := BuildView(State{Stocks: []core.StockRecommendation{}, LastUpdated: "2024-01-01"})

	assert.True(t, v.Empty)
	assert.Empty(t, v.Cards)
	assert.False(t, v.ButtonDisabled)
	assert.Equal(t, RefreshLabel, v.ButtonLabel)
	assert.Equal(t, "2024-01-01", v.LastUpdated)
}

func TestBuildView_CardsInServerOrder(t *testing.T) {
	v := BuildView(State{
		Stocks: []core.StockRecommendation{
			{Ticker: "AAPL", CompanyName: "Apple Inc.", CurrentPrice: 189.5, ReasonForRecommendation: "Moat", PotentialUpside: 12.5},
			{Ticker: "MSFT", CompanyName: "Microsoft", CurrentPrice: 410, ReasonForRecommendation: "Cloud", PotentialUpside: -3},
		},
		LastUpdated: "2024-01-01 09:30:00",
	})

	require.Len(t, v.Cards, 2)
	assert.False(t, v.Empty)

	first, second := v.Cards[0], v.Cards[1]
	assert.Equal(t, "AAPL", first.Key)
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, "$189.50", first.Price)
	assert.Equal(t, "12.5%", first.Upside)
	assert.True(t, first.UpsideUp)

	assert.Equal(t, "MSFT", second.Key)
	assert.Equal(t, 2, second.Position)
	assert.Equal(t, "$410.00", second.Price)
	assert.Equal(t, "-3.0%", second.Upside)
	assert.False(t, second.UpsideUp)
}

func TestBuildView_ErrorKeepsCards(t *testing.T) {
	v := BuildView(State{
		Error:  "Failed to fetch stock recommendations: HTTP error! Status: 500",
		Stocks: []core.StockRecommendation{{Ticker: "KO"}},
	})

	assert.Equal(t, "Failed to fetch stock recommendations: HTTP error! Status: 500", v.Error)
	require.Len(t, v.Cards, 1)
	assert.Equal(t, "KO", v.Cards[0].Key)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "$0.00", FormatPrice(0))
	assert.Equal(t, "$1234.57", FormatPrice(1234.567))
	assert.Equal(t, "8.0%", FormatUpside(8))
	assert.Equal(t, "15.5%", FormatUpside(15.46))
}

func TestState_Phase(t *testing.T) {
	assert.Equal(t, PhaseLoading, State{Loading: true, Error: "x"}.Phase())
	assert.Equal(t, PhaseError, State{Error: "x"}.Phase())
	assert.Equal(t, PhaseIdle, State{}.Phase())
}
