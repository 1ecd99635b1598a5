package depth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathanyu/trading-terminal/internal/domain"
)

func sampleBook() *domain.OrderBook {
	return &domain.OrderBook{
		LastUpdateID: 42,
		Bids: []domain.PriceLevel{
			{"50000.00", "1.5"},
			{"49999.00", "2.0"},
		},
		Asks: []domain.PriceLevel{
			{"50001.00", "1.0"},
			{"50002.00", "1.5"},
		},
	}
}

func TestBuildLadder(t *testing.T) {
	l, err := Build(sampleBook())
	require.NoError(t, err)

	require.Len(t, l.Bids, 2)
	require.Len(t, l.Asks, 2)
	assert.Equal(t, uint64(42), l.LastUpdateID)

	assert.Equal(t, 50000.0, l.Bids[0].Price)
	assert.Equal(t, 1.5, l.Bids[0].Quantity)
	assert.Equal(t, 75000.0, l.Bids[0].Notional)

	// Prefix sums along each side.
	assert.Equal(t, 1.5, l.Bids[0].Cumulative)
	assert.Equal(t, 3.5, l.Bids[1].Cumulative)
	assert.Equal(t, 1.0, l.Asks[0].Cumulative)
	assert.Equal(t, 2.5, l.Asks[1].Cumulative)

	// Shared scale: bid side is deeper, so its last row fills the bar.
	assert.Equal(t, 3.5, l.MaxDepth())
	assert.InDelta(t, 100.0, l.Bids[1].Percent, 1e-9)
	assert.InDelta(t, 1.5/3.5*100, l.Bids[0].Percent, 1e-9)
	assert.InDelta(t, 2.5/3.5*100, l.Asks[1].Percent, 1e-9)
}

func TestCumulativeDepthMonotone(t *testing.T) {
	book := &domain.OrderBook{
		Bids: []domain.PriceLevel{
			{"100.00", "5"},
			{"99.00", "0"},
			{"98.00", "2"},
			{"97.00", "1"},
		},
	}
	l, err := Build(book)
	require.NoError(t, err)

	for i := 1; i < len(l.Bids); i++ {
		assert.GreaterOrEqual(t, l.Bids[i].Cumulative, l.Bids[i-1].Cumulative)
	}
}

func TestTopOfBookStatistics(t *testing.T) {
	l, err := Build(sampleBook())
	require.NoError(t, err)

	assert.Equal(t, 50000.0, l.BestBid())
	assert.Equal(t, 50001.0, l.BestAsk())
	assert.Equal(t, 50000.5, l.MidPrice())

	s := l.Spread()
	assert.InDelta(t, 1.0, s.Absolute, 1e-9)
	assert.InDelta(t, 0.002, s.Percent, 1e-6)
}

func TestEmptyBook(t *testing.T) {
	l, err := Build(&domain.OrderBook{})
	require.NoError(t, err)

	assert.True(t, l.Empty())
	assert.Zero(t, l.MaxDepth())
	assert.Zero(t, l.MidPrice())
	assert.Zero(t, l.Spread().Absolute)
	assert.Zero(t, l.Spread().Percent)
}

func TestZeroDepthIsNotNaN(t *testing.T) {
	// Degenerate but distinct from empty: levels exist with zero quantity.
	book := &domain.OrderBook{
		Bids: []domain.PriceLevel{{"100.00", "0"}},
		Asks: []domain.PriceLevel{{"101.00", "0"}},
	}
	l, err := Build(book)
	require.NoError(t, err)

	assert.False(t, l.Empty())
	assert.Zero(t, l.MaxDepth())
	assert.Zero(t, l.Bids[0].Percent) // 0, never NaN
	assert.False(t, l.Bids[0].Percent != l.Bids[0].Percent, "percent is NaN")
}

func TestOneSidedBook(t *testing.T) {
	book := &domain.OrderBook{
		Bids: []domain.PriceLevel{{"100.00", "1"}},
	}
	l, err := Build(book)
	require.NoError(t, err)

	assert.Equal(t, 100.0, l.BestBid())
	assert.Zero(t, l.BestAsk())
	assert.Zero(t, l.MidPrice()) // degenerate, not an error
	assert.Zero(t, l.Spread().Percent)
	assert.InDelta(t, 100.0, l.Bids[0].Percent, 1e-9)
}

func TestBuildRejectsMalformedLevels(t *testing.T) {
	_, err := Build(&domain.OrderBook{
		Bids: []domain.PriceLevel{{"not-a-price", "1"}},
	})
	assert.Error(t, err)

	_, err = Build(&domain.OrderBook{
		Asks: []domain.PriceLevel{{"100.00", "??"}},
	})
	assert.Error(t, err)
}

func TestReferences(t *testing.T) {
	l, err := Build(sampleBook())
	require.NoError(t, err)

	mid, bid, ask := l.References()
	assert.Equal(t, "50000.5", mid.String())
	assert.Equal(t, "50000", bid.String())
	assert.Equal(t, "50001", ask.String())
}
