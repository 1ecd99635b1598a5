package panel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathanyu/trading-terminal/internal/bookstore"
	"github.com/nathanyu/trading-terminal/internal/client"
	"github.com/nathanyu/trading-terminal/internal/domain"
	"github.com/nathanyu/trading-terminal/internal/handler"
	"github.com/nathanyu/trading-terminal/internal/orderentry"
)

// newBackend serves the real trade API over a seeded store, counting
// trade submissions.
func newBackend(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := bookstore.NewStore()
	store.Book(domain.AssetBTC).Seed(
		decimal.RequireFromString("50000.50"), 5, 100, 100_000_000, 50_000_000)
	store.Book(domain.AssetETH).Seed(
		decimal.RequireFromString("3000.50"), 5, 100, 500_000_000, 100_000_000)

	r := gin.New()
	handler.NewHandler(store).RegisterRoutes(r)

	var trades atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/trade" {
			trades.Add(1)
		}
		r.ServeHTTP(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv, &trades
}

func TestSelectAssetSeedsLimitPrice(t *testing.T) {
	srv, _ := newBackend(t)
	p := New(client.New(srv.URL, nil), domain.AssetBTC)

	assert.Nil(t, p.Ladder()) // loading until the first fetch

	require.NoError(t, p.SelectAsset(context.Background(), domain.AssetBTC))
	require.NotNil(t, p.Ladder())
	assert.Equal(t, 50000.5, p.Ladder().MidPrice())
	assert.Equal(t, "50000.50", p.Draft().Price())
}

func TestSelectAssetDiscardsDraft(t *testing.T) {
	srv, _ := newBackend(t)
	p := New(client.New(srv.URL, nil), domain.AssetBTC)

	require.NoError(t, p.SelectAsset(context.Background(), domain.AssetBTC))
	require.True(t, p.Draft().SetQuantity("2"))

	require.NoError(t, p.SelectAsset(context.Background(), domain.AssetETH))
	assert.Equal(t, domain.AssetETH, p.Asset())
	assert.Empty(t, p.Draft().Quantity())
	assert.Equal(t, "3000.50", p.Draft().Price())
}

func TestQuickFillFromLadder(t *testing.T) {
	srv, _ := newBackend(t)
	p := New(client.New(srv.URL, nil), domain.AssetBTC)
	require.NoError(t, p.SelectAsset(context.Background(), domain.AssetBTC))

	p.QuickFill(orderentry.FillBid)
	assert.Equal(t, "50000.00", p.Draft().Price())

	p.QuickFill(orderentry.FillAsk)
	assert.Equal(t, "50001.00", p.Draft().Price())
}

func TestSubmit(t *testing.T) {
	srv, trades := newBackend(t)
	p := New(client.New(srv.URL, nil), domain.AssetBTC)
	require.NoError(t, p.SelectAsset(context.Background(), domain.AssetBTC))

	require.True(t, p.Draft().SetQuantity("0.5"))
	trade, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, trade.ID)
	assert.Equal(t, int64(1), trades.Load())

	// Quantity and notional cleared, limit price reseeded from mid.
	assert.Empty(t, p.Draft().Quantity())
	assert.Empty(t, p.Draft().Notional())
	assert.NotEmpty(t, p.Draft().Price())
}

func TestSubmitInvalidDraftSkipsNetwork(t *testing.T) {
	srv, trades := newBackend(t)
	p := New(client.New(srv.URL, nil), domain.AssetBTC)
	require.NoError(t, p.SelectAsset(context.Background(), domain.AssetBTC))

	// Quantity left empty.
	_, err := p.Submit(context.Background())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, orderentry.ReasonQuantityNotPositive, vErr.Reason)
	assert.Zero(t, trades.Load(), "validation failures must not reach the network")
}

func TestSubmitSingleFlight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/trade":
			close(entered)
			<-release
			json.NewEncoder(w).Encode(domain.TradeResponse{ID: "t1"})
		default:
			json.NewEncoder(w).Encode(domain.OrderBook{
				LastUpdateID: 1,
				Bids:         []domain.PriceLevel{{"50000.00", "1"}},
				Asks:         []domain.PriceLevel{{"50001.00", "1"}},
			})
		}
	}))
	defer srv.Close()

	p := New(client.New(srv.URL, nil), domain.AssetBTC)
	require.NoError(t, p.SelectAsset(context.Background(), domain.AssetBTC))
	require.True(t, p.Draft().SetQuantity("1"))

	done := make(chan error, 1)
	go func() {
		_, err := p.Submit(context.Background())
		done <- err
	}()

	<-entered // first submission is now outstanding
	_, err := p.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	// Fields stayed stable while the call was in flight.
	assert.Equal(t, "1", p.Draft().Quantity())

	close(release)
	require.NoError(t, <-done)
}

func TestRefreshDiscardsStaleSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var updateID atomic.Uint64
	updateID.Store(10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(domain.OrderBook{
			LastUpdateID: updateID.Load(),
			Bids:         []domain.PriceLevel{{"100.00", "1"}},
			Asks:         []domain.PriceLevel{{"101.00", "1"}},
		})
	}))
	defer srv.Close()

	p := New(client.New(srv.URL, nil), domain.AssetBTC)
	require.NoError(t, p.Refresh(context.Background()))
	require.Equal(t, uint64(10), p.Ladder().LastUpdateID)

	updateID.Store(4) // server replays an older snapshot
	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, uint64(10), p.Ladder().LastUpdateID)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", &ValidationError{Reason: orderentry.ReasonPriceNotPositive}, "Price must be greater than 0"},
		{"rejected with message", &client.RejectedError{Message: "Invalid order"}, "Invalid order"},
		{"rejected without message", &client.RejectedError{}, "order failed"},
		{"fetch", client.ErrFetchOrderbook, "Failed to fetch orderbook"},
		{"in flight", ErrSubmitInFlight, "Order submission already in progress"},
		{"transport", errors.New("dial tcp: connection refused"), "Network error. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err))
		})
	}
}
