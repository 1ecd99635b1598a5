package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nathanyu/trading-terminal/internal/bookstore"
	"github.com/nathanyu/trading-terminal/internal/domain"
	"github.com/nathanyu/trading-terminal/internal/middleware"
)

const defaultDepth = 20

// Handler holds the HTTP handler dependencies.
type Handler struct {
	store *bookstore.Store
}

// NewHandler creates a new Handler.
func NewHandler(store *bookstore.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes sets up the Gin routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/orderbook/:asset", h.GetOrderbook)
	r.POST("/trade", h.PlaceTrade)
}

// Health returns a health check response.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "trading-terminal",
	})
}

// GetOrderbook handles GET /orderbook/:asset.
func (h *Handler) GetOrderbook(c *gin.Context) {
	asset, err := domain.ParseAsset(c.Param("asset"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown asset"})
		return
	}

	depthStr := c.DefaultQuery("depth", strconv.Itoa(defaultDepth))
	depth, err := strconv.Atoi(depthStr)
	if err != nil || depth <= 0 {
		depth = defaultDepth
	}

	middleware.OrderbookRequestsTotal.WithLabelValues(string(asset)).Inc()
	c.JSON(http.StatusOK, h.store.Book(asset).Snapshot(depth))
}

// PlaceTrade handles POST /trade.
func (h *Handler) PlaceTrade(c *gin.Context) {
	var order domain.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if msg := validateOrder(&order); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	book := h.store.Book(order.Asset)
	if _, err := book.Fill(&order); err != nil {
		middleware.TradesTotal.WithLabelValues(string(order.Asset), string(order.Side), "rejected").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	middleware.TradesTotal.WithLabelValues(string(order.Asset), string(order.Side), "accepted").Inc()
	bidDepth, askDepth := book.Depth()
	middleware.OrderBookDepth.WithLabelValues(string(order.Asset), "bid").Set(bidDepth)
	middleware.OrderBookDepth.WithLabelValues(string(order.Asset), "ask").Set(askDepth)

	c.JSON(http.StatusOK, domain.TradeResponse{
		Order:     order,
		ID:        uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
	})
}

// validateOrder checks the submission payload, returning an error message
// or "" when valid.
func validateOrder(order *domain.Order) string {
	if _, err := domain.ParseAsset(string(order.Asset)); err != nil {
		return "asset must be one of BTC, ETH"
	}
	if !order.Side.Valid() {
		return "side must be BUY or SELL"
	}
	if !order.Type.Valid() {
		return "type must be LIMIT or MARKET"
	}
	if order.Quantity <= 0 {
		return "quantity must be greater than 0"
	}
	if order.Type == domain.OrderTypeLimit && (order.Price == nil || *order.Price <= 0) {
		return "price must be greater than 0 for limit orders"
	}
	if order.Notional <= 0 {
		return "notional must be greater than 0"
	}
	return ""
}
