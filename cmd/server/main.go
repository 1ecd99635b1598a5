package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nathanyu/trading-terminal/internal/bookstore"
	"github.com/nathanyu/trading-terminal/internal/config"
	"github.com/nathanyu/trading-terminal/internal/domain"
	"github.com/nathanyu/trading-terminal/internal/handler"
	"github.com/nathanyu/trading-terminal/internal/middleware"
)

// Seed shape per asset: price step between levels in cents, quantity at
// the touch and growth per level in sats.
const (
	btcStep    = 100 // 1.00 USD
	btcBaseQty = 50_000_000
	btcQtyStep = 25_000_000

	ethStep    = 50 // 0.50 USD
	ethBaseQty = 500_000_000
	ethQtyStep = 250_000_000
)

func main() {
	log.Println("Starting trading terminal service...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// --- Book store ---

	store := bookstore.NewStore()
	store.Book(domain.AssetBTC).Seed(cfg.BTCSeed.Mid, cfg.BTCSeed.Levels, btcStep, btcBaseQty, btcQtyStep)
	store.Book(domain.AssetETH).Seed(cfg.ETHSeed.Mid, cfg.ETHSeed.Levels, ethStep, ethBaseQty, ethQtyStep)

	for _, asset := range domain.Assets {
		bids, asks := store.Book(asset).Depth()
		middleware.OrderBookDepth.WithLabelValues(string(asset), "bid").Set(bids)
		middleware.OrderBookDepth.WithLabelValues(string(asset), "ask").Set(asks)
		log.Printf("[main] seeded %s book: %.4f bid / %.4f ask depth", asset, bids, asks)
	}

	// --- HTTP Server ---

	gin.SetMode(cfg.GinMode)
	r := gin.Default()
	r.Use(middleware.PrometheusMiddleware())

	h := handler.NewHandler(store)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: r,
	}

	// --- Metrics Server ---

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.MetricsPort),
		Handler: metricsMux,
	}

	// Start servers
	go func() {
		log.Printf("Metrics server listening on :%d", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server error: %v", err)
		}
	}()

	go func() {
		log.Printf("HTTP server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	if err := metricsSrv.Shutdown(ctx); err != nil {
		log.Printf("Metrics server shutdown error: %v", err)
	}

	log.Println("Trading terminal service stopped.")
}
