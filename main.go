package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/username/investfolio/src/config"
	"github.com/username/investfolio/src/database"
	"github.com/username/investfolio/src/handlers"
	"github.com/username/investfolio/src/logger"
	"github.com/username/investfolio/src/services"
	"github.com/username/investfolio/src/store"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Investfolio backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing services and handlers...")
	ledgerStore := store.NewSQLLedgerStore(database.DB)
	exchangeService := services.NewExchangeRateService(
		config.Cfg.ExchangeRateAPIURL,
		config.Cfg.ExchangeRateAPIKey,
		config.Cfg.ExchangeRateAPITimeout,
	)
	currencyService := services.NewCurrencyService(exchangeService, config.Cfg.RateCacheTTL)
	portfolioService := services.NewPortfolioService(ledgerStore, currencyService, config.Cfg.HomeCurrency)

	assetHandler := handlers.NewAssetHandler(ledgerStore)
	txHandler := handlers.NewTransactionHandler(ledgerStore)
	priceHandler := handlers.NewPriceHandler(ledgerStore)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, config.Cfg.HomeCurrency)
	statusHandler := handlers.NewStatusHandler()

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("GET /api/portfolio/summary", portfolioHandler.HandleGetSummary)
	apiRouter.HandleFunc("GET /api/assets", assetHandler.HandleListAssets)
	apiRouter.HandleFunc("POST /api/assets", assetHandler.HandleAddAsset)
	apiRouter.HandleFunc("POST /api/transactions", txHandler.HandleAddTransaction)
	apiRouter.HandleFunc("POST /api/prices", priceHandler.HandleAddPrice)
	apiRouter.HandleFunc("GET /api/price-history/{assetID}", priceHandler.HandleGetPriceHistory)
	apiRouter.HandleFunc("GET /api/system/status", statusHandler.HandleGetSystemStatus)

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Investfolio backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
