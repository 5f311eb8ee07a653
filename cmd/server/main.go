package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/fooddept/fdbms/internal/config"
	"github.com/fooddept/fdbms/internal/lifecycle"
	"github.com/fooddept/fdbms/internal/metrics"
	"github.com/fooddept/fdbms/internal/middleware"
	"github.com/fooddept/fdbms/internal/printer"
	"github.com/fooddept/fdbms/internal/service"
	"github.com/fooddept/fdbms/internal/storage/sqlite"
	"github.com/fooddept/fdbms/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel)

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	m := metrics.New()

	var billPrinter lifecycle.Printer = printer.Log{Logger: logger}
	if cfg.PrintDir != "" {
		chrome, err := printer.NewChrome(cfg.PrintDir, logger)
		if err != nil {
			logger.Error("Failed to initialize printer", "error", err)
			os.Exit(1)
		}
		defer chrome.Close()
		billPrinter = chrome
		logger.Info("Printing enabled", "directory", cfg.PrintDir)
	}

	svc := service.NewBillingService(store, service.Options{
		Metrics:    m,
		Printer:    billPrinter,
		PrintPause: cfg.PrintPause,
		SaveBudget: cfg.SaveBudget,
		Logger:     logger,
	})

	mux := http.NewServeMux()

	// Register Connect services
	interceptors := connect.WithInterceptors(middleware.LoggingInterceptor(logger, m))
	billingPath, billingHandler := service.NewBillingServiceHandler(svc, interceptors)
	mux.Handle(billingPath, billingHandler)

	mux.Handle("/backup.xlsx", svc.BackupHandler())
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			logger.Warn("Health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Add logging and CORS middleware
	loggedHandler := loggingMiddleware(logger, corsMiddleware(mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	h2cHandler := h2c.NewHandler(loggedHandler, &http2.Server{})

	addr := cfg.Addr()
	logger.Info("Connect server starting", "address", addr, "url", "http://localhost"+addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		logger.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		logger.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, Content-Disposition")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
