/*
main.go - Application entry point

STARTUP SEQUENCE:
  1. Load optional .env, parse flags
  2. Build the zap logger
  3. Open the sqlite store
  4. Wire ledger, handler, sync scheduler, router
  5. Serve with graceful shutdown

FLAGS:
  -port           HTTP server port (default: 8080)
  -db             SQLite database path (default: timepay.db, ":memory:" works)
  -sync-interval  Payslip sync check interval (default: 1m)
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/warp/timepay-engine/api"
	"github.com/warp/timepay-engine/ledger"
	"github.com/warp/timepay-engine/store/sqlite"
)

func main() {
	// .env is optional; flags win over environment defaults.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "timepay.db"), "SQLite database path")
	syncInterval := flag.Duration("sync-interval", time.Minute, "payslip sync check interval")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	led := ledger.New(store, logger)
	handler := api.NewHandler(store, led, logger)

	scheduler := api.NewSyncScheduler(store, led, logger)
	scheduler.CheckInterval = *syncInterval
	handler.Scheduler = scheduler
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.Int("port", *port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}
