package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/nextbest/internal/api"
	"github.com/hyperengineering/nextbest/internal/catalog"
	"github.com/hyperengineering/nextbest/internal/config"
	"github.com/hyperengineering/nextbest/internal/ledger"
	"github.com/hyperengineering/nextbest/internal/prefs"
	"github.com/hyperengineering/nextbest/internal/rank"
	"github.com/hyperengineering/nextbest/internal/store"
	"github.com/hyperengineering/nextbest/internal/worker"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:          "nextbest",
	Short:        "NextBest - pick what to do next",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(xpCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Signal handling
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// 2. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 3. Initialize logger
	slog.SetDefault(newLogger(os.Stdout, cfg.Log))
	slog.Info("configuration loaded", "dev_mode", cfg.DevMode)

	// 4. Initialize store (migrations, WAL mode)
	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	version, err := db.SchemaVersion()
	if err != nil {
		db.Close()
		return fmt.Errorf("read schema version: %w", err)
	}
	slog.Info("store initialized", "path", cfg.Database.Path, "schema_version", version)

	// 5. Load catalog
	cat, err := openCatalog(cfg.Catalog.Path)
	if err != nil {
		db.Close()
		return err
	}
	slog.Info("catalog loaded", "items", cat.Len(), "path", cfg.Catalog.Path)

	// 6. Ledger and its persistence worker. Workers get their own context so
	// they outlive the HTTP drain and flush whatever it produced.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	persister := worker.NewPersistWorker(db, time.Duration(cfg.Worker.PersistTimeout))
	xp := ledger.New(persister)

	var wg sync.WaitGroup
	startWorker(workerCtx, &wg, "ledger-persist", persister.Run)
	startWorker(workerCtx, &wg, "ledger-load", func(ctx context.Context) {
		if err := xp.Load(ctx, db); err != nil {
			if errors.Is(err, context.Canceled) {
				slog.Info("ledger load abandoned at shutdown", "component", "ledger")
				return
			}
			slog.Error("ledger load failed", "error", err)
		}
	})

	// 7. Initialize HTTP router
	handler := api.NewHandler(api.Deps{
		Catalog: cat,
		Prefs:   prefs.NewState(prefs.Defaults()),
		Ledger:  xp,
		Source:  randomSource(cfg.Games.Seed),
		Stats:   db,
	}, api.Options{
		APIKey:    cfg.Auth.APIKey,
		Version:   Version,
		DevMode:   cfg.DevMode,
		RateLimit: cfg.Games.RateLimit,
		RateBurst: cfg.Games.RateBurst,
		MaxDecks:  cfg.Games.MaxDecks,
	})
	router := api.NewRouter(handler)
	slog.Info("router initialized")

	// 8. Configure HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	// 9. Start HTTP server in goroutine
	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is expected after Shutdown(); anything else triggers shutdown.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	// 10. Block until signal received
	<-ctx.Done()
	slog.Info("shutdown initiated")

	// 11. Graceful shutdown sequence
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	// 11a. Stop HTTP server (drains in-flight requests)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// 11b. Stop workers; the persist worker makes a final flush
	stopWorkers()
	wg.Wait()

	// 11c. Close store
	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}

// openCatalog returns the built-in catalog when path is empty.
func openCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}

func randomSource(seed uint64) rank.RandomSource {
	if seed == 0 {
		return rank.DefaultSource()
	}
	return rank.SeededSource(seed)
}
