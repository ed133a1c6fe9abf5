package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/hyperengineering/nextbest/internal/config"
	"github.com/hyperengineering/nextbest/internal/ledger"
	"github.com/hyperengineering/nextbest/internal/store"
	"github.com/hyperengineering/nextbest/internal/worker"
)

var (
	dbPathOverride string
	jsonOutput     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPathOverride, "db", "",
		"Database path (overrides config and NEXTBEST_DB_PATH)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output in JSON format")
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// openLocalStore opens the SQLite database named by --db or the config.
func openLocalStore() (*store.SQLiteStore, *config.Config, error) {
	cfg, err := config.LoadLocal()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	path := dbPathOverride
	if path == "" {
		path = cfg.Database.Path
	}

	db, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}

// withLedger opens the database, loads the ledger, runs fn, and writes any
// resulting change before returning.
func withLedger(ctx context.Context, fn func(l *ledger.Ledger) error) error {
	db, cfg, err := openLocalStore()
	if err != nil {
		return err
	}
	defer db.Close()

	timeout := time.Duration(cfg.Worker.PersistTimeout)
	persister := worker.NewPersistWorker(db, timeout)
	l := ledger.New(persister)
	if err := l.Load(ctx, db); err != nil {
		return err
	}

	if err := fn(l); err != nil {
		return err
	}

	flushCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := persister.Flush(flushCtx); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}
