// Package backend selects and builds the record store implementation
// named by configuration.
package backend

import (
	"fmt"

	"bitacora/internal/config"
	"bitacora/internal/log"
	"bitacora/internal/storage"
	"bitacora/internal/store"
)

const (
	MemoryBackend = "memory"
	SQLiteBackend = "sqlite"
)

// Result bundles a ready store with its cleanup hook. Cleanup may be
// nil when the backend holds no external resources.
type Result struct {
	Store   store.RecordStore
	Cleanup func() error
}

// Open builds the store backend named by cfg.StoreBackend. Both
// backends are session scoped; neither survives a restart.
func Open(cfg *config.Config, logger *log.Logger) (*Result, error) {
	logger = logger.WithComponent(log.ComponentBackend)

	switch cfg.StoreBackend {
	case MemoryBackend:
		logger.Info("initialized memory backend")
		return &Result{Store: store.NewMemory()}, nil

	case SQLiteBackend:
		st, err := storage.NewSQLiteStore()
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("initialized sqlite backend", log.FieldBackend, SQLiteBackend)
		return &Result{Store: st, Cleanup: st.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.StoreBackend)
	}
}
