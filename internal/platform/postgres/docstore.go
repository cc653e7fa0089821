package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fooddrop/internal/docstore"
	"fooddrop/internal/platform/config"
)

// OpenDocstore returns the Postgres document store for cfg, creating its
// schema when needed. With no DSN it falls back to the in-memory store. The
// returned func releases the store and its connections.
func OpenDocstore(ctx context.Context, cfg config.Database, logger *slog.Logger) (docstore.Store, func(), error) {
	if cfg.DSN == "" {
		logger.WarnContext(ctx, "no DATABASE_URL configured, using in-memory document store")
		mem := docstore.NewMemoryStore()
		return mem, func() { _ = mem.Close() }, nil
	}

	db, err := Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := docstore.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ensure docstore schema: %w", err)
	}
	store := docstore.NewPostgresStore(db,
		docstore.WithListenerDSN(cfg.DSN),
		docstore.WithTxTimeout(cfg.TxTimeout),
	)
	closeFn := func() {
		if err := errors.Join(store.Close(), db.Close()); err != nil {
			logger.Error("failed to close document store", "error", err)
		}
	}
	return store, closeFn, nil
}
