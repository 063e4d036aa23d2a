package main

import (
	"context"

	"github.com/opendata-be/kbo-cli/internal/store"
)

// openStore connects to the record store using the loaded configuration.
// Validation of store credentials happens in each command's mode check
// before this is called.
func openStore(ctx context.Context) (store.Store, error) {
	return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: int32(cfg.Store.MaxConns),
	})
}
