package internal

import (
	"chat-rooms/errors"
	"chat-rooms/infrastructure/postgres"
	"chat-rooms/repositories"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// OpenStore selects the storage driver from the configuration.
func OpenStore(ctx context.Context, config Config, log *slog.Logger) (repositories.Store, error) {
	switch config.StoreDriver {
	case DriverBadger:
		opts := badger.DefaultOptions(config.BadgerFilepath)
		if config.BadgerInMemory {
			opts = badger.DefaultOptions("").WithInMemory(true)
		}
		log.Info("Opening badger store", "path", opts.Dir, "in_memory", config.BadgerInMemory)
		return repositories.OpenBadgerStore(opts.WithLoggingLevel(badger.WARNING), log)
	case DriverPostgres:
		log.Info("Opening postgres store")
		return postgres.Open(ctx, config.DatabaseDSN)
	default:
		return repositories.Store{}, fmt.Errorf("%w: %q", errors.ErrUnknownDriver, config.StoreDriver)
	}
}
