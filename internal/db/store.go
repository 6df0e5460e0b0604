package db

import (
	"github.com/dagapurva3/senior-care-incidents/internal/config"
	"github.com/dagapurva3/senior-care-incidents/internal/logger"
	"github.com/dagapurva3/senior-care-incidents/internal/store"
)

// OpenStore builds the record store selected by STORE_DRIVER. The returned
// close function releases the connection pool, if any.
func OpenStore(cfg *config.Config, migrate bool) (store.RecordStore, func() error, error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("Using in-memory store; incidents are lost on restart", nil)
		return store.NewMemoryStore(), func() error { return nil }, nil
	}

	conn, err := Connect(cfg.DSN(), cfg.LogLevel == "DEBUG")
	if err != nil {
		return nil, nil, err
	}
	if migrate {
		if err := AutoMigrate(conn); err != nil {
			_ = Close(conn)
			return nil, nil, err
		}
	}
	return store.NewGormStore(conn), func() error { return Close(conn) }, nil
}

// CloseStore runs closeStore and logs a failure instead of dropping it.
func CloseStore(closeStore func() error) {
	if err := closeStore(); err != nil {
		logger.Warn("Failed to close incident store", map[string]interface{}{"error": err.Error()})
	}
}
