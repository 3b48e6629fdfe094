package kvstore

import (
	"context"

	"github.com/gpinvoice/invoicegen/internal/config"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/types"
	"go.uber.org/fx"
)

// NewStore opens the configured Local Cache Store
func NewStore(lc fx.Lifecycle, cfg *config.Configuration, logger *logger.Logger) (Store, error) {
	if cfg.Cache.Backend == types.CacheBackendMemory {
		logger.Infow("using in-memory sequence cache", "quota_bytes", cfg.Cache.QuotaBytes)
		return NewMemoryStore(cfg.Cache.QuotaBytes), nil
	}

	store, err := NewBoltStore(cfg.Cache.Path, cfg.Cache.QuotaBytes)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		return store.Close()
	}})
	logger.Infow("using bolt sequence cache", "path", cfg.Cache.Path, "quota_bytes", cfg.Cache.QuotaBytes)
	return store, nil
}
