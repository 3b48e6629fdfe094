// Package repository selects the Invoice Record Store backend named in the
// configuration.
package repository

import (
	"context"

	"github.com/gpinvoice/invoicegen/internal/config"
	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/postgres"
	boltrepo "github.com/gpinvoice/invoicegen/internal/repository/bolt"
	pgrepo "github.com/gpinvoice/invoicegen/internal/repository/postgres"
	supabaserepo "github.com/gpinvoice/invoicegen/internal/repository/supabase"
	"github.com/gpinvoice/invoicegen/internal/types"
	"go.uber.org/fx"
)

// NewInvoiceRepository opens the configured store and closes it with the app
func NewInvoiceRepository(lc fx.Lifecycle, cfg *config.Configuration, logger *logger.Logger) (invoice.Repository, error) {
	logger.Infow("opening invoice store", "backend", cfg.Store.Backend)

	switch cfg.Store.Backend {
	case types.StoreBackendPostgres:
		db, err := postgres.NewDB(cfg, logger)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error {
			db.Close()
			return nil
		}})
		return pgrepo.NewInvoiceRepository(db, logger), nil

	case types.StoreBackendSupabase:
		return supabaserepo.NewInvoiceRepository(cfg, logger), nil

	case types.StoreBackendBolt:
		repo, err := boltrepo.NewInvoiceRepository(cfg.Bolt.Path, logger)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error {
			return repo.Close()
		}})
		return repo, nil
	}

	return nil, ierr.NewErrorf("unknown store backend %q", cfg.Store.Backend).
		WithHint("store.backend must be postgres, supabase or bolt").
		Mark(ierr.ErrValidation)
}
