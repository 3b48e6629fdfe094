package service

import (
	"github.com/gpinvoice/invoicegen/internal/cache"
	"github.com/gpinvoice/invoicegen/internal/config"
	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	"github.com/gpinvoice/invoicegen/internal/export"
	"github.com/gpinvoice/invoicegen/internal/kvstore"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/sentry"
	"github.com/gpinvoice/invoicegen/internal/share"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// InvoiceRepo is the Invoice Record Store
	InvoiceRepo invoice.Repository
	// SequenceStore is the Local Cache Store holding the fallback counter
	SequenceStore kvstore.Store
	// DraftCache holds form sessions
	DraftCache cache.Cache

	Exporter *export.Exporter
	Sharer   *share.Sharer
	Sentry   *sentry.Service
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	invoiceRepo invoice.Repository,
	sequenceStore kvstore.Store,
	draftCache cache.Cache,
	exporter *export.Exporter,
	sharer *share.Sharer,
	sentryService *sentry.Service,
) ServiceParams {
	return ServiceParams{
		Logger:        logger,
		Config:        config,
		InvoiceRepo:   invoiceRepo,
		SequenceStore: sequenceStore,
		DraftCache:    draftCache,
		Exporter:      exporter,
		Sharer:        sharer,
		Sentry:        sentryService,
	}
}
