package service

import (
	"context"

	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
)

// SequenceService allocates invoice numbers. A number is never reserved; it is
// only remembered once an invoice carrying it has been saved.
type SequenceService interface {
	NextInvoiceNumber(ctx context.Context) (string, error)
	RecordUsed(ctx context.Context, invoiceNumber string) error
}

type sequenceService struct {
	ServiceParams
}

func NewSequenceService(params ServiceParams) SequenceService {
	return &sequenceService{ServiceParams: params}
}

// NextInvoiceNumber asks the record store for the highest number in use. When
// that fails, or nothing matches the prefix, the local counter is used instead.
func (s *sequenceService) NextInvoiceNumber(ctx context.Context) (string, error) {
	prefix := s.Config.Sequence.Prefix

	highest, err := s.InvoiceRepo.FindMaxSequenceByPrefix(ctx, prefix)
	if err != nil {
		s.Logger.Warnw("remote sequence lookup failed, using local counter",
			"prefix", prefix,
			"error", err,
		)
	}

	if err != nil || highest == 0 {
		s.Sentry.AddBreadcrumb("sequence", "using local invoice counter", map[string]interface{}{
			"prefix":        prefix,
			"remote_failed": err != nil,
		})
		local, lerr := s.SequenceStore.GetInt(ctx, s.Config.Sequence.CacheKey)
		if lerr != nil {
			return "", ierr.WithError(lerr).
				WithHint("Could not determine the next invoice number").
				Mark(ierr.ErrDatabase)
		}
		highest = local
	}

	return invoice.FormatInvoiceNumber(prefix, highest+1, s.Config.Sequence.Width), nil
}

// RecordUsed stores the numeric part of a saved invoice number in the local
// counter. Numbers with another prefix are ignored. A failed write is returned
// so the caller can pass it on as a warning; it never undoes the save.
func (s *sequenceService) RecordUsed(ctx context.Context, invoiceNumber string) error {
	n, ok := invoice.ParseSequence(s.Config.Sequence.Prefix, invoiceNumber)
	if !ok {
		return nil
	}

	err := s.SequenceStore.SetInt(ctx, s.Config.Sequence.CacheKey, n)
	switch {
	case err == nil:
		return nil
	case ierr.IsQuotaExceeded(err):
		s.Logger.Warnw("local sequence counter not saved, storage is full",
			"invoice_number", invoiceNumber,
			"error", err,
		)
		return ierr.WithError(err).
			WithHint("Invoice saved, but local storage is full so the invoice counter was not updated").
			Mark(ierr.ErrQuotaExceeded)
	default:
		s.Logger.Errorw("failed to save local sequence counter",
			"invoice_number", invoiceNumber,
			"error", err,
		)
		return ierr.WithError(err).
			WithHint("Invoice saved, but the local invoice counter could not be updated").
			Mark(ierr.ErrDatabase)
	}
}
