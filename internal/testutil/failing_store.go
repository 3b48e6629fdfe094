package testutil

import (
	"context"

	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
)

// FailingInvoiceStore wraps a store and fails the sequence lookup, the way an
// unreachable remote store does
type FailingInvoiceStore struct {
	invoice.Repository
	FailSequence bool
	FailCreate   bool
}

func (s *FailingInvoiceStore) FindMaxSequenceByPrefix(ctx context.Context, prefix string) (int, error) {
	if s.FailSequence {
		return 0, storeDown()
	}
	return s.Repository.FindMaxSequenceByPrefix(ctx, prefix)
}

func (s *FailingInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if s.FailCreate {
		return storeDown()
	}
	return s.Repository.Create(ctx, inv)
}

func storeDown() error {
	return ierr.NewError("connection refused").
		WithHint("Invoice store is unavailable").
		Mark(ierr.ErrDatabase)
}

// QuotaStore is a local cache store that is always full
type QuotaStore struct {
	Value int
}

func (s *QuotaStore) GetInt(context.Context, string) (int, error) {
	return s.Value, nil
}

func (s *QuotaStore) SetInt(_ context.Context, key string, _ int) error {
	return ierr.NewErrorf("writing %q exceeds quota", key).Mark(ierr.ErrQuotaExceeded)
}
