package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/types"
	"github.com/samber/lo"
)

var _ invoice.Repository = (*InMemoryInvoiceStore)(nil)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
	// numbers serialises the uniqueness check with the insert
	numbers sync.Mutex
	now     func() time.Time
}

// NewInMemoryInvoiceStore creates a new in-memory invoice store
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SetClock fixes the timestamps given to created and updated invoices
func (s *InMemoryInvoiceStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").Mark(ierr.ErrValidation)
	}

	s.numbers.Lock()
	defer s.numbers.Unlock()

	if s.numberTaken(ctx, inv.InvoiceNumber, "") {
		return duplicate(inv.InvoiceNumber)
	}

	if inv.ID == "" {
		inv.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE)
	}
	now := s.now()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	return s.InMemoryStore.Create(ctx, inv.ID, inv.Copy())
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return inv.Copy(), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	s.numbers.Lock()
	defer s.numbers.Unlock()

	existing, err := s.InMemoryStore.Get(ctx, inv.ID)
	if err != nil {
		return err
	}
	if s.numberTaken(ctx, inv.InvoiceNumber, inv.ID) {
		return duplicate(inv.InvoiceNumber)
	}

	inv.CreatedAt = existing.CreatedAt
	inv.UpdatedAt = s.now()
	return s.InMemoryStore.Update(ctx, inv.ID, inv.Copy())
}

func (s *InMemoryInvoiceStore) List(ctx context.Context) ([]*invoice.Invoice, error) {
	return s.Search(ctx, nil)
}

func (s *InMemoryInvoiceStore) Search(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	items := s.InMemoryStore.List(ctx,
		func(_ context.Context, inv *invoice.Invoice) bool {
			return filter.Matches(inv.InvoiceNumber, inv.InvoiceForName, inv.Status, inv.CreatedAt)
		},
		func(a, b *invoice.Invoice) bool {
			return a.CreatedAt.After(b.CreatedAt)
		},
	)
	return lo.Map(items, func(inv *invoice.Invoice, _ int) *invoice.Invoice { return inv.Copy() }), nil
}

func (s *InMemoryInvoiceStore) FindMaxSequenceByPrefix(ctx context.Context, prefix string) (int, error) {
	items := s.InMemoryStore.List(ctx, nil, nil)
	return invoice.MaxSequence(prefix, lo.Map(items, func(inv *invoice.Invoice, _ int) string {
		return inv.InvoiceNumber
	})), nil
}

func (s *InMemoryInvoiceStore) numberTaken(ctx context.Context, number, exceptID string) bool {
	items := s.InMemoryStore.List(ctx, func(_ context.Context, inv *invoice.Invoice) bool {
		return inv.ID != exceptID && inv.InvoiceNumber == number
	}, nil)
	return len(items) > 0
}

func duplicate(number string) error {
	return ierr.NewErrorf("invoice number %s already exists", number).
		WithHint("Invoice number already exists").
		WithReportableDetails(map[string]any{"invoice_number": number}).
		Mark(ierr.ErrDuplicateInvoiceNumber)
}
