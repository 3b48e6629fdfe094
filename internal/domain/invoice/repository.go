package invoice

import (
	"context"
	"io"

	"github.com/gpinvoice/invoicegen/internal/types"
)

// Repository is the Invoice Record Store contract.
//
// Create fails with ierr.ErrDuplicateInvoiceNumber when the number is taken,
// Get/Update/Delete fail with ierr.ErrNotFound for unknown ids and every
// transport or server failure is marked ierr.ErrDatabase.
type Repository interface {
	// Create persists a new invoice, assigning ID, CreatedAt and UpdatedAt
	Create(ctx context.Context, inv *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update replaces the stored fields of inv.ID and refreshes UpdatedAt
	Update(ctx context.Context, inv *Invoice) error

	// Delete removes an invoice
	Delete(ctx context.Context, id string) error

	// List returns every invoice, newest first
	List(ctx context.Context) ([]*Invoice, error)

	// Search returns invoices matching filter, newest first
	Search(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// FindMaxSequenceByPrefix returns the highest numeric suffix among invoice
	// numbers shaped "<prefix>-<digits>" (case-insensitive), 0 when none exist
	FindMaxSequenceByPrefix(ctx context.Context, prefix string) (int, error)
}

// Archive is implemented by stores that can dump and restore all their invoices
// as one JSON document. Import replaces the whole store.
type Archive interface {
	Export(ctx context.Context, w io.Writer) error
	Import(ctx context.Context, r io.Reader) (int, error)
}
