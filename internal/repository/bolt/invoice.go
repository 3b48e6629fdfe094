// Package bolt is the offline Invoice Record Store, a single bolt file holding
// invoices as JSON documents.
package bolt

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/types"
)

var (
	invoicesBucket = []byte("invoices")
	// invoice_number -> id, enforces uniqueness
	numbersBucket = []byte("invoice_numbers")
)

var (
	_ invoice.Repository = (*InvoiceRepository)(nil)
	_ invoice.Archive    = (*InvoiceRepository)(nil)
)

// InvoiceRepository implements invoice.Repository on top of bolt
type InvoiceRepository struct {
	db     *bolt.DB
	logger *logger.Logger
}

// NewInvoiceRepository opens (or creates) the store file at path
func NewInvoiceRepository(path string, logger *logger.Logger) (*InvoiceRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, ierr.WithError(err).WithHint("failed to create data directory").Mark(ierr.ErrDatabase)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, ierr.WithError(err).WithHintf("failed to open invoice store %s", path).Mark(ierr.ErrDatabase)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{invoicesBucket, numbersBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, ierr.WithError(err).WithHint("failed to initialise invoice store").Mark(ierr.ErrDatabase)
	}

	return &InvoiceRepository{db: db, logger: logger}, nil
}

// Close releases the file lock
func (r *InvoiceRepository) Close() error {
	return r.db.Close()
}

func (r *InvoiceRepository) Create(_ context.Context, inv *invoice.Invoice) error {
	inv.ApplyDefaults()
	if inv.ID == "" {
		inv.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE)
	}
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	r.logger.Debugw("creating invoice", "invoice_id", inv.ID, "invoice_number", inv.InvoiceNumber)

	return r.update(func(tx *bolt.Tx) error {
		numbers := tx.Bucket(numbersBucket)
		if numbers.Get([]byte(inv.InvoiceNumber)) != nil {
			return duplicate(inv.InvoiceNumber)
		}
		if err := numbers.Put([]byte(inv.InvoiceNumber), []byte(inv.ID)); err != nil {
			return err
		}
		return put(tx, inv)
	})
}

func (r *InvoiceRepository) Get(_ context.Context, id string) (*invoice.Invoice, error) {
	var inv *invoice.Invoice
	err := r.view(func(tx *bolt.Tx) error {
		var err error
		inv, err = get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *InvoiceRepository) Update(_ context.Context, inv *invoice.Invoice) error {
	inv.ApplyDefaults()
	r.logger.Debugw("updating invoice", "invoice_id", inv.ID, "invoice_number", inv.InvoiceNumber)

	return r.update(func(tx *bolt.Tx) error {
		existing, err := get(tx, inv.ID)
		if err != nil {
			return err
		}

		numbers := tx.Bucket(numbersBucket)
		if existing.InvoiceNumber != inv.InvoiceNumber {
			if owner := numbers.Get([]byte(inv.InvoiceNumber)); owner != nil && string(owner) != inv.ID {
				return duplicate(inv.InvoiceNumber)
			}
			if err := numbers.Delete([]byte(existing.InvoiceNumber)); err != nil {
				return err
			}
			if err := numbers.Put([]byte(inv.InvoiceNumber), []byte(inv.ID)); err != nil {
				return err
			}
		}

		inv.CreatedAt = existing.CreatedAt
		inv.UpdatedAt = time.Now().UTC()
		return put(tx, inv)
	})
}

func (r *InvoiceRepository) Delete(_ context.Context, id string) error {
	r.logger.Debugw("deleting invoice", "invoice_id", id)

	return r.update(func(tx *bolt.Tx) error {
		existing, err := get(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Bucket(numbersBucket).Delete([]byte(existing.InvoiceNumber)); err != nil {
			return err
		}
		return tx.Bucket(invoicesBucket).Delete([]byte(id))
	})
}

func (r *InvoiceRepository) List(ctx context.Context) ([]*invoice.Invoice, error) {
	return r.Search(ctx, nil)
}

func (r *InvoiceRepository) Search(_ context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	all, err := r.all()
	if err != nil {
		return nil, err
	}

	invoices := make([]*invoice.Invoice, 0, len(all))
	for _, inv := range all {
		if filter.Matches(inv.InvoiceNumber, inv.InvoiceForName, inv.Status, inv.CreatedAt) {
			invoices = append(invoices, inv)
		}
	}
	return invoices, nil
}

func (r *InvoiceRepository) FindMaxSequenceByPrefix(_ context.Context, prefix string) (int, error) {
	var numbers []string
	err := r.view(func(tx *bolt.Tx) error {
		return tx.Bucket(numbersBucket).ForEach(func(k, _ []byte) error {
			numbers = append(numbers, string(k))
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return invoice.MaxSequence(prefix, numbers), nil
}

// Export writes every stored invoice as an indented JSON array, newest first
func (r *InvoiceRepository) Export(_ context.Context, w io.Writer) error {
	all, err := r.all()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(all); err != nil {
		return ierr.WithError(err).WithHint("failed to write invoice export").Mark(ierr.ErrSystem)
	}
	return nil
}

// Import replaces the store contents with the JSON array read from rd.
// Nothing is changed when the document is malformed or repeats an invoice number.
func (r *InvoiceRepository) Import(_ context.Context, rd io.Reader) (int, error) {
	var invoices []*invoice.Invoice
	if err := json.NewDecoder(rd).Decode(&invoices); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Invalid format: expected a JSON array of invoices").
			Mark(ierr.ErrValidation)
	}

	err := r.update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{invoicesBucket, numbersBucket} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}

		numbers := tx.Bucket(numbersBucket)
		for _, inv := range invoices {
			inv.ApplyDefaults()
			if inv.ID == "" {
				inv.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE)
			}
			if numbers.Get([]byte(inv.InvoiceNumber)) != nil {
				return duplicate(inv.InvoiceNumber)
			}
			if err := numbers.Put([]byte(inv.InvoiceNumber), []byte(inv.ID)); err != nil {
				return err
			}
			if err := put(tx, inv); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Infow("imported invoices", "count", len(invoices))
	return len(invoices), nil
}

func (r *InvoiceRepository) all() ([]*invoice.Invoice, error) {
	var invoices []*invoice.Invoice
	err := r.view(func(tx *bolt.Tx) error {
		return tx.Bucket(invoicesBucket).ForEach(func(_, v []byte) error {
			var inv invoice.Invoice
			if err := json.Unmarshal(v, &inv); err != nil {
				return err
			}
			invoices = append(invoices, &inv)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(invoices, func(i, j int) bool {
		return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
	})
	return invoices, nil
}

func (r *InvoiceRepository) view(fn func(tx *bolt.Tx) error) error {
	return wrap(r.db.View(fn), "failed to read invoice store")
}

func (r *InvoiceRepository) update(fn func(tx *bolt.Tx) error) error {
	return wrap(r.db.Update(fn), "failed to write invoice store")
}

// wrap leaves already classified errors alone
func wrap(err error, hint string) error {
	if err == nil {
		return nil
	}
	if ierr.IsNotFound(err) || ierr.IsDuplicateInvoiceNumber(err) {
		return err
	}
	return ierr.WithError(err).WithHint(hint).Mark(ierr.ErrDatabase)
}

func get(tx *bolt.Tx, id string) (*invoice.Invoice, error) {
	raw := tx.Bucket(invoicesBucket).Get([]byte(id))
	if raw == nil {
		return nil, ierr.NewErrorf("invoice %s not found", id).
			WithHint("Invoice not found").
			WithReportableDetails(map[string]any{"invoice_id": id}).
			Mark(ierr.ErrNotFound)
	}
	var inv invoice.Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func put(tx *bolt.Tx, inv *invoice.Invoice) error {
	raw, err := json.Marshal(inv)
	if err != nil {
		return err
	}
	return tx.Bucket(invoicesBucket).Put([]byte(inv.ID), raw)
}

func duplicate(invoiceNumber string) error {
	return ierr.NewErrorf("invoice number %s already exists", invoiceNumber).
		WithHintf("Invoice number %s already exists", invoiceNumber).
		WithReportableDetails(map[string]any{"invoice_number": invoiceNumber}).
		Mark(ierr.ErrDuplicateInvoiceNumber)
}
