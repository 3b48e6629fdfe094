package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/postgres"
	"github.com/gpinvoice/invoicegen/internal/types"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// DATE and nullable text columns are normalized so they scan into plain strings
const invoiceColumns = `
	id, template_id, COALESCE(currency, '') AS currency, invoice_number,
	to_char(payment_date, 'YYYY-MM-DD') AS payment_date,
	invoice_for_name,
	COALESCE(invoice_for_company, '') AS invoice_for_company,
	COALESCE(transfer_method, '') AS transfer_method,
	COALESCE(transaction_id, '') AS transaction_id,
	COALESCE(status, 'Pending') AS status,
	COALESCE(notes, '') AS notes,
	COALESCE(amount_in_words, '') AS amount_in_words,
	discount, subtotal, total, line_items, created_at, updated_at`

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	inv.ApplyDefaults()
	if inv.ID == "" {
		inv.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE)
	}
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	query := `
		INSERT INTO invoices (
			id, template_id, currency, invoice_number, payment_date, invoice_for_name,
			invoice_for_company, transfer_method, transaction_id, status, notes,
			amount_in_words, discount, subtotal, total, line_items, created_at, updated_at
		) VALUES (
			:id, :template_id, :currency, :invoice_number, :payment_date, :invoice_for_name,
			:invoice_for_company, :transfer_method, :transaction_id, :status, :notes,
			:amount_in_words, :discount, :subtotal, :total, :line_items, :created_at, :updated_at
		)`

	r.logger.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
	)

	if _, err := r.db.NamedExecContext(ctx, query, inv); err != nil {
		return r.translate(err, inv.InvoiceNumber, "failed to create invoice")
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	err := r.db.GetContext(ctx, &inv, "SELECT "+invoiceColumns+" FROM invoices WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, r.translate(err, "", "failed to get invoice")
	}
	return &inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	inv.ApplyDefaults()
	inv.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE invoices SET
			template_id = :template_id,
			currency = :currency,
			invoice_number = :invoice_number,
			payment_date = :payment_date,
			invoice_for_name = :invoice_for_name,
			invoice_for_company = :invoice_for_company,
			transfer_method = :transfer_method,
			transaction_id = :transaction_id,
			status = :status,
			notes = :notes,
			amount_in_words = :amount_in_words,
			discount = :discount,
			subtotal = :subtotal,
			total = :total,
			line_items = :line_items,
			updated_at = :updated_at
		WHERE id = :id`

	r.logger.Debugw("updating invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
	)

	res, err := r.db.NamedExecContext(ctx, query, inv)
	if err != nil {
		return r.translate(err, inv.InvoiceNumber, "failed to update invoice")
	}
	return requireRow(res, inv.ID)
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debugw("deleting invoice", "invoice_id", id)

	res, err := r.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return r.translate(err, "", "failed to delete invoice")
	}
	return requireRow(res, id)
}

func (r *invoiceRepository) List(ctx context.Context) ([]*invoice.Invoice, error) {
	return r.Search(ctx, nil)
}

func (r *invoiceRepository) Search(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	query, args := buildSearchQuery(filter)

	invoices := []*invoice.Invoice{}
	if err := r.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, r.translate(err, "", "failed to list invoices")
	}
	return invoices, nil
}

func (r *invoiceRepository) FindMaxSequenceByPrefix(ctx context.Context, prefix string) (int, error) {
	var numbers []string
	err := r.db.SelectContext(ctx, &numbers,
		"SELECT invoice_number FROM invoices WHERE invoice_number ILIKE $1",
		escapeLike(prefix)+"-%",
	)
	if err != nil {
		return 0, r.translate(err, "", "failed to read invoice numbers")
	}
	return invoice.MaxSequence(prefix, numbers), nil
}

func (r *invoiceRepository) translate(err error, invoiceNumber, hint string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return ierr.WithError(err).
			WithHintf("Invoice number %s already exists", invoiceNumber).
			WithReportableDetails(map[string]any{"invoice_number": invoiceNumber}).
			Mark(ierr.ErrDuplicateInvoiceNumber)
	}
	return ierr.WithError(err).WithHint(hint).Mark(ierr.ErrDatabase)
}

func buildSearchQuery(filter *types.InvoiceFilter) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter != nil {
		if filter.InvoiceNumber != "" {
			where = append(where, "invoice_number ILIKE "+arg("%"+escapeLike(filter.InvoiceNumber)+"%"))
		}
		if filter.ClientName != "" {
			where = append(where, "invoice_for_name ILIKE "+arg("%"+escapeLike(filter.ClientName)+"%"))
		}
		if filter.Status != "" {
			where = append(where, "status = "+arg(string(filter.Status)))
		}
		if filter.StartDate != nil {
			where = append(where, "created_at >= "+arg(*filter.StartDate))
		}
		if filter.EndDate != nil {
			where = append(where, "created_at <= "+arg(*filter.EndDate))
		}
	}

	query := "SELECT " + invoiceColumns + " FROM invoices"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query + " ORDER BY created_at DESC", args
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).WithHint("failed to read affected rows").Mark(ierr.ErrDatabase)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func notFound(id string) error {
	return ierr.NewErrorf("invoice %s not found", id).
		WithHint("Invoice not found").
		WithReportableDetails(map[string]any{"invoice_id": id}).
		Mark(ierr.ErrNotFound)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
