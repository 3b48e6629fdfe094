// Package supabase stores invoices in a hosted Supabase table through its
// PostgREST endpoint.
package supabase

import (
	"context"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gpinvoice/invoicegen/internal/config"
	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/types"
	"github.com/nedpals/supabase-go"
	postgrest "github.com/nedpals/supabase-go/postgrest/pkg"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

// payload is the writable column set. The table assigns id and created_at.
type payload struct {
	TemplateID        int                 `json:"template_id"`
	Currency          string              `json:"currency"`
	InvoiceNumber     string              `json:"invoice_number"`
	PaymentDate       string              `json:"payment_date"`
	InvoiceForName    string              `json:"invoice_for_name"`
	InvoiceForCompany *string             `json:"invoice_for_company"`
	TransferMethod    *string             `json:"transfer_method"`
	TransactionID     *string             `json:"transaction_id"`
	Status            types.InvoiceStatus `json:"status"`
	Notes             *string             `json:"notes"`
	AmountInWords     *string             `json:"amount_in_words"`
	Discount          decimal.Decimal     `json:"discount"`
	Subtotal          decimal.Decimal     `json:"subtotal"`
	Total             decimal.Decimal     `json:"total"`
	LineItems         invoice.LineItems   `json:"line_items"`
	UpdatedAt         *time.Time          `json:"updated_at,omitempty"`
}

type invoiceRepository struct {
	client *supabase.Client
	table  string
	logger *logger.Logger
}

func NewInvoiceRepository(cfg *config.Configuration, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{
		client: supabase.CreateClient(cfg.Supabase.BaseURL, cfg.Supabase.ServiceKey),
		table:  cfg.Supabase.Table,
		logger: logger,
	}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	inv.ApplyDefaults()
	r.logger.Debugw("creating invoice", "invoice_number", inv.InvoiceNumber)

	var created []invoice.Invoice
	err := r.client.DB.From(r.table).Insert(toPayload(inv, nil)).ExecuteWithContext(ctx, &created)
	if err != nil {
		return r.translate(err, inv.InvoiceNumber, "failed to create invoice")
	}
	if len(created) == 0 {
		return ierr.NewError("insert returned no row").
			WithHint("failed to create invoice").
			Mark(ierr.ErrDatabase)
	}
	*inv = created[0]
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	var rows []invoice.Invoice
	if err := r.client.DB.From(r.table).Select("*").Eq("id", id).ExecuteWithContext(ctx, &rows); err != nil {
		return nil, r.translate(err, "", "failed to get invoice")
	}
	if len(rows) == 0 {
		return nil, notFound(id)
	}
	return &rows[0], nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	inv.ApplyDefaults()
	now := time.Now().UTC()
	r.logger.Debugw("updating invoice", "invoice_id", inv.ID, "invoice_number", inv.InvoiceNumber)

	var updated []invoice.Invoice
	err := r.client.DB.From(r.table).Update(toPayload(inv, &now)).Eq("id", inv.ID).ExecuteWithContext(ctx, &updated)
	if err != nil {
		return r.translate(err, inv.InvoiceNumber, "failed to update invoice")
	}
	if len(updated) == 0 {
		return notFound(inv.ID)
	}
	*inv = updated[0]
	return nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	r.logger.Debugw("deleting invoice", "invoice_id", id)

	var deleted []invoice.Invoice
	if err := r.client.DB.From(r.table).Delete().Eq("id", id).ExecuteWithContext(ctx, &deleted); err != nil {
		return r.translate(err, "", "failed to delete invoice")
	}
	return nil
}

func (r *invoiceRepository) List(ctx context.Context) ([]*invoice.Invoice, error) {
	return r.Search(ctx, nil)
}

func (r *invoiceRepository) Search(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	// PostgREST takes * as the pattern wildcard in the query string
	query := &r.client.DB.From(r.table).Select("*").FilterRequestBuilder
	if filter != nil {
		if filter.InvoiceNumber != "" {
			query = query.Ilike("invoice_number", "*"+filter.InvoiceNumber+"*")
		}
		if filter.ClientName != "" {
			query = query.Ilike("invoice_for_name", "*"+filter.ClientName+"*")
		}
		if filter.Status != "" {
			query = query.Eq("status", string(filter.Status))
		}
		if filter.StartDate != nil {
			query = query.Gte("created_at", filter.StartDate.UTC().Format(time.RFC3339))
		}
		if filter.EndDate != nil {
			query = query.Lte("created_at", filter.EndDate.UTC().Format(time.RFC3339))
		}
	}

	var rows []invoice.Invoice
	if err := query.ExecuteWithContext(ctx, &rows); err != nil {
		return nil, r.translate(err, "", "failed to list invoices")
	}

	invoices := make([]*invoice.Invoice, 0, len(rows))
	for i := range rows {
		invoices = append(invoices, &rows[i])
	}
	sort.SliceStable(invoices, func(i, j int) bool {
		return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
	})
	return invoices, nil
}

func (r *invoiceRepository) FindMaxSequenceByPrefix(ctx context.Context, prefix string) (int, error) {
	var rows []struct {
		InvoiceNumber string `json:"invoice_number"`
	}
	err := r.client.DB.From(r.table).Select("invoice_number").Ilike("invoice_number", prefix+"-*").ExecuteWithContext(ctx, &rows)
	if err != nil {
		return 0, r.translate(err, "", "failed to read invoice numbers")
	}

	numbers := make([]string, 0, len(rows))
	for _, row := range rows {
		numbers = append(numbers, row.InvoiceNumber)
	}
	return invoice.MaxSequence(prefix, numbers), nil
}

func (r *invoiceRepository) translate(err error, invoiceNumber, hint string) error {
	if isUniqueViolation(err) {
		return ierr.WithError(err).
			WithHintf("Invoice number %s already exists", invoiceNumber).
			WithReportableDetails(map[string]any{"invoice_number": invoiceNumber}).
			Mark(ierr.ErrDuplicateInvoiceNumber)
	}
	return ierr.WithError(err).WithHint(hint).Mark(ierr.ErrDatabase)
}

func isUniqueViolation(err error) bool {
	var reqErr *postgrest.RequestError
	return errors.As(err, &reqErr) && reqErr.Code == uniqueViolation
}

// toPayload maps blank optional fields to null, as the table expects
func toPayload(inv *invoice.Invoice, updatedAt *time.Time) payload {
	return payload{
		TemplateID:        inv.TemplateID,
		Currency:          inv.Currency,
		InvoiceNumber:     inv.InvoiceNumber,
		PaymentDate:       inv.PaymentDate,
		InvoiceForName:    inv.InvoiceForName,
		InvoiceForCompany: nullable(inv.InvoiceForCompany),
		TransferMethod:    nullable(inv.TransferMethod),
		TransactionID:     nullable(inv.TransactionID),
		Status:            inv.Status,
		Notes:             nullable(inv.Notes),
		AmountInWords:     nullable(inv.AmountInWords),
		Discount:          inv.Discount,
		Subtotal:          inv.Subtotal,
		Total:             inv.Total,
		LineItems:         inv.LineItems,
		UpdatedAt:         updatedAt,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func notFound(id string) error {
	return ierr.NewErrorf("invoice %s not found", id).
		WithHint("Invoice not found").
		WithReportableDetails(map[string]any{"invoice_id": id}).
		Mark(ierr.ErrNotFound)
}
