package dto

import (
	"time"

	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	"github.com/gpinvoice/invoicegen/internal/types"
	"github.com/gpinvoice/invoicegen/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one invoice line. Price is taken as typed; text that is not
// a number counts as zero.
type LineItemRequest struct {
	Description string `json:"description"`
	Price       string `json:"price"`
}

type CreateInvoiceRequest struct {
	TemplateID        int                 `json:"template_id,omitempty" validate:"gte=0"`
	Currency          string              `json:"currency"`
	InvoiceNumber     string              `json:"invoice_number" validate:"required,max=50"`
	PaymentDate       string              `json:"payment_date" validate:"required"`
	InvoiceForName    string              `json:"invoice_for_name" validate:"required"`
	InvoiceForCompany string              `json:"invoice_for_company"`
	TransferMethod    string              `json:"transfer_method"`
	TransactionID     string              `json:"transaction_id"`
	Status            types.InvoiceStatus `json:"status"`
	Notes             string              `json:"notes"`
	AmountInWords     string              `json:"amount_in_words"`
	Discount          string              `json:"discount"`
	LineItems         []LineItemRequest   `json:"line_items"`
}

func (r *CreateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Status != "" {
		return r.Status.Validate()
	}
	return nil
}

// ToDraft loads the request into a draft so totals and the amount in words are
// derived exactly as they are for a form session
func (r *CreateInvoiceRequest) ToDraft() invoice.Draft {
	d := invoice.Draft{
		Currency:          lo.Ternary(r.Currency == "", types.DefaultCurrency, r.Currency),
		InvoiceNumber:     r.InvoiceNumber,
		PaymentDate:       r.PaymentDate,
		InvoiceForName:    r.InvoiceForName,
		InvoiceForCompany: r.InvoiceForCompany,
		TransferMethod:    r.TransferMethod,
		TransactionID:     r.TransactionID,
		Status:            lo.Ternary(r.Status == "", types.InvoiceStatusPending, r.Status),
		Notes:             r.Notes,
		AmountInWords:     r.AmountInWords,
		Discount:          r.Discount,
	}
	for i, item := range r.LineItems {
		d.LineItems = append(d.LineItems, invoice.DraftLineItem{
			ID:          i + 1,
			Description: item.Description,
			Price:       item.Price,
		})
	}
	d.Totals = invoice.ComputeTotals(d.LineItems, d.Discount)
	if d.Totals.Total.IsPositive() {
		d.AmountInWords = invoice.AmountInWords(d.Totals.Total)
	}
	return d
}

// UpdateInvoiceRequest replaces every editable field of a stored invoice
type UpdateInvoiceRequest struct {
	CreateInvoiceRequest
}

type LineItemResponse struct {
	Description string `json:"description"`
	Price       string `json:"price"`
}

// InvoiceResponse renders amounts with exactly two decimals
type InvoiceResponse struct {
	*invoice.Invoice
	Discount  string             `json:"discount"`
	Subtotal  string             `json:"subtotal"`
	Total     string             `json:"total"`
	LineItems []LineItemResponse `json:"line_items"`

	// Warnings report side effects that failed after the invoice was saved
	Warnings []string `json:"warnings,omitempty"`
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		Invoice:  inv,
		Discount: inv.Discount.StringFixed(2),
		Subtotal: inv.Subtotal.StringFixed(2),
		Total:    inv.Total.StringFixed(2),
		LineItems: lo.Map(inv.LineItems, func(item invoice.LineItem, _ int) LineItemResponse {
			return LineItemResponse{Description: item.Description, Price: item.Price.StringFixed(2)}
		}),
	}
}

func (r *InvoiceResponse) WithWarnings(warnings ...string) *InvoiceResponse {
	r.Warnings = append(r.Warnings, warnings...)
	return r
}

type ListInvoicesResponse struct {
	Items []*InvoiceResponse `json:"items"`
	Total int                `json:"total"`
}

// StatisticsResponse summarises every stored invoice
type StatisticsResponse struct {
	TotalInvoices int        `json:"total_invoices"`
	TotalAmount   string     `json:"total_amount"`
	LastCreated   *time.Time `json:"last_created,omitempty"`
}

func NewStatisticsResponse(count int, amount decimal.Decimal, lastCreated *time.Time) *StatisticsResponse {
	return &StatisticsResponse{
		TotalInvoices: count,
		TotalAmount:   amount.StringFixed(2),
		LastCreated:   lastCreated,
	}
}

type NextInvoiceNumberResponse struct {
	InvoiceNumber string `json:"invoice_number"`
}

type ImportInvoicesResponse struct {
	Imported int `json:"imported"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}
