package invoice

import (
	"strings"
	"time"

	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// DraftLineItem is a line as typed into the form. Price stays raw text until
// totals are computed or the draft is saved.
type DraftLineItem struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

// Draft is the unsaved invoice of one form session. Every reducer below
// returns a new Draft and leaves its input untouched.
type Draft struct {
	Currency          string              `json:"currency"`
	InvoiceNumber     string              `json:"invoice_number"`
	PaymentDate       string              `json:"payment_date"`
	InvoiceForName    string              `json:"invoice_for_name"`
	InvoiceForCompany string              `json:"invoice_for_company"`
	TransferMethod    string              `json:"transfer_method"`
	TransactionID     string              `json:"transaction_id"`
	Status            types.InvoiceStatus `json:"status"`
	Notes             string              `json:"notes"`
	AmountInWords     string              `json:"amount_in_words"`
	Discount          string              `json:"discount"`
	LineItems         []DraftLineItem     `json:"line_items"`
	Totals            Totals              `json:"totals"`
}

// DraftField names an editable top level field of a draft
type DraftField string

const (
	FieldCurrency          DraftField = "currency"
	FieldInvoiceNumber     DraftField = "invoice_number"
	FieldPaymentDate       DraftField = "payment_date"
	FieldInvoiceForName    DraftField = "invoice_for_name"
	FieldInvoiceForCompany DraftField = "invoice_for_company"
	FieldTransferMethod    DraftField = "transfer_method"
	FieldTransactionID     DraftField = "transaction_id"
	FieldStatus            DraftField = "status"
	FieldNotes             DraftField = "notes"
	FieldAmountInWords     DraftField = "amount_in_words"
	FieldDiscount          DraftField = "discount"
)

// LineItemField names an editable field of a draft line
type LineItemField string

const (
	LineItemDescription LineItemField = "description"
	LineItemPrice       LineItemField = "price"
)

// NewDraft returns the blank form a session starts with
func NewDraft(invoiceNumber string, now time.Time) Draft {
	d := Draft{
		Currency:      types.DefaultCurrency,
		InvoiceNumber: invoiceNumber,
		PaymentDate:   types.FormatDate(now),
		Status:        types.InvoiceStatusPending,
		Notes:         types.DefaultNotes,
		Discount:      "0",
		LineItems:     []DraftLineItem{{ID: 1}},
	}
	d.Totals = ComputeTotals(d.LineItems, d.Discount)
	return d
}

// Reset discards everything typed so far, keeping only a fresh invoice number
func Reset(_ Draft, invoiceNumber string, now time.Time) Draft {
	return NewDraft(invoiceNumber, now)
}

// DraftFromInvoice loads a persisted invoice into a form session for editing
func DraftFromInvoice(inv *Invoice) Draft {
	d := Draft{
		Currency:          inv.Currency,
		InvoiceNumber:     inv.InvoiceNumber,
		PaymentDate:       inv.PaymentDate,
		InvoiceForName:    inv.InvoiceForName,
		InvoiceForCompany: inv.InvoiceForCompany,
		TransferMethod:    inv.TransferMethod,
		TransactionID:     inv.TransactionID,
		Status:            inv.Status,
		Notes:             inv.Notes,
		AmountInWords:     inv.AmountInWords,
		Discount:          inv.Discount.String(),
	}
	for i, item := range inv.LineItems {
		d.LineItems = append(d.LineItems, DraftLineItem{
			ID:          i + 1,
			Description: item.Description,
			Price:       item.Price.String(),
		})
	}
	if len(d.LineItems) == 0 {
		d.LineItems = []DraftLineItem{{ID: 1}}
	}
	d.Totals = ComputeTotals(d.LineItems, d.Discount)
	return d
}

// UpdateField sets one top level field. Editing the discount recomputes totals.
func UpdateField(d Draft, field DraftField, value string) (Draft, error) {
	next := d.clone()
	switch field {
	case FieldCurrency:
		next.Currency = value
	case FieldInvoiceNumber:
		next.InvoiceNumber = value
	case FieldPaymentDate:
		next.PaymentDate = value
	case FieldInvoiceForName:
		next.InvoiceForName = value
	case FieldInvoiceForCompany:
		next.InvoiceForCompany = value
	case FieldTransferMethod:
		next.TransferMethod = value
	case FieldTransactionID:
		next.TransactionID = value
	case FieldStatus:
		status := types.InvoiceStatus(value)
		if err := status.Validate(); err != nil {
			return d, err
		}
		next.Status = status
	case FieldNotes:
		next.Notes = value
	case FieldAmountInWords:
		// kept only until the total changes again
		next.AmountInWords = value
	case FieldDiscount:
		next.Discount = value
		return recompute(d, next), nil
	default:
		return d, ierr.NewErrorf("unknown draft field %q", string(field)).
			WithHint("Unknown invoice field").
			Mark(ierr.ErrValidation)
	}
	return next, nil
}

// UpdateLineItem edits one field of the line with the given id
func UpdateLineItem(d Draft, id int, field LineItemField, value string) (Draft, error) {
	if field != LineItemDescription && field != LineItemPrice {
		return d, ierr.NewErrorf("unknown line item field %q", string(field)).
			WithHint("Line item field must be description or price").
			Mark(ierr.ErrValidation)
	}

	next := d.clone()
	found := false
	for i := range next.LineItems {
		if next.LineItems[i].ID != id {
			continue
		}
		found = true
		if field == LineItemDescription {
			next.LineItems[i].Description = value
		} else {
			next.LineItems[i].Price = value
		}
	}
	if !found {
		return d, ierr.NewErrorf("line item %d not found", id).
			WithHint("Line item not found").
			Mark(ierr.ErrNotFound)
	}
	return recompute(d, next), nil
}

// AddLineItem appends an empty line with the next session-local id
func AddLineItem(d Draft) Draft {
	next := d.clone()
	maxID := lo.Max(lo.Map(next.LineItems, func(item DraftLineItem, _ int) int { return item.ID }))
	next.LineItems = append(next.LineItems, DraftLineItem{ID: maxID + 1})
	return recompute(d, next)
}

// RemoveLineItem drops the line with the given id. The last remaining line is
// cleared instead so a draft always has at least one line.
func RemoveLineItem(d Draft, id int) Draft {
	next := d.clone()
	if len(next.LineItems) > 1 {
		next.LineItems = lo.Filter(next.LineItems, func(item DraftLineItem, _ int) bool {
			return item.ID != id
		})
	} else {
		for i := range next.LineItems {
			if next.LineItems[i].ID == id {
				next.LineItems[i].Description = ""
				next.LineItems[i].Price = ""
			}
		}
	}
	return recompute(d, next)
}

// ToInvoice builds the record to persist. Blank lines (no description and no
// positive price) are left out.
func (d Draft) ToInvoice() *Invoice {
	items := LineItems{}
	for _, item := range d.LineItems {
		price := ParsePrice(item.Price)
		if strings.TrimSpace(item.Description) == "" && !price.IsPositive() {
			continue
		}
		items = append(items, LineItem{Description: item.Description, Price: price})
	}

	inv := &Invoice{
		TemplateID:        types.DefaultTemplateID,
		Currency:          d.Currency,
		InvoiceNumber:     d.InvoiceNumber,
		PaymentDate:       d.PaymentDate,
		InvoiceForName:    d.InvoiceForName,
		InvoiceForCompany: d.InvoiceForCompany,
		TransferMethod:    d.TransferMethod,
		TransactionID:     d.TransactionID,
		Status:            d.Status,
		Notes:             d.Notes,
		AmountInWords:     d.AmountInWords,
		Discount:          d.Totals.Discount,
		Subtotal:          d.Totals.Subtotal,
		Total:             d.Totals.Total,
		LineItems:         items,
	}
	inv.ApplyDefaults()
	return inv
}

// AmountInWords renders the total as it is printed on the invoice. The fractional
// part is dropped.
func AmountInWords(total decimal.Decimal) string {
	n := total.Truncate(0).IntPart()
	if n < 0 {
		n = 0
	}
	return "In Words: " + NumberToWords(uint64(n)) + " Only."
}

// recompute refreshes totals on next. When the total changed and is positive the
// amount in words is regenerated, overwriting any manual edit.
func recompute(prev, next Draft) Draft {
	next.Totals = ComputeTotals(next.LineItems, next.Discount)
	if !next.Totals.Total.Equal(prev.Totals.Total) && next.Totals.Total.IsPositive() {
		next.AmountInWords = AmountInWords(next.Totals.Total)
	}
	return next
}

func (d Draft) clone() Draft {
	c := d
	c.LineItems = append([]DraftLineItem(nil), d.LineItems...)
	return c
}
