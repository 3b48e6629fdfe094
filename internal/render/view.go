package render

import (
	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
)

// ViewLine is one printed line item
type ViewLine struct {
	Description string `json:"description"`
	Price       string `json:"price"`
}

// View is the printable invoice. All amounts are preformatted with two decimals.
type View struct {
	Currency          string     `json:"currency"`
	InvoiceNumber     string     `json:"invoice_number"`
	PaymentDate       string     `json:"payment_date"`
	InvoiceForName    string     `json:"invoice_for_name"`
	InvoiceForCompany string     `json:"invoice_for_company"`
	TransferMethod    string     `json:"transfer_method"`
	TransactionID     string     `json:"transaction_id"`
	Status            string     `json:"status"`
	Notes             string     `json:"notes"`
	AmountInWords     string     `json:"amount_in_words"`
	LineItems         []ViewLine `json:"line_items"`
	Subtotal          string     `json:"subtotal"`
	Discount          string     `json:"discount"`
	Total             string     `json:"total"`
}

// ViewFromDraft renders the form as currently typed, blank lines included
func ViewFromDraft(d invoice.Draft) *View {
	v := &View{
		Currency:          d.Currency,
		InvoiceNumber:     d.InvoiceNumber,
		PaymentDate:       d.PaymentDate,
		InvoiceForName:    d.InvoiceForName,
		InvoiceForCompany: d.InvoiceForCompany,
		TransferMethod:    d.TransferMethod,
		TransactionID:     d.TransactionID,
		Status:            d.Status.String(),
		Notes:             d.Notes,
		AmountInWords:     d.AmountInWords,
		Subtotal:          d.Totals.Subtotal.StringFixed(2),
		Discount:          d.Totals.Discount.StringFixed(2),
		Total:             d.Totals.Total.StringFixed(2),
		LineItems:         make([]ViewLine, 0, len(d.LineItems)),
	}
	for _, item := range d.LineItems {
		v.LineItems = append(v.LineItems, ViewLine{
			Description: item.Description,
			Price:       invoice.ParsePrice(item.Price).StringFixed(2),
		})
	}
	return v
}

// ViewFromInvoice renders a persisted invoice
func ViewFromInvoice(inv *invoice.Invoice) *View {
	v := &View{
		Currency:          inv.Currency,
		InvoiceNumber:     inv.InvoiceNumber,
		PaymentDate:       inv.PaymentDate,
		InvoiceForName:    inv.InvoiceForName,
		InvoiceForCompany: inv.InvoiceForCompany,
		TransferMethod:    inv.TransferMethod,
		TransactionID:     inv.TransactionID,
		Status:            inv.Status.String(),
		Notes:             inv.Notes,
		AmountInWords:     inv.AmountInWords,
		Subtotal:          inv.Subtotal.StringFixed(2),
		Discount:          inv.Discount.StringFixed(2),
		Total:             inv.Total.StringFixed(2),
		LineItems:         make([]ViewLine, 0, len(inv.LineItems)),
	}
	for _, item := range inv.LineItems {
		v.LineItems = append(v.LineItems, ViewLine{
			Description: item.Description,
			Price:       item.Price.StringFixed(2),
		})
	}
	return v
}
