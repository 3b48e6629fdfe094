package invoice

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is the persisted invoice record. JSON and db names are the wire contract
// shared with every record store.
type Invoice struct {
	ID                string              `json:"id" db:"id"`
	TemplateID        int                 `json:"template_id" db:"template_id"`
	Currency          string              `json:"currency" db:"currency"`
	InvoiceNumber     string              `json:"invoice_number" db:"invoice_number"`
	PaymentDate       string              `json:"payment_date" db:"payment_date"`
	InvoiceForName    string              `json:"invoice_for_name" db:"invoice_for_name"`
	InvoiceForCompany string              `json:"invoice_for_company" db:"invoice_for_company"`
	TransferMethod    string              `json:"transfer_method" db:"transfer_method"`
	TransactionID     string              `json:"transaction_id" db:"transaction_id"`
	Status            types.InvoiceStatus `json:"status" db:"status"`
	Notes             string              `json:"notes" db:"notes"`
	AmountInWords     string              `json:"amount_in_words" db:"amount_in_words"`
	Discount          decimal.Decimal     `json:"discount" db:"discount"`
	Subtotal          decimal.Decimal     `json:"subtotal" db:"subtotal"`
	Total             decimal.Decimal     `json:"total" db:"total"`
	LineItems         LineItems           `json:"line_items" db:"line_items"`
	CreatedAt         time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" db:"updated_at"`
}

// LineItem is the stored shape of one invoice line
type LineItem struct {
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// LineItems is stored as a single JSON document column
type LineItems []LineItem

// Value implements driver.Valuer
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *LineItems) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = LineItems{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return ierr.NewErrorf("unsupported line_items column type %T", src).Mark(ierr.ErrDatabase)
	}
	items := LineItems{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return ierr.WithError(err).WithHint("stored line items are not valid json").Mark(ierr.ErrDatabase)
	}
	*l = items
	return nil
}

// Validate checks what the record stores cannot express as column constraints
func (i *Invoice) Validate() error {
	if i.InvoiceNumber == "" {
		return ierr.NewError("invoice number is required").
			WithHint("Invoice number is required").
			Mark(ierr.ErrValidation)
	}
	if i.InvoiceForName == "" {
		return ierr.NewError("client name is required").
			WithHint("Invoice for (name) is required").
			Mark(ierr.ErrValidation)
	}
	if _, ok := types.ParseDate(i.PaymentDate); !ok {
		return ierr.NewErrorf("invalid payment date %q", i.PaymentDate).
			WithHint("Payment date must be formatted as yyyy-mm-dd").
			Mark(ierr.ErrValidation)
	}
	return i.Status.Validate()
}

// ApplyDefaults fills the values a record gets when a field is left blank
func (i *Invoice) ApplyDefaults() {
	if i.TemplateID == 0 {
		i.TemplateID = types.DefaultTemplateID
	}
	if i.Status == "" {
		i.Status = types.InvoiceStatusPending
	}
	if i.LineItems == nil {
		i.LineItems = LineItems{}
	}
}

// Copy returns a deep copy so stores never share line item slices with callers
func (i *Invoice) Copy() *Invoice {
	if i == nil {
		return nil
	}
	c := *i
	c.LineItems = append(LineItems{}, i.LineItems...)
	return &c
}
