package types

import (
	"strings"
	"time"

	ierr "github.com/gpinvoice/invoicegen/internal/errors"
)

// InvoiceStatus is the payment state shown on an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "Pending"
	InvoiceStatusPaid      InvoiceStatus = "Paid"
	InvoiceStatusPartial   InvoiceStatus = "Partial"
	InvoiceStatusCancelled InvoiceStatus = "Cancelled"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

// Validate accepts any of the known statuses; an empty value is rejected
func (s InvoiceStatus) Validate() error {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusPartial, InvoiceStatusCancelled:
		return nil
	}
	return ierr.NewErrorf("invalid invoice status: %q", string(s)).
		WithHintf("status must be one of %s, %s, %s, %s",
			InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusPartial, InvoiceStatusCancelled).
		Mark(ierr.ErrValidation)
}

const (
	DefaultCurrency   = "৳"
	DefaultNotes      = "All payments are non refundable"
	DefaultTemplateID = 1
)

// InvoiceFilter narrows a search over persisted invoices.
// String matches are case-insensitive substring matches.
type InvoiceFilter struct {
	InvoiceNumber string        `form:"invoice_number" json:"invoice_number,omitempty"`
	ClientName    string        `form:"client_name" json:"client_name,omitempty"`
	Status        InvoiceStatus `form:"status" json:"status,omitempty"`
	StartDate     *time.Time    `form:"start_date" json:"start_date,omitempty" time_format:"2006-01-02"`
	EndDate       *time.Time    `form:"end_date" json:"end_date,omitempty" time_format:"2006-01-02"`
}

func (f *InvoiceFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Status != "" {
		if err := f.Status.Validate(); err != nil {
			return err
		}
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return ierr.NewError("end_date before start_date").
			WithHint("end_date must not be before start_date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsEmpty reports whether the filter matches everything
func (f *InvoiceFilter) IsEmpty() bool {
	return f == nil || (f.InvoiceNumber == "" && f.ClientName == "" && f.Status == "" &&
		f.StartDate == nil && f.EndDate == nil)
}

// Matches applies the filter in memory, for stores that cannot push it down
func (f *InvoiceFilter) Matches(invoiceNumber, clientName string, status InvoiceStatus, createdAt time.Time) bool {
	if f == nil {
		return true
	}
	if f.InvoiceNumber != "" && !containsFold(invoiceNumber, f.InvoiceNumber) {
		return false
	}
	if f.ClientName != "" && !containsFold(clientName, f.ClientName) {
		return false
	}
	if f.Status != "" && status != f.Status {
		return false
	}
	if f.StartDate != nil && createdAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && createdAt.After(*f.EndDate) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// SubjectKind tells what an export or share request refers to
type SubjectKind string

const (
	SubjectInvoice SubjectKind = "invoice"
	SubjectDraft   SubjectKind = "draft"
)
