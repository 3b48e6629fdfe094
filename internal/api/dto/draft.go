package dto

import (
	"sort"
	"time"

	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	"github.com/gpinvoice/invoicegen/internal/validator"
	"github.com/samber/lo"
)

// CreateDraftRequest starts a form session. With InvoiceID set the session edits
// that stored invoice, otherwise it starts a new one with the next invoice number.
type CreateDraftRequest struct {
	InvoiceID string `json:"invoice_id,omitempty"`
}

// UpdateDraftFieldsRequest sets top level fields by name
type UpdateDraftFieldsRequest struct {
	Fields map[invoice.DraftField]string `json:"fields" validate:"required,min=1"`
}

func (r *UpdateDraftFieldsRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// OrderedFields returns the field names sorted, so a request touching both the
// amount in words and the discount always resolves the same way
func (r *UpdateDraftFieldsRequest) OrderedFields() []invoice.DraftField {
	fields := lo.Keys(r.Fields)
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

type UpdateLineItemRequest struct {
	Field invoice.LineItemField `json:"field" validate:"required,oneof=description price"`
	Value string                `json:"value"`
}

func (r *UpdateLineItemRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type DraftResponse struct {
	ID        string        `json:"id"`
	InvoiceID string        `json:"invoice_id,omitempty"`
	Draft     invoice.Draft `json:"draft"`
	UpdatedAt time.Time     `json:"updated_at"`
}
