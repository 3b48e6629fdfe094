package dto

import (
	"github.com/gpinvoice/invoicegen/internal/share"
	"github.com/gpinvoice/invoicegen/internal/validator"
)

// ExportRequest selects the encoding of an export: pdf, png or jpeg
type ExportRequest struct {
	Format string `json:"format" form:"format" validate:"omitempty,oneof=pdf png jpeg"`
}

func (r *ExportRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type ExecuteShareRequest struct {
	Channel share.ChannelKind `json:"channel" validate:"required"`
}

func (r *ExecuteShareRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Channel.Validate()
}
