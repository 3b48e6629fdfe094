package service

import (
	"context"
	"io"
	"time"

	"github.com/gpinvoice/invoicegen/internal/api/dto"
	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	UpdateInvoice(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, id string) error
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	GetStatistics(ctx context.Context) (*dto.StatisticsResponse, error)

	// ExportArchive and ImportArchive need a store implementing invoice.Archive
	ExportArchive(ctx context.Context, w io.Writer) error
	ImportArchive(ctx context.Context, r io.Reader) (*dto.ImportInvoicesResponse, error)
}

type invoiceService struct {
	ServiceParams
	sequence SequenceService
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return newInvoiceService(params)
}

func newInvoiceService(params ServiceParams) *invoiceService {
	return &invoiceService{
		ServiceParams: params,
		sequence:      NewSequenceService(params),
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, warnings, err := s.create(ctx, req.ToDraft(), req.TemplateID)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv).WithWarnings(warnings...), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.update(ctx, id, req.ToDraft(), req.TemplateID)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) error {
	if err := s.InvoiceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.Logger.Infow("invoice deleted", "invoice_id", id)
	return nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var (
		invoices []*invoice.Invoice
		err      error
	)
	if filter.IsEmpty() {
		invoices, err = s.InvoiceRepo.List(ctx)
	} else {
		invoices, err = s.InvoiceRepo.Search(ctx, filter)
	}
	if err != nil {
		return nil, err
	}

	return &dto.ListInvoicesResponse{
		Items: lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
			return dto.NewInvoiceResponse(inv)
		}),
		Total: len(invoices),
	}, nil
}

// GetStatistics counts stored invoices, sums their totals and reports the most
// recent creation time
func (s *invoiceService) GetStatistics(ctx context.Context) (*dto.StatisticsResponse, error) {
	invoices, err := s.InvoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	amount := decimal.Zero
	var last *time.Time
	for _, inv := range invoices {
		amount = amount.Add(inv.Total)
		if last == nil || inv.CreatedAt.After(*last) {
			last = lo.ToPtr(inv.CreatedAt)
		}
	}

	return dto.NewStatisticsResponse(len(invoices), amount, last), nil
}

func (s *invoiceService) ExportArchive(ctx context.Context, w io.Writer) error {
	archive, err := s.archive()
	if err != nil {
		return err
	}
	return archive.Export(ctx, w)
}

func (s *invoiceService) ImportArchive(ctx context.Context, r io.Reader) (*dto.ImportInvoicesResponse, error) {
	archive, err := s.archive()
	if err != nil {
		return nil, err
	}
	n, err := archive.Import(ctx, r)
	if err != nil {
		return nil, err
	}
	return &dto.ImportInvoicesResponse{Imported: n}, nil
}

func (s *invoiceService) archive() (invoice.Archive, error) {
	archive, ok := s.InvoiceRepo.(invoice.Archive)
	if !ok {
		return nil, ierr.NewErrorf("store backend %s cannot export or import", s.Config.Store.Backend).
			WithHint("Export and import are only available with the offline store").
			Mark(ierr.ErrInvalidOperation)
	}
	return archive, nil
}

// create persists a draft as a new invoice and then remembers its number in the
// local counter. A duplicate number fails the create and leaves the counter as is.
// A counter that could not be saved comes back as a warning.
func (s *invoiceService) create(ctx context.Context, d invoice.Draft, templateID int) (*invoice.Invoice, []string, error) {
	inv := d.ToInvoice()
	if templateID > 0 {
		inv.TemplateID = templateID
	}
	if err := inv.Validate(); err != nil {
		return nil, nil, err
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		if ierr.IsDuplicateInvoiceNumber(err) {
			s.Logger.Infow("invoice number already in use", "invoice_number", inv.InvoiceNumber)
		}
		return nil, nil, err
	}

	var warnings []string
	if err := s.sequence.RecordUsed(ctx, inv.InvoiceNumber); err != nil {
		warnings = append(warnings, ierr.DisplayHint(err))
	}

	s.Logger.Infow("invoice created",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"total", inv.Total.StringFixed(2),
	)
	return inv, warnings, nil
}

func (s *invoiceService) update(ctx context.Context, id string, d invoice.Draft, templateID int) (*invoice.Invoice, error) {
	existing, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	inv := d.ToInvoice()
	inv.ID = existing.ID
	inv.TemplateID = lo.Ternary(templateID > 0, templateID, existing.TemplateID)
	inv.CreatedAt = existing.CreatedAt
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("invoice updated",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
	)
	return inv, nil
}
