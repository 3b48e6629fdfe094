package service

import (
	"context"

	"github.com/gpinvoice/invoicegen/internal/api/dto"
	"github.com/gpinvoice/invoicegen/internal/export"
)

const formatPDF = "pdf"

// ExportService renders stored invoices and drafts. Export saves the file with
// the configured saver, Render only returns the bytes.
type ExportService interface {
	Export(ctx context.Context, subject Subject, req dto.ExportRequest) (*export.Result, error)
	Render(ctx context.Context, subject Subject, req dto.ExportRequest) (*export.File, error)
}

type exportService struct {
	ServiceParams
}

func NewExportService(params ServiceParams) ExportService {
	return &exportService{ServiceParams: params}
}

func (s *exportService) Export(ctx context.Context, subject Subject, req dto.ExportRequest) (*export.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r, err := resolveSubject(ctx, s.InvoiceRepo, s.DraftCache, subject)
	if err != nil {
		return nil, err
	}

	format := formatOf(req)
	span, ctx := s.Sentry.StartExportSpan(ctx, "export."+format, map[string]interface{}{
		"subject":        string(subject.Kind),
		"invoice_number": r.summary.InvoiceNumber,
	})
	if span != nil {
		defer span.Finish()
	}

	var result *export.Result
	if format == formatPDF {
		result, err = s.Exporter.ExportPDF(ctx, r.view, r.meta())
	} else {
		result, err = s.Exporter.ExportImage(ctx, r.view, r.meta(), export.ImageFormat(format))
	}
	if err != nil {
		s.Logger.Errorw("export failed",
			"subject", subject.Kind,
			"id", subject.ID,
			"format", format,
			"error", err,
		)
		return nil, err
	}
	return result, nil
}

func (s *exportService) Render(ctx context.Context, subject Subject, req dto.ExportRequest) (*export.File, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r, err := resolveSubject(ctx, s.InvoiceRepo, s.DraftCache, subject)
	if err != nil {
		return nil, err
	}

	format := formatOf(req)
	span, ctx := s.Sentry.StartExportSpan(ctx, "render."+format, map[string]interface{}{
		"subject":        string(subject.Kind),
		"invoice_number": r.summary.InvoiceNumber,
	})
	if span != nil {
		defer span.Finish()
	}

	if format == formatPDF {
		return s.Exporter.GeneratePDFBlob(ctx, r.view, r.meta())
	}
	return s.Exporter.GenerateImageBlob(ctx, r.view, r.meta(), export.ImageFormat(format))
}

func formatOf(req dto.ExportRequest) string {
	if req.Format == "" {
		return formatPDF
	}
	return req.Format
}
