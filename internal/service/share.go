package service

import (
	"context"

	"github.com/gpinvoice/invoicegen/internal/api/dto"
	"github.com/gpinvoice/invoicegen/internal/share"
)

// ShareService runs the share flow for stored invoices and drafts. Choosing a
// menu entry is a second request; the PDF is generated again for it when the
// channel needs the file.
type ShareService interface {
	Share(ctx context.Context, subject Subject) (*share.Result, error)
	Execute(ctx context.Context, subject Subject, req dto.ExecuteShareRequest) (*share.ChannelResult, error)
}

type shareService struct {
	ServiceParams
}

func NewShareService(params ServiceParams) ShareService {
	return &shareService{ServiceParams: params}
}

func (s *shareService) Share(ctx context.Context, subject Subject) (*share.Result, error) {
	r, err := resolveSubject(ctx, s.InvoiceRepo, s.DraftCache, subject)
	if err != nil {
		return nil, err
	}
	return s.Sharer.SharePDF(ctx, r.view, r.summary)
}

func (s *shareService) Execute(ctx context.Context, subject Subject, req dto.ExecuteShareRequest) (*share.ChannelResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r, err := resolveSubject(ctx, s.InvoiceRepo, s.DraftCache, subject)
	if err != nil {
		return nil, err
	}

	channel := share.Channel{Kind: req.Channel, Summary: r.summary}
	if req.Channel.NeedsFile() {
		file, err := s.Exporter.GeneratePDFBlob(ctx, r.view, r.meta())
		if err != nil {
			return nil, err
		}
		channel.File = file
	}

	return s.Sharer.Execute(ctx, channel)
}
