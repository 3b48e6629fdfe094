package service

import (
	"context"
	"time"

	"github.com/gpinvoice/invoicegen/internal/api/dto"
	"github.com/gpinvoice/invoicegen/internal/cache"
	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/types"
)

// DraftService holds form sessions. Each call loads the session, applies one
// reducer and stores the returned draft; the previous value is never mutated.
type DraftService interface {
	CreateDraft(ctx context.Context, req dto.CreateDraftRequest) (*dto.DraftResponse, error)
	GetDraft(ctx context.Context, id string) (*dto.DraftResponse, error)
	UpdateFields(ctx context.Context, id string, req dto.UpdateDraftFieldsRequest) (*dto.DraftResponse, error)
	AddLineItem(ctx context.Context, id string) (*dto.DraftResponse, error)
	UpdateLineItem(ctx context.Context, id string, itemID int, req dto.UpdateLineItemRequest) (*dto.DraftResponse, error)
	RemoveLineItem(ctx context.Context, id string, itemID int) (*dto.DraftResponse, error)
	ResetDraft(ctx context.Context, id string) (*dto.DraftResponse, error)
	// SubmitDraft creates the invoice, or updates it when the session edits one.
	// A failed submit keeps the session untouched so the user can fix and retry.
	SubmitDraft(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	DeleteDraft(ctx context.Context, id string) error
}

// draftSession is the value kept in the draft cache
type draftSession struct {
	ID        string
	InvoiceID string
	Draft     invoice.Draft
	UpdatedAt time.Time
}

func (s draftSession) toResponse() *dto.DraftResponse {
	return &dto.DraftResponse{
		ID:        s.ID,
		InvoiceID: s.InvoiceID,
		Draft:     s.Draft,
		UpdatedAt: s.UpdatedAt,
	}
}

type draftService struct {
	ServiceParams
	invoices *invoiceService
	now      func() time.Time
}

func NewDraftService(params ServiceParams) DraftService {
	return &draftService{
		ServiceParams: params,
		invoices:      newInvoiceService(params),
		now:           time.Now,
	}
}

func (s *draftService) CreateDraft(ctx context.Context, req dto.CreateDraftRequest) (*dto.DraftResponse, error) {
	session := draftSession{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DRAFT),
		InvoiceID: req.InvoiceID,
	}

	if req.InvoiceID != "" {
		inv, err := s.InvoiceRepo.Get(ctx, req.InvoiceID)
		if err != nil {
			return nil, err
		}
		session.Draft = invoice.DraftFromInvoice(inv)
	} else {
		number, err := s.invoices.sequence.NextInvoiceNumber(ctx)
		if err != nil {
			return nil, err
		}
		session.Draft = invoice.NewDraft(number, s.now())
	}

	s.store(ctx, &session)
	s.Logger.Debugw("draft session started",
		"draft_id", session.ID,
		"invoice_id", session.InvoiceID,
		"invoice_number", session.Draft.InvoiceNumber,
	)
	return session.toResponse(), nil
}

func (s *draftService) GetDraft(ctx context.Context, id string) (*dto.DraftResponse, error) {
	session, err := loadDraftSession(ctx, s.DraftCache, id)
	if err != nil {
		return nil, err
	}
	return session.toResponse(), nil
}

func (s *draftService) UpdateFields(ctx context.Context, id string, req dto.UpdateDraftFieldsRequest) (*dto.DraftResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.apply(ctx, id, func(d invoice.Draft) (invoice.Draft, error) {
		var err error
		for _, field := range req.OrderedFields() {
			if d, err = invoice.UpdateField(d, field, req.Fields[field]); err != nil {
				return d, err
			}
		}
		return d, nil
	})
}

func (s *draftService) AddLineItem(ctx context.Context, id string) (*dto.DraftResponse, error) {
	return s.apply(ctx, id, func(d invoice.Draft) (invoice.Draft, error) {
		return invoice.AddLineItem(d), nil
	})
}

func (s *draftService) UpdateLineItem(ctx context.Context, id string, itemID int, req dto.UpdateLineItemRequest) (*dto.DraftResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.apply(ctx, id, func(d invoice.Draft) (invoice.Draft, error) {
		return invoice.UpdateLineItem(d, itemID, req.Field, req.Value)
	})
}

func (s *draftService) RemoveLineItem(ctx context.Context, id string, itemID int) (*dto.DraftResponse, error) {
	return s.apply(ctx, id, func(d invoice.Draft) (invoice.Draft, error) {
		return invoice.RemoveLineItem(d, itemID), nil
	})
}

// ResetDraft clears the form and allocates a fresh number. The session no
// longer edits a stored invoice afterwards.
func (s *draftService) ResetDraft(ctx context.Context, id string) (*dto.DraftResponse, error) {
	session, err := loadDraftSession(ctx, s.DraftCache, id)
	if err != nil {
		return nil, err
	}

	number, err := s.invoices.sequence.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	session.Draft = invoice.Reset(session.Draft, number, s.now())
	session.InvoiceID = ""
	s.store(ctx, session)
	return session.toResponse(), nil
}

func (s *draftService) SubmitDraft(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	session, err := loadDraftSession(ctx, s.DraftCache, id)
	if err != nil {
		return nil, err
	}

	var (
		inv      *invoice.Invoice
		warnings []string
	)
	if session.InvoiceID == "" {
		inv, warnings, err = s.invoices.create(ctx, session.Draft, 0)
	} else {
		inv, err = s.invoices.update(ctx, session.InvoiceID, session.Draft, 0)
	}
	if err != nil {
		return nil, err
	}

	// later submits of this session update the saved invoice
	session.InvoiceID = inv.ID
	s.store(ctx, session)

	return dto.NewInvoiceResponse(inv).WithWarnings(warnings...), nil
}

func (s *draftService) DeleteDraft(ctx context.Context, id string) error {
	if _, err := loadDraftSession(ctx, s.DraftCache, id); err != nil {
		return err
	}
	s.DraftCache.Delete(ctx, draftKey(id))
	return nil
}

func (s *draftService) apply(ctx context.Context, id string, reduce func(invoice.Draft) (invoice.Draft, error)) (*dto.DraftResponse, error) {
	session, err := loadDraftSession(ctx, s.DraftCache, id)
	if err != nil {
		return nil, err
	}

	next, err := reduce(session.Draft)
	if err != nil {
		return nil, err
	}

	session.Draft = next
	s.store(ctx, session)
	return session.toResponse(), nil
}

func (s *draftService) store(ctx context.Context, session *draftSession) {
	session.UpdatedAt = s.now().UTC()
	s.DraftCache.Set(ctx, draftKey(session.ID), *session, 0)
}

func loadDraftSession(ctx context.Context, c cache.Cache, id string) (*draftSession, error) {
	v, ok := c.Get(ctx, draftKey(id))
	if !ok {
		return nil, ierr.NewErrorf("draft %s not found", id).
			WithHint("Draft not found, it may have expired").
			WithReportableDetails(map[string]any{"draft_id": id}).
			Mark(ierr.ErrNotFound)
	}
	session, ok := v.(draftSession)
	if !ok {
		return nil, ierr.NewErrorf("unexpected draft cache value %T", v).Mark(ierr.ErrSystem)
	}
	return &session, nil
}

func draftKey(id string) string {
	return cache.GenerateKey(cache.PrefixDraft, id)
}
