package service

import (
	"context"
	"fmt"

	"github.com/gpinvoice/invoicegen/internal/cache"
	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	"github.com/gpinvoice/invoicegen/internal/export"
	"github.com/gpinvoice/invoicegen/internal/render"
	"github.com/gpinvoice/invoicegen/internal/share"
	"github.com/gpinvoice/invoicegen/internal/types"
)

// Subject is what gets exported or shared: a stored invoice or a draft session
type Subject struct {
	Kind types.SubjectKind
	ID   string
}

func InvoiceSubject(id string) Subject {
	return Subject{Kind: types.SubjectInvoice, ID: id}
}

func DraftSubject(id string) Subject {
	return Subject{Kind: types.SubjectDraft, ID: id}
}

// DownloadPath is the API path streaming the subject's PDF
func (s Subject) DownloadPath() string {
	return fmt.Sprintf("/v1/%ss/%s/pdf", s.Kind, s.ID)
}

// resolved is a subject loaded and rendered into its printable view
type resolved struct {
	view    *render.View
	summary share.Summary
}

func (r *resolved) meta() export.Meta {
	return r.summary.Meta()
}

func resolveSubject(ctx context.Context, repo invoice.Repository, drafts cache.Cache, subject Subject) (*resolved, error) {
	var view *render.View
	switch subject.Kind {
	case types.SubjectDraft:
		session, err := loadDraftSession(ctx, drafts, subject.ID)
		if err != nil {
			return nil, err
		}
		view = render.ViewFromDraft(session.Draft)
	default:
		inv, err := repo.Get(ctx, subject.ID)
		if err != nil {
			return nil, err
		}
		view = render.ViewFromInvoice(inv)
	}

	return &resolved{
		view:    view,
		summary: share.SummaryFromView(view, subject.DownloadPath()),
	}, nil
}
