package bolt

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceRepositorySuite struct {
	suite.Suite
	ctx  context.Context
	repo *InvoiceRepository
}

func TestInvoiceRepository(t *testing.T) {
	suite.Run(t, new(InvoiceRepositorySuite))
}

func (s *InvoiceRepositorySuite) SetupTest() {
	s.ctx = context.Background()
	repo, err := NewInvoiceRepository(filepath.Join(s.T().TempDir(), "data", "invoices.db"), logger.NewNoopLogger())
	s.Require().NoError(err)
	s.repo = repo
}

func (s *InvoiceRepositorySuite) TearDownTest() {
	s.repo.Close()
}

func newInvoice(number, client string) *invoice.Invoice {
	return &invoice.Invoice{
		Currency:       types.DefaultCurrency,
		InvoiceNumber:  number,
		PaymentDate:    "2024-01-15",
		InvoiceForName: client,
		Total:          decimal.NewFromInt(150),
		LineItems:      invoice.LineItems{{Description: "Design", Price: decimal.NewFromInt(150)}},
	}
}

func (s *InvoiceRepositorySuite) TestCreateAndGet() {
	inv := newInvoice("GP-0001", "Acme")
	s.Require().NoError(s.repo.Create(s.ctx, inv))
	s.NotEmpty(inv.ID)
	s.True(strings.HasPrefix(inv.ID, "inv_"))
	s.False(inv.CreatedAt.IsZero())

	got, err := s.repo.Get(s.ctx, inv.ID)
	s.Require().NoError(err)
	s.Equal("GP-0001", got.InvoiceNumber)
	s.Equal(types.InvoiceStatusPending, got.Status)
	s.Equal(types.DefaultTemplateID, got.TemplateID)
	s.Require().Len(got.LineItems, 1)
	s.True(got.LineItems[0].Price.Equal(decimal.NewFromInt(150)))
}

func (s *InvoiceRepositorySuite) TestCreateDuplicateNumber() {
	s.Require().NoError(s.repo.Create(s.ctx, newInvoice("GP-0001", "Acme")))

	err := s.repo.Create(s.ctx, newInvoice("GP-0001", "Other"))
	s.Require().Error(err)
	s.True(ierr.IsDuplicateInvoiceNumber(err))

	all, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *InvoiceRepositorySuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, "inv_missing")
	s.True(ierr.IsNotFound(err))
	s.True(ierr.IsNotFound(s.repo.Delete(s.ctx, "inv_missing")))
	s.True(ierr.IsNotFound(s.repo.Update(s.ctx, &invoice.Invoice{ID: "inv_missing", InvoiceNumber: "GP-0009"})))
}

func (s *InvoiceRepositorySuite) TestUpdateRenumbers() {
	a := newInvoice("GP-0001", "Acme")
	b := newInvoice("GP-0002", "Beta")
	s.Require().NoError(s.repo.Create(s.ctx, a))
	s.Require().NoError(s.repo.Create(s.ctx, b))

	b.InvoiceNumber = "GP-0001"
	s.True(ierr.IsDuplicateInvoiceNumber(s.repo.Update(s.ctx, b)))

	b.InvoiceNumber = "GP-0005"
	b.Status = types.InvoiceStatusPaid
	s.Require().NoError(s.repo.Update(s.ctx, b))

	got, err := s.repo.Get(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal("GP-0005", got.InvoiceNumber)
	s.Equal(types.InvoiceStatusPaid, got.Status)

	// the old number is free again
	s.Require().NoError(s.repo.Create(s.ctx, newInvoice("GP-0002", "Gamma")))
}

func (s *InvoiceRepositorySuite) TestDeleteFreesNumber() {
	inv := newInvoice("GP-0001", "Acme")
	s.Require().NoError(s.repo.Create(s.ctx, inv))
	s.Require().NoError(s.repo.Delete(s.ctx, inv.ID))
	s.Require().NoError(s.repo.Create(s.ctx, newInvoice("GP-0001", "Acme")))
}

func (s *InvoiceRepositorySuite) TestListNewestFirstAndSearch() {
	for _, inv := range []*invoice.Invoice{
		newInvoice("GP-0001", "Acme Co"),
		newInvoice("GP-0002", "Beta Ltd"),
		newInvoice("GP-0003", "acme labs"),
	} {
		s.Require().NoError(s.repo.Create(s.ctx, inv))
		time.Sleep(2 * time.Millisecond)
	}

	all, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("GP-0003", all[0].InvoiceNumber)
	s.Equal("GP-0001", all[2].InvoiceNumber)

	found, err := s.repo.Search(s.ctx, &types.InvoiceFilter{ClientName: "ACME"})
	s.Require().NoError(err)
	s.Len(found, 2)

	found, err = s.repo.Search(s.ctx, &types.InvoiceFilter{InvoiceNumber: "0002"})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("Beta Ltd", found[0].InvoiceForName)
}

func (s *InvoiceRepositorySuite) TestFindMaxSequenceByPrefix() {
	max, err := s.repo.FindMaxSequenceByPrefix(s.ctx, "GP")
	s.Require().NoError(err)
	s.Equal(0, max)

	for _, number := range []string{"GP-0001", "GP-0007", "gp-0003", "XX-0099"} {
		s.Require().NoError(s.repo.Create(s.ctx, newInvoice(number, "Acme")))
	}

	max, err = s.repo.FindMaxSequenceByPrefix(s.ctx, "GP")
	s.Require().NoError(err)
	s.Equal(7, max)
}

func (s *InvoiceRepositorySuite) TestExportImport() {
	s.Require().NoError(s.repo.Create(s.ctx, newInvoice("GP-0001", "Acme")))
	s.Require().NoError(s.repo.Create(s.ctx, newInvoice("GP-0002", "Beta")))

	var buf bytes.Buffer
	s.Require().NoError(s.repo.Export(s.ctx, &buf))
	s.Contains(buf.String(), `"invoice_number": "GP-0001"`)

	other, err := NewInvoiceRepository(filepath.Join(s.T().TempDir(), "other.db"), logger.NewNoopLogger())
	s.Require().NoError(err)
	defer other.Close()
	s.Require().NoError(other.Create(s.ctx, newInvoice("GP-0100", "Stale")))

	n, err := other.Import(s.ctx, bytes.NewReader(buf.Bytes()))
	s.Require().NoError(err)
	s.Equal(2, n)

	all, err := other.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)

	max, err := other.FindMaxSequenceByPrefix(s.ctx, "GP")
	s.Require().NoError(err)
	s.Equal(2, max)
}

func (s *InvoiceRepositorySuite) TestImportRejectsMalformed() {
	s.Require().NoError(s.repo.Create(s.ctx, newInvoice("GP-0001", "Acme")))

	_, err := s.repo.Import(s.ctx, strings.NewReader(`{"not":"an array"}`))
	s.True(ierr.IsValidation(err))

	_, err = s.repo.Import(s.ctx, strings.NewReader(`[{"invoice_number":"GP-1"},{"invoice_number":"GP-1"}]`))
	s.True(ierr.IsDuplicateInvoiceNumber(err))

	all, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}
