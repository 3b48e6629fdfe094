package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/gpinvoice/invoicegen/internal/api/dto"
	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/repository/bolt"
	"github.com/gpinvoice/invoicegen/internal/testutil"
	"github.com/gpinvoice/invoicegen/internal/types"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service InvoiceService
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceService(newTestParams(&s.BaseServiceTestSuite))
}

func (s *InvoiceServiceSuite) TestCreateInvoice() {
	resp, err := s.service.CreateInvoice(s.GetContext(), sampleInvoiceRequest("GP-0005"))
	s.Require().NoError(err)

	s.NotEmpty(resp.ID)
	s.Equal("GP-0005", resp.InvoiceNumber)
	s.Equal(types.DefaultCurrency, resp.Currency)
	s.Equal(types.InvoiceStatusPending, resp.Status)
	s.Equal(types.DefaultTemplateID, resp.TemplateID)
	s.Equal("1234.50", resp.Subtotal)
	s.Equal("50.00", resp.Discount)
	s.Equal("1184.50", resp.Total)
	s.Equal("In Words: One Thousand One Hundred Eighty Four Only.", resp.AmountInWords)
	s.Len(resp.LineItems, 2)
	s.Equal("234.50", resp.LineItems[1].Price)

	// the local counter now remembers the saved number
	n, err := s.GetStores().SequenceStore.GetInt(s.GetContext(), s.GetConfig().Sequence.CacheKey)
	s.NoError(err)
	s.Equal(5, n)
	s.Empty(resp.Warnings)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceWarnsWhenCounterIsFull() {
	params := newTestParams(&s.BaseServiceTestSuite)
	params.SequenceStore = &testutil.QuotaStore{Value: 2}
	svc := NewInvoiceService(params)

	resp, err := svc.CreateInvoice(s.GetContext(), sampleInvoiceRequest("GP-0009"))
	s.Require().NoError(err)
	s.NotEmpty(resp.ID)
	s.Require().Len(resp.Warnings, 1)
	s.Contains(resp.Warnings[0], "storage is full")

	_, err = s.GetStores().InvoiceRepo.Get(s.GetContext(), resp.ID)
	s.NoError(err)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceDropsBlankLines() {
	req := sampleInvoiceRequest("GP-0001")
	req.LineItems = append(req.LineItems, dto.LineItemRequest{Description: "  ", Price: "abc"})

	resp, err := s.service.CreateInvoice(s.GetContext(), req)
	s.Require().NoError(err)
	s.Len(resp.LineItems, 2)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceValidation() {
	tests := []struct {
		name   string
		mutate func(*dto.CreateInvoiceRequest)
	}{
		{name: "missing number", mutate: func(r *dto.CreateInvoiceRequest) { r.InvoiceNumber = "" }},
		{name: "missing client", mutate: func(r *dto.CreateInvoiceRequest) { r.InvoiceForName = "" }},
		{name: "bad date", mutate: func(r *dto.CreateInvoiceRequest) { r.PaymentDate = "15/01/2024" }},
		{name: "unknown status", mutate: func(r *dto.CreateInvoiceRequest) { r.Status = "refunded" }},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := sampleInvoiceRequest("GP-0001")
			tt.mutate(&req)

			_, err := s.service.CreateInvoice(s.GetContext(), req)
			s.Error(err)
			s.True(ierr.IsValidation(err))
		})
	}

	list, err := s.service.ListInvoices(s.GetContext(), nil)
	s.NoError(err)
	s.Zero(list.Total)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceDuplicateNumber() {
	ctx := s.GetContext()
	_, err := s.service.CreateInvoice(ctx, sampleInvoiceRequest("GP-0003"))
	s.Require().NoError(err)

	// counter moves elsewhere, the failed create must not touch it
	s.Require().NoError(s.GetStores().SequenceStore.SetInt(ctx, s.GetConfig().Sequence.CacheKey, 9))

	_, err = s.service.CreateInvoice(ctx, sampleInvoiceRequest("GP-0003"))
	s.Error(err)
	s.True(ierr.IsDuplicateInvoiceNumber(err))
	s.Equal(409, ierr.HTTPStatusFromErr(err))

	n, err := s.GetStores().SequenceStore.GetInt(ctx, s.GetConfig().Sequence.CacheKey)
	s.NoError(err)
	s.Equal(9, n)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceStoreDown() {
	params := newTestParams(&s.BaseServiceTestSuite)
	params.InvoiceRepo = &testutil.FailingInvoiceStore{Repository: s.GetStores().InvoiceRepo, FailCreate: true}
	svc := NewInvoiceService(params)

	_, err := svc.CreateInvoice(s.GetContext(), sampleInvoiceRequest("GP-0001"))
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrDatabase))

	n, err := s.GetStores().SequenceStore.GetInt(s.GetContext(), s.GetConfig().Sequence.CacheKey)
	s.NoError(err)
	s.Zero(n)
}

func (s *InvoiceServiceSuite) TestGetUpdateDelete() {
	ctx := s.GetContext()
	created, err := s.service.CreateInvoice(ctx, sampleInvoiceRequest("GP-0001"))
	s.Require().NoError(err)

	got, err := s.service.GetInvoice(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.InvoiceNumber, got.InvoiceNumber)

	req := dto.UpdateInvoiceRequest{CreateInvoiceRequest: sampleInvoiceRequest("GP-0001")}
	req.Status = types.InvoiceStatusPaid
	req.Discount = "0"
	req.TemplateID = 3

	updated, err := s.service.UpdateInvoice(ctx, created.ID, req)
	s.Require().NoError(err)
	s.Equal(created.ID, updated.ID)
	s.Equal(types.InvoiceStatusPaid, updated.Status)
	s.Equal(3, updated.TemplateID)
	s.Equal("1234.50", updated.Total)
	s.Equal(created.CreatedAt, updated.CreatedAt)

	s.Require().NoError(s.service.DeleteInvoice(ctx, created.ID))

	_, err = s.service.GetInvoice(ctx, created.ID)
	s.True(ierr.IsNotFound(err))
	s.True(ierr.IsNotFound(s.service.DeleteInvoice(ctx, created.ID)))
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceNumberCollision() {
	ctx := s.GetContext()
	_, err := s.service.CreateInvoice(ctx, sampleInvoiceRequest("GP-0001"))
	s.Require().NoError(err)
	second, err := s.service.CreateInvoice(ctx, sampleInvoiceRequest("GP-0002"))
	s.Require().NoError(err)

	_, err = s.service.UpdateInvoice(ctx, second.ID, dto.UpdateInvoiceRequest{CreateInvoiceRequest: sampleInvoiceRequest("GP-0001")})
	s.True(ierr.IsDuplicateInvoiceNumber(err))
}

func (s *InvoiceServiceSuite) TestListInvoices() {
	ctx := s.GetContext()
	for i, name := range []string{"Acme Co", "Globex", "Acme Labs"} {
		req := sampleInvoiceRequest(invoice.FormatInvoiceNumber("GP", i+1, 4))
		req.InvoiceForName = name
		if i == 1 {
			req.Status = types.InvoiceStatusPaid
		}
		_, err := s.service.CreateInvoice(ctx, req)
		s.Require().NoError(err)
	}

	all, err := s.service.ListInvoices(ctx, &types.InvoiceFilter{})
	s.Require().NoError(err)
	s.Equal(3, all.Total)
	// newest first
	s.Equal("GP-0003", all.Items[0].InvoiceNumber)

	acme, err := s.service.ListInvoices(ctx, &types.InvoiceFilter{ClientName: "acme"})
	s.Require().NoError(err)
	s.Equal(2, acme.Total)

	paid, err := s.service.ListInvoices(ctx, &types.InvoiceFilter{Status: types.InvoiceStatusPaid})
	s.Require().NoError(err)
	s.Require().Equal(1, paid.Total)
	s.Equal("Globex", paid.Items[0].InvoiceForName)

	start := s.GetNow().Add(48 * time.Hour)
	end := s.GetNow()
	_, err = s.service.ListInvoices(ctx, &types.InvoiceFilter{StartDate: &start, EndDate: &end})
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestGetStatistics() {
	ctx := s.GetContext()

	empty, err := s.service.GetStatistics(ctx)
	s.Require().NoError(err)
	s.Zero(empty.TotalInvoices)
	s.Equal("0.00", empty.TotalAmount)
	s.Nil(empty.LastCreated)

	_, err = s.service.CreateInvoice(ctx, sampleInvoiceRequest("GP-0001"))
	s.Require().NoError(err)
	last, err := s.service.CreateInvoice(ctx, sampleInvoiceRequest("GP-0002"))
	s.Require().NoError(err)

	stats, err := s.service.GetStatistics(ctx)
	s.Require().NoError(err)
	s.Equal(2, stats.TotalInvoices)
	s.Equal("2369.00", stats.TotalAmount)
	s.Require().NotNil(stats.LastCreated)
	s.Equal(last.CreatedAt, *stats.LastCreated)
}

func (s *InvoiceServiceSuite) TestArchiveNeedsOfflineStore() {
	var buf bytes.Buffer
	err := s.service.ExportArchive(s.GetContext(), &buf)
	s.True(ierr.Is(err, ierr.ErrInvalidOperation))
}

func (s *InvoiceServiceSuite) TestArchiveRoundTrip() {
	ctx := s.GetContext()
	dir := s.T().TempDir()

	source, err := bolt.NewInvoiceRepository(dir+"/source.db", s.GetLogger())
	s.Require().NoError(err)
	defer source.Close()
	target, err := bolt.NewInvoiceRepository(dir+"/target.db", s.GetLogger())
	s.Require().NoError(err)
	defer target.Close()

	params := newTestParams(&s.BaseServiceTestSuite)
	params.InvoiceRepo = source
	from := NewInvoiceService(params)
	params.InvoiceRepo = target
	to := NewInvoiceService(params)

	_, err = from.CreateInvoice(ctx, sampleInvoiceRequest("GP-0001"))
	s.Require().NoError(err)
	_, err = from.CreateInvoice(ctx, sampleInvoiceRequest("GP-0002"))
	s.Require().NoError(err)

	var buf bytes.Buffer
	s.Require().NoError(from.ExportArchive(ctx, &buf))

	imported, err := to.ImportArchive(ctx, &buf)
	s.Require().NoError(err)
	s.Equal(2, imported.Imported)

	list, err := to.ListInvoices(ctx, nil)
	s.Require().NoError(err)
	s.Equal(2, list.Total)
}
