package service

import (
	"testing"

	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type SequenceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SequenceService
}

func TestSequenceService(t *testing.T) {
	suite.Run(t, new(SequenceServiceSuite))
}

func (s *SequenceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSequenceService(newTestParams(&s.BaseServiceTestSuite))
}

func (s *SequenceServiceSuite) seed(numbers ...string) {
	for _, n := range numbers {
		s.Require().NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), &invoice.Invoice{
			InvoiceNumber:  n,
			InvoiceForName: "Acme Co",
			PaymentDate:    "2024-01-15",
		}))
	}
}

func (s *SequenceServiceSuite) TestNextInvoiceNumber() {
	tests := []struct {
		name    string
		numbers []string
		local   int
		want    string
	}{
		{
			name: "empty store and counter",
			want: "GP-0001",
		},
		{
			name:    "highest remote number wins over insertion order",
			numbers: []string{"GP-0001", "GP-0007", "GP-0003"},
			want:    "GP-0008",
		},
		{
			name:    "other prefixes are ignored",
			numbers: []string{"XX-0042", "GP-0002", "GPX-0090"},
			want:    "GP-0003",
		},
		{
			name:  "local counter when nothing matches remotely",
			local: 12,
			want:  "GP-0013",
		},
		{
			name:    "remote result beats local counter",
			numbers: []string{"GP-0004"},
			local:   12,
			want:    "GP-0005",
		},
		{
			name:    "width grows past padding",
			numbers: []string{"GP-9999"},
			want:    "GP-10000",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			s.seed(tt.numbers...)
			if tt.local > 0 {
				s.Require().NoError(s.GetStores().SequenceStore.SetInt(s.GetContext(), s.GetConfig().Sequence.CacheKey, tt.local))
			}

			got, err := s.service.NextInvoiceNumber(s.GetContext())
			s.NoError(err)
			s.Equal(tt.want, got)
		})
	}
}

func (s *SequenceServiceSuite) TestNextInvoiceNumberRemoteFailure() {
	s.seed("GP-0020")
	s.Require().NoError(s.GetStores().SequenceStore.SetInt(s.GetContext(), s.GetConfig().Sequence.CacheKey, 6))

	params := newTestParams(&s.BaseServiceTestSuite)
	params.InvoiceRepo = &testutil.FailingInvoiceStore{Repository: s.GetStores().InvoiceRepo, FailSequence: true}
	svc := NewSequenceService(params)

	got, err := svc.NextInvoiceNumber(s.GetContext())
	s.NoError(err)
	s.Equal("GP-0007", got)
}

func (s *SequenceServiceSuite) TestRecordUsed() {
	ctx := s.GetContext()
	key := s.GetConfig().Sequence.CacheKey

	s.NoError(s.service.RecordUsed(ctx, "GP-0042"))
	n, err := s.GetStores().SequenceStore.GetInt(ctx, key)
	s.NoError(err)
	s.Equal(42, n)

	// numbers with another prefix leave the counter alone
	s.NoError(s.service.RecordUsed(ctx, "XX-0100"))
	n, err = s.GetStores().SequenceStore.GetInt(ctx, key)
	s.NoError(err)
	s.Equal(42, n)

	got, err := s.service.NextInvoiceNumber(ctx)
	s.NoError(err)
	s.Equal("GP-0043", got)
}

func (s *SequenceServiceSuite) TestRecordUsedQuotaExceeded() {
	params := newTestParams(&s.BaseServiceTestSuite)
	params.SequenceStore = &testutil.QuotaStore{Value: 3}
	svc := NewSequenceService(params)

	err := svc.RecordUsed(s.GetContext(), "GP-0010")
	s.Require().Error(err)
	s.True(ierr.IsQuotaExceeded(err))
	s.Contains(ierr.DisplayHint(err), "storage is full")

	got, err := svc.NextInvoiceNumber(s.GetContext())
	s.NoError(err)
	s.Equal("GP-0004", got)
}
