package service

import (
	"github.com/gpinvoice/invoicegen/internal/api/dto"
	"github.com/gpinvoice/invoicegen/internal/testutil"
)

// newTestParams wires services to the suite's in-memory stores and pipelines
func newTestParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		stores.InvoiceRepo,
		stores.SequenceStore,
		stores.DraftCache,
		s.GetExporter(),
		s.GetSharer(),
		nil,
	)
}

func sampleInvoiceRequest(number string) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		InvoiceNumber:  number,
		PaymentDate:    "2024-01-15",
		InvoiceForName: "Acme Co",
		TransferMethod: "Bank transfer",
		Discount:       "50",
		LineItems: []dto.LineItemRequest{
			{Description: "Design", Price: "1000"},
			{Description: "Hosting", Price: "234.5"},
		},
	}
}
