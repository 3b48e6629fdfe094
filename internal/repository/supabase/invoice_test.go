package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gpinvoice/invoicegen/internal/config"
	"github.com/gpinvoice/invoicegen/internal/domain/invoice"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/types"
	postgrest "github.com/nedpals/supabase-go/postgrest/pkg"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPayloadNullsBlankFields(t *testing.T) {
	inv := &invoice.Invoice{
		InvoiceNumber:  "GP-0001",
		PaymentDate:    "2024-01-15",
		InvoiceForName: "Acme",
		Notes:          "thanks",
		Total:          decimal.NewFromInt(100),
	}
	inv.ApplyDefaults()

	raw, err := json.Marshal(toPayload(inv, nil))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.Nil(t, body["invoice_for_company"])
	assert.Nil(t, body["transaction_id"])
	assert.Equal(t, "thanks", body["notes"])
	assert.Equal(t, "Pending", body["status"])
	assert.Equal(t, float64(1), body["template_id"])
	assert.Equal(t, []any{}, body["line_items"])
	assert.NotContains(t, body, "id")
	assert.NotContains(t, body, "updated_at")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&postgrest.RequestError{Code: "23505", Message: "duplicate key value"}))
	assert.True(t, isUniqueViolation(ierr.WithError(&postgrest.RequestError{Code: "23505"}).Mark(ierr.ErrDatabase)))
	assert.False(t, isUniqueViolation(&postgrest.RequestError{Code: "42P01"}))
	assert.False(t, isUniqueViolation(errors.New("23505: duplicate key value")))
}

// restStub answers PostgREST calls with a fixed status and body and records the last request
type restStub struct {
	status int
	body   string
	path   string
	method string
	query  url.Values
}

func (s *restStub) start(t *testing.T) *invoiceRepository {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.path = r.URL.Path
		s.method = r.Method
		s.query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		_, _ = w.Write([]byte(s.body))
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Configuration{Supabase: config.SupabaseConfig{
		BaseURL:    srv.URL,
		ServiceKey: "service-key",
		Table:      "invoices",
	}}
	return NewInvoiceRepository(cfg, logger.NewNoopLogger()).(*invoiceRepository)
}

func TestSearchSendsFilters(t *testing.T) {
	stub := &restStub{status: http.StatusOK, body: `[
		{"id":"a","invoice_number":"GP-0001","invoice_for_name":"Acme","created_at":"2024-01-02T00:00:00Z"},
		{"id":"b","invoice_number":"GP-0002","invoice_for_name":"Acme","created_at":"2024-01-20T00:00:00Z"}
	]`}
	repo := stub.start(t)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	invoices, err := repo.Search(context.Background(), &types.InvoiceFilter{
		InvoiceNumber: "GP",
		ClientName:    "acme",
		Status:        types.InvoiceStatusPaid,
		StartDate:     &start,
		EndDate:       &end,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, stub.method)
	assert.Equal(t, "/rest/v1/invoices", stub.path)
	assert.Equal(t, "*", stub.query.Get("select"))
	assert.Equal(t, "ilike.*GP*", stub.query.Get("invoice_number"))
	assert.Equal(t, "ilike.*acme*", stub.query.Get("invoice_for_name"))
	assert.Equal(t, "eq.Paid", stub.query.Get("status"))
	assert.ElementsMatch(t, []string{
		`gte."2024-01-01T00:00:00Z"`,
		`lte."2024-01-31T00:00:00Z"`,
	}, stub.query["created_at"])

	require.Len(t, invoices, 2)
	assert.Equal(t, "b", invoices[0].ID)
	assert.Equal(t, "a", invoices[1].ID)
}

func TestSearchWithoutFilterSelectsEverything(t *testing.T) {
	stub := &restStub{status: http.StatusOK, body: `[]`}
	repo := stub.start(t)

	invoices, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, invoices)
	assert.Equal(t, url.Values{"select": {"*"}}, stub.query)
}

func TestFindMaxSequenceByPrefix(t *testing.T) {
	stub := &restStub{status: http.StatusOK, body: `[
		{"invoice_number":"GP-0003"},{"invoice_number":"GP-0011"},{"invoice_number":"GP-draft"}
	]`}
	repo := stub.start(t)

	seq, err := repo.FindMaxSequenceByPrefix(context.Background(), "GP")
	require.NoError(t, err)
	assert.Equal(t, 11, seq)
	assert.Equal(t, "invoice_number", stub.query.Get("select"))
	assert.Equal(t, "ilike.GP-*", stub.query.Get("invoice_number"))
}

func TestCreateDuplicateNumber(t *testing.T) {
	stub := &restStub{status: http.StatusConflict, body: `{"code":"23505","message":"duplicate key value violates unique constraint"}`}
	repo := stub.start(t)

	err := repo.Create(context.Background(), &invoice.Invoice{InvoiceNumber: "GP-0001", InvoiceForName: "Acme"})
	require.Error(t, err)
	assert.Equal(t, http.MethodPost, stub.method)
	assert.True(t, ierr.IsDuplicateInvoiceNumber(err))
}

func TestGetMissingInvoice(t *testing.T) {
	stub := &restStub{status: http.StatusOK, body: `[]`}
	repo := stub.start(t)

	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
	assert.Equal(t, "eq.missing", stub.query.Get("id"))
}

func TestRequestsUseCallerContext(t *testing.T) {
	stub := &restStub{status: http.StatusOK, body: `[]`}
	repo := stub.start(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Search(ctx, nil)
	require.Error(t, err)
	assert.True(t, ierr.IsDatabase(err))
	assert.True(t, ierr.Is(err, context.Canceled))
	assert.Nil(t, stub.query)
}
