package invoice

import (
	"testing"
	"time"

	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var draftNow = time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

func TestNewDraft(t *testing.T) {
	d := NewDraft("GP-0001", draftNow)

	assert.Equal(t, "GP-0001", d.InvoiceNumber)
	assert.Equal(t, "2024-01-15", d.PaymentDate)
	assert.Equal(t, types.DefaultCurrency, d.Currency)
	assert.Equal(t, types.InvoiceStatusPending, d.Status)
	assert.Equal(t, types.DefaultNotes, d.Notes)
	require.Len(t, d.LineItems, 1)
	assert.Equal(t, 1, d.LineItems[0].ID)
	assert.True(t, d.Totals.Total.IsZero())
}

func TestAddLineItemUsesNextID(t *testing.T) {
	d := NewDraft("GP-0001", draftNow)
	d = AddLineItem(d)
	d = AddLineItem(d)
	d = RemoveLineItem(d, 2)
	d = AddLineItem(d)

	ids := []int{}
	for _, item := range d.LineItems {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []int{1, 3, 4}, ids)
}

func TestRemoveSoleLineItemClearsIt(t *testing.T) {
	d := NewDraft("GP-0001", draftNow)
	d, err := UpdateLineItem(d, 1, LineItemDescription, "Design work")
	require.NoError(t, err)
	d, err = UpdateLineItem(d, 1, LineItemPrice, "500")
	require.NoError(t, err)

	d = RemoveLineItem(d, 1)

	require.Len(t, d.LineItems, 1)
	assert.Equal(t, DraftLineItem{ID: 1}, d.LineItems[0])
	assert.True(t, d.Totals.Total.IsZero())
}

func TestReducersDoNotMutateInput(t *testing.T) {
	d := NewDraft("GP-0001", draftNow)
	before := d.LineItems[0]

	_, err := UpdateLineItem(d, 1, LineItemPrice, "99")
	require.NoError(t, err)
	_ = AddLineItem(d)

	assert.Equal(t, before, d.LineItems[0])
	assert.Len(t, d.LineItems, 1)
}

func TestAmountInWordsFollowsTotal(t *testing.T) {
	d := NewDraft("GP-0001", draftNow)

	d, err := UpdateLineItem(d, 1, LineItemPrice, "1500.75")
	require.NoError(t, err)
	assert.Equal(t, "In Words: One Thousand Five Hundred Only.", d.AmountInWords)

	// a manual edit survives until the total moves again
	d, err = UpdateField(d, FieldAmountInWords, "custom text")
	require.NoError(t, err)
	d, err = UpdateField(d, FieldNotes, "thanks")
	require.NoError(t, err)
	assert.Equal(t, "custom text", d.AmountInWords)

	d, err = UpdateField(d, FieldDiscount, "500")
	require.NoError(t, err)
	assert.Equal(t, "1000.75", d.Totals.Total.StringFixed(2))
	assert.Equal(t, "In Words: One Thousand Only.", d.AmountInWords)
}

func TestZeroTotalKeepsPreviousWords(t *testing.T) {
	d := NewDraft("GP-0001", draftNow)
	d, err := UpdateLineItem(d, 1, LineItemPrice, "100")
	require.NoError(t, err)

	d, err = UpdateField(d, FieldDiscount, "1000")
	require.NoError(t, err)

	assert.True(t, d.Totals.Total.IsZero())
	assert.Equal(t, "In Words: One Hundred Only.", d.AmountInWords)
}

func TestUpdateFieldErrors(t *testing.T) {
	d := NewDraft("GP-0001", draftNow)

	_, err := UpdateField(d, DraftField("bogus"), "x")
	assert.True(t, ierr.IsValidation(err))

	_, err = UpdateField(d, FieldStatus, "Lost")
	assert.True(t, ierr.IsValidation(err))

	_, err = UpdateLineItem(d, 42, LineItemPrice, "1")
	assert.True(t, ierr.IsNotFound(err))
}

func TestToInvoiceDropsBlankLines(t *testing.T) {
	d := NewDraft("GP-0009", draftNow)
	d, _ = UpdateField(d, FieldInvoiceForName, "Acme Co.")
	d, _ = UpdateLineItem(d, 1, LineItemDescription, "Hosting")
	d, _ = UpdateLineItem(d, 1, LineItemPrice, "1200")
	d = AddLineItem(d)
	d = AddLineItem(d)
	d, _ = UpdateLineItem(d, 3, LineItemPrice, "300")

	inv := d.ToInvoice()

	require.Len(t, inv.LineItems, 2)
	assert.Equal(t, "Hosting", inv.LineItems[0].Description)
	assert.Equal(t, "300.00", inv.LineItems[1].Price.StringFixed(2))
	assert.Equal(t, "1500.00", inv.Total.StringFixed(2))
	assert.Equal(t, types.DefaultTemplateID, inv.TemplateID)
	assert.NoError(t, inv.Validate())
}

func TestDraftFromInvoiceRoundTrip(t *testing.T) {
	d := NewDraft("GP-0002", draftNow)
	d, _ = UpdateField(d, FieldInvoiceForName, "Jane")
	d, _ = UpdateLineItem(d, 1, LineItemDescription, "Consulting")
	d, _ = UpdateLineItem(d, 1, LineItemPrice, "250")

	loaded := DraftFromInvoice(d.ToInvoice())

	assert.Equal(t, "Jane", loaded.InvoiceForName)
	require.Len(t, loaded.LineItems, 1)
	assert.Equal(t, "Consulting", loaded.LineItems[0].Description)
	assert.Equal(t, "250.00", loaded.Totals.Total.StringFixed(2))
	assert.Equal(t, d.AmountInWords, loaded.AmountInWords)
}
