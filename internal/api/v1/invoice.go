package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gpinvoice/invoicegen/internal/api/dto"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/service"
	"github.com/gpinvoice/invoicegen/internal/types"
)

type InvoiceHandler struct {
	subjectHandler
	invoiceService  service.InvoiceService
	sequenceService service.SequenceService
}

func NewInvoiceHandler(
	invoiceService service.InvoiceService,
	sequenceService service.SequenceService,
	exportService service.ExportService,
	shareService service.ShareService,
	logger *logger.Logger,
) *InvoiceHandler {
	return &InvoiceHandler{
		subjectHandler: subjectHandler{
			exportService: exportService,
			shareService:  shareService,
			logger:        logger,
			subject:       service.InvoiceSubject,
		},
		invoiceService:  invoiceService,
		sequenceService: sequenceService,
	}
}

// CreateInvoice godoc
// @Summary Create a new invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Param invoice body dto.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("Invalid request format").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetInvoice godoc
// @Summary Get an invoice by ID
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	resp, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListInvoices godoc
// @Summary List invoices, newest first
// @Tags Invoices
// @Produce json
// @Param filter query types.InvoiceFilter false "Filter"
// @Success 200 {object} dto.ListInvoicesResponse
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var filter types.InvoiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).WithHint("Invalid filter parameters").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.ListInvoices(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateInvoice godoc
// @Summary Replace the fields of an invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param invoice body dto.UpdateInvoiceRequest true "Invoice details"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var req dto.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("Invalid request format").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.UpdateInvoice(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteInvoice godoc
// @Summary Delete an invoice
// @Tags Invoices
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "invoice deleted successfully"})
}

// GetStatistics godoc
// @Summary Invoice count, total amount and last creation time
// @Tags Invoices
// @Produce json
// @Success 200 {object} dto.StatisticsResponse
// @Router /invoices/statistics [get]
func (h *InvoiceHandler) GetStatistics(c *gin.Context) {
	resp, err := h.invoiceService.GetStatistics(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// NextInvoiceNumber godoc
// @Summary Preview the next invoice number without reserving it
// @Tags Invoices
// @Produce json
// @Success 200 {object} dto.NextInvoiceNumberResponse
// @Router /invoices/next-number [get]
func (h *InvoiceHandler) NextInvoiceNumber(c *gin.Context) {
	number, err := h.sequenceService.NextInvoiceNumber(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NextInvoiceNumberResponse{InvoiceNumber: number})
}

// ExportArchive godoc
// @Summary Download every stored invoice as JSON
// @Tags Invoices
// @Produce json
// @Success 200 {array} invoice.Invoice
// @Failure 400 {object} ierr.ErrorResponse
// @Router /invoices/archive [get]
func (h *InvoiceHandler) ExportArchive(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="invoices.json"`)
	c.Header("Content-Type", "application/json")
	if err := h.invoiceService.ExportArchive(c.Request.Context(), c.Writer); err != nil {
		c.Header("Content-Disposition", "")
		c.Error(err)
	}
}

// ImportArchive godoc
// @Summary Replace every stored invoice with the uploaded JSON array
// @Tags Invoices
// @Accept json
// @Produce json
// @Success 200 {object} dto.ImportInvoicesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /invoices/archive [post]
func (h *InvoiceHandler) ImportArchive(c *gin.Context) {
	resp, err := h.invoiceService.ImportArchive(c.Request.Context(), c.Request.Body)
	if err != nil {
		c.Error(err)
		return
	}
	h.logger.Infow("invoice archive imported", "count", resp.Imported)
	c.JSON(http.StatusOK, resp)
}
