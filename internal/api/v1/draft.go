package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gpinvoice/invoicegen/internal/api/dto"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/service"
)

// DraftHandler serves form sessions. Every mutating route answers with the whole
// draft, totals and amount in words included.
type DraftHandler struct {
	subjectHandler
	draftService service.DraftService
}

func NewDraftHandler(
	draftService service.DraftService,
	exportService service.ExportService,
	shareService service.ShareService,
	logger *logger.Logger,
) *DraftHandler {
	return &DraftHandler{
		subjectHandler: subjectHandler{
			exportService: exportService,
			shareService:  shareService,
			logger:        logger,
			subject:       service.DraftSubject,
		},
		draftService: draftService,
	}
}

// CreateDraft godoc
// @Summary Start a form session, blank or editing a stored invoice
// @Tags Drafts
// @Accept json
// @Produce json
// @Param draft body dto.CreateDraftRequest false "Invoice to edit"
// @Success 201 {object} dto.DraftResponse
// @Router /drafts [post]
func (h *DraftHandler) CreateDraft(c *gin.Context) {
	var req dto.CreateDraftRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).WithHint("Invalid request format").Mark(ierr.ErrValidation))
			return
		}
	}

	resp, err := h.draftService.CreateDraft(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetDraft godoc
// @Summary Get a form session
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} dto.DraftResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /drafts/{id} [get]
func (h *DraftHandler) GetDraft(c *gin.Context) {
	resp, err := h.draftService.GetDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateFields godoc
// @Summary Set top level draft fields
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param fields body dto.UpdateDraftFieldsRequest true "Fields"
// @Success 200 {object} dto.DraftResponse
// @Router /drafts/{id} [patch]
func (h *DraftHandler) UpdateFields(c *gin.Context) {
	var req dto.UpdateDraftFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("Invalid request format").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.draftService.UpdateFields(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddLineItem godoc
// @Summary Append an empty line item
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} dto.DraftResponse
// @Router /drafts/{id}/line-items [post]
func (h *DraftHandler) AddLineItem(c *gin.Context) {
	resp, err := h.draftService.AddLineItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateLineItem godoc
// @Summary Edit the description or price of a line item
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param item_id path int true "Line item ID"
// @Param line_item body dto.UpdateLineItemRequest true "Field and value"
// @Success 200 {object} dto.DraftResponse
// @Router /drafts/{id}/line-items/{item_id} [patch]
func (h *DraftHandler) UpdateLineItem(c *gin.Context) {
	itemID, err := intParam(c, "item_id")
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.UpdateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("Invalid request format").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.draftService.UpdateLineItem(c.Request.Context(), c.Param("id"), itemID, req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveLineItem godoc
// @Summary Remove a line item; the last one is cleared instead
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Param item_id path int true "Line item ID"
// @Success 200 {object} dto.DraftResponse
// @Router /drafts/{id}/line-items/{item_id} [delete]
func (h *DraftHandler) RemoveLineItem(c *gin.Context) {
	itemID, err := intParam(c, "item_id")
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.draftService.RemoveLineItem(c.Request.Context(), c.Param("id"), itemID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResetDraft godoc
// @Summary Clear the form and allocate a fresh invoice number
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} dto.DraftResponse
// @Router /drafts/{id}/reset [post]
func (h *DraftHandler) ResetDraft(c *gin.Context) {
	resp, err := h.draftService.ResetDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitDraft godoc
// @Summary Save the draft as an invoice
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /drafts/{id}/submit [post]
func (h *DraftHandler) SubmitDraft(c *gin.Context) {
	resp, err := h.draftService.SubmitDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteDraft godoc
// @Summary Discard a form session
// @Tags Drafts
// @Param id path string true "Draft ID"
// @Success 200 {object} dto.SuccessResponse
// @Router /drafts/{id} [delete]
func (h *DraftHandler) DeleteDraft(c *gin.Context) {
	if err := h.draftService.DeleteDraft(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "draft discarded"})
}
