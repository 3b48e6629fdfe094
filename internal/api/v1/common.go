package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gpinvoice/invoicegen/internal/api/dto"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/export"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/service"
)

// subjectHandler serves the export and share routes shared by invoices and drafts
type subjectHandler struct {
	exportService service.ExportService
	shareService  service.ShareService
	logger        *logger.Logger
	subject       func(id string) service.Subject
}

// RenderPDF streams the pdf as an attachment
func (h *subjectHandler) RenderPDF(c *gin.Context) {
	h.render(c, dto.ExportRequest{Format: "pdf"})
}

// RenderImage streams a png, or a jpeg with ?format=jpeg
func (h *subjectHandler) RenderImage(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("Invalid export format").Mark(ierr.ErrValidation))
		return
	}
	if req.Format == "" {
		req.Format = string(export.ImageFormatPNG)
	}
	h.render(c, req)
}

func (h *subjectHandler) render(c *gin.Context, req dto.ExportRequest) {
	file, err := h.exportService.Render(c.Request.Context(), h.subject(c.Param("id")), req)
	if err != nil {
		c.Error(err)
		return
	}
	writeFile(c, file)
}

// Export saves the pdf or image with the configured saver and reports where
func (h *subjectHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("Invalid request format").Mark(ierr.ErrValidation))
		return
	}

	result, err := h.exportService.Export(c.Request.Context(), h.subject(c.Param("id")), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Share shares the pdf natively or returns the channel menu
func (h *subjectHandler) Share(c *gin.Context) {
	result, err := h.shareService.Share(c.Request.Context(), h.subject(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExecuteShare runs the menu channel the user picked
func (h *subjectHandler) ExecuteShare(c *gin.Context) {
	var req dto.ExecuteShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("Invalid request format").Mark(ierr.ErrValidation))
		return
	}

	result, err := h.shareService.Execute(c.Request.Context(), h.subject(c.Param("id")), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func writeFile(c *gin.Context, file *export.File) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.MIMEType, file.Data)
}

func intParam(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, ierr.WithError(err).
			WithHintf("%s must be a number", name).
			Mark(ierr.ErrValidation)
	}
	return v, nil
}
