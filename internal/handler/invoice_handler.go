package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sitecheck/internal/csvexport"
	"sitecheck/internal/domain"
	"sitecheck/internal/port"
	"sitecheck/internal/service"
	"sitecheck/internal/xlsxexport"
)

// InvoiceHandler handles invoice read, delete and export endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// List handles GET /api/v1/invoices
// @Summary List invoices
// @Description List the caller's invoices, newest first
// @Tags invoices
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Param status query string false "Filter by status (pending, verified, flagged, disputed)"
// @Success 200 {object} Response{data=[]domain.Invoice,meta=PagMeta} "List of invoices"
// @Failure 400 {object} ErrorResponseBody "Invalid status"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	filter := port.InvoiceFilter{
		Status: domain.InvoiceStatus(c.Query("status")),
		Offset: offset,
		Limit:  limit,
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), userID, filter)
	if err != nil {
		HandleError(c, err)
		return
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}

	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/invoices/:id
// @Summary Get an invoice
// @Description Get an invoice with its latest analysis and its documents with short-lived download URLs
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=service.InvoiceDetail} "Invoice detail"
// @Failure 400 {object} ErrorResponseBody "Invalid invoice ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", "invalid invoice ID")
		return
	}

	detail, err := h.invoiceService.Get(c.Request.Context(), userID, invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, detail)
}

// Delete handles DELETE /api/v1/invoices/:id
// @Summary Delete an invoice
// @Description Delete an invoice, its analysis, its document records and the stored files
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=MessageResponse} "Invoice deleted"
// @Failure 400 {object} ErrorResponseBody "Invalid invoice ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", "invalid invoice ID")
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), userID, invoiceID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, MessageResponse{Message: "invoice deleted"})
}

// Export handles GET /api/v1/invoices/export
// @Summary Export invoices
// @Description Download all of the caller's invoices with their flags as an xlsx workbook (default) or CSV
// @Tags invoices
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce text/csv
// @Param format query string false "xlsx or csv" default(xlsx)
// @Success 200 {file} file "Invoice export"
// @Failure 400 {object} ErrorResponseBody "Unknown format"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	if format != "xlsx" && format != "csv" {
		RespondError(c, http.StatusBadRequest, "invalid_format", "format must be xlsx or csv")
		return
	}

	invoices, err := h.invoiceService.ListForExport(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	contentType := xlsxexport.ContentType
	if format == "csv" {
		contentType = "text/csv; charset=utf-8"
		err = writeCSV(&buf, invoices)
	} else {
		err = xlsxexport.Write(&buf, invoices)
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+csvexport.BuildFilename("invoices", format)+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func writeCSV(buf *bytes.Buffer, invoices []domain.FlaggedInvoice) error {
	buf.Write(csvexport.BOM)
	w := csvexport.NewWriter(buf)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteInvoices(invoices); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
