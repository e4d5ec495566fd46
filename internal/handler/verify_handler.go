package handler

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"

	"sitecheck/internal/config"
	"sitecheck/internal/domain"
	"sitecheck/internal/middleware"
	"sitecheck/internal/service"
	"sitecheck/internal/verify"
)

// Multipart form fields of a verification request.
const (
	FieldInvoice   = "invoice"
	FieldWorkOrder = "workOrder"
	FieldPhotos    = "photos"
	FieldUserID    = "userId"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temp files.
const multipartMemory = 32 << 20

// VerifyHandler handles invoice verification submissions.
type VerifyHandler struct {
	submissions  service.SubmissionService
	maxFileBytes int64
}

// NewVerifyHandler creates a new VerifyHandler.
func NewVerifyHandler(submissions service.SubmissionService, upload config.UploadConfig) *VerifyHandler {
	return &VerifyHandler{
		submissions:  submissions,
		maxFileBytes: upload.MaxFileSizeBytes(),
	}
}

// Verify handles POST /api/v1/verify
// @Summary Verify an invoice
// @Description Extract an invoice, an optional work order and optional site photos, cross-check them and store the verdict. The user is taken from the bearer token when present, otherwise from the userId field.
// @Tags verify
// @Accept multipart/form-data
// @Produce json
// @Param invoice formData file true "Invoice (PDF, JPG or PNG)"
// @Param workOrder formData file false "Work order (PDF, JPG or PNG)"
// @Param photos formData file false "Site photos (JPG or PNG, repeatable)"
// @Param userId formData string false "Submitting user ID (required without a bearer token)"
// @Success 201 {object} Response{data=VerifyResponseDoc} "Verification stored"
// @Failure 400 {object} ErrorResponseBody "Missing or invalid input"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 429 {object} ErrorResponseBody "Extraction provider rate limited"
// @Failure 500 {object} ErrorResponseBody "Persistence failed"
// @Failure 502 {object} ErrorResponseBody "Extraction failed"
// @Router /verify [post]
func (h *VerifyHandler) Verify(c *gin.Context) {
	userID, err := h.resolveUser(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	sub, err := h.readSubmission(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.submissions.Submit(c.Request.Context(), service.SubmissionInput{
		UserID:     userID,
		Submission: sub,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, result)
}

// resolveUser prefers the token subject over the userId form field.
func (h *VerifyHandler) resolveUser(c *gin.Context) (uuid.UUID, error) {
	if id, err := middleware.GetUserID(c); err == nil {
		return id, nil
	}
	raw := strings.TrimSpace(c.PostForm(FieldUserID))
	if raw == "" {
		return uuid.Nil, fmt.Errorf("verifyHandler: %s: %w", FieldUserID, domain.ErrMissingRequiredInput)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("verifyHandler: %s %q: %w", FieldUserID, raw, domain.ErrMissingRequiredInput)
	}
	return id, nil
}

func (h *VerifyHandler) readSubmission(c *gin.Context) (verify.Submission, error) {
	var sub verify.Submission

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		return sub, fmt.Errorf("verifyHandler: multipart form: %w", domain.ErrMissingRequiredInput)
	}
	form := c.Request.MultipartForm

	invoices := form.File[FieldInvoice]
	if len(invoices) == 0 {
		return sub, fmt.Errorf("verifyHandler: %s: %w", FieldInvoice, domain.ErrMissingRequiredInput)
	}
	invoice, err := h.readDocument(invoices[0])
	if err != nil {
		return sub, err
	}
	sub.Invoice = invoice

	if wos := form.File[FieldWorkOrder]; len(wos) > 0 {
		wo, err := h.readDocument(wos[0])
		if err != nil {
			return sub, err
		}
		sub.WorkOrder = &wo
	}

	for _, fh := range form.File[FieldPhotos] {
		photo, err := h.readDocument(fh)
		if err != nil {
			return sub, err
		}
		sub.Photos = append(sub.Photos, photo)
	}
	return sub, nil
}

// readDocument reads at most one byte past the size limit so oversized
// files fail validation without being buffered whole.
func (h *VerifyHandler) readDocument(fh *multipart.FileHeader) (domain.Document, error) {
	if h.maxFileBytes > 0 && fh.Size > h.maxFileBytes {
		return domain.Document{}, fmt.Errorf("verifyHandler: %q: %w", fh.Filename, domain.ErrFileTooLarge)
	}

	f, err := fh.Open()
	if err != nil {
		return domain.Document{}, fmt.Errorf("verifyHandler: open %q: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if h.maxFileBytes > 0 {
		r = io.LimitReader(f, h.maxFileBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Document{}, fmt.Errorf("verifyHandler: read %q: %w", fh.Filename, err)
	}

	contentType := detectContentType(fh.Header.Get("Content-Type"), data)
	return domain.Document{
		Name:        fh.Filename,
		ContentType: contentType,
		Data:        data,
		PageCount:   pdfPageCount(fh.Filename, data, contentType),
	}, nil
}

// detectContentType trusts a specific declared type and sniffs otherwise.
func detectContentType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	sniffed := http.DetectContentType(data)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return sniffed
}

func pdfPageCount(name string, data []byte, contentType string) int {
	if contentType != "application/pdf" {
		return 0
	}
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		zap.L().Warn("verifyHandler: failed to read PDF page count",
			zap.String("file", name),
			zap.Error(err),
		)
		return 0
	}
	return count
}
