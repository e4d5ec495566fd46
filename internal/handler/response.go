package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sitecheck/internal/domain"
	"sitecheck/internal/extractor"
	"sitecheck/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Submission failures always carry one of missing_required_input,
// extraction_failed or persistence_failed; the status and message keep the detail.
func MapDomainError(err error) (status int, code, msg string) {
	var rlErr *extractor.RateLimitError
	switch {
	case errors.As(err, &rlErr):
		return http.StatusTooManyRequests, "extraction_failed", "extraction provider is rate limited; retry later"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType, "extraction_failed", "unsupported file type; invoices and work orders: pdf, jpg, png; photos: jpg, png"
	case errors.Is(err, domain.ErrTooManyPhotos):
		return http.StatusBadRequest, "missing_required_input", "too many photos in one submission"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "missing_required_input", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrMissingRequiredInput):
		return http.StatusBadRequest, "missing_required_input", "an invoice file and a user id are required"
	case errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusBadGateway, "extraction_failed", "documents could not be read"
	case errors.Is(err, domain.ErrPersistenceFailed):
		return http.StatusInternalServerError, "persistence_failed", "verification succeeded but could not be saved"
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound, "invoice_not_found", "invoice not found"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found", "resource not found"
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, "invalid_status", "invalid status; allowed: pending, verified, flagged, disputed"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden", "forbidden"
	default:
		return http.StatusInternalServerError, "internal_error", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)

	var rlErr *extractor.RateLimitError
	if errors.As(err, &rlErr) {
		c.Header("Retry-After", strconv.Itoa(int(rlErr.RetryAfter.Seconds())))
	}

	requestID := c.GetString(middleware.ContextKeyRequestID)
	if status >= 500 {
		zap.L().Error("handler: request failed",
			zap.String("request_id", requestID),
			zap.String("code", code),
			zap.Error(err),
		)
	} else {
		zap.L().Debug("handler: request rejected",
			zap.String("request_id", requestID),
			zap.String("code", code),
			zap.Error(err),
		)
	}
	RespondError(c, status, code, msg)
}

// requireUser extracts the user ID from the request context.
// Returns false if auth context is missing (error response already written).
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	id, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", "missing user context")
		return id, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
