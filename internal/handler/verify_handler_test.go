package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sitecheck/internal/config"
	"sitecheck/internal/domain"
	"sitecheck/internal/extractor"
	"sitecheck/internal/handler"
	"sitecheck/internal/middleware"
	"sitecheck/internal/service"
	"sitecheck/internal/verify"
	"sitecheck/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	pdfBytes = []byte("%PDF-1.4\n% test document\n")
	jpgBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
)

type formFile struct {
	field, name, contentType string
	data                     []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		ct := f.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func newVerifyContext(t *testing.T, fields map[string]string, files ...formFile) (*gin.Context, *httptest.ResponseRecorder) {
	body, contentType := multipartBody(t, fields, files...)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/verify", body)
	c.Request.Header.Set("Content-Type", contentType)
	return c, w
}

func newVerifyHandler() (*handler.VerifyHandler, *mocks.MockSubmissionService) {
	svc := new(mocks.MockSubmissionService)
	return handler.NewVerifyHandler(svc, config.UploadConfig{MaxFileSizeMB: 1, MaxPhotos: 10}), svc
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *handler.APIError {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func submissionResult(userID uuid.UUID) *service.SubmissionResult {
	return &service.SubmissionResult{
		Invoice:      &domain.Invoice{ID: uuid.New(), UserID: userID, Status: domain.InvoiceStatusFlagged, AIConfidence: 77},
		Verification: &domain.VerificationResult{Status: domain.VerificationFlagged, Confidence: 77},
		Persistence:  &service.PersistOutcome{AnalysisSaved: true},
	}
}

func TestVerifyHandler_Success_AllFiles(t *testing.T) {
	h, svc := newVerifyHandler()
	userID := uuid.New()

	svc.On("Submit", mock.Anything, mock.MatchedBy(func(in service.SubmissionInput) bool {
		sub := in.Submission
		return in.UserID == userID &&
			sub.Invoice.Name == "invoice.pdf" &&
			sub.Invoice.ContentType == "application/pdf" &&
			bytes.Equal(sub.Invoice.Data, pdfBytes) &&
			sub.WorkOrder != nil && sub.WorkOrder.Name == "wo.pdf" &&
			len(sub.Photos) == 2 &&
			sub.Photos[0].ContentType == "image/jpeg" &&
			sub.Photos[1].ContentType == "image/png"
	})).Return(submissionResult(userID), nil)

	c, w := newVerifyContext(t, nil,
		formFile{field: handler.FieldInvoice, name: "invoice.pdf", data: pdfBytes},
		formFile{field: handler.FieldWorkOrder, name: "wo.pdf", data: pdfBytes},
		formFile{field: handler.FieldPhotos, name: "site1.jpg", data: jpgBytes},
		formFile{field: handler.FieldPhotos, name: "site2.png", contentType: "image/png", data: []byte("declared png")},
	)
	c.Set(middleware.ContextKeyUserID, userID)

	h.Verify(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Invoice      domain.Invoice            `json:"invoice"`
			Verification domain.VerificationResult `json:"verification"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, domain.VerificationFlagged, resp.Data.Verification.Status)
	assert.Equal(t, 77, resp.Data.Invoice.AIConfidence)
	svc.AssertExpectations(t)
}

func TestVerifyHandler_UserIDFromForm(t *testing.T) {
	h, svc := newVerifyHandler()
	userID := uuid.New()
	svc.On("Submit", mock.Anything, mock.MatchedBy(func(in service.SubmissionInput) bool {
		return in.UserID == userID && in.Submission.WorkOrder == nil && len(in.Submission.Photos) == 0
	})).Return(submissionResult(userID), nil)

	c, w := newVerifyContext(t, map[string]string{handler.FieldUserID: userID.String()},
		formFile{field: handler.FieldInvoice, name: "invoice.pdf", data: pdfBytes},
	)

	h.Verify(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestVerifyHandler_TokenSubjectWinsOverForm(t *testing.T) {
	h, svc := newVerifyHandler()
	tokenUser := uuid.New()
	svc.On("Submit", mock.Anything, mock.MatchedBy(func(in service.SubmissionInput) bool {
		return in.UserID == tokenUser
	})).Return(submissionResult(tokenUser), nil)

	c, w := newVerifyContext(t, map[string]string{handler.FieldUserID: uuid.NewString()},
		formFile{field: handler.FieldInvoice, name: "invoice.pdf", data: pdfBytes},
	)
	c.Set(middleware.ContextKeyUserID, tokenUser)

	h.Verify(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestVerifyHandler_InputErrors(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]string
		files    []formFile
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing user",
			files:    []formFile{{field: handler.FieldInvoice, name: "invoice.pdf", data: pdfBytes}},
			wantCode: http.StatusBadRequest,
			wantErr:  "missing_required_input",
		},
		{
			name:     "invalid user",
			fields:   map[string]string{handler.FieldUserID: "not-a-uuid"},
			files:    []formFile{{field: handler.FieldInvoice, name: "invoice.pdf", data: pdfBytes}},
			wantCode: http.StatusBadRequest,
			wantErr:  "missing_required_input",
		},
		{
			name:     "missing invoice",
			fields:   map[string]string{handler.FieldUserID: uuid.NewString()},
			files:    []formFile{{field: handler.FieldWorkOrder, name: "wo.pdf", data: pdfBytes}},
			wantCode: http.StatusBadRequest,
			wantErr:  "missing_required_input",
		},
		{
			name:     "file too large",
			fields:   map[string]string{handler.FieldUserID: uuid.NewString()},
			files:    []formFile{{field: handler.FieldInvoice, name: "big.pdf", data: bytes.Repeat([]byte("x"), 2<<20)}},
			wantCode: http.StatusRequestEntityTooLarge,
			wantErr:  "missing_required_input",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := newVerifyHandler()
			c, w := newVerifyContext(t, tt.fields, tt.files...)

			h.Verify(c)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, w).Code)
			svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
		})
	}
}

func TestVerifyHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"extraction failed", fmt.Errorf("verify.Verify: invoice: %w", domain.ErrExtractionFailed), http.StatusBadGateway, "extraction_failed"},
		{"persistence failed", fmt.Errorf("recorder.Persist: %w", domain.ErrPersistenceFailed), http.StatusInternalServerError, "persistence_failed"},
		{"unsupported type", domain.ErrUnsupportedFileType, http.StatusUnsupportedMediaType, "extraction_failed"},
		{"too many photos", domain.ErrTooManyPhotos, http.StatusBadRequest, "missing_required_input"},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := newVerifyHandler()
			svc.On("Submit", mock.Anything, mock.Anything).Return(nil, tt.err)

			c, w := newVerifyContext(t, map[string]string{handler.FieldUserID: uuid.NewString()},
				formFile{field: handler.FieldInvoice, name: "invoice.pdf", data: pdfBytes},
			)

			h.Verify(c)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, w).Code)
		})
	}
}

func TestVerifyHandler_RateLimited(t *testing.T) {
	h, svc := newVerifyHandler()
	rl := &extractor.RateLimitError{Provider: "all", RetryAfter: 30 * time.Second, Err: fmt.Errorf("429")}
	svc.On("Submit", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("verify.Verify: invoice: %w: %w", domain.ErrExtractionFailed, rl))

	c, w := newVerifyContext(t, map[string]string{handler.FieldUserID: uuid.NewString()},
		formFile{field: handler.FieldInvoice, name: "invoice.pdf", data: pdfBytes},
	)

	h.Verify(c)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Equal(t, "extraction_failed", decodeError(t, w).Code)
}

func TestVerifyHandler_UnsupportedWorkOrder(t *testing.T) {
	ext := new(mocks.MockDocumentExtractor)
	submissions := service.NewSubmissionService(
		verify.NewVerifier(ext, verify.NewEngine(verify.DefaultRules())),
		nil, nil, config.UploadConfig{MaxFileSizeMB: 1, MaxPhotos: 10}, nil,
	)
	h := handler.NewVerifyHandler(submissions, config.UploadConfig{MaxFileSizeMB: 1, MaxPhotos: 10})

	c, w := newVerifyContext(t, map[string]string{handler.FieldUserID: uuid.NewString()},
		formFile{field: handler.FieldInvoice, name: "invoice.pdf", contentType: "application/pdf", data: pdfBytes},
		formFile{
			field:       handler.FieldWorkOrder,
			name:        "wo.docx",
			contentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			data:        []byte("PK\x03\x04"),
		},
	)

	h.Verify(c)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, "extraction_failed", decodeError(t, w).Code)
	ext.AssertNumberOfCalls(t, "ExtractInvoice", 0)
}
