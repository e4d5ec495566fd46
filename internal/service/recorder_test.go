package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sitecheck/internal/domain"
	"sitecheck/internal/port"
	"sitecheck/internal/service"
	"sitecheck/internal/verify"
	"sitecheck/mocks"
)

const testBucket = "sitecheck-test"

var fixedNow = time.UnixMilli(1700000000000)

type recorderMocks struct {
	invoices  *mocks.MockInvoiceRepo
	analyses  *mocks.MockAnalysisRepo
	documents *mocks.MockDocumentRepo
	storage   *mocks.MockObjectStorage
}

func newRecorder() (*service.Recorder, *recorderMocks) {
	m := &recorderMocks{
		invoices:  new(mocks.MockInvoiceRepo),
		analyses:  new(mocks.MockAnalysisRepo),
		documents: new(mocks.MockDocumentRepo),
		storage:   new(mocks.MockObjectStorage),
	}
	r := service.NewRecorder(m.invoices, m.analyses, m.documents, m.storage, testBucket, nil)
	r.SetClock(func() time.Time { return fixedNow })
	return r, m
}

// expectInvoiceCreate assigns id the way the repository does.
func (m *recorderMocks) expectInvoiceCreate(id uuid.UUID) {
	m.invoices.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Invoice).ID = id
		}).
		Return(nil)
}

func uploadKey(key string) interface{} {
	return mock.MatchedBy(func(in port.UploadInput) bool { return in.Key == key })
}

func sampleSubmission() verify.Submission {
	wo := domain.Document{Name: "wo.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4 wo"), PageCount: 2}
	return verify.Submission{
		Invoice:   domain.Document{Name: "inv.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4 inv"), PageCount: 1},
		WorkOrder: &wo,
		Photos: []domain.Document{
			{Name: "a.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8, 0x01}},
			{Name: "b.png", ContentType: "image/png", Data: []byte{0x89, 0x50, 0x02}},
		},
	}
}

func sampleResult() *domain.VerificationResult {
	return &domain.VerificationResult{
		Status:          domain.VerificationFlagged,
		Confidence:      77,
		Flags:           []domain.Flag{domain.FlagCrewHourDiscrepancy},
		Recommendations: []string{verify.RecommendClarifyHourlyBilling},
	}
}

func sampleInvoiceData() *domain.InvoiceData {
	return &domain.InvoiceData{
		InvoiceNumber: "INV-100",
		Contractor:    "Acme Builders",
		Date:          "2024-03-01",
		DueDate:       "2024-03-31",
		LineItems: []domain.LineItem{
			{Description: "Labor hours", Quantity: domain.FloatPtr(40), UnitPrice: domain.FloatPtr(50)},
		},
		Total: domain.FloatPtr(2000),
	}
}

func TestStorageKey(t *testing.T) {
	userID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	tests := []struct {
		kind        domain.DocumentKind
		index       int
		contentType string
		want        string
	}{
		{domain.DocumentKindInvoice, 0, "application/pdf", "11111111-2222-3333-4444-555555555555/1700000000000-invoice.pdf"},
		{domain.DocumentKindInvoice, 0, "image/png", "11111111-2222-3333-4444-555555555555/1700000000000-invoice.png"},
		{domain.DocumentKindWorkOrder, 0, "application/pdf", "11111111-2222-3333-4444-555555555555/1700000000000-workorder.pdf"},
		{domain.DocumentKindPhoto, 3, "image/jpeg", "11111111-2222-3333-4444-555555555555/1700000000000-photo-3.jpg"},
		{domain.DocumentKindPhoto, 0, "image/gif", "11111111-2222-3333-4444-555555555555/1700000000000-photo-0.bin"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, service.StorageKey(userID, fixedNow.UnixMilli(), tt.kind, tt.index, tt.contentType))
		})
	}
}

func TestNewInvoiceSummary(t *testing.T) {
	userID := uuid.New()

	inv := service.NewInvoiceSummary(userID, sampleInvoiceData(), sampleResult())

	assert.Equal(t, userID, inv.UserID)
	assert.Equal(t, "INV-100", inv.InvoiceNumber)
	assert.Equal(t, "Acme Builders", inv.ContractorName)
	assert.InDelta(t, 2000.0, *inv.TotalAmount, 1e-9)
	assert.InDelta(t, 40.0, inv.ClaimedHours, 1e-9)
	assert.Equal(t, "2024-03-31", inv.DueDate)
	assert.Equal(t, domain.InvoiceStatusFlagged, inv.Status)
	assert.Equal(t, 77, inv.AIConfidence)
}

func TestRecorder_Persist_Success(t *testing.T) {
	r, m := newRecorder()
	userID := uuid.New()
	invoiceID := uuid.New()
	sub := sampleSubmission()
	prefix := fmt.Sprintf("%s/%d-", userID, fixedNow.UnixMilli())

	m.expectInvoiceCreate(invoiceID)
	m.analyses.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.InvoiceAnalysis) bool {
		return a.InvoiceID == invoiceID &&
			a.ConfidenceScore == 77 &&
			string(a.Flags) == `["crew_hour_discrepancy"]`
	})).Return(nil)
	for _, suffix := range []string{"invoice.pdf", "workorder.pdf", "photo-0.jpg", "photo-1.png"} {
		key := prefix + suffix
		m.storage.On("Upload", mock.Anything, uploadKey(key)).
			Return(&port.UploadOutput{Location: "https://s3.example.com/" + key}, nil)
	}
	m.documents.On("Create", mock.Anything, mock.AnythingOfType("*domain.DocumentRecord")).Return(nil)

	inv, outcome, err := r.Persist(context.Background(), service.PersistInput{
		UserID:  userID,
		Invoice: sampleInvoiceData(),
		Result:  sampleResult(),
		Files:   service.FilesOf(sub),
	})

	require.NoError(t, err)
	assert.Equal(t, invoiceID, inv.ID)
	assert.Equal(t, invoiceID, outcome.InvoiceID)
	assert.True(t, outcome.AnalysisSaved)
	assert.Empty(t, outcome.Failures)
	require.Len(t, outcome.Documents, 4)

	assert.Equal(t, domain.DocumentKindInvoice, outcome.Documents[0].FileType)
	assert.Equal(t, prefix+"invoice.pdf", outcome.Documents[0].StorageKey)
	assert.Equal(t, 1, outcome.Documents[0].PageCount)
	assert.Equal(t, domain.DocumentKindWorkOrder, outcome.Documents[1].FileType)
	assert.Equal(t, 2, outcome.Documents[1].PageCount)
	assert.Equal(t, "a.jpg", outcome.Documents[2].FileName)
	assert.Equal(t, "b.png", outcome.Documents[3].FileName)
	assert.Equal(t, "https://s3.example.com/"+prefix+"photo-1.png", outcome.Documents[3].FileURL)
	for _, d := range outcome.Documents {
		assert.Equal(t, invoiceID, d.InvoiceID)
	}

	m.storage.AssertNumberOfCalls(t, "Upload", 4)
	m.documents.AssertNumberOfCalls(t, "Create", 4)
	m.analyses.AssertExpectations(t)
}

func TestRecorder_Persist_InvoiceInsertFails(t *testing.T) {
	r, m := newRecorder()
	m.invoices.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	inv, outcome, err := r.Persist(context.Background(), service.PersistInput{
		UserID:  uuid.New(),
		Invoice: sampleInvoiceData(),
		Result:  sampleResult(),
		Files:   service.FilesOf(sampleSubmission()),
	})

	assert.ErrorIs(t, err, domain.ErrPersistenceFailed)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Nil(t, inv)
	assert.Nil(t, outcome)
	m.analyses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestRecorder_Persist_AnalysisFailureIsPartial(t *testing.T) {
	r, m := newRecorder()
	m.expectInvoiceCreate(uuid.New())
	m.analyses.On("Create", mock.Anything, mock.Anything).Return(errors.New("jsonb rejected"))
	m.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	m.documents.On("Create", mock.Anything, mock.Anything).Return(nil)

	inv, outcome, err := r.Persist(context.Background(), service.PersistInput{
		UserID:  uuid.New(),
		Invoice: sampleInvoiceData(),
		Result:  sampleResult(),
		Files:   service.FilesOf(verify.Submission{Invoice: sampleSubmission().Invoice}),
	})

	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.False(t, outcome.AnalysisSaved)
	require.Len(t, outcome.Failures, 1)
	assert.Equal(t, service.StageAnalysis, outcome.Failures[0].Stage)
	assert.Contains(t, outcome.Failures[0].Message, "jsonb rejected")
	require.Len(t, outcome.Documents, 1)
	// empty upload location falls back to the key
	assert.Equal(t, outcome.Documents[0].StorageKey, outcome.Documents[0].FileURL)
}

func TestRecorder_Persist_NilFlagsStoredAsEmptyArrays(t *testing.T) {
	r, m := newRecorder()
	m.expectInvoiceCreate(uuid.New())
	m.analyses.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.InvoiceAnalysis) bool {
		return string(a.Flags) == "[]" && string(a.Recommendations) == "[]"
	})).Return(nil)

	result := &domain.VerificationResult{Status: domain.VerificationVerified, Confidence: 92}
	_, outcome, err := r.Persist(context.Background(), service.PersistInput{
		UserID:  uuid.New(),
		Invoice: sampleInvoiceData(),
		Result:  result,
	})

	require.NoError(t, err)
	assert.True(t, outcome.AnalysisSaved)
	assert.Empty(t, outcome.Documents)
	m.analyses.AssertExpectations(t)
}

func TestRecorder_Persist_UploadFailureDoesNotStopOthers(t *testing.T) {
	r, m := newRecorder()
	userID := uuid.New()
	prefix := fmt.Sprintf("%s/%d-", userID, fixedNow.UnixMilli())

	m.expectInvoiceCreate(uuid.New())
	m.analyses.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.storage.On("Upload", mock.Anything, uploadKey(prefix+"photo-0.jpg")).
		Return(nil, errors.New("s3 timeout"))
	m.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{Location: "loc"}, nil)
	m.documents.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.DocumentRecord) bool {
		return d.FileType == domain.DocumentKindWorkOrder
	})).Return(errors.New("insert failed"))
	m.documents.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, outcome, err := r.Persist(context.Background(), service.PersistInput{
		UserID:  userID,
		Invoice: sampleInvoiceData(),
		Result:  sampleResult(),
		Files:   service.FilesOf(sampleSubmission()),
	})

	require.NoError(t, err)
	assert.True(t, outcome.AnalysisSaved)
	require.Len(t, outcome.Documents, 2)
	assert.Equal(t, "inv.pdf", outcome.Documents[0].FileName)
	assert.Equal(t, "b.png", outcome.Documents[1].FileName)

	require.Len(t, outcome.Failures, 2)
	stages := map[string]service.PartialFailure{}
	for _, f := range outcome.Failures {
		stages[f.Stage] = f
	}
	assert.Equal(t, "a.jpg", stages[service.StageUpload].FileName)
	assert.Equal(t, domain.DocumentKindPhoto, stages[service.StageUpload].Kind)
	assert.Equal(t, "wo.pdf", stages[service.StageDocument].FileName)
	assert.Contains(t, stages[service.StageDocument].Error(), "insert failed")
	m.storage.AssertNumberOfCalls(t, "Upload", 4)
}

func TestFilesOf_Order(t *testing.T) {
	files := service.FilesOf(sampleSubmission())

	require.Len(t, files, 4)
	assert.Equal(t, domain.DocumentKindInvoice, files[0].Kind)
	assert.Equal(t, domain.DocumentKindWorkOrder, files[1].Kind)
	assert.Equal(t, domain.DocumentKindPhoto, files[2].Kind)
	assert.Equal(t, 0, files[2].Index)
	assert.Equal(t, 1, files[3].Index)

	only := service.FilesOf(verify.Submission{Invoice: sampleSubmission().Invoice})
	assert.Len(t, only, 1)
}
