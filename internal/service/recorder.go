package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sitecheck/internal/domain"
	"sitecheck/internal/metrics"
	"sitecheck/internal/port"
	"sitecheck/internal/verify"
)

// Persistence stages reported in PartialFailure.
const (
	StageAnalysis = "analysis"
	StageUpload   = "upload"
	StageDocument = "document"
)

// maxConcurrentUploads bounds object storage fan-out per submission.
const maxConcurrentUploads = 4

// PartialFailure is a best-effort persistence step that failed after the
// invoice summary was saved. It is reported, never returned as an error.
type PartialFailure struct {
	Stage    string              `json:"stage"`
	Kind     domain.DocumentKind `json:"kind,omitempty"`
	FileName string              `json:"file_name,omitempty"`
	Message  string              `json:"message"`
}

func (p PartialFailure) Error() string {
	if p.FileName == "" {
		return fmt.Sprintf("%s: %s", p.Stage, p.Message)
	}
	return fmt.Sprintf("%s %s (%s): %s", p.Stage, p.FileName, p.Kind, p.Message)
}

// PersistOutcome reports what a Persist call managed to save.
type PersistOutcome struct {
	InvoiceID     uuid.UUID               `json:"invoice_id"`
	AnalysisSaved bool                    `json:"analysis_saved"`
	Documents     []domain.DocumentRecord `json:"documents"`
	Failures      []PartialFailure        `json:"failures"`
}

// StoredFile is one submitted document queued for object storage. Index is
// the position among photos and is ignored for other kinds.
type StoredFile struct {
	Kind     domain.DocumentKind
	Index    int
	Document domain.Document
}

// FilesOf lists the documents of a submission in storage order.
func FilesOf(sub verify.Submission) []StoredFile {
	files := []StoredFile{{Kind: domain.DocumentKindInvoice, Document: sub.Invoice}}
	if sub.WorkOrder != nil {
		files = append(files, StoredFile{Kind: domain.DocumentKindWorkOrder, Document: *sub.WorkOrder})
	}
	for i, p := range sub.Photos {
		files = append(files, StoredFile{Kind: domain.DocumentKindPhoto, Index: i, Document: p})
	}
	return files
}

// PersistInput carries everything a verification run leaves to persist.
type PersistInput struct {
	UserID  uuid.UUID
	Invoice *domain.InvoiceData
	Result  *domain.VerificationResult
	Files   []StoredFile
}

// Recorder saves a verification run: the invoice summary (mandatory), the
// analysis (best effort) and every uploaded file with its metadata (best
// effort, independently per file).
type Recorder struct {
	invoices  port.InvoiceRepository
	analyses  port.AnalysisRepository
	documents port.DocumentRepository
	storage   port.ObjectStorage
	bucket    string
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewRecorder creates a Recorder. m may be nil.
func NewRecorder(
	invoices port.InvoiceRepository,
	analyses port.AnalysisRepository,
	documents port.DocumentRepository,
	storage port.ObjectStorage,
	bucket string,
	m *metrics.Metrics,
) *Recorder {
	return &Recorder{
		invoices:  invoices,
		analyses:  analyses,
		documents: documents,
		storage:   storage,
		bucket:    bucket,
		metrics:   m,
		now:       time.Now,
	}
}

// SetClock overrides the time source used for storage keys.
func (r *Recorder) SetClock(now func() time.Time) {
	r.now = now
}

// NewInvoiceSummary builds the persisted summary row for a verification run.
func NewInvoiceSummary(userID uuid.UUID, data *domain.InvoiceData, result *domain.VerificationResult) *domain.Invoice {
	return &domain.Invoice{
		UserID:         userID,
		InvoiceNumber:  data.InvoiceNumber,
		ContractorName: data.Contractor,
		TotalAmount:    data.Total,
		ClaimedHours:   data.ClaimedHours(),
		InvoiceDate:    data.Date,
		DueDate:        data.DueDate,
		Status:         result.Status.InvoiceStatus(),
		AIConfidence:   result.Confidence,
	}
}

// StorageKey returns the object key for a submitted file:
// {userId}/{timestamp}-{kind}[-{index}].{ext}.
func StorageKey(userID uuid.UUID, timestamp int64, kind domain.DocumentKind, index int, contentType string) string {
	ext := "bin"
	if ft, ok := domain.AllowedContentTypes[contentType]; ok {
		ext = string(ft)
	}
	if kind == domain.DocumentKindPhoto {
		return fmt.Sprintf("%s/%d-%s-%d.%s", userID, timestamp, kind.StorageLabel(), index, ext)
	}
	return fmt.Sprintf("%s/%d-%s.%s", userID, timestamp, kind.StorageLabel(), ext)
}

// Persist saves a verification run. Only a failure to insert the invoice
// summary is returned as an error.
func (r *Recorder) Persist(ctx context.Context, in PersistInput) (*domain.Invoice, *PersistOutcome, error) {
	inv := NewInvoiceSummary(in.UserID, in.Invoice, in.Result)
	if err := r.invoices.Create(ctx, inv); err != nil {
		zap.L().Error("recorder.Persist: invoice insert failed",
			zap.String("user_id", in.UserID.String()),
			zap.Error(err),
		)
		return nil, nil, fmt.Errorf("recorder.Persist: %w: %w", domain.ErrPersistenceFailed, err)
	}

	outcome := &PersistOutcome{
		InvoiceID: inv.ID,
		Documents: []domain.DocumentRecord{},
		Failures:  []PartialFailure{},
	}

	if err := r.saveAnalysis(ctx, inv.ID, in.Result); err != nil {
		r.fail(outcome, PartialFailure{Stage: StageAnalysis, Message: err.Error()})
	} else {
		outcome.AnalysisSaved = true
	}

	r.storeFiles(ctx, in.UserID, inv.ID, in.Files, outcome)

	zap.L().Info("recorder.Persist: invoice saved",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("status", string(inv.Status)),
		zap.Bool("analysis_saved", outcome.AnalysisSaved),
		zap.Int("documents", len(outcome.Documents)),
		zap.Int("failures", len(outcome.Failures)),
	)
	return inv, outcome, nil
}

func (r *Recorder) saveAnalysis(ctx context.Context, invoiceID uuid.UUID, result *domain.VerificationResult) error {
	findings, err := json.Marshal(result.Findings)
	if err != nil {
		return fmt.Errorf("marshaling findings: %w", err)
	}
	flags := result.Flags
	if flags == nil {
		flags = []domain.Flag{}
	}
	flagsJSON, err := json.Marshal(flags)
	if err != nil {
		return fmt.Errorf("marshaling flags: %w", err)
	}
	recs := result.Recommendations
	if recs == nil {
		recs = []string{}
	}
	recsJSON, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshaling recommendations: %w", err)
	}

	return r.analyses.Create(ctx, &domain.InvoiceAnalysis{
		InvoiceID:       invoiceID,
		Findings:        findings,
		Flags:           flagsJSON,
		Recommendations: recsJSON,
		ConfidenceScore: result.Confidence,
	})
}

// storeFiles uploads every file and records its metadata. Each file is
// independent: one failing never stops the others.
func (r *Recorder) storeFiles(ctx context.Context, userID, invoiceID uuid.UUID, files []StoredFile, outcome *PersistOutcome) {
	timestamp := r.now().UnixMilli()
	records := make([]*domain.DocumentRecord, len(files))

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxConcurrentUploads)
	for i, f := range files {
		g.Go(func() error {
			rec, failure := r.storeFile(ctx, userID, invoiceID, timestamp, f)
			if failure != nil {
				mu.Lock()
				r.fail(outcome, *failure)
				mu.Unlock()
				return nil
			}
			records[i] = rec
			return nil
		})
	}
	_ = g.Wait()

	for _, rec := range records {
		if rec != nil {
			outcome.Documents = append(outcome.Documents, *rec)
		}
	}
}

func (r *Recorder) storeFile(ctx context.Context, userID, invoiceID uuid.UUID, timestamp int64, f StoredFile) (*domain.DocumentRecord, *PartialFailure) {
	key := StorageKey(userID, timestamp, f.Kind, f.Index, f.Document.ContentType)

	out, err := r.storage.Upload(ctx, port.UploadInput{
		Bucket:      r.bucket,
		Key:         key,
		Body:        bytes.NewReader(f.Document.Data),
		ContentType: f.Document.ContentType,
		Size:        f.Document.Size(),
	})
	if err != nil {
		return nil, &PartialFailure{Stage: StageUpload, Kind: f.Kind, FileName: f.Document.Name, Message: err.Error()}
	}

	location := out.Location
	if location == "" {
		location = key
	}
	rec := &domain.DocumentRecord{
		InvoiceID:   invoiceID,
		FileName:    f.Document.Name,
		FileType:    f.Kind,
		FileURL:     location,
		StorageKey:  key,
		FileSize:    f.Document.Size(),
		ContentType: f.Document.ContentType,
		PageCount:   f.Document.PageCount,
	}
	if err := r.documents.Create(ctx, rec); err != nil {
		return nil, &PartialFailure{Stage: StageDocument, Kind: f.Kind, FileName: f.Document.Name, Message: err.Error()}
	}
	return rec, nil
}

func (r *Recorder) fail(outcome *PersistOutcome, failure PartialFailure) {
	outcome.Failures = append(outcome.Failures, failure)
	zap.L().Warn("recorder.Persist: partial failure",
		zap.String("invoice_id", outcome.InvoiceID.String()),
		zap.String("stage", failure.Stage),
		zap.String("file", failure.FileName),
		zap.String("error", failure.Message),
	)
	if r.metrics != nil {
		r.metrics.RecordPartialFailure(failure.Stage)
	}
}
