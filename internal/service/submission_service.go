package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sitecheck/internal/config"
	"sitecheck/internal/domain"
	"sitecheck/internal/metrics"
	"sitecheck/internal/port"
	"sitecheck/internal/verify"
)

// Pipeline runs extraction, cross-validation and scoring for one submission.
type Pipeline interface {
	Verify(ctx context.Context, sub verify.Submission) (*verify.Outcome, error)
}

// SubmissionInput is the DTO for a verification request.
type SubmissionInput struct {
	UserID     uuid.UUID
	Submission verify.Submission
}

// SubmissionResult is what a successful submission returns to the caller.
type SubmissionResult struct {
	Invoice      *domain.Invoice            `json:"invoice"`
	Verification *domain.VerificationResult `json:"verification"`
	Persistence  *PersistOutcome            `json:"persistence"`
}

// SubmissionService defines the verify-and-record contract.
type SubmissionService interface {
	Submit(ctx context.Context, input SubmissionInput) (*SubmissionResult, error)
}

type submissionService struct {
	pipeline Pipeline
	recorder *Recorder
	notifier port.VerdictNotifier
	upload   config.UploadConfig
	metrics  *metrics.Metrics
}

// NewSubmissionService creates a new SubmissionService. notifier and m may be nil.
func NewSubmissionService(
	pipeline Pipeline,
	recorder *Recorder,
	notifier port.VerdictNotifier,
	upload config.UploadConfig,
	m *metrics.Metrics,
) SubmissionService {
	return &submissionService{
		pipeline: pipeline,
		recorder: recorder,
		notifier: notifier,
		upload:   upload,
		metrics:  m,
	}
}

func (s *submissionService) Submit(ctx context.Context, input SubmissionInput) (*SubmissionResult, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	outcome, err := s.pipeline.Verify(ctx, input.Submission)
	if err != nil {
		zap.L().Warn("submissionService.Submit: verification failed",
			zap.String("user_id", input.UserID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordVerification(outcome.Result)
	}

	inv, persisted, err := s.recorder.Persist(ctx, PersistInput{
		UserID:  input.UserID,
		Invoice: outcome.Invoice,
		Result:  outcome.Result,
		Files:   FilesOf(input.Submission),
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, inv, outcome.Result)

	return &SubmissionResult{
		Invoice:      inv,
		Verification: outcome.Result,
		Persistence:  persisted,
	}, nil
}

// validate checks presence, count, size and type of every submitted file.
func (s *submissionService) validate(input SubmissionInput) error {
	if input.UserID == uuid.Nil {
		return fmt.Errorf("submissionService.Submit: user id: %w", domain.ErrMissingRequiredInput)
	}
	sub := input.Submission
	if len(sub.Invoice.Data) == 0 {
		return fmt.Errorf("submissionService.Submit: invoice file: %w", domain.ErrMissingRequiredInput)
	}
	if s.upload.MaxPhotos > 0 && len(sub.Photos) > s.upload.MaxPhotos {
		return fmt.Errorf("submissionService.Submit: %d photos, at most %d allowed: %w",
			len(sub.Photos), s.upload.MaxPhotos, domain.ErrTooManyPhotos)
	}

	for _, f := range FilesOf(sub) {
		if err := s.checkFile(f); err != nil {
			return fmt.Errorf("submissionService.Submit: %s %q: %w", f.Kind, f.Document.Name, err)
		}
	}
	return nil
}

func (s *submissionService) checkFile(f StoredFile) error {
	if len(f.Document.Data) == 0 {
		return domain.ErrMissingRequiredInput
	}
	if maxBytes := s.upload.MaxFileSizeBytes(); maxBytes > 0 && f.Document.Size() > maxBytes {
		return domain.ErrFileTooLarge
	}
	ft, ok := domain.AllowedContentTypes[f.Document.ContentType]
	if !ok || !f.Kind.AcceptsFileType(ft) {
		return fmt.Errorf("%w: %w", domain.ErrExtractionFailed, domain.ErrUnsupportedFileType)
	}
	return nil
}

func (s *submissionService) notify(ctx context.Context, inv *domain.Invoice, result *domain.VerificationResult) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.NotifyVerdict(ctx, port.VerdictNotice{
		Invoice:             inv,
		Result:              result,
		PotentialOvercharge: result.Findings.PotentialOvercharge(),
	})
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	zap.L().Warn("submissionService.Submit: verdict notification failed",
		zap.String("invoice_id", inv.ID.String()),
		zap.Error(err),
	)
	if s.metrics != nil {
		s.metrics.RecordNotifyFailure()
	}
}
