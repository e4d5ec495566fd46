package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sitecheck/internal/config"
	"sitecheck/internal/domain"
	"sitecheck/internal/port"
)

// exportPageSize is the page size used when walking all invoices for export.
const exportPageSize = 200

// DocumentView is a stored document with a short-lived download link.
type DocumentView struct {
	domain.DocumentRecord
	DownloadURL string `json:"download_url,omitempty"`
}

// InvoiceDetail is one invoice with its latest analysis and documents.
type InvoiceDetail struct {
	Invoice   *domain.Invoice         `json:"invoice"`
	Analysis  *domain.InvoiceAnalysis `json:"analysis"`
	Documents []DocumentView          `json:"documents"`
}

// InvoiceService defines read and delete operations on a user's invoices.
type InvoiceService interface {
	List(ctx context.Context, userID uuid.UUID, filter port.InvoiceFilter) ([]domain.Invoice, int, error)
	Get(ctx context.Context, userID, invoiceID uuid.UUID) (*InvoiceDetail, error)
	Delete(ctx context.Context, userID, invoiceID uuid.UUID) error
	ListForExport(ctx context.Context, userID uuid.UUID) ([]domain.FlaggedInvoice, error)
}

type invoiceService struct {
	invoices  port.InvoiceRepository
	analyses  port.AnalysisRepository
	documents port.DocumentRepository
	storage   port.ObjectStorage
	cfg       *config.S3Config
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(
	invoices port.InvoiceRepository,
	analyses port.AnalysisRepository,
	documents port.DocumentRepository,
	storage port.ObjectStorage,
	cfg *config.S3Config,
) InvoiceService {
	return &invoiceService{
		invoices:  invoices,
		analyses:  analyses,
		documents: documents,
		storage:   storage,
		cfg:       cfg,
	}
}

func (s *invoiceService) List(ctx context.Context, userID uuid.UUID, filter port.InvoiceFilter) ([]domain.Invoice, int, error) {
	if filter.Status != "" && !domain.ValidInvoiceStatuses[filter.Status] {
		return nil, 0, domain.ErrInvalidStatus
	}
	return s.invoices.ListByUser(ctx, userID, filter)
}

func (s *invoiceService) Get(ctx context.Context, userID, invoiceID uuid.UUID) (*InvoiceDetail, error) {
	inv, err := s.invoices.GetByID(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}

	detail := &InvoiceDetail{Invoice: inv, Documents: []DocumentView{}}

	analysis, err := s.analyses.GetByInvoiceID(ctx, invoiceID)
	switch {
	case err == nil:
		detail.Analysis = analysis
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, fmt.Errorf("invoiceService.Get analysis: %w", err)
	}

	docs, err := s.documents.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoiceService.Get documents: %w", err)
	}
	for _, d := range docs {
		view := DocumentView{DocumentRecord: d}
		url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, d.StorageKey, s.cfg.PresignExpiry)
		if err != nil {
			zap.L().Warn("invoiceService.Get: presign failed",
				zap.String("document_id", d.ID.String()),
				zap.Error(err),
			)
		} else {
			view.DownloadURL = url
		}
		detail.Documents = append(detail.Documents, view)
	}
	return detail, nil
}

// Delete removes the invoice rows, then the stored objects. Object deletion
// failures are logged and leave orphans behind.
func (s *invoiceService) Delete(ctx context.Context, userID, invoiceID uuid.UUID) error {
	if _, err := s.invoices.GetByID(ctx, userID, invoiceID); err != nil {
		return err
	}
	docs, err := s.documents.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("invoiceService.Delete documents: %w", err)
	}

	if err := s.invoices.Delete(ctx, userID, invoiceID); err != nil {
		return err
	}

	for _, d := range docs {
		if err := s.storage.Delete(ctx, s.cfg.Bucket, d.StorageKey); err != nil {
			zap.L().Warn("invoiceService.Delete: object delete failed",
				zap.String("invoice_id", invoiceID.String()),
				zap.String("key", d.StorageKey),
				zap.Error(err),
			)
		}
	}
	zap.L().Info("invoiceService.Delete: invoice deleted",
		zap.String("invoice_id", invoiceID.String()),
		zap.Int("documents", len(docs)),
	)
	return nil
}

func (s *invoiceService) ListForExport(ctx context.Context, userID uuid.UUID) ([]domain.FlaggedInvoice, error) {
	var out []domain.FlaggedInvoice
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.invoices.ListByUser(ctx, userID, port.InvoiceFilter{Offset: offset, Limit: exportPageSize})
		if err != nil {
			return nil, fmt.Errorf("invoiceService.ListForExport: %w", err)
		}
		flags, err := s.flagsOf(ctx, page)
		if err != nil {
			return nil, err
		}
		for i := range page {
			out = append(out, domain.FlaggedInvoice{Invoice: page[i], Flags: flags[page[i].ID]})
		}
		if len(page) == 0 || offset+len(page) >= total {
			break
		}
	}
	return out, nil
}

// flagsOf loads the latest flags of every invoice on the page in one query.
func (s *invoiceService) flagsOf(ctx context.Context, page []domain.Invoice) (map[uuid.UUID][]domain.Flag, error) {
	if len(page) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, len(page))
	for i := range page {
		ids[i] = page[i].ID
	}
	analyses, err := s.analyses.ListLatestByInvoiceIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("invoiceService.ListForExport analysis: %w", err)
	}
	byInvoice := make(map[uuid.UUID][]domain.Flag, len(analyses))
	for _, a := range analyses {
		if len(a.Flags) == 0 {
			continue
		}
		var flags []domain.Flag
		if err := json.Unmarshal(a.Flags, &flags); err != nil {
			return nil, fmt.Errorf("invoiceService.ListForExport flags: %w", err)
		}
		byInvoice[a.InvoiceID] = flags
	}
	return byInvoice, nil
}
