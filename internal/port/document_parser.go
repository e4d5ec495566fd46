package port

import (
	"context"
	"encoding/json"

	"sitecheck/internal/domain"
)

// ParseInput carries the documents and instructions for one provider call.
type ParseInput struct {
	Kind      domain.DocumentKind
	Documents []domain.Document
	Prompt    string
}

// ParseOutput contains the raw JSON object returned by an LLM provider.
type ParseOutput struct {
	StructuredData json.RawMessage
	ModelUsed      string
}

// DocumentParser abstracts a single LLM provider call.
type DocumentParser interface {
	Parse(ctx context.Context, input ParseInput) (*ParseOutput, error)
}

// DocumentExtractor turns uploaded documents into structured records.
// Every failure wraps domain.ErrExtractionFailed.
type DocumentExtractor interface {
	ExtractInvoice(ctx context.Context, doc domain.Document) (*domain.InvoiceData, error)
	ExtractWorkOrder(ctx context.Context, doc domain.Document) (*domain.WorkOrderData, error)
	AnalyzePhotos(ctx context.Context, photos []domain.Document) (*domain.PhotoAnalysis, error)
}
