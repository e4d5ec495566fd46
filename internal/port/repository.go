package port

import (
	"context"

	"github.com/google/uuid"

	"sitecheck/internal/domain"
)

// InvoiceFilter narrows a per-user invoice listing.
type InvoiceFilter struct {
	Status domain.InvoiceStatus
	Offset int
	Limit  int
}

// InvoiceRepository defines the contract for invoice summary persistence.
// Query methods take the owner's ID so users only see their own invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, userID, invoiceID uuid.UUID) (*domain.Invoice, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter InvoiceFilter) ([]domain.Invoice, int, error)
	Delete(ctx context.Context, userID, invoiceID uuid.UUID) error
}

// AnalysisRepository defines the contract for analysis persistence.
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *domain.InvoiceAnalysis) error
	GetByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (*domain.InvoiceAnalysis, error)
	// ListLatestByInvoiceIDs returns the most recent analysis of each listed
	// invoice that has one.
	ListLatestByInvoiceIDs(ctx context.Context, invoiceIDs []uuid.UUID) ([]domain.InvoiceAnalysis, error)
}

// DocumentRepository defines the contract for document metadata persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.DocumentRecord) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.DocumentRecord, error)
}

// StatsRepository provides aggregate statistics queries.
type StatsRepository interface {
	GetUserStats(ctx context.Context, userID uuid.UUID) (*domain.InvoiceStats, error)
}
