package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"sitecheck/internal/domain"
	"sitecheck/internal/port"
)

type analysisRepo struct {
	db *sqlx.DB
}

// NewAnalysisRepo creates a new PostgreSQL-backed AnalysisRepository.
func NewAnalysisRepo(db *sqlx.DB) port.AnalysisRepository {
	return &analysisRepo{db: db}
}

func (r *analysisRepo) Create(ctx context.Context, analysis *domain.InvoiceAnalysis) error {
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	analysis.CreatedAt = time.Now().UTC()

	query := `INSERT INTO invoice_analyses
		(id, invoice_id, findings, flags, recommendations, confidence_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		analysis.ID, analysis.InvoiceID, analysis.Findings, analysis.Flags,
		analysis.Recommendations, analysis.ConfidenceScore, analysis.CreatedAt)
	if err != nil {
		return fmt.Errorf("analysisRepo.Create: %w", err)
	}
	return nil
}

// GetByInvoiceID returns the most recent analysis for an invoice.
func (r *analysisRepo) GetByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (*domain.InvoiceAnalysis, error) {
	var analysis domain.InvoiceAnalysis
	err := r.db.GetContext(ctx, &analysis,
		`SELECT * FROM invoice_analyses WHERE invoice_id = $1
		 ORDER BY created_at DESC LIMIT 1`, invoiceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("analysisRepo.GetByInvoiceID: %w", err)
	}
	return &analysis, nil
}

func (r *analysisRepo) ListLatestByInvoiceIDs(ctx context.Context, invoiceIDs []uuid.UUID) ([]domain.InvoiceAnalysis, error) {
	if len(invoiceIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT DISTINCT ON (invoice_id) * FROM invoice_analyses WHERE invoice_id IN (?)
		 ORDER BY invoice_id, created_at DESC`, invoiceIDs)
	if err != nil {
		return nil, fmt.Errorf("analysisRepo.ListLatestByInvoiceIDs: %w", err)
	}
	var analyses []domain.InvoiceAnalysis
	if err := r.db.SelectContext(ctx, &analyses, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("analysisRepo.ListLatestByInvoiceIDs: %w", err)
	}
	return analyses, nil
}
