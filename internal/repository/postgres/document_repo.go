package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"sitecheck/internal/domain"
	"sitecheck/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.DocumentRecord) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = time.Now().UTC()

	query := `INSERT INTO documents
		(id, invoice_id, file_name, file_type, file_url, storage_key,
		 file_size, content_type, page_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.InvoiceID, doc.FileName, doc.FileType, doc.FileURL, doc.StorageKey,
		doc.FileSize, doc.ContentType, doc.PageCount, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.DocumentRecord, error) {
	var docs []domain.DocumentRecord
	err := r.db.SelectContext(ctx, &docs,
		"SELECT * FROM documents WHERE invoice_id = $1 ORDER BY created_at, file_name", invoiceID)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ListByInvoice: %w", err)
	}
	return docs, nil
}
