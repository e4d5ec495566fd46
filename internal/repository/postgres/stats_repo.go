package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"sitecheck/internal/domain"
	"sitecheck/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

const userInvoiceStatsQuery = `SELECT
	COUNT(*) AS total,
	COUNT(CASE WHEN status = 'pending' THEN 1 END) AS pending,
	COUNT(CASE WHEN status = 'verified' THEN 1 END) AS verified,
	COUNT(CASE WHEN status = 'flagged' THEN 1 END) AS flagged,
	COUNT(CASE WHEN status = 'disputed' THEN 1 END) AS disputed
FROM invoices WHERE user_id = $1`

func (r *statsRepo) GetUserStats(ctx context.Context, userID uuid.UUID) (*domain.InvoiceStats, error) {
	var stats domain.InvoiceStats
	if err := r.db.GetContext(ctx, &stats, userInvoiceStatsQuery, userID); err != nil {
		return nil, fmt.Errorf("statsRepo.GetUserStats: %w", err)
	}
	return &stats, nil
}
