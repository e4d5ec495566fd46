package port

import (
	"context"

	"sitecheck/internal/domain"
)

// VerdictNotice describes a submission that needs a reviewer's attention.
type VerdictNotice struct {
	Invoice             *domain.Invoice
	Result              *domain.VerificationResult
	PotentialOvercharge float64
}

// VerdictNotifier alerts reviewers about flagged or disputed invoices.
type VerdictNotifier interface {
	NotifyVerdict(ctx context.Context, notice VerdictNotice) error
}
