package noop

import (
	"context"

	"go.uber.org/zap"

	"sitecheck/internal/notify"
	"sitecheck/internal/port"
)

type noopNotifier struct {
	frontendURL string
}

// NewNoopNotifier creates a VerdictNotifier that only logs the alert.
func NewNoopNotifier(frontendURL string) port.VerdictNotifier {
	return &noopNotifier{frontendURL: frontendURL}
}

func (n *noopNotifier) NotifyVerdict(_ context.Context, notice port.VerdictNotice) error {
	if !notify.ShouldNotify(notice.Result) {
		return nil
	}
	zap.L().Info("noop.NotifyVerdict: verdict alert",
		zap.String("invoice_id", notice.Invoice.ID.String()),
		zap.String("status", string(notice.Result.Status)),
		zap.Int("confidence", notice.Result.Confidence),
		zap.Float64("potential_overcharge", notice.PotentialOvercharge),
		zap.String("link", notify.InvoiceLink(n.frontendURL, notice)),
	)
	return nil
}
