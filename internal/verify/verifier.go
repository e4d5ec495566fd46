package verify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sitecheck/internal/domain"
	"sitecheck/internal/port"
)

// Submission is the set of documents verified together.
type Submission struct {
	Invoice   domain.Document
	WorkOrder *domain.Document
	Photos    []domain.Document
}

// Outcome is everything a verification run produced.
type Outcome struct {
	Invoice   *domain.InvoiceData
	WorkOrder Evidence[*domain.WorkOrderData]
	Photos    Evidence[*domain.PhotoAnalysis]
	Result    *domain.VerificationResult
}

// Verifier sequences extraction, cross-validation and scoring for one submission.
type Verifier struct {
	extractor port.DocumentExtractor
	engine    *Engine
}

// NewVerifier creates a Verifier.
func NewVerifier(extractor port.DocumentExtractor, engine *Engine) *Verifier {
	return &Verifier{extractor: extractor, engine: engine}
}

// Verify runs the pipeline. Invoice extraction must succeed first; the work
// order and photos are then extracted concurrently when supplied and replaced
// by fallbacks when absent. A supplied input that cannot be extracted fails
// the run.
func (v *Verifier) Verify(ctx context.Context, sub Submission) (*Outcome, error) {
	if len(sub.Invoice.Data) == 0 {
		return nil, fmt.Errorf("verify.Verify: invoice document: %w", domain.ErrMissingRequiredInput)
	}

	invoice, err := v.extractor.ExtractInvoice(ctx, sub.Invoice)
	if err != nil {
		return nil, extractionError("invoice", err)
	}

	out := &Outcome{Invoice: invoice}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if sub.WorkOrder == nil {
			out.WorkOrder = FallbackWorkOrder(invoice)
			return nil
		}
		wo, err := v.extractor.ExtractWorkOrder(gctx, *sub.WorkOrder)
		if err != nil {
			return extractionError("work order", err)
		}
		out.WorkOrder = Extracted(wo)
		return nil
	})
	g.Go(func() error {
		if len(sub.Photos) == 0 {
			out.Photos = FallbackPhotos()
			return nil
		}
		pa, err := v.extractor.AnalyzePhotos(gctx, sub.Photos)
		if err != nil {
			return extractionError("photos", err)
		}
		out.Photos = Extracted(pa)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	assessment := v.engine.Evaluate(invoice, out.WorkOrder.Value, out.Photos.Value)
	result := Score(assessment, out.Photos.Value)
	result.Evidence = domain.EvidenceSources{
		WorkOrder: out.WorkOrder.Provenance,
		Photos:    out.Photos.Provenance,
	}
	out.Result = result

	zap.L().Debug("verify.Verify: run complete",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("status", string(result.Status)),
		zap.Int("confidence", result.Confidence),
		zap.String("work_order", string(result.Evidence.WorkOrder)),
		zap.String("photos", string(result.Evidence.Photos)),
	)

	return out, nil
}

func extractionError(what string, err error) error {
	if errors.Is(err, domain.ErrExtractionFailed) {
		return fmt.Errorf("verify.Verify: %s: %w", what, err)
	}
	return fmt.Errorf("verify.Verify: %s: %w: %w", what, domain.ErrExtractionFailed, err)
}
