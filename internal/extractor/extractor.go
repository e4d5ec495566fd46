package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"sitecheck/internal/config"
	"sitecheck/internal/domain"
	"sitecheck/internal/port"
)

// Observer receives the latency and outcome of every extraction.
type Observer func(kind domain.DocumentKind, elapsed time.Duration, err error)

// Options tunes the resilience behaviour of a Service.
type Options struct {
	MaxRetries         int
	InitialBackoff     time.Duration
	MaxBackoff         time.Duration
	RequestsPerSecond  float64
	Burst              int
	BreakerFailures    uint32
	BreakerOpenTimeout time.Duration
	Observer           Observer
}

// OptionsFromConfig maps extractor config onto Options.
func OptionsFromConfig(cfg *config.ExtractorConfig) Options {
	return Options{
		MaxRetries:         cfg.PrimaryConfig().MaxRetries,
		InitialBackoff:     500 * time.Millisecond,
		MaxBackoff:         5 * time.Second,
		RequestsPerSecond:  cfg.RequestsPerSecond,
		Burst:              cfg.Burst,
		BreakerFailures:    cfg.BreakerFailures,
		BreakerOpenTimeout: cfg.BreakerOpenTimeout,
	}
}

// Service implements port.DocumentExtractor on top of a DocumentParser. It
// owns the process-wide request budget, one circuit breaker per document
// kind, retries of transient failures and validation of provider output.
type Service struct {
	parser   port.DocumentParser
	decoder  *Decoder
	limiter  *rate.Limiter
	breakers map[domain.DocumentKind]*gobreaker.CircuitBreaker[*port.ParseOutput]
	opts     Options
}

// NewService creates an extraction Service.
func NewService(parser port.DocumentParser, opts Options) *Service {
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}
	if opts.MaxBackoff < opts.InitialBackoff {
		opts.MaxBackoff = opts.InitialBackoff
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	s := &Service{
		parser:   parser,
		decoder:  NewDecoder(),
		limiter:  rate.NewLimiter(limit, burst),
		breakers: make(map[domain.DocumentKind]*gobreaker.CircuitBreaker[*port.ParseOutput]),
		opts:     opts,
	}
	for _, kind := range []domain.DocumentKind{domain.DocumentKindInvoice, domain.DocumentKindWorkOrder, domain.DocumentKindPhoto} {
		s.breakers[kind] = s.newBreaker(kind)
	}
	return s
}

func (s *Service) newBreaker(kind domain.DocumentKind) *gobreaker.CircuitBreaker[*port.ParseOutput] {
	failures := s.opts.BreakerFailures
	return gobreaker.NewCircuitBreaker[*port.ParseOutput](gobreaker.Settings{
		Name:        "extractor." + string(kind),
		MaxRequests: 1,
		Timeout:     s.opts.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// Caller-side problems say nothing about provider health.
			return err == nil || errors.Is(err, ErrUnsupportedDocument) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zap.L().Warn("extractor: circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// ExtractInvoice extracts structured invoice data from one document.
func (s *Service) ExtractInvoice(ctx context.Context, doc domain.Document) (*domain.InvoiceData, error) {
	return extract(ctx, s, domain.DocumentKindInvoice, []domain.Document{doc}, s.decoder.Invoice)
}

// ExtractWorkOrder extracts structured work order data from one document.
func (s *Service) ExtractWorkOrder(ctx context.Context, doc domain.Document) (*domain.WorkOrderData, error) {
	return extract(ctx, s, domain.DocumentKindWorkOrder, []domain.Document{doc}, s.decoder.WorkOrder)
}

// AnalyzePhotos assesses all photos in a single provider call.
func (s *Service) AnalyzePhotos(ctx context.Context, photos []domain.Document) (*domain.PhotoAnalysis, error) {
	return extract(ctx, s, domain.DocumentKindPhoto, photos, s.decoder.Photos)
}

func extract[T any](ctx context.Context, s *Service, kind domain.DocumentKind, docs []domain.Document, decode func(json.RawMessage) (*T, error)) (*T, error) {
	start := time.Now()
	out, err := withRetry(ctx, s, kind, docs, decode)
	if s.opts.Observer != nil {
		s.opts.Observer(kind, time.Since(start), err)
	}
	if err != nil {
		return nil, fmt.Errorf("extractor.%s: %w: %w", kind, domain.ErrExtractionFailed, err)
	}
	return out, nil
}

func withRetry[T any](ctx context.Context, s *Service, kind domain.DocumentKind, docs []domain.Document, decode func(json.RawMessage) (*T, error)) (*T, error) {
	if err := checkDocuments(kind, docs); err != nil {
		return nil, err
	}

	input := port.ParseInput{Kind: kind, Documents: docs, Prompt: PromptFor(kind)}
	backoff := s.opts.InitialBackoff
	attempts := s.opts.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for request budget: %w", err)
		}

		out, err := s.breakers[kind].Execute(func() (*port.ParseOutput, error) {
			return s.parser.Parse(ctx, input)
		})
		if err == nil {
			var result *T
			result, err = decode(out.StructuredData)
			if err == nil {
				return result, nil
			}
		}
		lastErr = err

		if !retryable(err) || attempt == attempts {
			break
		}
		zap.L().Warn("extractor: retrying extraction",
			zap.String("kind", string(kind)),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
		backoff *= 2
		if backoff > s.opts.MaxBackoff {
			backoff = s.opts.MaxBackoff
		}
	}
	return nil, lastErr
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	var rlErr *RateLimitError
	switch {
	case err == nil:
		return false
	case errors.As(err, &rlErr):
		return false
	case errors.Is(err, ErrUnsupportedDocument):
		return false
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}

// checkDocuments rejects empty batches and content types a kind cannot carry.
func checkDocuments(kind domain.DocumentKind, docs []domain.Document) error {
	if len(docs) == 0 {
		return fmt.Errorf("%w: no documents", ErrUnsupportedDocument)
	}
	for _, d := range docs {
		ft, ok := domain.AllowedContentTypes[d.ContentType]
		if !ok || !kind.AcceptsFileType(ft) {
			return fmt.Errorf("%w: %s (%s) for %s", ErrUnsupportedDocument, d.Name, d.ContentType, kind)
		}
		if len(d.Data) == 0 {
			return fmt.Errorf("%w: %s is empty", ErrUnsupportedDocument, d.Name)
		}
	}
	return nil
}
