package claude

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"sitecheck/internal/config"
	"sitecheck/internal/extractor"
	"sitecheck/internal/port"
)

const maxTokens = 4096

func init() {
	extractor.RegisterProvider("claude", func(cfg *config.ProviderConfig) (port.DocumentParser, error) {
		return NewParser(cfg), nil
	})
}

// Parser implements port.DocumentParser using the Anthropic Messages API.
type Parser struct {
	client sdk.Client
	model  string
}

// NewParser creates a Claude-based document parser from a provider config.
func NewParser(cfg *config.ProviderConfig) *Parser {
	return newParser(cfg)
}

// NewParserWithEndpoint creates a parser pointing at a custom API base URL (for testing).
func NewParserWithEndpoint(cfg *config.ProviderConfig, baseURL string) *Parser {
	return newParser(cfg, option.WithBaseURL(baseURL))
}

func newParser(cfg *config.ProviderConfig, extra ...option.RequestOption) *Parser {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(timeout),
		// Retries are owned by extractor.Service.
		option.WithMaxRetries(0),
	}
	opts = append(opts, extra...)
	return &Parser{
		client: sdk.NewClient(opts...),
		model:  model,
	}
}

func (p *Parser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	blocks, err := buildContentBlocks(input)
	if err != nil {
		return nil, fmt.Errorf("building content blocks: %w", err)
	}

	msg, err := p.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(p.model),
		MaxTokens:   maxTokens,
		Temperature: sdk.Float(0.1),
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(blocks...)},
	})
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			retryAfter := 0
			if apiErr.Response != nil {
				retryAfter = extractor.ParseRetryAfterHeader(apiErr.Response.Header.Get("Retry-After"))
			}
			return nil, extractor.NewRateLimitError("claude", err, retryAfter)
		}
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}

	if msg.StopReason == sdk.StopReasonMaxTokens {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}

	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		data, err := extractor.CleanJSON(block.Text)
		if err != nil {
			return nil, err
		}
		return &port.ParseOutput{
			StructuredData: data,
			ModelUsed:      p.model,
		}, nil
	}

	return nil, fmt.Errorf("empty response from API: no text content")
}

func buildContentBlocks(input port.ParseInput) ([]sdk.ContentBlockParamUnion, error) {
	blocks := make([]sdk.ContentBlockParamUnion, 0, len(input.Documents)+1)
	for _, doc := range input.Documents {
		encoded := base64.StdEncoding.EncodeToString(doc.Data)
		switch doc.ContentType {
		case "application/pdf":
			blocks = append(blocks, sdk.NewDocumentBlock(sdk.Base64PDFSourceParam{Data: encoded}))
		case "image/jpeg", "image/png":
			blocks = append(blocks, sdk.NewImageBlockBase64(doc.ContentType, encoded))
		default:
			return nil, fmt.Errorf("%w: %s", extractor.ErrUnsupportedDocument, doc.ContentType)
		}
	}
	blocks = append(blocks, sdk.NewTextBlock(input.Prompt))
	return blocks, nil
}
