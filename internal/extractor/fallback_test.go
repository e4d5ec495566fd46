package extractor_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sitecheck/internal/domain"
	"sitecheck/internal/extractor"
	"sitecheck/internal/port"
	"sitecheck/mocks"
)

func parseOutput(model string) *port.ParseOutput {
	return &port.ParseOutput{
		StructuredData: json.RawMessage(`{"invoiceNumber":"INV-1","lineItems":[]}`),
		ModelUsed:      model,
	}
}

func invoiceInput() port.ParseInput {
	return port.ParseInput{
		Kind:      domain.DocumentKindInvoice,
		Documents: []domain.Document{{Name: "inv.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}},
		Prompt:    extractor.InvoicePrompt,
	}
}

func TestFallbackParser_FirstSucceeds(t *testing.T) {
	p1 := new(mocks.MockDocumentParser)
	p2 := new(mocks.MockDocumentParser)

	input := invoiceInput()
	p1.On("Parse", mock.Anything, input).Return(parseOutput("gpt-4o"), nil)

	fp := extractor.NewFallbackParser([]port.DocumentParser{p1, p2}, []string{"openai", "claude"})

	result, err := fp.Parse(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", result.ModelUsed)
	p2.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestFallbackParser_FirstFails_SecondSucceeds(t *testing.T) {
	p1 := new(mocks.MockDocumentParser)
	p2 := new(mocks.MockDocumentParser)

	input := invoiceInput()
	p1.On("Parse", mock.Anything, input).Return(nil, errors.New("generic error"))
	p2.On("Parse", mock.Anything, input).Return(parseOutput("claude"), nil)

	fp := extractor.NewFallbackParser([]port.DocumentParser{p1, p2}, []string{"openai", "claude"})

	result, err := fp.Parse(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "claude", result.ModelUsed)
}

func TestFallbackParser_RateLimitedProviderSkippedOnNextCall(t *testing.T) {
	p1 := new(mocks.MockDocumentParser)
	p2 := new(mocks.MockDocumentParser)

	input := invoiceInput()
	p1.On("Parse", mock.Anything, input).
		Return(nil, extractor.NewRateLimitError("openai", errors.New("429"), 60)).Once()
	p2.On("Parse", mock.Anything, input).Return(parseOutput("claude"), nil)

	fp := extractor.NewFallbackParser([]port.DocumentParser{p1, p2}, []string{"openai", "claude"})

	_, err := fp.Parse(context.Background(), input)
	require.NoError(t, err)

	_, err = fp.Parse(context.Background(), input)
	require.NoError(t, err)

	p1.AssertNumberOfCalls(t, "Parse", 1)
	p2.AssertNumberOfCalls(t, "Parse", 2)
}

func TestFallbackParser_AllRateLimited(t *testing.T) {
	p1 := new(mocks.MockDocumentParser)
	p2 := new(mocks.MockDocumentParser)

	input := invoiceInput()
	p1.On("Parse", mock.Anything, input).Return(nil, extractor.NewRateLimitError("openai", errors.New("429"), 30))
	p2.On("Parse", mock.Anything, input).Return(nil, extractor.NewRateLimitError("claude", errors.New("429"), 90))

	fp := extractor.NewFallbackParser([]port.DocumentParser{p1, p2}, []string{"openai", "claude"})

	_, err := fp.Parse(context.Background(), input)

	var rlErr *extractor.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "all", rlErr.Provider)
	assert.LessOrEqual(t, rlErr.RetryAfter.Seconds(), 30.0)
}

func TestFallbackParser_AllFail(t *testing.T) {
	p1 := new(mocks.MockDocumentParser)
	p2 := new(mocks.MockDocumentParser)

	input := invoiceInput()
	p1.On("Parse", mock.Anything, input).Return(nil, extractor.NewRateLimitError("openai", errors.New("429"), 30))
	p2.On("Parse", mock.Anything, input).Return(nil, errors.New("bad gateway"))

	fp := extractor.NewFallbackParser([]port.DocumentParser{p1, p2}, []string{"openai", "claude"})

	_, err := fp.Parse(context.Background(), input)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")
	assert.Contains(t, err.Error(), "bad gateway")
}
