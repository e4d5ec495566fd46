package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sitecheck/internal/domain"
)

// MockDocumentExtractor is a mock implementation of port.DocumentExtractor.
type MockDocumentExtractor struct {
	mock.Mock
}

func (m *MockDocumentExtractor) ExtractInvoice(ctx context.Context, doc domain.Document) (*domain.InvoiceData, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceData), args.Error(1)
}

func (m *MockDocumentExtractor) ExtractWorkOrder(ctx context.Context, doc domain.Document) (*domain.WorkOrderData, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkOrderData), args.Error(1)
}

func (m *MockDocumentExtractor) AnalyzePhotos(ctx context.Context, photos []domain.Document) (*domain.PhotoAnalysis, error) {
	args := m.Called(ctx, photos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PhotoAnalysis), args.Error(1)
}
