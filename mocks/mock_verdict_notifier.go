package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sitecheck/internal/port"
)

// MockVerdictNotifier is a mock implementation of port.VerdictNotifier.
type MockVerdictNotifier struct {
	mock.Mock
}

func (m *MockVerdictNotifier) NotifyVerdict(ctx context.Context, notice port.VerdictNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}
