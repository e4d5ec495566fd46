package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sitecheck/internal/domain"
	"sitecheck/internal/handler"
	"sitecheck/mocks"
)

func newStatsHandler() (*handler.StatsHandler, *mocks.MockStatsService) {
	mockSvc := new(mocks.MockStatsService)
	h := handler.NewStatsHandler(mockSvc)
	return h, mockSvc
}

func TestStatsHandler_GetStats_Success(t *testing.T) {
	h, mockSvc := newStatsHandler()
	userID := uuid.New()
	expected := &domain.InvoiceStats{Total: 12, Pending: 1, Verified: 7, Flagged: 3, Disputed: 1}
	mockSvc.On("GetStats", mock.Anything, userID).Return(expected, nil)

	c, w := newAuthedContext(http.MethodGet, "/api/v1/stats", userID)

	h.GetStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool                `json:"success"`
		Data    domain.InvoiceStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, *expected, resp.Data)
	mockSvc.AssertExpectations(t)
}

func TestStatsHandler_GetStats_ServiceError(t *testing.T) {
	h, mockSvc := newStatsHandler()
	mockSvc.On("GetStats", mock.Anything, mock.Anything).Return(nil, errors.New("db error"))

	c, w := newAuthedContext(http.MethodGet, "/api/v1/stats", uuid.New())

	h.GetStats(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStatsHandler_GetStats_NoAuth(t *testing.T) {
	h, mockSvc := newStatsHandler()

	c, w := newAuthedContext(http.MethodGet, "/api/v1/stats", uuid.Nil)

	h.GetStats(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockSvc.AssertNotCalled(t, "GetStats", mock.Anything, mock.Anything)
}
