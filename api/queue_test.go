package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bepeace/telemed/internal/domain"
	"github.com/bepeace/telemed/internal/service/queue"
)

type MockQueueUseCase struct {
	mock.Mock
}

func (m *MockQueueUseCase) Join(ctx context.Context, orderID string) (*queue.StatusOutput, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queue.StatusOutput), args.Error(1)
}

func (m *MockQueueUseCase) Status(ctx context.Context, orderID string) (*queue.StatusOutput, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queue.StatusOutput), args.Error(1)
}

func (m *MockQueueUseCase) Start(ctx context.Context, orderID string) (*domain.QueueEntry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueueEntry), args.Error(1)
}

func (m *MockQueueUseCase) End(ctx context.Context, orderID string) (*domain.QueueEntry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueueEntry), args.Error(1)
}

func (m *MockQueueUseCase) ListActive(ctx context.Context) ([]domain.QueueEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QueueEntry), args.Error(1)
}

func (m *MockQueueUseCase) Summary(ctx context.Context) (*queue.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queue.Summary), args.Error(1)
}

func TestQueueHandler_join(t *testing.T) {
	mockService := &MockQueueUseCase{}
	handler := NewQueueHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(queueOrderRequest{OrderID: "ORDER_1"})
	c.Request = httptest.NewRequest("POST", "/api/queue/join", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	out := &queue.StatusOutput{
		Entry:    &domain.QueueEntry{OrderID: "ORDER_1", Status: domain.QueueStatusWaiting},
		Position: 2,
	}
	mockService.On("Join", c.Request.Context(), "ORDER_1").Return(out, nil)

	handler.join(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp queue.StatusOutput
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Position)
}

func TestQueueHandler_join_notPaid(t *testing.T) {
	mockService := &MockQueueUseCase{}
	handler := NewQueueHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(queueOrderRequest{OrderID: "ORDER_1"})
	c.Request = httptest.NewRequest("POST", "/api/queue/join", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("Join", c.Request.Context(), "ORDER_1").Return(nil, domain.ErrNotPaid)

	handler.join(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "not_paid")
}

func TestQueueHandler_status(t *testing.T) {
	mockService := &MockQueueUseCase{}
	handler := NewQueueHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/queue/status?order_id=ORDER_1", nil)

	out := &queue.StatusOutput{
		Entry: &domain.QueueEntry{OrderID: "ORDER_1", Status: domain.QueueStatusConsulting, RoomName: "BEPEACE_ORDER_1_ab12cd"},
	}
	mockService.On("Status", c.Request.Context(), "ORDER_1").Return(out, nil)

	handler.status(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BEPEACE_ORDER_1_ab12cd")
}

func TestQueueHandler_start_notWaiting(t *testing.T) {
	mockService := &MockQueueUseCase{}
	handler := NewQueueHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(queueOrderRequest{OrderID: "ORDER_1"})
	c.Request = httptest.NewRequest("POST", "/api/queue/start", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("Start", c.Request.Context(), "ORDER_1").Return(nil, domain.ErrNotWaiting)

	handler.start(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestQueueHandler_summary(t *testing.T) {
	mockService := &MockQueueUseCase{}
	handler := NewQueueHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/queue/summary", nil)

	mockService.On("Summary", c.Request.Context()).Return(&queue.Summary{
		Waiting:        3,
		Consulting:     1,
		CompletedToday: 5,
		RevenueToday:   2500,
	}, nil)

	handler.summary(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp queue.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Waiting)
	assert.Equal(t, 2500.0, resp.RevenueToday)
}
