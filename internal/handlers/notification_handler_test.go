package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ipaynotify/ipaynotify/internal/model"
	"github.com/ipaynotify/ipaynotify/internal/notify"
)

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) SendReminders(ctx context.Context, sess *model.Session, customerIDs []int64) (notify.BulkResult, error) {
	args := m.Called(ctx, sess, customerIDs)
	return args.Get(0).(notify.BulkResult), args.Error(1)
}

func (m *MockNotificationService) Broadcast(ctx context.Context, sess *model.Session, kind, message string, customerIDs []int64) (notify.BulkResult, error) {
	args := m.Called(ctx, sess, kind, message, customerIDs)
	return args.Get(0).(notify.BulkResult), args.Error(1)
}

func TestNotificationHandler_SendReminders(t *testing.T) {
	vendorID := uuid.New()

	t.Run("sweep with empty body", func(t *testing.T) {
		svc := new(MockNotificationService)
		handler := NewNotificationHandler(svc)

		svc.On("SendReminders", mock.Anything, mock.Anything, []int64(nil)).
			Return(notify.BulkResult{SuccessCount: 12}, nil)

		ctx := setupTestContext("POST", "/notifications/reminders", nil)
		handler.SendReminders(ctx, adminTestSession(vendorID))

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var result notify.BulkResult
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &result))
		assert.Equal(t, 12, result.SuccessCount)
		svc.AssertExpectations(t)
	})

	t.Run("targeted customer ids", func(t *testing.T) {
		svc := new(MockNotificationService)
		handler := NewNotificationHandler(svc)

		svc.On("SendReminders", mock.Anything, mock.Anything, []int64{1, 2, 3}).
			Return(notify.BulkResult{SuccessCount: 2, FailureCount: 1, Errors: []string{"customer 3: not found"}}, nil)

		ctx := setupTestContext("POST", "/notifications/reminders", []byte(`{"customer_ids":[1,2,3]}`))
		handler.SendReminders(ctx, adminTestSession(vendorID))

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var result notify.BulkResult
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &result))
		assert.Equal(t, 1, result.FailureCount)
		assert.Contains(t, result.Errors[0], "not found")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := new(MockNotificationService)
		handler := NewNotificationHandler(svc)

		ctx := setupTestContext("POST", "/notifications/reminders", []byte("broken"))
		handler.SendReminders(ctx, adminTestSession(vendorID))

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "SendReminders", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("service error", func(t *testing.T) {
		svc := new(MockNotificationService)
		handler := NewNotificationHandler(svc)

		svc.On("SendReminders", mock.Anything, mock.Anything, mock.Anything).
			Return(notify.BulkResult{}, errors.New("database error"))

		ctx := setupTestContext("POST", "/notifications/reminders", nil)
		handler.SendReminders(ctx, adminTestSession(vendorID))

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestNotificationHandler_Broadcast(t *testing.T) {
	vendorID := uuid.New()

	t.Run("maintenance broadcast", func(t *testing.T) {
		svc := new(MockNotificationService)
		handler := NewNotificationHandler(svc)

		svc.On("Broadcast", mock.Anything, mock.Anything, "maintenance", "2am to 4am", []int64(nil)).
			Return(notify.BulkResult{SuccessCount: 30}, nil)

		body, _ := json.Marshal(broadcastRequest{Kind: "maintenance", Message: "2am to 4am"})
		ctx := setupTestContext("POST", "/notifications/broadcast", body)
		handler.Broadcast(ctx, adminTestSession(vendorID))

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var result notify.BulkResult
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &result))
		assert.Equal(t, 30, result.SuccessCount)
		svc.AssertExpectations(t)
	})

	t.Run("custom broadcast to selected customers", func(t *testing.T) {
		svc := new(MockNotificationService)
		handler := NewNotificationHandler(svc)

		svc.On("Broadcast", mock.Anything, mock.Anything, "custom", "Price change next month", []int64{5, 6}).
			Return(notify.BulkResult{SuccessCount: 2}, nil)

		body, _ := json.Marshal(broadcastRequest{Kind: "custom", Message: "Price change next month", CustomerIDs: []int64{5, 6}})
		ctx := setupTestContext("POST", "/notifications/broadcast", body)
		handler.Broadcast(ctx, adminTestSession(vendorID))

		assert.Equal(t, 200, ctx.Response.StatusCode())
	})

	t.Run("unknown kind", func(t *testing.T) {
		svc := new(MockNotificationService)
		handler := NewNotificationHandler(svc)

		svc.On("Broadcast", mock.Anything, mock.Anything, "party", "", []int64(nil)).
			Return(notify.BulkResult{}, errors.New("unsupported broadcast kind: party"))

		body, _ := json.Marshal(broadcastRequest{Kind: "party"})
		ctx := setupTestContext("POST", "/notifications/broadcast", body)
		handler.Broadcast(ctx, adminTestSession(vendorID))

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := new(MockNotificationService)
		handler := NewNotificationHandler(svc)

		ctx := setupTestContext("POST", "/notifications/broadcast", []byte("{"))
		handler.Broadcast(ctx, adminTestSession(vendorID))

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
