package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ipaynotify/ipaynotify/internal/model"
	"github.com/ipaynotify/ipaynotify/internal/notify"
	"github.com/ipaynotify/ipaynotify/internal/repository"
)

func newReminderService(customers CustomerRepository, vendors VendorRepository, dispatcher Dispatcher, now time.Time) *ReminderService {
	s := NewReminderService(customers, vendors, dispatcher)
	s.now = func() time.Time { return now }
	return s
}

func TestReminderService_SendReminders(t *testing.T) {
	ctx := context.Background()
	vendorID := uuid.New()
	now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

	t.Run("sweep targets customers inside the window", func(t *testing.T) {
		custRepo := new(MockCustomerRepository)
		dispatcher := new(MockDispatcher)
		svc := newReminderService(custRepo, new(MockVendorRepository), dispatcher, now)
		sess := adminSession(vendorID)

		due := []*model.Customer{
			{ID: 1, VendorID: vendorID, ExpiryDate: now.AddDate(0, 0, -3)},
			{ID: 2, VendorID: vendorID, ExpiryDate: now.AddDate(0, 0, 2)},
		}
		custRepo.On("ListDueForReminder", ctx, sess, now.AddDate(0, 0, reminderSweepDays)).Return(due, nil)
		dispatcher.On("SendReminders", ctx, mock.MatchedBy(func(cs []model.Customer) bool {
			return len(cs) == 2
		}), false, mock.Anything).Return(notify.BulkResult{SuccessCount: 2})

		result, err := svc.SendReminders(ctx, sess, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, result.SuccessCount)
		assert.Equal(t, 0, result.FailureCount)

		custRepo.AssertExpectations(t)
		dispatcher.AssertExpectations(t)
	})

	t.Run("explicit ids force the reminder regardless of status", func(t *testing.T) {
		custRepo := new(MockCustomerRepository)
		dispatcher := new(MockDispatcher)
		svc := newReminderService(custRepo, new(MockVendorRepository), dispatcher, now)
		sess := adminSession(vendorID)

		active := &model.Customer{ID: 3, VendorID: vendorID, ExpiryDate: now.AddDate(0, 2, 0)}
		custRepo.On("Get", ctx, sess, int64(3)).Return(active, nil)
		custRepo.On("Get", ctx, sess, int64(99)).Return(nil, repository.ErrCustomerNotFound)
		dispatcher.On("SendReminders", ctx, mock.MatchedBy(func(cs []model.Customer) bool {
			return len(cs) == 1 && cs[0].ID == 3
		}), true, mock.Anything).Return(notify.BulkResult{SuccessCount: 1})

		result, err := svc.SendReminders(ctx, sess, []int64{3, 99})
		require.NoError(t, err)
		assert.Equal(t, 1, result.SuccessCount)
		assert.Equal(t, 1, result.FailureCount)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "customer 99: not found")
	})
}

func TestReminderService_Broadcast(t *testing.T) {
	ctx := context.Background()
	vendorID := uuid.New()
	now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

	t.Run("unknown kind is rejected", func(t *testing.T) {
		svc := newReminderService(new(MockCustomerRepository), new(MockVendorRepository), new(MockDispatcher), now)

		_, err := svc.Broadcast(ctx, adminSession(vendorID), "carrier_pigeon", "", nil)
		assert.Error(t, err)
	})

	t.Run("no ids broadcasts to every customer in scope", func(t *testing.T) {
		custRepo := new(MockCustomerRepository)
		dispatcher := new(MockDispatcher)
		svc := newReminderService(custRepo, new(MockVendorRepository), dispatcher, now)
		sess := adminSession(vendorID)

		rows := []*model.Customer{
			{ID: 1, VendorID: vendorID},
			{ID: 2, VendorID: vendorID},
		}
		custRepo.On("List", ctx, sess, mock.Anything).Return(rows, int64(2), nil)
		dispatcher.On("Broadcast", ctx, notify.EventMaintenance, mock.MatchedBy(func(cs []model.Customer) bool {
			return len(cs) == 2
		}), "11 PM - 2 AM", mock.Anything).Return(notify.BulkResult{SuccessCount: 2})

		result, err := svc.Broadcast(ctx, sess, "maintenance", "11 PM - 2 AM", nil)
		require.NoError(t, err)
		assert.Equal(t, 2, result.SuccessCount)
	})

	t.Run("explicit ids broadcast only to those customers", func(t *testing.T) {
		custRepo := new(MockCustomerRepository)
		dispatcher := new(MockDispatcher)
		svc := newReminderService(custRepo, new(MockVendorRepository), dispatcher, now)
		sess := adminSession(vendorID)

		c := &model.Customer{ID: 5, VendorID: vendorID}
		custRepo.On("Get", ctx, sess, int64(5)).Return(c, nil)
		dispatcher.On("Broadcast", ctx, notify.EventCustom, mock.MatchedBy(func(cs []model.Customer) bool {
			return len(cs) == 1 && cs[0].ID == 5
		}), "Office closed on Friday.", mock.Anything).Return(notify.BulkResult{SuccessCount: 1})

		result, err := svc.Broadcast(ctx, sess, "custom", "Office closed on Friday.", []int64{5})
		require.NoError(t, err)
		assert.Equal(t, 1, result.SuccessCount)
	})
}
