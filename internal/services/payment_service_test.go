package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ipaynotify/ipaynotify/internal/model"
	"github.com/ipaynotify/ipaynotify/internal/repository"
	"github.com/ipaynotify/ipaynotify/internal/subscription"
)

func newPaymentService(payments PaymentRepository, customers CustomerRepository, vendors VendorRepository, dispatcher Dispatcher, now time.Time) *PaymentService {
	s := NewPaymentService(payments, customers, vendors, dispatcher)
	s.now = func() time.Time { return now }
	return s
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, sess *model.Session, f model.PaymentFilter) ([]*model.Payment, int64, error) {
	args := m.Called(ctx, sess, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Payment), args.Get(1).(int64), args.Error(2)
}

func TestPaymentService_Record(t *testing.T) {
	ctx := context.Background()
	vendorID := uuid.New()
	now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

	req := model.PaymentCreateRequest{
		CustomerID: 7,
		Amount:     decimal.NewFromInt(50),
		Method:     "mobile_money",
		MonthsPaid: 1,
	}

	t.Run("expired customer is revived in one transaction", func(t *testing.T) {
		payRepo := new(MockPaymentRepository)
		custRepo := new(MockCustomerRepository)
		vendRepo := new(MockVendorRepository)
		dispatcher := new(MockDispatcher)
		svc := newPaymentService(payRepo, custRepo, vendRepo, dispatcher, now)
		sess := adminSession(vendorID)

		expiredAt := now.AddDate(0, 0, -5)
		customer := &model.Customer{ID: 7, VendorID: vendorID, Name: "Ama", Phone: "0241234567", ExpiryDate: expiredAt}
		// expired: anchor is today, at midnight
		wantExpiry := subscription.AddMonths(subscription.StartOfDay(now), 1)

		custRepo.On("Get", ctx, sess, int64(7)).Return(customer, nil)
		custRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		payRepo.On("Create", ctx, mock.MatchedBy(func(p *model.Payment) bool {
			return p.VendorID == vendorID &&
				p.CustomerID == 7 &&
				p.Amount.Equal(decimal.NewFromInt(50)) &&
				p.Method == model.MethodMobileMoney &&
				p.Reference != "" &&
				p.RecordedBy == "u1"
		})).Return(&model.Payment{ID: 100, VendorID: vendorID, CustomerID: 7}, nil)
		custRepo.On("UpdateSubscription", ctx, int64(7), wantExpiry, true).Return(nil)
		vendRepo.On("Get", ctx, vendorID).Return(testVendor(vendorID), nil)
		dispatcher.On("SendPaymentReceipt", ctx, customer, req.Amount, wantExpiry, true, mock.AnythingOfType("*sms.Branding")).Return(nil)

		created, warning, err := svc.Record(ctx, sess, req)
		require.NoError(t, err)
		assert.Empty(t, warning)
		assert.Equal(t, int64(100), created.ID)

		payRepo.AssertExpectations(t)
		custRepo.AssertExpectations(t)
		dispatcher.AssertExpectations(t)
	})

	t.Run("active customer extends from current expiry", func(t *testing.T) {
		payRepo := new(MockPaymentRepository)
		custRepo := new(MockCustomerRepository)
		vendRepo := new(MockVendorRepository)
		dispatcher := new(MockDispatcher)
		svc := newPaymentService(payRepo, custRepo, vendRepo, dispatcher, now)
		sess := adminSession(vendorID)

		currentExpiry := now.AddDate(0, 0, 10)
		customer := &model.Customer{ID: 7, VendorID: vendorID, ExpiryDate: currentExpiry}
		wantExpiry := subscription.AddMonths(subscription.StartOfDay(currentExpiry), 1)

		custRepo.On("Get", ctx, sess, int64(7)).Return(customer, nil)
		custRepo.On("WithinTransaction", ctx, mock.Anything).Return(nil)
		payRepo.On("Create", ctx, mock.Anything).Return(&model.Payment{ID: 101}, nil)
		custRepo.On("UpdateSubscription", ctx, int64(7), wantExpiry, true).Return(nil)
		vendRepo.On("Get", ctx, vendorID).Return(testVendor(vendorID), nil)
		dispatcher.On("SendPaymentReceipt", ctx, customer, req.Amount, wantExpiry, false, mock.Anything).Return(nil)

		_, _, err := svc.Record(ctx, sess, req)
		require.NoError(t, err)
		custRepo.AssertExpectations(t)
	})

	t.Run("expiry day fully elapsed counts as expired despite stored clock time", func(t *testing.T) {
		payRepo := new(MockPaymentRepository)
		custRepo := new(MockCustomerRepository)
		vendRepo := new(MockVendorRepository)
		dispatcher := new(MockDispatcher)

		// Expiry written yesterday mid-afternoon; the payment arrives
		// this morning, before that clock time. The customer is still
		// expired by calendar day, so the receipt must carry the
		// reactivation flag.
		morning := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)
		expiredYesterday := time.Date(2025, time.June, 14, 14, 0, 0, 0, time.UTC)
		svc := newPaymentService(payRepo, custRepo, vendRepo, dispatcher, morning)
		sess := adminSession(vendorID)

		customer := &model.Customer{ID: 7, VendorID: vendorID, Name: "Ama", ExpiryDate: expiredYesterday}
		wantExpiry := subscription.AddMonths(subscription.StartOfDay(morning), 1)

		custRepo.On("Get", ctx, sess, int64(7)).Return(customer, nil)
		custRepo.On("WithinTransaction", ctx, mock.Anything).Return(nil)
		payRepo.On("Create", ctx, mock.Anything).Return(&model.Payment{ID: 103, VendorID: vendorID, CustomerID: 7}, nil)
		custRepo.On("UpdateSubscription", ctx, int64(7), wantExpiry, true).Return(nil)
		vendRepo.On("Get", ctx, vendorID).Return(testVendor(vendorID), nil)
		dispatcher.On("SendPaymentReceipt", ctx, customer, req.Amount, wantExpiry, true, mock.Anything).Return(nil)

		_, _, err := svc.Record(ctx, sess, req)
		require.NoError(t, err)
		custRepo.AssertExpectations(t)
		dispatcher.AssertExpectations(t)
	})

	t.Run("validation failures reject before any read", func(t *testing.T) {
		svc := newPaymentService(new(MockPaymentRepository), new(MockCustomerRepository), new(MockVendorRepository), new(MockDispatcher), now)

		bad := req
		bad.MonthsPaid = 0
		_, _, err := svc.Record(ctx, adminSession(vendorID), bad)
		assert.Error(t, err)

		bad = req
		bad.Amount = decimal.NewFromInt(-5)
		_, _, err = svc.Record(ctx, adminSession(vendorID), bad)
		assert.Error(t, err)
	})

	t.Run("cross-tenant customer reads as not found", func(t *testing.T) {
		custRepo := new(MockCustomerRepository)
		svc := newPaymentService(new(MockPaymentRepository), custRepo, new(MockVendorRepository), new(MockDispatcher), now)
		sess := adminSession(vendorID)

		custRepo.On("Get", ctx, sess, int64(7)).Return(nil, repository.ErrCustomerNotFound)

		_, _, err := svc.Record(ctx, sess, req)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("transaction failure aborts without SMS", func(t *testing.T) {
		payRepo := new(MockPaymentRepository)
		custRepo := new(MockCustomerRepository)
		dispatcher := new(MockDispatcher)
		svc := newPaymentService(payRepo, custRepo, new(MockVendorRepository), dispatcher, now)
		sess := adminSession(vendorID)

		customer := &model.Customer{ID: 7, VendorID: vendorID, ExpiryDate: now.AddDate(0, 0, 10)}
		custRepo.On("Get", ctx, sess, int64(7)).Return(customer, nil)
		custRepo.On("WithinTransaction", ctx, mock.Anything).Return(errors.New("db down"))

		_, _, err := svc.Record(ctx, sess, req)
		assert.Error(t, err)
		dispatcher.AssertNotCalled(t, "SendPaymentReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("receipt failure downgrades to a warning", func(t *testing.T) {
		payRepo := new(MockPaymentRepository)
		custRepo := new(MockCustomerRepository)
		vendRepo := new(MockVendorRepository)
		dispatcher := new(MockDispatcher)
		svc := newPaymentService(payRepo, custRepo, vendRepo, dispatcher, now)
		sess := adminSession(vendorID)

		customer := &model.Customer{ID: 7, VendorID: vendorID, ExpiryDate: now.AddDate(0, 0, 10)}
		custRepo.On("Get", ctx, sess, int64(7)).Return(customer, nil)
		custRepo.On("WithinTransaction", ctx, mock.Anything).Return(nil)
		payRepo.On("Create", ctx, mock.Anything).Return(&model.Payment{ID: 102}, nil)
		custRepo.On("UpdateSubscription", ctx, mock.Anything, mock.Anything, true).Return(nil)
		vendRepo.On("Get", ctx, vendorID).Return(testVendor(vendorID), nil)
		dispatcher.On("SendPaymentReceipt", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("provider timeout"))

		created, warning, err := svc.Record(ctx, sess, req)
		require.NoError(t, err)
		assert.NotNil(t, created)
		assert.Contains(t, warning, "confirmation SMS failed")
	})
}
