package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ipaynotify/ipaynotify/internal/model"
	"github.com/ipaynotify/ipaynotify/internal/repository"
	"github.com/ipaynotify/ipaynotify/internal/subscription"
	"github.com/ipaynotify/ipaynotify/pkg/logger"
	"github.com/ipaynotify/ipaynotify/pkg/prom"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) (*model.Payment, error)
	List(ctx context.Context, sess *model.Session, f model.PaymentFilter) ([]*model.Payment, int64, error)
}

type PaymentService struct {
	payments   PaymentRepository
	customers  CustomerRepository
	vendors    VendorRepository
	dispatcher Dispatcher
	now        func() time.Time
}

func NewPaymentService(payments PaymentRepository, customers CustomerRepository, vendors VendorRepository, dispatcher Dispatcher) *PaymentService {
	return &PaymentService{
		payments:   payments,
		customers:  customers,
		vendors:    vendors,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Record stores a payment and extends the customer's expiry in one
// transaction; a payment never lands without its expiry update. The
// confirmation SMS (and the activation SMS when the payment revived an
// expired subscription) goes out after commit; a failed send is returned as
// a warning string.
func (s *PaymentService) Record(ctx context.Context, sess *model.Session, req model.PaymentCreateRequest) (*model.Payment, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	customer, err := s.customers.Get(ctx, sess, req.CustomerID)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	now := s.now()
	wasExpired := subscription.IsExpired(customer.ExpiryDate, now)
	newExpiry, err := subscription.Extend(customer.ExpiryDate, now, req.MonthsPaid)
	if err != nil {
		return nil, "", err
	}

	method, _ := model.ParsePaymentMethod(req.Method)
	reference := req.Reference
	if reference == "" {
		reference = uuid.NewString()
	}

	var created *model.Payment
	err = s.customers.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err = s.payments.Create(txCtx, &model.Payment{
			VendorID:    customer.VendorID,
			CustomerID:  customer.ID,
			Amount:      req.Amount,
			Method:      method,
			Reference:   reference,
			PaymentDate: now,
			MonthsPaid:  req.MonthsPaid,
			Notes:       req.Notes,
			RecordedBy:  sess.UserID,
		})
		if err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		if err := s.customers.UpdateSubscription(txCtx, customer.ID, newExpiry, true); err != nil {
			return fmt.Errorf("extend subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	prom.IncPaymentRecorded(string(method))

	var warning string
	var b *model.Vendor
	if b, err = s.vendors.Get(ctx, customer.VendorID); err != nil {
		logger.Warn("Vendor lookup for receipt failed", "vendor_id", customer.VendorID, "error", err)
	}
	if err := s.dispatcher.SendPaymentReceipt(ctx, customer, req.Amount, newExpiry, wasExpired, branding(b)); err != nil {
		warning = fmt.Sprintf("payment confirmation SMS failed: %s", err)
		logger.Warn("Payment confirmation SMS failed", "customer_id", customer.ID, "error", err)
	}

	return created, warning, nil
}

func (s *PaymentService) List(ctx context.Context, sess *model.Session, f model.PaymentFilter) ([]*model.Payment, int64, error) {
	return s.payments.List(ctx, sess, f)
}
