package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ipaynotify/ipaynotify/internal/model"
	"github.com/ipaynotify/ipaynotify/internal/notify"
	"github.com/ipaynotify/ipaynotify/internal/repository"
	"github.com/ipaynotify/ipaynotify/internal/sms"
	"github.com/ipaynotify/ipaynotify/internal/subscription"
	"github.com/ipaynotify/ipaynotify/pkg/logger"
)

var (
	ErrInvalidPhone     = errors.New("invalid phone number")
	ErrVendorRequired   = errors.New("vendor_id is required for a global session")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) (*model.Customer, error)
	Get(ctx context.Context, sess *model.Session, id int64) (*model.Customer, error)
	List(ctx context.Context, sess *model.Session, f model.CustomerFilter) ([]*model.Customer, int64, error)
	ListDueForReminder(ctx context.Context, sess *model.Session, cutoff time.Time) ([]*model.Customer, error)
	UpdateSubscription(ctx context.Context, id int64, newExpiry time.Time, active bool) error
	Delete(ctx context.Context, sess *model.Session, id int64) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type VendorRepository interface {
	Create(ctx context.Context, v *model.Vendor) (*model.Vendor, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Vendor, error)
	List(ctx context.Context) ([]*model.Vendor, error)
	Update(ctx context.Context, v *model.Vendor) (*model.Vendor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Dispatcher interface {
	SendWelcome(ctx context.Context, c *model.Customer, b *sms.Branding) error
	SendPaymentReceipt(ctx context.Context, c *model.Customer, amount decimal.Decimal, newExpiry time.Time, wasExpired bool, b *sms.Branding) error
	SendReminders(ctx context.Context, customers []model.Customer, includeActive bool, brandingFor func(uuid.UUID) *sms.Branding) notify.BulkResult
	Broadcast(ctx context.Context, kind notify.Event, customers []model.Customer, message string, brandingFor func(uuid.UUID) *sms.Branding) notify.BulkResult
}

// CustomerView is a customer row plus its derived subscription state. The
// stored is_active flag is never surfaced as the status; the status comes
// from the expiry date on every read.
type CustomerView struct {
	model.Customer
	Status          subscription.Status `json:"status"`
	DaysRemaining   int                 `json:"days_remaining"`
	DaysSinceExpiry int                 `json:"days_since_expiry"`
}

type CustomerService struct {
	customers  CustomerRepository
	vendors    VendorRepository
	dispatcher Dispatcher
	normalizer *sms.Normalizer
	now        func() time.Time
}

func NewCustomerService(customers CustomerRepository, vendors VendorRepository, dispatcher Dispatcher, normalizer *sms.Normalizer) *CustomerService {
	return &CustomerService{
		customers:  customers,
		vendors:    vendors,
		dispatcher: dispatcher,
		normalizer: normalizer,
		now:        time.Now,
	}
}

// Create registers a customer with a one-month initial subscription and
// sends the welcome SMS. A failed welcome send is returned as a warning
// string, never as an error; the registration has already committed.
func (s *CustomerService) Create(ctx context.Context, sess *model.Session, req model.CustomerCreateRequest) (*CustomerView, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}
	if _, err := s.normalizer.Normalize(req.Phone); err != nil {
		return nil, "", ErrInvalidPhone
	}

	vendorID, err := resolveVendor(sess, req.VendorID)
	if err != nil {
		return nil, "", err
	}
	vendor, err := s.vendors.Get(ctx, vendorID)
	if err != nil {
		return nil, "", err
	}

	// Subscription and expiry dates are calendar dates; store them at
	// midnight so status transitions land on day boundaries.
	day := subscription.StartOfDay(s.now())
	tier, _ := model.ParseTier(req.Tier)

	created, err := s.customers.Create(ctx, &model.Customer{
		VendorID:         vendorID,
		Name:             strings.TrimSpace(req.Name),
		Phone:            strings.TrimSpace(req.Phone),
		Tier:             tier,
		MonthlyFee:       req.MonthlyFee,
		SubscriptionDate: day,
		ExpiryDate:       subscription.AddMonths(day, 1),
		IsActive:         true,
		Notes:            req.Notes,
	})
	if err != nil {
		return nil, "", err
	}

	var warning string
	if err := s.dispatcher.SendWelcome(ctx, created, branding(vendor)); err != nil {
		warning = fmt.Sprintf("welcome SMS failed: %s", err)
		logger.Warn("Welcome SMS failed", "customer_id", created.ID, "error", err)
	}

	view := s.view(created)
	return &view, warning, nil
}

func (s *CustomerService) Get(ctx context.Context, sess *model.Session, id int64) (*CustomerView, error) {
	c, err := s.customers.Get(ctx, sess, id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	view := s.view(c)
	return &view, nil
}

func (s *CustomerService) List(ctx context.Context, sess *model.Session, f model.CustomerFilter) ([]CustomerView, int64, error) {
	rows, total, err := s.customers.List(ctx, sess, f)
	if err != nil {
		return nil, 0, err
	}

	views := make([]CustomerView, len(rows))
	for i, c := range rows {
		views[i] = s.view(c)
	}
	return views, total, nil
}

func (s *CustomerService) Delete(ctx context.Context, sess *model.Session, id int64) error {
	if !sess.CanManage() {
		return ErrPermissionDenied
	}
	err := s.customers.Delete(ctx, sess, id)
	if errors.Is(err, repository.ErrCustomerNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *CustomerService) view(c *model.Customer) CustomerView {
	eval := subscription.Evaluate(c.ExpiryDate, s.now())
	return CustomerView{
		Customer:        *c,
		Status:          eval.Status,
		DaysRemaining:   eval.DaysRemaining(),
		DaysSinceExpiry: eval.DaysSinceExpiry(),
	}
}

// resolveVendor pins a mutation to one vendor. Scoped sessions always write
// into their own vendor; an unscoped super_admin must name one explicitly.
func resolveVendor(sess *model.Session, explicit uuid.UUID) (uuid.UUID, error) {
	if vendorID, scoped := sess.Scoped(); scoped {
		if vendorID == uuid.Nil {
			return uuid.Nil, ErrPermissionDenied
		}
		return vendorID, nil
	}
	if explicit == uuid.Nil {
		return uuid.Nil, ErrVendorRequired
	}
	return explicit, nil
}

func branding(v *model.Vendor) *sms.Branding {
	if v == nil {
		return nil
	}
	return &sms.Branding{
		Name:   v.Name,
		Phone:  v.ContactPhone,
		Slogan: v.Slogan,
	}
}
