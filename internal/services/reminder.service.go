package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ipaynotify/ipaynotify/internal/model"
	"github.com/ipaynotify/ipaynotify/internal/notify"
	"github.com/ipaynotify/ipaynotify/internal/repository"
	"github.com/ipaynotify/ipaynotify/internal/sms"
	"github.com/ipaynotify/ipaynotify/pkg/logger"
)

// reminderSweepDays is how far ahead the automatic sweep looks for expiring
// customers. One day beyond the expiring window so boundary rows are never
// missed by the coarse database filter.
const reminderSweepDays = 4

type ReminderService struct {
	customers  CustomerRepository
	vendors    VendorRepository
	dispatcher Dispatcher
	now        func() time.Time
}

func NewReminderService(customers CustomerRepository, vendors VendorRepository, dispatcher Dispatcher) *ReminderService {
	return &ReminderService{
		customers:  customers,
		vendors:    vendors,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// SendReminders sends expiry reminders. With explicit customer ids each
// listed customer gets a reminder whatever their status, stating the real
// day count; with no ids the service sweeps every customer in scope whose
// expiry falls inside the reminder window.
func (s *ReminderService) SendReminders(ctx context.Context, sess *model.Session, customerIDs []int64) (notify.BulkResult, error) {
	var result notify.BulkResult

	targeted := len(customerIDs) > 0
	var targets []model.Customer

	if targeted {
		for _, id := range customerIDs {
			c, err := s.customers.Get(ctx, sess, id)
			if err != nil {
				if errors.Is(err, repository.ErrCustomerNotFound) {
					result.FailureCount++
					result.Errors = append(result.Errors, fmt.Sprintf("customer %d: not found", id))
					continue
				}
				return result, err
			}
			targets = append(targets, *c)
		}
	} else {
		cutoff := s.now().AddDate(0, 0, reminderSweepDays)
		due, err := s.customers.ListDueForReminder(ctx, sess, cutoff)
		if err != nil {
			return result, err
		}
		for _, c := range due {
			targets = append(targets, *c)
		}
	}

	sent := s.dispatcher.SendReminders(ctx, targets, targeted, s.brandingFor())
	result.SuccessCount += sent.SuccessCount
	result.FailureCount += sent.FailureCount
	result.Errors = append(result.Errors, sent.Errors...)

	logger.Info("Reminder run finished", "targeted", targeted, "success", result.SuccessCount, "failed", result.FailureCount)
	return result, nil
}

// Broadcast pushes a maintenance, network update, or custom notice to the
// selected customers, or to every customer in scope when no ids are given.
func (s *ReminderService) Broadcast(ctx context.Context, sess *model.Session, kind, message string, customerIDs []int64) (notify.BulkResult, error) {
	var result notify.BulkResult

	event, err := notify.ParseBroadcastEvent(kind)
	if err != nil {
		return result, err
	}

	var targets []model.Customer
	if len(customerIDs) > 0 {
		for _, id := range customerIDs {
			c, err := s.customers.Get(ctx, sess, id)
			if err != nil {
				if errors.Is(err, repository.ErrCustomerNotFound) {
					result.FailureCount++
					result.Errors = append(result.Errors, fmt.Sprintf("customer %d: not found", id))
					continue
				}
				return result, err
			}
			targets = append(targets, *c)
		}
	} else {
		const pageSize = 1000
		for offset := 0; ; offset += pageSize {
			page, _, err := s.customers.List(ctx, sess, model.CustomerFilter{Limit: pageSize, Offset: offset})
			if err != nil {
				return result, err
			}
			for _, c := range page {
				targets = append(targets, *c)
			}
			if len(page) < pageSize {
				break
			}
		}
	}

	sent := s.dispatcher.Broadcast(ctx, event, targets, message, s.brandingFor())
	result.SuccessCount += sent.SuccessCount
	result.FailureCount += sent.FailureCount
	result.Errors = append(result.Errors, sent.Errors...)

	logger.Info("Broadcast finished", "kind", kind, "success", result.SuccessCount, "failed", result.FailureCount)
	return result, nil
}

// brandingFor resolves vendor branding once per vendor for the duration of
// one bulk run.
func (s *ReminderService) brandingFor() func(uuid.UUID) *sms.Branding {
	cache := make(map[uuid.UUID]*sms.Branding)
	return func(vendorID uuid.UUID) *sms.Branding {
		if b, ok := cache[vendorID]; ok {
			return b
		}
		v, err := s.vendors.Get(context.Background(), vendorID)
		if err != nil {
			cache[vendorID] = nil
			return nil
		}
		b := branding(v)
		cache[vendorID] = b
		return b
	}
}
