package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ipaynotify/ipaynotify/internal/model"
	"github.com/ipaynotify/ipaynotify/internal/sms"
	"github.com/ipaynotify/ipaynotify/internal/subscription"
	"github.com/ipaynotify/ipaynotify/pkg/logger"
	"github.com/ipaynotify/ipaynotify/pkg/prom"
)

// Event identifies a notification kind. It selects the template and labels
// the metrics for the send.
type Event string

const (
	EventWelcome        Event = "welcome"
	EventPaymentReceipt Event = "payment_confirmation"
	EventActivation     Event = "activation"
	EventExpiring       Event = "expiring"
	EventExpired        Event = "expired"
	EventMaintenance    Event = "maintenance"
	EventNetworkUpdate  Event = "network_update"
	EventCustom         Event = "custom"
)

// ParseBroadcastEvent accepts the broadcast kinds exposed over the API.
func ParseBroadcastEvent(s string) (Event, error) {
	switch Event(s) {
	case EventMaintenance, EventNetworkUpdate, EventCustom:
		return Event(s), nil
	default:
		return "", fmt.Errorf("unsupported broadcast kind %q", s)
	}
}

// Sender delivers one rendered message to one normalized recipient.
type Sender interface {
	Send(ctx context.Context, to, body, senderID string) error
}

// ReminderMarker persists the last-reminded timestamp after a successful
// reminder delivery.
type ReminderMarker interface {
	MarkReminded(ctx context.Context, customerID int64, at time.Time) error
}

// BulkResult summarizes a bulk send. Errors holds one human-readable entry
// per failed recipient; a failure never aborts the remainder of the batch.
type BulkResult struct {
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	Errors       []string `json:"errors,omitempty"`
}

func (r *BulkResult) fail(name string, err error) {
	r.FailureCount++
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %s", name, err))
}

type DispatcherConfig struct {
	SenderID   string
	MaxBodyLen int
}

// Dispatcher maps domain events onto SMS templates and pushes the rendered
// messages through the provider client one recipient at a time.
type Dispatcher struct {
	sender     Sender
	renderer   *sms.Renderer
	normalizer *sms.Normalizer
	dedupe     *Dedupe
	marker     ReminderMarker
	senderID   string
	maxBodyLen int
	now        func() time.Time
}

func NewDispatcher(sender Sender, renderer *sms.Renderer, normalizer *sms.Normalizer, dedupe *Dedupe, marker ReminderMarker, cfg DispatcherConfig) *Dispatcher {
	if cfg.MaxBodyLen <= 0 {
		cfg.MaxBodyLen = 320
	}
	return &Dispatcher{
		sender:     sender,
		renderer:   renderer,
		normalizer: normalizer,
		dedupe:     dedupe,
		marker:     marker,
		senderID:   SanitizeSenderID(cfg.SenderID),
		maxBodyLen: cfg.MaxBodyLen,
		now:        time.Now,
	}
}

// SendWelcome greets a freshly registered customer.
func (d *Dispatcher) SendWelcome(ctx context.Context, c *model.Customer, b *sms.Branding) error {
	body := d.renderer.Welcome(c.Name, c.ExpiryDate, b)
	return d.deliver(ctx, EventWelcome, c.Phone, body)
}

// SendPaymentReceipt confirms a recorded payment. When the payment revived
// an expired subscription a separate activation message follows the receipt.
func (d *Dispatcher) SendPaymentReceipt(ctx context.Context, c *model.Customer, amount decimal.Decimal, newExpiry time.Time, wasExpired bool, b *sms.Branding) error {
	body := d.renderer.PaymentConfirmation(c.Name, amount, newExpiry, b)
	if err := d.deliver(ctx, EventPaymentReceipt, c.Phone, body); err != nil {
		return err
	}

	if wasExpired {
		body = d.renderer.Activation(c.Name, newExpiry, b)
		if err := d.deliver(ctx, EventActivation, c.Phone, body); err != nil {
			return err
		}
	}
	return nil
}

// SendReminders walks a customer batch and sends an expiring or expired
// reminder to each one. Active customers are skipped unless includeActive is
// set; an explicitly targeted reminder goes out even when the expiry is far
// off, stating the real day count. Customers already reminded inside the
// dedupe window are reported as failures without a send attempt. A delivered
// reminder updates the customer's last-reminded timestamp.
func (d *Dispatcher) SendReminders(ctx context.Context, customers []model.Customer, includeActive bool, brandingFor func(uuid.UUID) *sms.Branding) BulkResult {
	var result BulkResult
	now := d.now()

	for i := range customers {
		c := &customers[i]

		eval := subscription.Evaluate(c.ExpiryDate, now)
		if eval.Status == subscription.StatusActive && !includeActive {
			continue
		}

		var kind Event
		var body string
		b := brandingFor(c.VendorID)
		if eval.Status == subscription.StatusExpired {
			kind = EventExpired
			body = d.renderer.Expired(c.Name, eval.DaysSinceExpiry(), c.ExpiryDate, b)
		} else {
			kind = EventExpiring
			body = d.renderer.Expiring(c.Name, eval.DaysRemaining(), c.ExpiryDate, b)
		}

		if d.dedupe != nil {
			acquired, err := d.dedupe.Acquire(c.ID, kind)
			if err != nil {
				result.fail(c.Name, err)
				continue
			}
			if !acquired {
				result.fail(c.Name, fmt.Errorf("reminder already sent recently"))
				continue
			}
		}

		if err := d.deliver(ctx, kind, c.Phone, body); err != nil {
			if d.dedupe != nil {
				if relErr := d.dedupe.Release(c.ID, kind); relErr != nil {
					logger.Warn("Failed to release reminder slot", "customer_id", c.ID, "error", relErr)
				}
			}
			result.fail(c.Name, err)
			continue
		}

		result.SuccessCount++

		if d.marker != nil {
			if err := d.marker.MarkReminded(ctx, c.ID, now); err != nil {
				logger.Warn("Failed to record reminder timestamp", "customer_id", c.ID, "error", err)
			}
		}
	}

	return result
}

// Broadcast sends a notice to every customer in the batch. The message
// argument is the maintenance window for maintenance notices and the raw
// body for custom broadcasts; network updates ignore it.
func (d *Dispatcher) Broadcast(ctx context.Context, kind Event, customers []model.Customer, message string, brandingFor func(uuid.UUID) *sms.Branding) BulkResult {
	var result BulkResult

	for i := range customers {
		c := &customers[i]
		b := brandingFor(c.VendorID)

		var body string
		switch kind {
		case EventMaintenance:
			body = d.renderer.Maintenance(c.Name, message, b)
		case EventNetworkUpdate:
			body = d.renderer.NetworkUpdate(c.Name, b)
		case EventCustom:
			if message == "" {
				result.fail(c.Name, fmt.Errorf("empty broadcast body"))
				continue
			}
			body = message
		default:
			result.fail(c.Name, fmt.Errorf("unsupported broadcast kind %q", kind))
			continue
		}

		if err := d.deliver(ctx, kind, c.Phone, body); err != nil {
			result.fail(c.Name, err)
			continue
		}
		result.SuccessCount++
	}

	return result
}

func (d *Dispatcher) deliver(ctx context.Context, kind Event, rawPhone, body string) error {
	to, err := d.normalizer.Normalize(rawPhone)
	if err != nil {
		prom.IncNotificationFailed(string(kind))
		return err
	}

	start := time.Now()
	err = d.sender.Send(ctx, to, truncateBody(body, d.maxBodyLen), d.senderID)
	prom.ObserveNotificationSendDuration(time.Since(start).Seconds(), string(kind))

	if err != nil {
		prom.IncNotificationFailed(string(kind))
		logger.Warn("Notification send failed", "kind", string(kind), "to", to, "error", err)
		return err
	}

	prom.IncNotificationSent(string(kind))
	logger.Debug("Notification sent", "kind", string(kind), "to", to)
	return nil
}

// SanitizeSenderID strips non-alphanumeric characters and caps the result at
// the 11 character alphanumeric sender limit carriers enforce.
func SanitizeSenderID(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out = append(out, r)
		}
		if len(out) == 11 {
			break
		}
	}
	if len(out) == 0 {
		return "IpayNotify"
	}
	return string(out)
}

func truncateBody(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
