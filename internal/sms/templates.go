package sms

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// DefaultMaintenanceWindow is used when a maintenance broadcast does not
// specify a time window.
const DefaultMaintenanceWindow = "11 PM - 2 AM"

// Branding carries the per-vendor personalization fields. Absent fields fall
// back to the renderer's configured defaults.
type Branding struct {
	Name   string
	Phone  string
	Slogan string
}

// Renderer produces the six notification message kinds. All render methods
// are pure: identical inputs yield byte-identical output. The fallback
// business name/phone and the currency code are injected at construction
// rather than hardcoded in the templates.
type Renderer struct {
	businessName  string
	businessPhone string
	currency      string
}

func NewRenderer(businessName, businessPhone, currency string) *Renderer {
	if businessName == "" {
		businessName = "IpayNotify"
	}
	if businessPhone == "" {
		businessPhone = "0240000000"
	}
	if currency == "" {
		currency = "GHS"
	}
	return &Renderer{
		businessName:  businessName,
		businessPhone: businessPhone,
		currency:      currency,
	}
}

// Welcome greets a newly registered customer and states the first expiry.
func (r *Renderer) Welcome(name string, expiry time.Time, b *Branding) string {
	msg := fmt.Sprintf("Hi %s, welcome to %s! Your subscription is active until %s. For support, call %s.",
		FirstName(name), r.brandName(b), FormatDate(expiry), r.brandPhone(b))
	return withSlogan(msg, b)
}

// PaymentConfirmation acknowledges a received payment and states the new
// expiry. Amount is always rendered with two decimal places.
func (r *Renderer) PaymentConfirmation(name string, amount decimal.Decimal, newExpiry time.Time, b *Branding) string {
	msg := fmt.Sprintf("Hi %s, we have received your payment of %s %s. Your subscription is now active until %s. Thank you!",
		FirstName(name), r.currency, amount.StringFixed(2), FormatDate(newExpiry))
	return withSlogan(msg, b)
}

// Activation is sent only when a payment brings a previously expired
// customer back to active.
func (r *Renderer) Activation(name string, newExpiry time.Time, b *Branding) string {
	msg := fmt.Sprintf("Hi %s, your service has been reactivated. Your subscription is now active until %s. Welcome back!",
		FirstName(name), FormatDate(newExpiry))
	return withSlogan(msg, b)
}

// Expiring warns about an upcoming expiry. A non-positive daysLeft falls
// through to the Expired template so an off-by-one caller still sends a
// sensible message.
func (r *Renderer) Expiring(name string, daysLeft int, expiry time.Time, b *Branding) string {
	if daysLeft <= 0 {
		return r.Expired(name, -daysLeft, expiry, b)
	}
	msg := fmt.Sprintf("Hi %s, your subscription ends in %s on %s. Renew now to stay connected. Call %s to renew.",
		FirstName(name), pluralDays(daysLeft), FormatDate(expiry), r.brandPhone(b))
	return withSlogan(msg, b)
}

// Expired notifies a lapsed customer.
func (r *Renderer) Expired(name string, daysAgo int, expiry time.Time, b *Branding) string {
	msg := fmt.Sprintf("Hi %s, your subscription expired %s ago on %s. Renew now to restore your service. Call %s.",
		FirstName(name), pluralDays(daysAgo), FormatDate(expiry), r.brandPhone(b))
	return withSlogan(msg, b)
}

// Maintenance announces a scheduled maintenance window.
func (r *Renderer) Maintenance(name string, window string, b *Branding) string {
	if window == "" {
		window = DefaultMaintenanceWindow
	}
	msg := fmt.Sprintf("Hi %s, %s will undergo scheduled maintenance from %s. Service may be briefly interrupted. We apologize for any inconvenience.",
		FirstName(name), r.brandName(b), window)
	return withSlogan(msg, b)
}

// NetworkUpdate is a generic upgrade notice.
func (r *Renderer) NetworkUpdate(name string, b *Branding) string {
	msg := fmt.Sprintf("Hi %s, %s is upgrading its network to serve you better. You may notice improved service soon. Thank you for staying with us.",
		FirstName(name), r.brandName(b))
	return withSlogan(msg, b)
}

func (r *Renderer) brandName(b *Branding) string {
	if b != nil && b.Name != "" {
		return b.Name
	}
	return r.businessName
}

func (r *Renderer) brandPhone(b *Branding) string {
	if b != nil && b.Phone != "" {
		return b.Phone
	}
	return r.businessPhone
}

func withSlogan(msg string, b *Branding) string {
	if b != nil && b.Slogan != "" {
		return msg + "\n\n" + b.Slogan
	}
	return msg
}

// FirstName extracts the first whitespace-delimited token of a full name and
// capitalizes its first letter. Empty input yields the literal "Customer".
func FirstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return "Customer"
	}
	first := strings.ToLower(fields[0])
	runes := []rune(first)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// FormatDate renders a date as ordinal day, full month name and year,
// e.g. "21st November, 2025".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d%s %s, %d", t.Day(), ordinalSuffix(t.Day()), t.Month().String(), t.Year())
}

func ordinalSuffix(day int) string {
	switch day {
	case 1, 21, 31:
		return "st"
	case 2, 22:
		return "nd"
	case 3, 23:
		return "rd"
	default:
		return "th"
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
