package sms

import (
	"errors"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// Normalizer converts local or international phone input into the gateway's
// required digits-only international format (country code + subscriber
// number, no leading plus).
type Normalizer struct {
	countryCode string
	trunkPrefix string
}

// NewNormalizer builds a normalizer for one country's numbering plan.
// Empty arguments fall back to the Ghanaian plan (233 with 0 trunk digit).
func NewNormalizer(countryCode, trunkPrefix string) *Normalizer {
	if countryCode == "" {
		countryCode = "233"
	}
	if trunkPrefix == "" {
		trunkPrefix = "0"
	}
	return &Normalizer{countryCode: countryCode, trunkPrefix: trunkPrefix}
}

// Normalize maps raw input to international digits. The operation is
// idempotent: an already-normalized number passes through unchanged.
func (n *Normalizer) Normalize(raw string) (string, error) {
	s := strings.Join(strings.Fields(raw), "")
	s = strings.TrimPrefix(s, "+")

	if s == "" {
		return "", ErrInvalidPhone
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}

	switch {
	case strings.HasPrefix(s, n.trunkPrefix):
		return n.countryCode + s[len(n.trunkPrefix):], nil
	case strings.HasPrefix(s, n.countryCode):
		return s, nil
	default:
		return n.countryCode + s, nil
	}
}
