package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Vendor is a tenant. Branding fields feed message personalization and the
// dashboard header; no business rule depends on them otherwise.
type Vendor struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slogan       string    `json:"slogan,omitempty"`
	LogoURL      string    `json:"logo_url,omitempty"`
	Website      string    `json:"website,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type VendorCreateRequest struct {
	Name         string
	Slogan       string
	LogoURL      string
	Website      string
	ContactEmail string
	ContactPhone string
	Address      string
}

func (p VendorCreateRequest) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}
