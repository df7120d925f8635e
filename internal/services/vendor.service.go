package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ipaynotify/ipaynotify/internal/model"
	"github.com/ipaynotify/ipaynotify/internal/repository"
)

type VendorService struct {
	vendors VendorRepository
}

func NewVendorService(vendors VendorRepository) *VendorService {
	return &VendorService{vendors: vendors}
}

// Create registers a tenant. Only super_admin manages vendors.
func (s *VendorService) Create(ctx context.Context, sess *model.Session, req model.VendorCreateRequest) (*model.Vendor, error) {
	if sess.Role != model.RoleSuperAdmin {
		return nil, ErrPermissionDenied
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return s.vendors.Create(ctx, &model.Vendor{
		Name:         strings.TrimSpace(req.Name),
		Slogan:       req.Slogan,
		LogoURL:      req.LogoURL,
		Website:      req.Website,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
	})
}

func (s *VendorService) Get(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	v, err := s.vendors.Get(ctx, id)
	if errors.Is(err, repository.ErrVendorNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}

// List returns the vendors the session may see: all of them for
// super_admin, only the session's own vendor otherwise.
func (s *VendorService) List(ctx context.Context, sess *model.Session) ([]*model.Vendor, error) {
	if vendorID, scoped := sess.Scoped(); scoped {
		v, err := s.vendors.Get(ctx, vendorID)
		if err != nil {
			if errors.Is(err, repository.ErrVendorNotFound) {
				return []*model.Vendor{}, nil
			}
			return nil, err
		}
		return []*model.Vendor{v}, nil
	}
	return s.vendors.List(ctx)
}

func (s *VendorService) Update(ctx context.Context, sess *model.Session, v *model.Vendor) (*model.Vendor, error) {
	if sess.Role != model.RoleSuperAdmin {
		return nil, ErrPermissionDenied
	}
	updated, err := s.vendors.Update(ctx, v)
	if errors.Is(err, repository.ErrVendorNotFound) {
		return nil, ErrNotFound
	}
	return updated, err
}

func (s *VendorService) Delete(ctx context.Context, sess *model.Session, id uuid.UUID) error {
	if sess.Role != model.RoleSuperAdmin {
		return ErrPermissionDenied
	}
	err := s.vendors.Delete(ctx, id)
	if errors.Is(err, repository.ErrVendorNotFound) {
		return ErrNotFound
	}
	return err
}
