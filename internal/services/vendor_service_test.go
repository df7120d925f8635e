package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ipaynotify/ipaynotify/internal/model"
	"github.com/ipaynotify/ipaynotify/internal/repository"
)

func TestVendorService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("super_admin creates a vendor", func(t *testing.T) {
		vendRepo := new(MockVendorRepository)
		svc := NewVendorService(vendRepo)

		vendRepo.On("Create", ctx, mock.MatchedBy(func(v *model.Vendor) bool {
			return v.Name == "SwiftNet"
		})).Return(&model.Vendor{ID: uuid.New(), Name: "SwiftNet"}, nil)

		created, err := svc.Create(ctx, superSession(uuid.Nil), model.VendorCreateRequest{Name: "SwiftNet"})
		require.NoError(t, err)
		assert.Equal(t, "SwiftNet", created.Name)
	})

	t.Run("admin cannot create vendors", func(t *testing.T) {
		vendRepo := new(MockVendorRepository)
		svc := NewVendorService(vendRepo)

		_, err := svc.Create(ctx, adminSession(uuid.New()), model.VendorCreateRequest{Name: "SwiftNet"})
		assert.ErrorIs(t, err, ErrPermissionDenied)
		vendRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("name is required", func(t *testing.T) {
		svc := NewVendorService(new(MockVendorRepository))

		_, err := svc.Create(ctx, superSession(uuid.Nil), model.VendorCreateRequest{Name: "  "})
		assert.Error(t, err)
	})
}

func TestVendorService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("super_admin sees all vendors", func(t *testing.T) {
		vendRepo := new(MockVendorRepository)
		svc := NewVendorService(vendRepo)

		vendRepo.On("List", ctx).Return([]*model.Vendor{{Name: "A"}, {Name: "B"}}, nil)

		list, err := svc.List(ctx, superSession(uuid.Nil))
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("admin sees only their own vendor", func(t *testing.T) {
		vendRepo := new(MockVendorRepository)
		svc := NewVendorService(vendRepo)
		vendorID := uuid.New()

		vendRepo.On("Get", ctx, vendorID).Return(testVendor(vendorID), nil)

		list, err := svc.List(ctx, adminSession(vendorID))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, vendorID, list[0].ID)
		vendRepo.AssertNotCalled(t, "List", mock.Anything)
	})
}

func TestVendorService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("super_admin only", func(t *testing.T) {
		vendRepo := new(MockVendorRepository)
		svc := NewVendorService(vendRepo)

		assert.ErrorIs(t, svc.Delete(ctx, adminSession(uuid.New()), uuid.New()), ErrPermissionDenied)
	})

	t.Run("missing vendor maps to not found", func(t *testing.T) {
		vendRepo := new(MockVendorRepository)
		svc := NewVendorService(vendRepo)
		id := uuid.New()

		vendRepo.On("Delete", ctx, id).Return(repository.ErrVendorNotFound)
		assert.ErrorIs(t, svc.Delete(ctx, superSession(uuid.Nil), id), ErrNotFound)
	})
}
