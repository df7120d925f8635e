package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Role is the closed set of staff roles. It is deliberately not compared as a
// raw string anywhere; every branch point switches exhaustively.
type Role string

const (
	RoleStaff      Role = "staff"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStaff:
		return RoleStaff, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSuperAdmin:
		return RoleSuperAdmin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Session carries the acting user's claims. The backing identity provider is
// trusted as-is; the session is passed explicitly into every core operation
// instead of being read from ambient state.
type Session struct {
	UserID   string
	Email    string
	Role     Role
	VendorID uuid.UUID

	// SelectedVendor narrows a super_admin query to one vendor. Ignored for
	// other roles, which are always pinned to their own VendorID.
	SelectedVendor uuid.UUID
}

// Scoped reports whether queries for this session must be filtered to a
// single vendor, and which vendor that is.
func (s *Session) Scoped() (uuid.UUID, bool) {
	switch s.Role {
	case RoleSuperAdmin:
		if s.SelectedVendor != uuid.Nil {
			return s.SelectedVendor, true
		}
		return uuid.Nil, false
	case RoleAdmin, RoleStaff:
		return s.VendorID, true
	default:
		// unparsable roles never reach here; fail closed anyway
		return uuid.Nil, true
	}
}

// CanManage reports whether the session may perform destructive admin
// actions (deletes, vendor management).
func (s *Session) CanManage() bool {
	switch s.Role {
	case RoleSuperAdmin, RoleAdmin:
		return true
	case RoleStaff:
		return false
	default:
		return false
	}
}
