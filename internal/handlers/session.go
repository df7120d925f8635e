package handlers

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ipaynotify/ipaynotify/internal/model"
	xhttp "github.com/ipaynotify/ipaynotify/pkg/http"
)

// Session claims arrive as headers set by the identity-aware proxy in front
// of this service. The values are trusted as-is; this layer only parses and
// rejects malformed claims.
const (
	headerUserID         = "X-User-Id"
	headerUserEmail      = "X-User-Email"
	headerUserRole       = "X-User-Role"
	headerVendorID       = "X-Vendor-Id"
	headerSelectedVendor = "X-Selected-Vendor"
)

var errMissingClaims = errors.New("missing session claims")

func sessionFromHeaders(ctx *xhttp.RequestCtx) (*model.Session, error) {
	userID := strings.TrimSpace(string(ctx.Request.Header.Peek(headerUserID)))
	roleRaw := strings.TrimSpace(string(ctx.Request.Header.Peek(headerUserRole)))
	if userID == "" || roleRaw == "" {
		return nil, errMissingClaims
	}

	role, err := model.ParseRole(roleRaw)
	if err != nil {
		return nil, err
	}

	sess := &model.Session{
		UserID: userID,
		Email:  strings.TrimSpace(string(ctx.Request.Header.Peek(headerUserEmail))),
		Role:   role,
	}

	if v := strings.TrimSpace(string(ctx.Request.Header.Peek(headerVendorID))); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, errors.New("malformed vendor id claim")
		}
		sess.VendorID = id
	}
	if v := strings.TrimSpace(string(ctx.Request.Header.Peek(headerSelectedVendor))); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, errors.New("malformed selected vendor claim")
		}
		sess.SelectedVendor = id
	}

	// staff and admin must belong to a vendor
	if role != model.RoleSuperAdmin && sess.VendorID == uuid.Nil {
		return nil, errors.New("missing vendor id claim")
	}

	return sess, nil
}

// withSession wraps a handler that needs an authenticated session, rejecting
// requests with missing or malformed claims before the handler runs.
func withSession(h func(ctx *xhttp.RequestCtx, sess *model.Session)) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		sess, err := sessionFromHeaders(ctx)
		if err != nil {
			writeError(ctx, 401, err.Error())
			return
		}
		h(ctx, sess)
	}
}
