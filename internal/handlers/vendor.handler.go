package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/google/uuid"

	"github.com/ipaynotify/ipaynotify/internal/model"
	xhttp "github.com/ipaynotify/ipaynotify/pkg/http"
)

type VendorService interface {
	Create(ctx context.Context, sess *model.Session, req model.VendorCreateRequest) (*model.Vendor, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Vendor, error)
	List(ctx context.Context, sess *model.Session) ([]*model.Vendor, error)
	Update(ctx context.Context, sess *model.Session, v *model.Vendor) (*model.Vendor, error)
	Delete(ctx context.Context, sess *model.Session, id uuid.UUID) error
}

type VendorHandler struct {
	svc VendorService
}

func RegisterVendorRoutes(e *router.Group, h *VendorHandler) {
	e.POST("/vendors", withSession(h.CreateVendor))
	e.GET("/vendors", withSession(h.ListVendors))
	e.GET("/vendors/{id}", withSession(h.GetVendor))
	e.PUT("/vendors/{id}", withSession(h.UpdateVendor))
	e.DELETE("/vendors/{id}", withSession(h.DeleteVendor))
}

func NewVendorHandler(svc VendorService) *VendorHandler {
	return &VendorHandler{
		svc: svc,
	}
}

type vendorRequest struct {
	Name         string `json:"name"`
	Slogan       string `json:"slogan,omitempty"`
	LogoURL      string `json:"logo_url,omitempty"`
	Website      string `json:"website,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Address      string `json:"address,omitempty"`
}

func (h *VendorHandler) CreateVendor(ctx *xhttp.RequestCtx, sess *model.Session) {
	var req vendorRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	created, err := h.svc.Create(ctx, sess, model.VendorCreateRequest{
		Name:         req.Name,
		Slogan:       req.Slogan,
		LogoURL:      req.LogoURL,
		Website:      req.Website,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
	})
	if err != nil {
		writeError(ctx, statusFor(err), err.Error())
		return
	}
	writeJSON(ctx, 201, created)
}

func (h *VendorHandler) GetVendor(ctx *xhttp.RequestCtx, sess *model.Session) {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "malformed vendor id")
		return
	}

	v, err := h.svc.Get(ctx, id)
	if err != nil {
		writeError(ctx, statusFor(err), err.Error())
		return
	}
	writeJSON(ctx, 200, v)
}

func (h *VendorHandler) ListVendors(ctx *xhttp.RequestCtx, sess *model.Session) {
	list, err := h.svc.List(ctx, sess)
	if err != nil {
		writeError(ctx, statusFor(err), err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": list})
}

func (h *VendorHandler) UpdateVendor(ctx *xhttp.RequestCtx, sess *model.Session) {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "malformed vendor id")
		return
	}

	var req vendorRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	updated, err := h.svc.Update(ctx, sess, &model.Vendor{
		ID:           id,
		Name:         req.Name,
		Slogan:       req.Slogan,
		LogoURL:      req.LogoURL,
		Website:      req.Website,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
	})
	if err != nil {
		writeError(ctx, statusFor(err), err.Error())
		return
	}
	writeJSON(ctx, 200, updated)
}

func (h *VendorHandler) DeleteVendor(ctx *xhttp.RequestCtx, sess *model.Session) {
	id, err := pathUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "malformed vendor id")
		return
	}

	if err := h.svc.Delete(ctx, sess, id); err != nil {
		writeError(ctx, statusFor(err), err.Error())
		return
	}
	ctx.Response.SetStatusCode(204)
}

func pathUUID(ctx *xhttp.RequestCtx, name string) (uuid.UUID, error) {
	v, _ := ctx.UserValue(name).(string)
	return uuid.Parse(v)
}
