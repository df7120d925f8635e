package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ipaynotify/ipaynotify/internal/model"
	"github.com/ipaynotify/ipaynotify/internal/services"
	xhttp "github.com/ipaynotify/ipaynotify/pkg/http"
)

type CustomerService interface {
	Create(ctx context.Context, sess *model.Session, req model.CustomerCreateRequest) (*services.CustomerView, string, error)
	Get(ctx context.Context, sess *model.Session, id int64) (*services.CustomerView, error)
	List(ctx context.Context, sess *model.Session, f model.CustomerFilter) ([]services.CustomerView, int64, error)
	Delete(ctx context.Context, sess *model.Session, id int64) error
}

type CustomerHandler struct {
	svc CustomerService
}

func RegisterCustomerRoutes(e *router.Group, h *CustomerHandler) {
	e.POST("/customers", withSession(h.CreateCustomer))
	e.GET("/customers", withSession(h.ListCustomers))
	e.GET("/customers/{id}", withSession(h.GetCustomer))
	e.DELETE("/customers/{id}", withSession(h.DeleteCustomer))
}

func NewCustomerHandler(svc CustomerService) *CustomerHandler {
	return &CustomerHandler{
		svc: svc,
	}
}

type createCustomerRequest struct {
	VendorID   string          `json:"vendor_id,omitempty"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Tier       string          `json:"tier"`
	MonthlyFee decimal.Decimal `json:"monthly_fee"`
	Notes      string          `json:"notes,omitempty"`
}

type customerResponse struct {
	Customer *services.CustomerView `json:"customer"`
	Warning  string                 `json:"warning,omitempty"`
}

type customerListResponse struct {
	Items []services.CustomerView `json:"items"`
	Total int64                   `json:"total"`
}

func (h *CustomerHandler) CreateCustomer(ctx *xhttp.RequestCtx, sess *model.Session) {
	var req createCustomerRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	p := model.CustomerCreateRequest{
		Name:       req.Name,
		Phone:      req.Phone,
		Tier:       req.Tier,
		MonthlyFee: req.MonthlyFee,
		Notes:      req.Notes,
	}
	if req.VendorID != "" {
		id, err := uuid.Parse(req.VendorID)
		if err != nil {
			writeError(ctx, 400, "malformed vendor_id")
			return
		}
		p.VendorID = id
	}

	view, warning, err := h.svc.Create(ctx, sess, p)
	if err != nil {
		writeError(ctx, statusFor(err), err.Error())
		return
	}
	writeJSON(ctx, 201, customerResponse{Customer: view, Warning: warning})
}

func (h *CustomerHandler) GetCustomer(ctx *xhttp.RequestCtx, sess *model.Session) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "malformed customer id")
		return
	}

	view, err := h.svc.Get(ctx, sess, id)
	if err != nil {
		writeError(ctx, statusFor(err), err.Error())
		return
	}
	writeJSON(ctx, 200, view)
}

func (h *CustomerHandler) ListCustomers(ctx *xhttp.RequestCtx, sess *model.Session) {
	var f model.CustomerFilter

	if v := query(ctx, "tier"); v != "" {
		tier, err := model.ParseTier(v)
		if err != nil {
			writeError(ctx, 400, err.Error())
			return
		}
		f.Tier = &tier
	}
	if v := query(ctx, "search"); v != "" {
		f.Search = &v
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}
	if strings.EqualFold(query(ctx, "order"), "desc") {
		f.Desc = true
	}

	items, total, err := h.svc.List(ctx, sess, f)
	if err != nil {
		writeError(ctx, statusFor(err), err.Error())
		return
	}
	writeJSON(ctx, 200, customerListResponse{Items: items, Total: total})
}

func (h *CustomerHandler) DeleteCustomer(ctx *xhttp.RequestCtx, sess *model.Session) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "malformed customer id")
		return
	}

	if err := h.svc.Delete(ctx, sess, id); err != nil {
		writeError(ctx, statusFor(err), err.Error())
		return
	}
	ctx.Response.SetStatusCode(204)
}

/* ------------------------------- helpers ------------------------------- */

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return 404
	case errors.Is(err, services.ErrPermissionDenied):
		return 403
	default:
		return 400
	}
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	v, _ := ctx.UserValue(name).(string)
	return strconv.ParseInt(v, 10, 64)
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func parseTime(s string) (time.Time, error) {
	// RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
