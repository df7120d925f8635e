package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/fasthttp/router"
	"github.com/shopspring/decimal"

	"github.com/ipaynotify/ipaynotify/internal/model"
	xhttp "github.com/ipaynotify/ipaynotify/pkg/http"
)

type PaymentService interface {
	Record(ctx context.Context, sess *model.Session, req model.PaymentCreateRequest) (*model.Payment, string, error)
	List(ctx context.Context, sess *model.Session, f model.PaymentFilter) ([]*model.Payment, int64, error)
}

type PaymentHandler struct {
	svc PaymentService
}

func RegisterPaymentRoutes(e *router.Group, h *PaymentHandler) {
	e.POST("/payments", withSession(h.RecordPayment))
	e.GET("/payments", withSession(h.ListPayments))
}

func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{
		svc: svc,
	}
}

type recordPaymentRequest struct {
	CustomerID int64           `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	MonthsPaid int             `json:"months_paid"`
	Notes      string          `json:"notes,omitempty"`
}

type paymentResponse struct {
	Payment *model.Payment `json:"payment"`
	Warning string         `json:"warning,omitempty"`
}

type paymentListResponse struct {
	Items []*model.Payment `json:"items"`
	Total int64            `json:"total"`
}

func (h *PaymentHandler) RecordPayment(ctx *xhttp.RequestCtx, sess *model.Session) {
	var req recordPaymentRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	p := model.PaymentCreateRequest{
		CustomerID: req.CustomerID,
		Amount:     req.Amount,
		Method:     req.Method,
		Reference:  req.Reference,
		MonthsPaid: req.MonthsPaid,
		Notes:      req.Notes,
	}

	payment, warning, err := h.svc.Record(ctx, sess, p)
	if err != nil {
		writeError(ctx, statusFor(err), err.Error())
		return
	}
	writeJSON(ctx, 201, paymentResponse{Payment: payment, Warning: warning})
}

func (h *PaymentHandler) ListPayments(ctx *xhttp.RequestCtx, sess *model.Session) {
	var f model.PaymentFilter

	if v := query(ctx, "customer_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			f.CustomerID = &id
		}
	}
	if v := query(ctx, "method"); v != "" {
		method, err := model.ParsePaymentMethod(v)
		if err != nil {
			writeError(ctx, 400, err.Error())
			return
		}
		f.Method = &method
	}
	if v := query(ctx, "from"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.From = &t
		}
	}
	if v := query(ctx, "to"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.To = &t
		}
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
	writeJSON(ctx, 200, paymentListResponse{Items: items, Total: total})
}
