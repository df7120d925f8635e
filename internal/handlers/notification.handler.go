package handlers

import (
	"context"

	"github.com/fasthttp/router"

	"github.com/ipaynotify/ipaynotify/internal/model"
	"github.com/ipaynotify/ipaynotify/internal/notify"
	xhttp "github.com/ipaynotify/ipaynotify/pkg/http"
)

type NotificationService interface {
	SendReminders(ctx context.Context, sess *model.Session, customerIDs []int64) (notify.BulkResult, error)
	Broadcast(ctx context.Context, sess *model.Session, kind, message string, customerIDs []int64) (notify.BulkResult, error)
}

type NotificationHandler struct {
	svc NotificationService
}

func RegisterNotificationRoutes(e *router.Group, h *NotificationHandler) {
	e.POST("/notifications/reminders", withSession(h.SendReminders))
	e.POST("/notifications/broadcast", withSession(h.Broadcast))
}

func NewNotificationHandler(svc NotificationService) *NotificationHandler {
	return &NotificationHandler{
		svc: svc,
	}
}

type reminderRequest struct {
	CustomerIDs []int64 `json:"customer_ids,omitempty"`
}

type broadcastRequest struct {
	Kind        string  `json:"kind"`
	Message     string  `json:"message,omitempty"`
	CustomerIDs []int64 `json:"customer_ids,omitempty"`
}

func (h *NotificationHandler) SendReminders(ctx *xhttp.RequestCtx, sess *model.Session) {
	var req reminderRequest
	if len(ctx.PostBody()) > 0 {
		if err := readJSON(ctx, &req); err != nil {
			writeError(ctx, 400, "invalid JSON: "+err.Error())
			return
		}
	}

	result, err := h.svc.SendReminders(ctx, sess, req.CustomerIDs)
	if err != nil {
		writeError(ctx, statusFor(err), err.Error())
		return
	}
	writeJSON(ctx, 200, result)
}

func (h *NotificationHandler) Broadcast(ctx *xhttp.RequestCtx, sess *model.Session) {
	var req broadcastRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	result, err := h.svc.Broadcast(ctx, sess, req.Kind, req.Message, req.CustomerIDs)
	if err != nil {
		writeError(ctx, statusFor(err), err.Error())
		return
	}
	writeJSON(ctx, 200, result)
}
