package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"

	gateway "github.com/ipaynotify/ipaynotify/internal/gateways"
	xhttp "github.com/ipaynotify/ipaynotify/pkg/http"
)

type GatewayService interface {
	GetStatus(ctx context.Context, reference string) (*gateway.StatusResponse, error)
	GetProviderStats() []gateway.ProviderStats
}

// GatewayHandler exposes the SMS gateway's operational surface: per-provider
// health/scoring stats and delivery status lookups by message reference.
type GatewayHandler struct {
	gw GatewayService
}

func RegisterGatewayRoutes(e *router.Group, h *GatewayHandler) {
	e.GET("/providers/stats", h.GetProviderStats)
	e.GET("/sms/status/{reference}", h.GetStatus)
}

func NewGatewayHandler(gw GatewayService) *GatewayHandler {
	return &GatewayHandler{
		gw: gw,
	}
}

func (h *GatewayHandler) GetProviderStats(ctx *xhttp.RequestCtx) {
	writeJSON(ctx, 200, h.gw.GetProviderStats())
}

func (h *GatewayHandler) GetStatus(ctx *xhttp.RequestCtx) {
	reference, _ := ctx.UserValue("reference").(string)
	if reference == "" {
		writeError(ctx, 400, "reference is required")
		return
	}

	resp, err := h.gw.GetStatus(ctx, reference)
	if err != nil {
		if errors.Is(err, gateway.ErrNoAvailableProviders) {
			writeError(ctx, 503, err.Error())
			return
		}
		writeError(ctx, 502, err.Error())
		return
	}
	writeJSON(ctx, 200, resp)
}
