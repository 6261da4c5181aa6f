package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/synergia/erp-api/internal/api/metrics"
	"github.com/synergia/erp-api/internal/core/ports"
)

type DashboardHandler struct {
	service ports.DashboardService
	metrics *metrics.Metrics
}

func NewDashboardHandler(service ports.DashboardService, m *metrics.Metrics) *DashboardHandler {
	return &DashboardHandler{service: service, metrics: m}
}

// Stats returns the dashboard aggregate.
//
// @Summary      Dashboard statistics
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=ports.DashboardStats}
// @Failure      401  {object}  Envelope
// @Router       /dashboard/stats [get]
func (h *DashboardHandler) Stats(c echo.Context) error {
	start := time.Now()
	stats, err := h.service.Stats(c.Request().Context())
	h.metrics.ObserveDashboard(time.Since(start))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, stats)
}
