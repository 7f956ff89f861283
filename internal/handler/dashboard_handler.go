package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-progress-api/internal/dto"
	"github.com/noah-isme/intern-progress-api/internal/middleware"
	"github.com/noah-isme/intern-progress-api/pkg/response"
)

type dashboardService interface {
	Dashboard(ctx context.Context, internID string) (*dto.InternDashboard, bool, error)
	DashboardPDF(ctx context.Context, internID string) ([]byte, string, error)
}

// DashboardHandler serves intern dashboards.
type DashboardHandler struct {
	dashboards dashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboards dashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// Get godoc
// @Summary Intern progression dashboard
// @Tags Dashboard
// @Produce json,application/pdf
// @Param id path string true "Intern ID"
// @Param format query string false "json (default) or pdf"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope "grade missing from the grade table"
// @Router /interns/{id}/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	if strings.EqualFold(c.Query("format"), "pdf") {
		body, filename, err := h.dashboards.DashboardPDF(c.Request.Context(), c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Attachment(c, filename, "application/pdf", body)
		return
	}

	dashboard, hit, err := h.dashboards.Dashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, dashboard, nil, middleware.ExtractMeta(c))
}
