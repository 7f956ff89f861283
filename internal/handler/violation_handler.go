package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-progress-api/internal/dto"
	"github.com/noah-isme/intern-progress-api/internal/models"
	"github.com/noah-isme/intern-progress-api/pkg/response"
)

type violationService interface {
	Rules(ctx context.Context, category string) ([]models.Rule, error)
	CreateRule(ctx context.Context, req dto.RuleRequest) (*models.Rule, error)
	Record(ctx context.Context, internID string, req dto.ViolationRequest) (*models.Violation, error)
	List(ctx context.Context, query dto.ViolationQuery) ([]models.ViolationDetail, *models.Pagination, error)
}

// ViolationHandler exposes the rule catalog and violation log.
type ViolationHandler struct {
	violations violationService
}

// NewViolationHandler constructs ViolationHandler.
func NewViolationHandler(violations violationService) *ViolationHandler {
	return &ViolationHandler{violations: violations}
}

// Rules godoc
// @Summary List catalog rules
// @Tags Violations
// @Produce json
// @Param category query string false "green, yellow, red or black"
// @Success 200 {object} response.Envelope
// @Router /rules [get]
func (h *ViolationHandler) Rules(c *gin.Context) {
	rules, err := h.violations.Rules(c.Request.Context(), c.Query("category"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, nil)
}

// CreateRule godoc
// @Summary Add a catalog rule
// @Tags Violations
// @Accept json
// @Produce json
// @Param payload body dto.RuleRequest true "Rule payload"
// @Success 201 {object} response.Envelope
// @Router /rules [post]
func (h *ViolationHandler) CreateRule(c *gin.Context) {
	var req dto.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	rule, err := h.violations.CreateRule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rule)
}

// Record godoc
// @Summary Record a violation
// @Tags Violations
// @Accept json
// @Produce json
// @Param id path string true "Intern ID"
// @Param payload body dto.ViolationRequest true "Violation payload"
// @Success 201 {object} response.Envelope
// @Router /interns/{id}/violations [post]
func (h *ViolationHandler) Record(c *gin.Context) {
	var req dto.ViolationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	violation, err := h.violations.Record(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, violation)
}

// List godoc
// @Summary List violations
// @Tags Violations
// @Produce json
// @Param internId query string false "Filter by intern"
// @Param branchId query string false "Filter by branch"
// @Param category query string false "Filter by rule category"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date, inclusive (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /violations [get]
func (h *ViolationHandler) List(c *gin.Context) {
	var query dto.ViolationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	items, pagination, err := h.violations.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}
