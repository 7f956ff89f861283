package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-progress-api/internal/dto"
	"github.com/noah-isme/intern-progress-api/internal/models"
	"github.com/noah-isme/intern-progress-api/pkg/response"
)

type applicationService interface {
	Register(ctx context.Context, req dto.ApplicationRequest) (*models.Application, error)
	Complete(ctx context.Context, id string, req dto.ApplicationDetailsRequest) (*models.ApplicationDetail, error)
	Login(ctx context.Context, req dto.ApplicationLoginRequest) (*models.ApplicationDetail, error)
	Get(ctx context.Context, id string) (*models.ApplicationDetail, error)
	List(ctx context.Context, query dto.ApplicationQuery) ([]models.ApplicationDetail, *models.Pagination, error)
	UpdateStatus(ctx context.Context, id string, req dto.ApplicationStatusRequest) (*dto.ApplicationStatusResult, error)
	AttachProject(ctx context.Context, id string, req dto.ProjectLinkRequest) (*models.ApplicationDetail, error)
}

// ApplicationHandler serves the admission form and its review.
type ApplicationHandler struct {
	applications applicationService
}

// NewApplicationHandler constructs ApplicationHandler.
func NewApplicationHandler(applications applicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// Register godoc
// @Summary Submit the first step of an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body dto.ApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Register(c *gin.Context) {
	var req dto.ApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	app, err := h.applications.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// Complete godoc
// @Summary Submit the second step of an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.ApplicationDetailsRequest true "Answers"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/details [put]
func (h *ApplicationHandler) Complete(c *gin.Context) {
	var req dto.ApplicationDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	app, err := h.applications.Complete(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Login godoc
// @Summary Look up an application by contact details
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body dto.ApplicationLoginRequest true "Contact details"
// @Success 200 {object} response.Envelope
// @Router /applications/login [post]
func (h *ApplicationHandler) Login(c *gin.Context) {
	var req dto.ApplicationLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	app, err := h.applications.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Get godoc
// @Summary Get an application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.applications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// List godoc
// @Summary List applications
// @Tags Applications
// @Produce json
// @Param status query string false "pending, approved or canceled"
// @Param branchId query string false "Filter by branch"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	var query dto.ApplicationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	items, pagination, err := h.applications.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// UpdateStatus godoc
// @Summary Approve, cancel or reopen an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.ApplicationStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req dto.ApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	res, err := h.applications.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// AttachProject godoc
// @Summary Attach the applicant's project link
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.ProjectLinkRequest true "Project link"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/project [put]
func (h *ApplicationHandler) AttachProject(c *gin.Context) {
	var req dto.ProjectLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	app, err := h.applications.AttachProject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}
