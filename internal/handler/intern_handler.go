package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-progress-api/internal/dto"
	"github.com/noah-isme/intern-progress-api/internal/models"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
	"github.com/noah-isme/intern-progress-api/pkg/response"
)

type internService interface {
	List(ctx context.Context, filter models.InternFilter) ([]models.Intern, *models.Pagination, error)
	Get(ctx context.Context, id string) (*dto.InternDetail, error)
	Create(ctx context.Context, req dto.CreateInternRequest) (*models.Intern, error)
	Update(ctx context.Context, id string, req dto.UpdateInternRequest) (*models.Intern, error)
	Delete(ctx context.Context, id string) error
	Promote(ctx context.Context, id string, req dto.PromoteRequest) (*dto.PromotionResponse, error)
	Grades() ([]dto.GradeEntry, error)
}

// InternHandler exposes intern enrollment and grade endpoints.
type InternHandler struct {
	interns internService
}

// NewInternHandler constructs InternHandler.
func NewInternHandler(interns internService) *InternHandler {
	return &InternHandler{interns: interns}
}

// List godoc
// @Summary List interns
// @Tags Interns
// @Produce json
// @Param search query string false "Search by name or username"
// @Param branchId query string false "Filter by branch"
// @Param mentorId query string false "Filter by assigned mentor"
// @Param grade query string false "Filter by grade"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /interns [get]
func (h *InternHandler) List(c *gin.Context) {
	filter := models.InternFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		BranchID: c.Query("branchId"),
		MentorID: c.Query("mentorId"),
		Grade:    models.Grade(c.Query("grade")),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	interns, pagination, err := h.interns.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, interns, pagination)
}

// Get godoc
// @Summary Get intern detail
// @Tags Interns
// @Produce json
// @Param id path string true "Intern ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interns/{id} [get]
func (h *InternHandler) Get(c *gin.Context) {
	intern, err := h.interns.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intern, nil)
}

// Create godoc
// @Summary Enroll intern
// @Tags Interns
// @Accept json
// @Produce json
// @Param payload body dto.CreateInternRequest true "Intern payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /interns [post]
func (h *InternHandler) Create(c *gin.Context) {
	var req dto.CreateInternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	intern, err := h.interns.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, intern)
}

// Update godoc
// @Summary Update intern profile
// @Tags Interns
// @Accept json
// @Produce json
// @Param id path string true "Intern ID"
// @Param payload body dto.UpdateInternRequest true "Intern payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /interns/{id} [put]
func (h *InternHandler) Update(c *gin.Context) {
	var req dto.UpdateInternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	intern, err := h.interns.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intern, nil)
}

// Delete godoc
// @Summary Delete intern
// @Tags Interns
// @Param id path string true "Intern ID"
// @Success 204
// @Router /interns/{id} [delete]
func (h *InternHandler) Delete(c *gin.Context) {
	if err := h.interns.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Promote godoc
// @Summary Change intern grade
// @Description withConcession is recorded as given; strict mode limits it to the last probation week at 50-60% progress.
// @Tags Interns
// @Accept json
// @Produce json
// @Param id path string true "Intern ID"
// @Param payload body dto.PromoteRequest true "Promotion payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /interns/{id}/promote [post]
func (h *InternHandler) Promote(c *gin.Context) {
	var req dto.PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.interns.Promote(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Grades godoc
// @Summary List the grade ladder
// @Tags Interns
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *InternHandler) Grades(c *gin.Context) {
	grades, err := h.interns.Grades()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

func invalidPayload(err error) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}
