package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-progress-api/internal/dto"
	"github.com/noah-isme/intern-progress-api/internal/models"
	"github.com/noah-isme/intern-progress-api/internal/progression"
	"github.com/noah-isme/intern-progress-api/pkg/response"
)

type mentorService interface {
	List(ctx context.Context, branchID string) ([]models.Mentor, error)
	Debt(ctx context.Context, mentorID string) (*progression.MentorDebt, error)
	AllDebt(ctx context.Context) ([]dto.MentorDebtSummary, error)
	Stats(ctx context.Context, mentorID string) (*dto.MentorStats, error)
}

// MentorHandler exposes mentor debt and activity.
type MentorHandler struct {
	mentors mentorService
}

// NewMentorHandler constructs MentorHandler.
func NewMentorHandler(mentors mentorService) *MentorHandler {
	return &MentorHandler{mentors: mentors}
}

// List godoc
// @Summary List mentors
// @Tags Mentors
// @Produce json
// @Param branchId query string false "Filter by branch"
// @Success 200 {object} response.Envelope
// @Router /mentors [get]
func (h *MentorHandler) List(c *gin.Context) {
	mentors, err := h.mentors.List(c.Request.Context(), c.Query("branchId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentors, nil)
}

// Debt godoc
// @Summary Unrated lessons of a mentor
// @Tags Mentors
// @Produce json
// @Param id path string true "Mentor ID"
// @Success 200 {object} response.Envelope
// @Router /mentors/{id}/debt [get]
func (h *MentorHandler) Debt(c *gin.Context) {
	debt, err := h.mentors.Debt(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, debt, nil)
}

// AllDebt godoc
// @Summary Mentors with unrated lessons, largest debt first
// @Tags Mentors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /mentors/debt [get]
func (h *MentorHandler) AllDebt(c *gin.Context) {
	debts, err := h.mentors.AllDebt(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, debts, nil)
}

// Stats godoc
// @Summary Mentor activity this month
// @Tags Mentors
// @Produce json
// @Param id path string true "Mentor ID"
// @Success 200 {object} response.Envelope
// @Router /mentors/{id}/stats [get]
func (h *MentorHandler) Stats(c *gin.Context) {
	stats, err := h.mentors.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
