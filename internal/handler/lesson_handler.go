package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-progress-api/internal/dto"
	"github.com/noah-isme/intern-progress-api/pkg/response"
)

type lessonService interface {
	RecordVisit(ctx context.Context, internID string, req dto.RecordLessonRequest) (*dto.RecordLessonResponse, error)
	RateLesson(ctx context.Context, lessonID string, req dto.RateLessonRequest) (*dto.RateLessonResponse, error)
	Attendance(ctx context.Context, query dto.AttendanceQuery) (*dto.AttendanceReport, error)
}

// LessonHandler exposes the attendance and rating ledgers.
type LessonHandler struct {
	lessons lessonService
}

// NewLessonHandler constructs LessonHandler.
func NewLessonHandler(lessons lessonService) *LessonHandler {
	return &LessonHandler{lessons: lessons}
}

// Record godoc
// @Summary Record a lesson visit
// @Description Repeating a lesson id for the same mentor increments its visit count.
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Intern ID"
// @Param payload body dto.RecordLessonRequest true "Visit payload"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope "visit count incremented"
// @Failure 422 {object} response.Envelope
// @Router /interns/{id}/lessons [post]
func (h *LessonHandler) Record(c *gin.Context) {
	var req dto.RecordLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.lessons.RecordVisit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if result.Appended {
		status = http.StatusCreated
	}
	response.JSON(c, status, result, nil)
}

// Rate godoc
// @Summary Rate a pending lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.RateLessonRequest true "Rating payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /lessons/{id}/rate [post]
func (h *LessonHandler) Rate(c *gin.Context) {
	var req dto.RateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.lessons.RateLesson(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Attendance godoc
// @Summary Attendance against the working-day norm
// @Tags Lessons
// @Produce json
// @Param period query string false "month (default), week or custom"
// @Param from query string false "Custom window start (YYYY-MM-DD)"
// @Param to query string false "Custom window end, inclusive (YYYY-MM-DD)"
// @Param branchId query string false "Filter by branch"
// @Param internId query string false "Filter by intern"
// @Success 200 {object} response.Envelope
// @Router /lessons/attendance [get]
func (h *LessonHandler) Attendance(c *gin.Context) {
	var query dto.AttendanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	report, err := h.lessons.Attendance(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
