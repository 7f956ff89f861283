package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-progress-api/internal/dto"
	"github.com/noah-isme/intern-progress-api/internal/models"
	"github.com/noah-isme/intern-progress-api/pkg/response"
)

type questionService interface {
	Create(ctx context.Context, req dto.QuestionRequest) (*models.Question, error)
	List(ctx context.Context, query dto.QuestionQuery) ([]models.Question, error)
	Update(ctx context.Context, id string, req dto.QuestionRequest) (*models.Question, error)
	Delete(ctx context.Context, id string) error
}

// QuestionHandler exposes the interview question bank.
type QuestionHandler struct {
	questions questionService
}

// NewQuestionHandler constructs QuestionHandler.
func NewQuestionHandler(questions questionService) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

// List godoc
// @Summary List questions
// @Tags Questions
// @Produce json
// @Param direction query string false "frontend, backend or fullstack"
// @Param difficulty query string false "easy, medium or hard"
// @Param topic query string false "Topic"
// @Success 200 {object} response.Envelope
// @Router /questions [get]
func (h *QuestionHandler) List(c *gin.Context) {
	var query dto.QuestionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	items, err := h.questions.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Add a question
// @Tags Questions
// @Accept json
// @Produce json
// @Param payload body dto.QuestionRequest true "Question payload"
// @Success 201 {object} response.Envelope
// @Router /questions [post]
func (h *QuestionHandler) Create(c *gin.Context) {
	var req dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	q, err := h.questions.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, q)
}

// Update godoc
// @Summary Replace a question
// @Tags Questions
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param payload body dto.QuestionRequest true "Question payload"
// @Success 200 {object} response.Envelope
// @Router /questions/{id} [put]
func (h *QuestionHandler) Update(c *gin.Context) {
	var req dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	q, err := h.questions.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, q, nil)
}

// Delete godoc
// @Summary Delete a question
// @Tags Questions
// @Param id path string true "Question ID"
// @Success 204
// @Router /questions/{id} [delete]
func (h *QuestionHandler) Delete(c *gin.Context) {
	if err := h.questions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
