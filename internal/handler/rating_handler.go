package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-progress-api/internal/progression"
	"github.com/noah-isme/intern-progress-api/internal/service"
	"github.com/noah-isme/intern-progress-api/pkg/response"
)

type ratingService interface {
	List(ctx context.Context) (*progression.RatingList, error)
	Export(ctx context.Context, format string) (*service.ExportFile, error)
}

// RatingHandler serves the intern rating list.
type RatingHandler struct {
	ratings ratingService
}

// NewRatingHandler constructs RatingHandler.
func NewRatingHandler(ratings ratingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

// List godoc
// @Summary Intern and branch rating
// @Tags Ratings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ratings [get]
func (h *RatingHandler) List(c *gin.Context) {
	list, err := h.ratings.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// Export godoc
// @Summary Download the rating list
// @Tags Ratings
// @Produce text/csv,application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /ratings/export [get]
func (h *RatingHandler) Export(c *gin.Context) {
	file, err := h.ratings.Export(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
