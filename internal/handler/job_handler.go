package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
	"github.com/noah-isme/intern-progress-api/pkg/response"
	"github.com/noah-isme/intern-progress-api/pkg/scheduler"
)

type taskRunner interface {
	RunNow(ctx context.Context, name string) (scheduler.Result, error)
	Tasks() []scheduler.Info
}

// JobHandler lets operators inspect and trigger background tasks.
type JobHandler struct {
	tasks taskRunner
}

// NewJobHandler constructs JobHandler. A nil runner answers 503.
func NewJobHandler(tasks taskRunner) *JobHandler {
	return &JobHandler{tasks: tasks}
}

// List godoc
// @Summary List scheduled tasks
// @Tags Jobs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	if h.tasks == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "scheduler disabled"))
		return
	}
	response.JSON(c, http.StatusOK, h.tasks.Tasks(), nil)
}

// Run godoc
// @Summary Run a scheduled task now
// @Tags Jobs
// @Produce json
// @Param name path string true "Task name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /jobs/{name}/run [post]
func (h *JobHandler) Run(c *gin.Context) {
	if h.tasks == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "scheduler disabled"))
		return
	}
	result, err := h.tasks.RunNow(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, scheduler.ErrTaskNotFound) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "task not found"))
			return
		}
		// a failed run still reports its result
		if result.Task == "" {
			response.Error(c, err)
			return
		}
	}
	response.JSON(c, http.StatusOK, result, nil)
}
