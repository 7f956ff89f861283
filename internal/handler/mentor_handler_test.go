package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-progress-api/internal/dto"
	"github.com/noah-isme/intern-progress-api/internal/models"
	"github.com/noah-isme/intern-progress-api/internal/progression"
)

type fakeMentorSrv struct{}

func (fakeMentorSrv) List(_ context.Context, branchID string) ([]models.Mentor, error) {
	return []models.Mentor{{ID: "mentor-x", BranchID: branchID}}, nil
}

func (fakeMentorSrv) Debt(_ context.Context, id string) (*progression.MentorDebt, error) {
	return &progression.MentorDebt{MentorID: id, Count: 2, Details: []progression.DebtDetail{}}, nil
}

func (fakeMentorSrv) AllDebt(context.Context) ([]dto.MentorDebtSummary, error) {
	return []dto.MentorDebtSummary{{MentorID: "mentor-x", Count: 3}, {MentorID: "mentor-y", Count: 1}}, nil
}

func (fakeMentorSrv) Stats(_ context.Context, id string) (*dto.MentorStats, error) {
	return &dto.MentorStats{MonthLessons: 7, TotalDebt: 2}, nil
}

func TestMentorHandlerDebt(t *testing.T) {
	handler := NewMentorHandler(fakeMentorSrv{})
	c, rec := newTestContext(http.MethodGet, "/mentors/mentor-x/debt", "")
	c.Params = gin.Params{{Key: "id", Value: "mentor-x"}}
	handler.Debt(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "mentor-x", envelope.Data["mentorId"])
	assert.EqualValues(t, 2, envelope.Data["count"])
}

func TestMentorHandlerAllDebtAndStats(t *testing.T) {
	handler := NewMentorHandler(fakeMentorSrv{})
	c, rec := newTestContext(http.MethodGet, "/mentors/debt", "")
	handler.AllDebt(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mentor-y"`)

	c, rec = newTestContext(http.MethodGet, "/mentors/mentor-x/stats", "")
	c.Params = gin.Params{{Key: "id", Value: "mentor-x"}}
	handler.Stats(c)
	envelope := decodeEnvelope(t, rec)
	assert.EqualValues(t, 7, envelope.Data["monthLessons"])
}

func TestMentorHandlerListPassesBranch(t *testing.T) {
	handler := NewMentorHandler(fakeMentorSrv{})
	c, rec := newTestContext(http.MethodGet, "/mentors?branchId=branch-1", "")
	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"branch_id":"branch-1"`)
}
