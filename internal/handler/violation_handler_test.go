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
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

type fakeViolationSrv struct {
	lastCategory string
	lastQuery    dto.ViolationQuery
	lastIntern   string
	recordErr    error
}

func (f *fakeViolationSrv) Rules(_ context.Context, category string) ([]models.Rule, error) {
	f.lastCategory = category
	return []models.Rule{}, nil
}

func (f *fakeViolationSrv) CreateRule(_ context.Context, req dto.RuleRequest) (*models.Rule, error) {
	return &models.Rule{ID: "rule-1"}, nil
}

func (f *fakeViolationSrv) Record(_ context.Context, internID string, _ dto.ViolationRequest) (*models.Violation, error) {
	f.lastIntern = internID
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	return &models.Violation{ID: "v-1", InternID: internID}, nil
}

func (f *fakeViolationSrv) List(_ context.Context, query dto.ViolationQuery) ([]models.ViolationDetail, *models.Pagination, error) {
	f.lastQuery = query
	return []models.ViolationDetail{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func TestViolationHandlerRulesPassesCategory(t *testing.T) {
	srv := &fakeViolationSrv{}
	handler := NewViolationHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/rules?category=Red", "")
	handler.Rules(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Red", srv.lastCategory)
}

func TestViolationHandlerRecord(t *testing.T) {
	srv := &fakeViolationSrv{}
	handler := NewViolationHandler(srv)
	c, rec := newTestContext(http.MethodPost, "/interns/intern-1/violations", `{"ruleId":"rule-1","notes":"late"}`)
	c.Params = gin.Params{{Key: "id", Value: "intern-1"}}
	handler.Record(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "intern-1", srv.lastIntern)

	srv.recordErr = appErrors.Clone(appErrors.ErrNotFound, "rule not found")
	c, rec = newTestContext(http.MethodPost, "/interns/intern-1/violations", `{"ruleId":"missing"}`)
	handler.Record(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViolationHandlerListBindsQuery(t *testing.T) {
	srv := &fakeViolationSrv{}
	handler := NewViolationHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/violations?category=yellow&from=2024-01-01&to=2024-01-31&page=2", "")
	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "yellow", srv.lastQuery.Category)
	assert.Equal(t, 2, srv.lastQuery.Page)
	require.NotNil(t, srv.lastQuery.To)
	assert.Equal(t, 31, srv.lastQuery.To.Day())
}
