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

type fakeInternSrv struct {
	lastFilter  models.InternFilter
	lastCreate  dto.CreateInternRequest
	lastPromote dto.PromoteRequest
	promoteErr  error
	deleteErr   error
}

func (f *fakeInternSrv) List(_ context.Context, filter models.InternFilter) ([]models.Intern, *models.Pagination, error) {
	f.lastFilter = filter
	return []models.Intern{{ID: "intern-1", Username: "aziz"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (f *fakeInternSrv) Get(_ context.Context, id string) (*dto.InternDetail, error) {
	return &dto.InternDetail{Intern: models.Intern{ID: id}}, nil
}

func (f *fakeInternSrv) Create(_ context.Context, req dto.CreateInternRequest) (*models.Intern, error) {
	f.lastCreate = req
	return &models.Intern{ID: "intern-9", Username: req.Username, Grade: models.GradeJunior}, nil
}

func (f *fakeInternSrv) Update(_ context.Context, id string, _ dto.UpdateInternRequest) (*models.Intern, error) {
	return &models.Intern{ID: id}, nil
}

func (f *fakeInternSrv) Delete(context.Context, string) error { return f.deleteErr }

func (f *fakeInternSrv) Promote(_ context.Context, id string, req dto.PromoteRequest) (*dto.PromotionResponse, error) {
	f.lastPromote = req
	if f.promoteErr != nil {
		return nil, f.promoteErr
	}
	return &dto.PromotionResponse{Intern: models.Intern{ID: id, Grade: models.Grade(req.Grade)}, WasWithConcession: req.WithConcession}, nil
}

func (f *fakeInternSrv) Grades() ([]dto.GradeEntry, error) {
	return []dto.GradeEntry{{Grade: models.GradeJunior, Rank: 1}}, nil
}

func TestInternHandlerListParsesFilter(t *testing.T) {
	srv := &fakeInternSrv{}
	handler := NewInternHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/interns?search=%20aziz%20&branchId=b1&grade=junior&page=2&limit=5", "")
	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "aziz", srv.lastFilter.Search)
	assert.Equal(t, "b1", srv.lastFilter.BranchID)
	assert.Equal(t, models.GradeJunior, srv.lastFilter.Grade)
	assert.Equal(t, 2, srv.lastFilter.Page)
	assert.Equal(t, 5, srv.lastFilter.PageSize)
	assert.Contains(t, rec.Body.String(), `"pagination"`)
}

func TestInternHandlerCreate(t *testing.T) {
	srv := &fakeInternSrv{}
	handler := NewInternHandler(srv)

	c, rec := newTestContext(http.MethodPost, "/interns", `{"username":"aziz","name":"Aziz","branchId":"b1","mentorId":"m1","legacyLessons":3}`)
	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 3, srv.lastCreate.LegacyLessons)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "aziz", envelope.Data["username"])
}

func TestInternHandlerCreateRejectsMalformedBody(t *testing.T) {
	handler := NewInternHandler(&fakeInternSrv{})

	c, rec := newTestContext(http.MethodPost, "/interns", `{"username":`)
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error["code"])
}

func TestInternHandlerPromote(t *testing.T) {
	srv := &fakeInternSrv{}
	handler := NewInternHandler(srv)

	c, rec := newTestContext(http.MethodPost, "/interns/intern-1/promote", `{"grade":"strong_junior","withConcession":true}`)
	c.Params = gin.Params{{Key: "id", Value: "intern-1"}}
	handler.Promote(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, srv.lastPromote.WithConcession)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Data["wasWithConcession"])
}

func TestInternHandlerPromotePolicyRejection(t *testing.T) {
	srv := &fakeInternSrv{promoteErr: appErrors.Clone(appErrors.ErrPolicyRejected, "concession requires 50-60% progress")}
	handler := NewInternHandler(srv)

	c, rec := newTestContext(http.MethodPost, "/interns/intern-1/promote", `{"grade":"strong_junior","withConcession":true}`)
	c.Params = gin.Params{{Key: "id", Value: "intern-1"}}
	handler.Promote(c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "POLICY_REJECTED", envelope.Error["code"])
}

func TestInternHandlerDelete(t *testing.T) {
	handler := NewInternHandler(&fakeInternSrv{})
	c, rec := newTestContext(http.MethodDelete, "/interns/intern-1", "")
	c.Params = gin.Params{{Key: "id", Value: "intern-1"}}
	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, rec.Code)

	handler = NewInternHandler(&fakeInternSrv{deleteErr: appErrors.Clone(appErrors.ErrNotFound, "intern not found")})
	c, rec = newTestContext(http.MethodDelete, "/interns/missing", "")
	handler.Delete(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
