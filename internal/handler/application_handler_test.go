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

type fakeApplicationSrv struct {
	lastRegister dto.ApplicationRequest
	lastStatus   dto.ApplicationStatusRequest
	lastQuery    dto.ApplicationQuery
	lastID       string
	err          error
}

func (f *fakeApplicationSrv) Register(_ context.Context, req dto.ApplicationRequest) (*models.Application, error) {
	f.lastRegister = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Application{ID: "app-1", Status: models.ApplicationPending}, nil
}

func (f *fakeApplicationSrv) Complete(_ context.Context, id string, _ dto.ApplicationDetailsRequest) (*models.ApplicationDetail, error) {
	f.lastID = id
	return &models.ApplicationDetail{Application: models.Application{ID: id}}, f.err
}

func (f *fakeApplicationSrv) Login(_ context.Context, _ dto.ApplicationLoginRequest) (*models.ApplicationDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ApplicationDetail{Application: models.Application{ID: "app-1"}}, nil
}

func (f *fakeApplicationSrv) Get(_ context.Context, id string) (*models.ApplicationDetail, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &models.ApplicationDetail{Application: models.Application{ID: id}, BranchName: "Chilonzor"}, nil
}

func (f *fakeApplicationSrv) List(_ context.Context, query dto.ApplicationQuery) ([]models.ApplicationDetail, *models.Pagination, error) {
	f.lastQuery = query
	return []models.ApplicationDetail{}, &models.Pagination{Page: query.Page, PageSize: 20}, nil
}

func (f *fakeApplicationSrv) UpdateStatus(_ context.Context, id string, req dto.ApplicationStatusRequest) (*dto.ApplicationStatusResult, error) {
	f.lastID, f.lastStatus = id, req
	return &dto.ApplicationStatusResult{Application: models.Application{ID: id, Status: models.ApplicationStatus(req.Status)}, UserMessage: "Your application has been approved."}, nil
}

func (f *fakeApplicationSrv) AttachProject(_ context.Context, id string, _ dto.ProjectLinkRequest) (*models.ApplicationDetail, error) {
	f.lastID = id
	return &models.ApplicationDetail{Application: models.Application{ID: id}}, nil
}

func TestApplicationHandlerRegister(t *testing.T) {
	srv := &fakeApplicationSrv{}
	handler := NewApplicationHandler(srv)
	body := `{"name":"Sardor","surname":"Tursunov","mentorId":"m-1","branchId":"b-1","grade":"junior","yearsOfStudy":2,
		"direction":"backend","telegramUsername":"sardor_t","phone":"+998901234567","date":"2024-02-05T10:00:00Z"}`
	c, rec := newTestContext(http.MethodPost, "/applications", body)
	handler.Register(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Sardor", srv.lastRegister.Name)
	assert.Equal(t, 2, srv.lastRegister.YearsOfStudy)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "app-1", envelope.Data["id"])

	c, rec = newTestContext(http.MethodPost, "/applications", `{"name":`)
	handler.Register(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	srv.err = appErrors.Clone(appErrors.ErrValidation, "mentor not found")
	c, rec = newTestContext(http.MethodPost, "/applications", body)
	handler.Register(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplicationHandlerUpdateStatus(t *testing.T) {
	srv := &fakeApplicationSrv{}
	handler := NewApplicationHandler(srv)
	c, rec := newTestContext(http.MethodPatch, "/applications/app-1/status", `{"status":"approved"}`)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}
	handler.UpdateStatus(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "app-1", srv.lastID)
	assert.Equal(t, "approved", srv.lastStatus.Status)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "Your application has been approved.", envelope.Data["userMessage"])
}

func TestApplicationHandlerGetNotFound(t *testing.T) {
	srv := &fakeApplicationSrv{err: appErrors.Clone(appErrors.ErrNotFound, "application not found")}
	handler := NewApplicationHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/applications/missing", "")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "missing", srv.lastID)
}

func TestApplicationHandlerListBindsQuery(t *testing.T) {
	srv := &fakeApplicationSrv{}
	handler := NewApplicationHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/applications?status=pending&branchId=b-1&page=3", "")
	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", srv.lastQuery.Status)
	assert.Equal(t, "b-1", srv.lastQuery.BranchID)
	assert.Equal(t, 3, srv.lastQuery.Page)
}

func TestApplicationHandlerLoginAndProject(t *testing.T) {
	srv := &fakeApplicationSrv{}
	handler := NewApplicationHandler(srv)

	c, rec := newTestContext(http.MethodPut, "/applications/app-1/project", `{"projectLink":"https://github.com/sardor/todo"}`)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}
	handler.AttachProject(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "app-1", srv.lastID)

	srv.err = appErrors.Clone(appErrors.ErrValidation, "no application matches these details")
	c, rec = newTestContext(http.MethodPost, "/applications/login", `{"name":"a","surname":"b","telegramUsername":"c","phone":"d"}`)
	handler.Login(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
