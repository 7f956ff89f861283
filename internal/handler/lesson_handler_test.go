package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-progress-api/internal/dto"
	"github.com/noah-isme/intern-progress-api/internal/progression"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

type fakeLessonSrv struct {
	appended  bool
	recordErr error
	rateErr   error
	lastQuery dto.AttendanceQuery
	lastRate  dto.RateLessonRequest
}

func (f *fakeLessonSrv) RecordVisit(_ context.Context, _ string, _ dto.RecordLessonRequest) (*dto.RecordLessonResponse, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	return &dto.RecordLessonResponse{Appended: f.appended, Message: "ok"}, nil
}

func (f *fakeLessonSrv) RateLesson(_ context.Context, _ string, req dto.RateLessonRequest) (*dto.RateLessonResponse, error) {
	f.lastRate = req
	if f.rateErr != nil {
		return nil, f.rateErr
	}
	return &dto.RateLessonResponse{}, nil
}

func (f *fakeLessonSrv) Attendance(_ context.Context, query dto.AttendanceQuery) (*dto.AttendanceReport, error) {
	f.lastQuery = query
	return &dto.AttendanceReport{}, nil
}

func TestLessonHandlerRecordStatusFollowsAppend(t *testing.T) {
	cases := map[string]struct {
		appended bool
		status   int
	}{
		"new lesson":      {true, http.StatusCreated},
		"repeated lesson": {false, http.StatusOK},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			handler := NewLessonHandler(&fakeLessonSrv{appended: tc.appended})
			c, rec := newTestContext(http.MethodPost, "/interns/intern-1/lessons", `{"mentorId":"mentor-x","lessonId":"L1"}`)
			c.Params = gin.Params{{Key: "id", Value: "intern-1"}}
			handler.Record(c)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestLessonHandlerRecordRejection(t *testing.T) {
	handler := NewLessonHandler(&fakeLessonSrv{recordErr: appErrors.Clone(appErrors.ErrPolicyRejected, "too many unrated lessons (limit 3)")})
	c, rec := newTestContext(http.MethodPost, "/interns/intern-1/lessons", `{"mentorId":"mentor-x"}`)
	handler.Record(c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Contains(t, envelope.Error["message"], "limit 3")
}

func TestLessonHandlerRate(t *testing.T) {
	srv := &fakeLessonSrv{}
	handler := NewLessonHandler(srv)
	c, rec := newTestContext(http.MethodPost, "/lessons/L1/rate", `{"mentorId":"mentor-x","stars":4,"feedback":"good"}`)
	c.Params = gin.Params{{Key: "id", Value: "L1"}}
	handler.Rate(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, srv.lastRate.Stars)

	srv.rateErr = appErrors.Clone(appErrors.ErrPolicyRejected, "lesson already rated")
	c, rec = newTestContext(http.MethodPost, "/lessons/L1/rate", `{"mentorId":"mentor-x","stars":4}`)
	handler.Rate(c)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLessonHandlerAttendanceBindsQuery(t *testing.T) {
	srv := &fakeLessonSrv{}
	handler := NewLessonHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/lessons/attendance?period=custom&from=2024-02-05&to=2024-02-10&branchId=b1", "")
	handler.Attendance(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, progression.PeriodCustom, srv.lastQuery.Period)
	require.NotNil(t, srv.lastQuery.From)
	require.NotNil(t, srv.lastQuery.To)
	assert.Equal(t, time.February, srv.lastQuery.From.Month())
	assert.Equal(t, 10, srv.lastQuery.To.Day())
	assert.Equal(t, "b1", srv.lastQuery.BranchID)
}

func TestLessonHandlerAttendanceBadDate(t *testing.T) {
	handler := NewLessonHandler(&fakeLessonSrv{})
	c, rec := newTestContext(http.MethodGet, "/lessons/attendance?period=custom&from=05-02-2024", "")
	handler.Attendance(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
