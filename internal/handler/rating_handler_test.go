package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/intern-progress-api/internal/progression"
	"github.com/noah-isme/intern-progress-api/internal/service"
)

type fakeRatingSrv struct {
	lastFormat string
}

func (f *fakeRatingSrv) List(context.Context) (*progression.RatingList, error) {
	return &progression.RatingList{Interns: []progression.RatingEntry{}, Branches: []progression.BranchRating{}}, nil
}

func (f *fakeRatingSrv) Export(_ context.Context, format string) (*service.ExportFile, error) {
	f.lastFormat = format
	return &service.ExportFile{Body: []byte("Rank,Name\n"), ContentType: "text/csv; charset=utf-8", Filename: "rating-20240120.csv"}, nil
}

func TestRatingHandlerExport(t *testing.T) {
	srv := &fakeRatingSrv{}
	handler := NewRatingHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/ratings/export?format=csv", "")
	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", srv.lastFormat)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "rating-20240120.csv")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestRatingHandlerList(t *testing.T) {
	handler := NewRatingHandler(&fakeRatingSrv{})
	c, rec := newTestContext(http.MethodGet, "/ratings", "")
	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Contains(t, envelope.Data, "branches")
}
