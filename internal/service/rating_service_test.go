package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-progress-api/internal/models"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

func newRatingFixture() (*RatingService, *fakeInternStore) {
	store := newFakeInternStore()
	store.ratings = []models.RatingInput{
		{InternID: "i2", Name: "Bekzod", BranchID: "b1", BranchName: "Chilonzor", Grade: models.GradeJunior,
			AverageStars: 2, FeedbackCount: 1, LessonCount: 4, ConfirmedThisMonth: 2},
		{InternID: "i1", Name: "Aziz", LastName: "Karimov", BranchID: "b1", BranchName: "Chilonzor", Grade: models.GradeJunior,
			AverageStars: 5, FeedbackCount: 30, LessonCount: 30, ConfirmedThisMonth: 24},
	}
	svc := NewRatingService(store, testEngine(), nil)
	svc.now = fixedClock(date(2024, 3, 15))
	return svc, store
}

func TestRatingServiceListRanks(t *testing.T) {
	svc, _ := newRatingFixture()

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list.Interns, 2)
	assert.Equal(t, "Aziz Karimov", list.Interns[0].Name)
	assert.Equal(t, 5.0, list.Interns[0].RatingScore)
	require.Len(t, list.Branches, 1)
	assert.Equal(t, 2, list.Branches[0].InternsCount)
}

func TestRatingServiceListUnknownGrade(t *testing.T) {
	svc, store := newRatingFixture()
	store.ratings[0].Grade = "principal"

	_, err := svc.List(context.Background())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConfigIntegrity))
}

func TestRatingServiceExportCSV(t *testing.T) {
	svc, _ := newRatingFixture()

	file, err := svc.Export(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "rating-20240315.csv", file.Filename)
	assert.Contains(t, file.ContentType, "text/csv")
	lines := strings.Split(strings.TrimPrefix(string(file.Body), "\ufeff"), "\n")
	assert.Equal(t, "Rank,Name,Branch,Grade,Average stars,Activity,Plan %,Lessons,Feedbacks,Rating", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,Aziz Karimov,Chilonzor,junior,5.00"))
}

func TestRatingServiceExportPDFAndBadFormat(t *testing.T) {
	svc, _ := newRatingFixture()

	file, err := svc.Export(context.Background(), "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))

	_, err = svc.Export(context.Background(), "xlsx")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}
