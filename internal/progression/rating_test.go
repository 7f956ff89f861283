package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-progress-api/internal/models"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

func TestRankCompositeScore(t *testing.T) {
	engine := newTestEngine()
	list, err := engine.Rank([]models.RatingInput{
		{InternID: "i-0", Name: "Zero", Grade: models.GradeJunior},
		{InternID: "i-1", Name: "Aziz", LastName: "Karimov", BranchID: "b-1", BranchName: "North", Grade: models.GradeJunior,
			AverageStars: 5, FeedbackCount: 10, LessonCount: 10, ConfirmedThisMonth: 24},
	})
	require.NoError(t, err)
	require.Len(t, list.Interns, 2)

	top := list.Interns[0]
	assert.Equal(t, "i-1", top.InternID)
	assert.Equal(t, "Aziz Karimov", top.Name)
	assert.Equal(t, 4.85, top.RatingScore)
	assert.Equal(t, 1.0, top.ActivityRate)
	assert.Equal(t, 100.0, top.PlanCompletion)

	bottom := list.Interns[1]
	assert.Zero(t, bottom.RatingScore)
	assert.Equal(t, noBranch, bottom.Branch)

	require.Len(t, list.Branches, 2)
	assert.Equal(t, "North", list.Branches[0].Branch)
	assert.Equal(t, 4.85, list.Branches[0].Average)
	assert.Equal(t, 1, list.Branches[0].InternsCount)
}

func TestRankPartialPlanAndActivity(t *testing.T) {
	engine := newTestEngine()
	list, err := engine.Rank([]models.RatingInput{
		{InternID: "i-1", Name: "Aziz", Grade: models.GradeMiddle, AverageStars: 4, FeedbackCount: 3, LessonCount: 12, ConfirmedThisMonth: 20},
	})
	require.NoError(t, err)

	entry := list.Interns[0]
	assert.Equal(t, 0.25, entry.ActivityRate)
	assert.Equal(t, 40.0, entry.PlanCompletion)
	assert.Greater(t, entry.RatingScore, 2.0)
	assert.Less(t, entry.RatingScore, 4.0)
}

func TestRankTiesSortByName(t *testing.T) {
	engine := newTestEngine()
	list, err := engine.Rank([]models.RatingInput{
		{InternID: "i-2", Name: "Bea", Grade: models.GradeJunior, AverageStars: 3},
		{InternID: "i-1", Name: "Ali", Grade: models.GradeJunior, AverageStars: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "i-1", list.Interns[0].InternID)
	assert.Equal(t, "i-2", list.Interns[1].InternID)
}

func TestRankBranchAverages(t *testing.T) {
	engine := newTestEngine()
	list, err := engine.Rank([]models.RatingInput{
		{InternID: "a", Name: "A", BranchName: "North", Grade: models.GradeJunior, AverageStars: 4},
		{InternID: "b", Name: "B", BranchName: "North", Grade: models.GradeJunior, AverageStars: 2},
		{InternID: "c", Name: "C", BranchName: "South", Grade: models.GradeJunior, AverageStars: 4},
	})
	require.NoError(t, err)
	require.Len(t, list.Branches, 2)
	assert.Equal(t, "South", list.Branches[0].Branch)
	assert.Equal(t, 2.0, list.Branches[0].Average)
	assert.Equal(t, "North", list.Branches[1].Branch)
	assert.Equal(t, 1.5, list.Branches[1].Average)
	assert.Equal(t, 2, list.Branches[1].InternsCount)
}

func TestRankFailsOnUnknownGrade(t *testing.T) {
	engine := newTestEngine()
	_, err := engine.Rank([]models.RatingInput{
		{InternID: "a", Grade: models.GradeJunior},
		{InternID: "b", Grade: "principal"},
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConfigIntegrity))
}

func TestRankEmpty(t *testing.T) {
	list, err := newTestEngine().Rank(nil)
	require.NoError(t, err)
	assert.Empty(t, list.Interns)
	assert.Empty(t, list.Branches)
}
