package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/intern-progress-api/internal/models"
	"github.com/noah-isme/intern-progress-api/internal/progression"
	"github.com/noah-isme/intern-progress-api/internal/repository"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testEngine() *progression.Engine {
	return progression.NewEngine(progression.DefaultGradeTable(), progression.NewCalendar(time.Sunday, time.UTC, 2),
		progression.WindowWeek, progression.ProrationElapsed, progression.DefaultVisitPolicy())
}

func juniorIntern(id string, start time.Time) models.Intern {
	return models.Intern{
		ID:                 id,
		Username:           "user-" + id,
		Name:               "Aziz",
		LastName:           "Karimov",
		BranchID:           "branch-1",
		MentorID:           "mentor-own",
		Grade:              models.GradeJunior,
		ProbationStartDate: start,
		ProbationPeriod:    1,
		LessonsPerMonth:    24,
		Perks:              []string{},
		Version:            1,
	}
}

func visits(internID, mentorID string, n int, from time.Time, status models.LessonStatus) []models.LessonVisit {
	out := make([]models.LessonVisit, 0, n)
	for i := 0; i < n; i++ {
		d := from.AddDate(0, 0, i).Add(10 * time.Hour)
		out = append(out, models.LessonVisit{
			ID:         fmt.Sprintf("%s-%s-%s", internID, mentorID, d.Format("0102")),
			InternID:   internID,
			MentorID:   mentorID,
			Topic:      "Channels",
			Date:       d,
			Status:     status,
			VisitCount: 1,
		})
	}
	return out
}

type fakeInternStore struct {
	interns   map[string]models.Intern
	usernames map[string]string
	history   []models.PromotionRecord
	evaluated map[string][]string
	ratings   []models.RatingInput
	resetRows int64
	findCalls int
	err       error
}

func newFakeInternStore(interns ...models.Intern) *fakeInternStore {
	s := &fakeInternStore{interns: map[string]models.Intern{}, usernames: map[string]string{}, evaluated: map[string][]string{}}
	for _, in := range interns {
		s.interns[in.ID] = in
		s.usernames[in.Username] = in.ID
	}
	return s
}

func (s *fakeInternStore) List(ctx context.Context, filter models.InternFilter) ([]models.Intern, int, error) {
	out := make([]models.Intern, 0, len(s.interns))
	for _, in := range s.interns {
		out = append(out, in)
	}
	return out, len(out), s.err
}

func (s *fakeInternStore) FindByID(ctx context.Context, id string) (*models.Intern, error) {
	s.findCalls++
	if s.err != nil {
		return nil, s.err
	}
	in, ok := s.interns[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &in, nil
}

func (s *fakeInternStore) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	id, ok := s.usernames[username]
	return ok && id != excludeID, nil
}

func (s *fakeInternStore) Create(ctx context.Context, intern *models.Intern) error {
	if intern.ID == "" {
		intern.ID = fmt.Sprintf("intern-%d", len(s.interns)+1)
	}
	intern.Version = 1
	s.interns[intern.ID] = *intern
	s.usernames[intern.Username] = intern.ID
	return nil
}

func (s *fakeInternStore) UpdateProfile(ctx context.Context, intern *models.Intern) error {
	stored, ok := s.interns[intern.ID]
	if !ok || stored.Version != intern.Version {
		return repository.ErrVersionConflict
	}
	intern.Version++
	s.interns[intern.ID] = *intern
	return nil
}

func (s *fakeInternStore) ApplyPromotion(ctx context.Context, intern *models.Intern, expectedVersion int, record *models.PromotionRecord) error {
	stored, ok := s.interns[intern.ID]
	if !ok || stored.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	intern.Version = expectedVersion + 1
	s.interns[intern.ID] = *intern
	s.history = append(s.history, *record)
	return nil
}

func (s *fakeInternStore) Delete(ctx context.Context, id string) error {
	if _, ok := s.interns[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.interns, id)
	return nil
}

func (s *fakeInternStore) PromotionHistory(ctx context.Context, internID string) ([]models.PromotionRecord, error) {
	var out []models.PromotionRecord
	for _, r := range s.history {
		if r.InternID == internID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeInternStore) EvaluatedMentors(ctx context.Context, internID string) ([]string, error) {
	return s.evaluated[internID], nil
}

func (s *fakeInternStore) RatingInputs(ctx context.Context, monthStart, monthEnd time.Time) ([]models.RatingInput, error) {
	return s.ratings, s.err
}

func (s *fakeInternStore) ResetEvaluatedMentors(ctx context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	n := int64(0)
	for _, ids := range s.evaluated {
		n += int64(len(ids))
	}
	s.evaluated = map[string][]string{}
	s.resetRows = n
	return n, nil
}

type fakeDirectory struct {
	mentors  map[string]models.Mentor
	branches map[string]models.Branch
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		mentors: map[string]models.Mentor{
			"mentor-own": {ID: "mentor-own", Name: "Dilnoza", BranchID: "branch-1"},
			"mentor-x":   {ID: "mentor-x", Name: "Jasur", BranchID: "branch-1"},
			"mentor-y":   {ID: "mentor-y", Name: "Malika", BranchID: "branch-1"},
		},
		branches: map[string]models.Branch{"branch-1": {ID: "branch-1", Name: "Chilonzor"}},
	}
}

func (d *fakeDirectory) FindByID(ctx context.Context, id string) (*models.Mentor, error) {
	m, ok := d.mentors[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &m, nil
}

func (d *fakeDirectory) List(ctx context.Context, branchID string) ([]models.Mentor, error) {
	var out []models.Mentor
	for _, m := range d.mentors {
		if branchID == "" || m.BranchID == branchID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *fakeDirectory) FindBranch(ctx context.Context, id string) (*models.Branch, error) {
	b, ok := d.branches[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &b, nil
}

type fakeLessonStore struct {
	lessons      []models.LessonVisit
	pending      []models.PendingLesson
	counts       []models.MentorDebtCount
	monthStats   models.MentorMonthStats
	attendance   []models.AttendanceRow
	lastFilter   models.AttendanceFilter
	lastRestDay  time.Weekday
	lastTimezone string
	recordedAt   []int
	staleVersion bool
	err          error
}

func (s *fakeLessonStore) ListByIntern(ctx context.Context, internID string) ([]models.LessonVisit, error) {
	var out []models.LessonVisit
	for _, l := range s.lessons {
		if l.InternID == internID {
			out = append(out, l)
		}
	}
	return out, s.err
}

func (s *fakeLessonStore) Record(ctx context.Context, visit *models.LessonVisit) error {
	if s.err != nil {
		return s.err
	}
	if visit.ID != "" {
		for i := range s.lessons {
			if s.lessons[i].ID != visit.ID {
				continue
			}
			if s.lessons[i].InternID != visit.InternID || s.lessons[i].MentorID != visit.MentorID {
				return repository.ErrLessonOwnership
			}
			s.lessons[i].VisitCount++
			*visit = s.lessons[i]
			return nil
		}
	} else {
		visit.ID = fmt.Sprintf("lesson-%d", len(s.lessons)+1)
	}
	if visit.VisitCount == 0 {
		visit.VisitCount = 1
	}
	s.lessons = append(s.lessons, *visit)
	return nil
}

func (s *fakeLessonStore) RecordAtVersion(ctx context.Context, visit *models.LessonVisit, internVersion int) error {
	if s.staleVersion {
		return repository.ErrVersionConflict
	}
	s.recordedAt = append(s.recordedAt, internVersion)
	return s.Record(ctx, visit)
}

func (s *fakeLessonStore) FindByID(ctx context.Context, id string) (*models.LessonVisit, error) {
	for _, l := range s.lessons {
		if l.ID == id {
			copied := l
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeLessonStore) AttendanceStats(ctx context.Context, filter models.AttendanceFilter, restDay time.Weekday, tz string) ([]models.AttendanceRow, error) {
	s.lastFilter, s.lastRestDay, s.lastTimezone = filter, restDay, tz
	return s.attendance, s.err
}

func (s *fakeLessonStore) ListPendingByMentor(ctx context.Context, mentorID string) ([]models.PendingLesson, error) {
	var out []models.PendingLesson
	for _, l := range s.pending {
		if l.MentorID == mentorID {
			out = append(out, l)
		}
	}
	return out, s.err
}

func (s *fakeLessonStore) PendingCounts(ctx context.Context) ([]models.MentorDebtCount, error) {
	return s.counts, s.err
}

func (s *fakeLessonStore) MentorMonthStats(ctx context.Context, mentorID string, from, to time.Time) (models.MentorMonthStats, error) {
	return s.monthStats, s.err
}

type fakeFeedbackStore struct {
	feedback []models.Feedback
	score    float64
	rateErr  error
	rated    []models.Feedback
	ratedAt  time.Time
	countErr error
}

func (s *fakeFeedbackStore) ListByIntern(ctx context.Context, internID string) ([]models.Feedback, error) {
	var out []models.Feedback
	for _, fb := range s.feedback {
		if fb.InternID == internID {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (s *fakeFeedbackStore) CountByIntern(ctx context.Context, internID string) (int, error) {
	fb, _ := s.ListByIntern(ctx, internID)
	return len(fb), s.countErr
}

func (s *fakeFeedbackStore) RateLesson(ctx context.Context, lessonID string, fb *models.Feedback, ratedAt time.Time) (float64, error) {
	if s.rateErr != nil {
		return 0, s.rateErr
	}
	s.rated = append(s.rated, *fb)
	s.ratedAt = ratedAt
	return s.score, nil
}

type fakeCacheRepo struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []string
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: map[string][]byte{}}
}

func (c *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *fakeCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}
