package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intern-progress-api/internal/models"
)

const lessonColumns = `id, intern_id, mentor_id, topic, lesson_time, lesson_group, visit_date, status, visit_count, rated_at, created_at`

// LessonRepository manages the persisted attendance log.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a LessonRepository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// Record appends a pending visit, or increments the visit count when the lesson is already
// logged for the same intern and mentor. A lesson id owned by another pair yields ErrLessonOwnership.
func (r *LessonRepository) Record(ctx context.Context, visit *models.LessonVisit) error {
	return upsertVisit(ctx, r.db, visit)
}

// RecordAtVersion records the visit and bumps the intern's version in one transaction.
// A version other than internVersion yields ErrVersionConflict, so two visits admitted
// against the same snapshot of the attendance log cannot both commit.
func (r *LessonRepository) RecordAtVersion(ctx context.Context, visit *models.LessonVisit, internVersion int) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin visit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE interns SET version = version + 1 WHERE id = $1 AND version = $2`, visit.InternID, internVersion)
	if err != nil {
		return fmt.Errorf("lock intern for visit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("lock intern for visit: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	if err = upsertVisit(ctx, tx, visit); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit visit: %w", err)
	}
	return nil
}

func upsertVisit(ctx context.Context, q sqlx.QueryerContext, visit *models.LessonVisit) error {
	if visit.ID == "" {
		visit.ID = uuid.NewString()
	}
	if visit.Status == "" {
		visit.Status = models.LessonPending
	}
	if visit.VisitCount <= 0 {
		visit.VisitCount = 1
	}
	if visit.CreatedAt.IsZero() {
		visit.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO lesson_visits (id, intern_id, mentor_id, topic, lesson_time, lesson_group, visit_date, status, visit_count, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (id) DO UPDATE SET visit_count = lesson_visits.visit_count + 1
        WHERE lesson_visits.intern_id = EXCLUDED.intern_id AND lesson_visits.mentor_id = EXCLUDED.mentor_id
        RETURNING ` + lessonColumns
	err := sqlx.GetContext(ctx, q, visit, query, visit.ID, visit.InternID, visit.MentorID, visit.Topic, visit.Time, visit.Group, visit.Date, visit.Status, visit.VisitCount, visit.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrLessonOwnership
		}
		return fmt.Errorf("record lesson visit: %w", err)
	}
	return nil
}

// FindByID fetches a lesson visit by ID.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.LessonVisit, error) {
	var visit models.LessonVisit
	if err := r.db.GetContext(ctx, &visit, `SELECT `+lessonColumns+` FROM lesson_visits WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &visit, nil
}

// ListByIntern returns the intern's full attendance log in visit order.
func (r *LessonRepository) ListByIntern(ctx context.Context, internID string) ([]models.LessonVisit, error) {
	var visits []models.LessonVisit
	query := `SELECT ` + lessonColumns + ` FROM lesson_visits WHERE intern_id = $1 ORDER BY visit_date ASC, created_at ASC`
	if err := r.db.SelectContext(ctx, &visits, query, internID); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return visits, nil
}

// ListPendingByMentor returns the mentor's unrated lessons with the attending intern's identity.
func (r *LessonRepository) ListPendingByMentor(ctx context.Context, mentorID string) ([]models.PendingLesson, error) {
	const query = `SELECT l.id, l.intern_id, l.mentor_id, l.topic, l.lesson_time, l.lesson_group, l.visit_date, l.status, l.visit_count, l.rated_at, l.created_at,
        i.name AS intern_name, i.last_name AS intern_last_name, i.username AS intern_username
        FROM lesson_visits l JOIN interns i ON i.id = l.intern_id
        WHERE l.mentor_id = $1 AND l.status = 'pending'
        ORDER BY l.visit_date DESC`
	var lessons []models.PendingLesson
	if err := r.db.SelectContext(ctx, &lessons, query, mentorID); err != nil {
		return nil, fmt.Errorf("list pending lessons: %w", err)
	}
	return lessons, nil
}

// PendingCounts counts unrated lessons per mentor, including mentors with none.
func (r *LessonRepository) PendingCounts(ctx context.Context) ([]models.MentorDebtCount, error) {
	const query = `SELECT m.id AS mentor_id, m.name, m.last_name, m.branch_id, COUNT(l.id) AS debt_count
        FROM mentors m LEFT JOIN lesson_visits l ON l.mentor_id = m.id AND l.status = 'pending'
        GROUP BY m.id, m.name, m.last_name, m.branch_id`
	var counts []models.MentorDebtCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count pending lessons: %w", err)
	}
	return counts, nil
}

// MentorMonthStats counts the lessons a mentor ran and the feedback they left within [from, to).
func (r *LessonRepository) MentorMonthStats(ctx context.Context, mentorID string, from, to time.Time) (models.MentorMonthStats, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM lesson_visits WHERE mentor_id = $1 AND visit_date >= $2 AND visit_date < $3) AS lessons,
        (SELECT COUNT(*) FROM feedbacks WHERE mentor_id = $1 AND created_at >= $2 AND created_at < $3) AS feedbacks`
	var stats models.MentorMonthStats
	if err := r.db.GetContext(ctx, &stats, query, mentorID, from, to); err != nil {
		return models.MentorMonthStats{}, fmt.Errorf("mentor month stats: %w", err)
	}
	return stats, nil
}

// AttendanceStats counts each intern's confirmed and pending visits within [filter.From, filter.To).
// Visits falling on restDay are excluded.
func (r *LessonRepository) AttendanceStats(ctx context.Context, filter models.AttendanceFilter, restDay time.Weekday, tz string) ([]models.AttendanceRow, error) {
	args := []interface{}{filter.From, filter.To, int(restDay), tz}
	conditions := []string{"1=1"}
	if filter.BranchID != "" {
		args = append(args, filter.BranchID)
		conditions = append(conditions, fmt.Sprintf("i.branch_id = $%d", len(args)))
	}
	if filter.InternID != "" {
		args = append(args, filter.InternID)
		conditions = append(conditions, fmt.Sprintf("i.id = $%d", len(args)))
	}
	query := fmt.Sprintf(`SELECT i.id AS intern_id, i.name, i.last_name, i.branch_id, i.grade,
        COUNT(l.id) FILTER (WHERE l.status = 'confirmed') AS confirmed,
        COUNT(l.id) FILTER (WHERE l.status = 'pending') AS pending
        FROM interns i
        LEFT JOIN lesson_visits l ON l.intern_id = i.id AND l.visit_date >= $1 AND l.visit_date < $2
            AND EXTRACT(DOW FROM l.visit_date AT TIME ZONE $4) <> $3
        WHERE %s
        GROUP BY i.id, i.name, i.last_name, i.branch_id, i.grade
        ORDER BY i.name ASC, i.last_name ASC`, strings.Join(conditions, " AND "))
	var rows []models.AttendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("attendance stats: %w", err)
	}
	return rows, nil
}
