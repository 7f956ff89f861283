package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intern-progress-api/internal/models"
)

// FeedbackRepository manages the persisted feedback log.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs a FeedbackRepository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// ListByIntern returns every rating the intern received, oldest first.
func (r *FeedbackRepository) ListByIntern(ctx context.Context, internID string) ([]models.Feedback, error) {
	const query = `SELECT id, intern_id, mentor_id, lesson_id, stars, feedback_text, window_key, created_at
        FROM feedbacks WHERE intern_id = $1 ORDER BY created_at ASC`
	var feedback []models.Feedback
	if err := r.db.SelectContext(ctx, &feedback, query, internID); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return feedback, nil
}

// CountByIntern counts the ratings an intern received.
func (r *FeedbackRepository) CountByIntern(ctx context.Context, internID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM feedbacks WHERE intern_id = $1`, internID); err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return n, nil
}

// RateLesson confirms a pending lesson, appends the feedback, flags the mentor as having
// evaluated the intern and recomputes the intern's score from the whole ledger, atomically.
// It returns the recomputed score.
func (r *FeedbackRepository) RateLesson(ctx context.Context, lessonID string, fb *models.Feedback, ratedAt time.Time) (score float64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin rating transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE lesson_visits SET status = 'confirmed', rated_at = $2 WHERE id = $1 AND status = 'pending'`, lessonID, ratedAt)
	if err != nil {
		return 0, fmt.Errorf("confirm lesson: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("confirm lesson: %w", err)
	}
	if affected == 0 {
		return 0, ErrLessonAlreadyRated
	}

	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	const insertQuery = `INSERT INTO feedbacks (id, intern_id, mentor_id, lesson_id, stars, feedback_text, window_key, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err = tx.ExecContext(ctx, insertQuery, fb.ID, fb.InternID, fb.MentorID, fb.LessonID, fb.Stars, fb.Text, fb.WindowKey, fb.Date); err != nil {
		if isUniqueViolation(err, "uq_feedbacks_window") {
			return 0, ErrFeedbackWindowTaken
		}
		return 0, fmt.Errorf("insert feedback: %w", err)
	}

	const evaluatedQuery = `INSERT INTO evaluated_mentors (intern_id, mentor_id, evaluated_at) VALUES ($1, $2, $3)
        ON CONFLICT (intern_id, mentor_id) DO NOTHING`
	if _, err = tx.ExecContext(ctx, evaluatedQuery, fb.InternID, fb.MentorID, ratedAt); err != nil {
		return 0, fmt.Errorf("flag evaluated mentor: %w", err)
	}

	const scoreQuery = `UPDATE interns SET score = (SELECT COALESCE(AVG(stars)::double precision, 0) FROM feedbacks WHERE intern_id = $1),
        version = version + 1, updated_at = $2 WHERE id = $1 RETURNING score`
	if err = tx.GetContext(ctx, &score, scoreQuery, fb.InternID, ratedAt); err != nil {
		return 0, fmt.Errorf("recompute score: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit rating: %w", err)
	}
	return score, nil
}
