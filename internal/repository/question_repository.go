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

const questionColumns = `id, text, direction, topic, difficulty, points, created_at, updated_at`

// QuestionRepository stores the interview question bank.
type QuestionRepository struct {
	db *sqlx.DB
}

// NewQuestionRepository constructs a QuestionRepository.
func NewQuestionRepository(db *sqlx.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Create inserts a question.
func (r *QuestionRepository) Create(ctx context.Context, q *models.Question) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	q.UpdatedAt = q.CreatedAt
	const query = `INSERT INTO questions (id, text, direction, topic, difficulty, points, created_at, updated_at)
        VALUES (:id, :text, :direction, :topic, :difficulty, :points, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, q); err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

// List returns questions matching the filter, easiest first.
func (r *QuestionRepository) List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.Direction != "" {
		args = append(args, filter.Direction)
		conditions = append(conditions, fmt.Sprintf("direction = $%d", len(args)))
	}
	if filter.Difficulty != "" {
		args = append(args, filter.Difficulty)
		conditions = append(conditions, fmt.Sprintf("difficulty = $%d", len(args)))
	}
	if filter.Topic != "" {
		args = append(args, filter.Topic)
		conditions = append(conditions, fmt.Sprintf("topic = $%d", len(args)))
	}
	query := `SELECT ` + questionColumns + ` FROM questions WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY points ASC, created_at ASC`
	var questions []models.Question
	if err := r.db.SelectContext(ctx, &questions, query, args...); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// Update replaces a question's content and returns the stored row.
func (r *QuestionRepository) Update(ctx context.Context, q *models.Question) error {
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = time.Now().UTC()
	}
	query := `UPDATE questions SET text = $2, direction = $3, topic = $4, difficulty = $5, points = $6, updated_at = $7
        WHERE id = $1 RETURNING ` + questionColumns
	if err := r.db.GetContext(ctx, q, query, q.ID, q.Text, q.Direction, q.Topic, q.Difficulty, q.Points, q.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("update question: %w", err)
	}
	return nil
}

// Delete removes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
