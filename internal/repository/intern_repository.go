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

const internColumns = `i.id, i.username, i.name, i.last_name, i.branch_id, i.mentor_id, i.grade, i.score, i.probation_start_date,
        i.probation_period, i.lessons_per_month, i.perks, i.version, i.created_at, i.updated_at`

// InternRepository manages persistence for intern records and their promotion history.
type InternRepository struct {
	db *sqlx.DB
}

// NewInternRepository constructs an InternRepository.
func NewInternRepository(db *sqlx.DB) *InternRepository {
	return &InternRepository{db: db}
}

// List returns interns matching the provided filters with the total count.
func (r *InternRepository) List(ctx context.Context, filter models.InternFilter) ([]models.Intern, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.BranchID != "" {
		args = append(args, filter.BranchID)
		conditions = append(conditions, fmt.Sprintf("i.branch_id = $%d", len(args)))
	}
	if filter.MentorID != "" {
		args = append(args, filter.MentorID)
		conditions = append(conditions, fmt.Sprintf("i.mentor_id = $%d", len(args)))
	}
	if filter.Grade != "" {
		args = append(args, filter.Grade)
		conditions = append(conditions, fmt.Sprintf("i.grade = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(i.name) LIKE $%d OR LOWER(i.last_name) LIKE $%d OR LOWER(i.username) LIKE $%d)", len(args), len(args), len(args)))
	}

	where := strings.Join(conditions, " AND ")
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s
        FROM interns i WHERE %s ORDER BY i.name ASC, i.last_name ASC LIMIT %d OFFSET %d`, internColumns, where, size, offset)
	var interns []models.Intern
	if err := r.db.SelectContext(ctx, &interns, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list interns: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM interns i WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count interns: %w", err)
	}
	return interns, total, nil
}

// FindByID fetches an intern by ID.
func (r *InternRepository) FindByID(ctx context.Context, id string) (*models.Intern, error) {
	query := fmt.Sprintf(`SELECT %s
        FROM interns i WHERE i.id = $1`, internColumns)
	var intern models.Intern
	if err := r.db.GetContext(ctx, &intern, query, id); err != nil {
		return nil, err
	}
	return &intern, nil
}

// ExistsByUsername checks whether a username is taken, optionally excluding an ID.
func (r *InternRepository) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	query := "SELECT 1 FROM interns WHERE username = $1"
	args := []interface{}{username}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check username: %w", err)
	}
	return true, nil
}

// Create inserts a new intern record at version 1.
func (r *InternRepository) Create(ctx context.Context, intern *models.Intern) error {
	if intern.ID == "" {
		intern.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if intern.CreatedAt.IsZero() {
		intern.CreatedAt = now
	}
	intern.UpdatedAt = now
	intern.Version = 1
	const query = `INSERT INTO interns (id, username, name, last_name, branch_id, mentor_id, grade, score, probation_start_date, probation_period, lessons_per_month, perks, version, created_at, updated_at)
        VALUES (:id, :username, :name, :last_name, :branch_id, :mentor_id, :grade, :score, :probation_start_date, :probation_period, :lessons_per_month, :perks, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, intern); err != nil {
		if isUniqueViolation(err, "interns_username_key") {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("create intern: %w", err)
	}
	return nil
}

// UpdateProfile writes identity fields when the stored version matches intern.Version, then bumps it.
func (r *InternRepository) UpdateProfile(ctx context.Context, intern *models.Intern) error {
	intern.UpdatedAt = time.Now().UTC()
	const query = `UPDATE interns SET username = $1, name = $2, last_name = $3, branch_id = $4, mentor_id = $5,
        version = version + 1, updated_at = $6 WHERE id = $7 AND version = $8`
	res, err := r.db.ExecContext(ctx, query, intern.Username, intern.Name, intern.LastName, intern.BranchID, intern.MentorID, intern.UpdatedAt, intern.ID, intern.Version)
	if err != nil {
		if isUniqueViolation(err, "interns_username_key") {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("update intern: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	intern.Version++
	return nil
}

// ApplyPromotion persists the new grade with its derived fields and appends the history record in one transaction.
// expectedVersion guards against concurrent grade changes.
func (r *InternRepository) ApplyPromotion(ctx context.Context, intern *models.Intern, expectedVersion int, record *models.PromotionRecord) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin promotion transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	intern.UpdatedAt = time.Now().UTC()
	const updateQuery = `UPDATE interns SET grade = $1, probation_start_date = $2, probation_period = $3, lessons_per_month = $4, perks = $5,
        version = version + 1, updated_at = $6 WHERE id = $7 AND version = $8`
	res, err := tx.ExecContext(ctx, updateQuery, intern.Grade, intern.ProbationStartDate, intern.ProbationPeriod, intern.LessonsPerMonth, intern.Perks, intern.UpdatedAt, intern.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update intern grade: %w", err)
	}
	if err = expectOneRow(res); err != nil {
		return err
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	const insertQuery = `INSERT INTO promotion_history (id, intern_id, promoted_at, from_grade, to_grade, with_concession, percentage, promoted_by, note)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err = tx.ExecContext(ctx, insertQuery, record.ID, record.InternID, record.Date, record.FromGrade, record.ToGrade, record.WithConcession, record.Percentage, record.PromotedBy, record.Note); err != nil {
		return fmt.Errorf("insert promotion history: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit promotion: %w", err)
	}
	intern.Version = expectedVersion + 1
	return nil
}

// Delete removes an intern; lessons, feedback, violations, history and evaluated flags cascade.
func (r *InternRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM interns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete intern: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete intern: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PromotionHistory lists an intern's grade transitions, oldest first.
func (r *InternRepository) PromotionHistory(ctx context.Context, internID string) ([]models.PromotionRecord, error) {
	const query = `SELECT id, intern_id, promoted_at, from_grade, to_grade, with_concession, percentage, promoted_by, note
        FROM promotion_history WHERE intern_id = $1 ORDER BY promoted_at ASC`
	var records []models.PromotionRecord
	if err := r.db.SelectContext(ctx, &records, query, internID); err != nil {
		return nil, fmt.Errorf("list promotion history: %w", err)
	}
	return records, nil
}

// RatingInputs aggregates per-intern feedback and lesson counters, with confirmed lessons counted in [monthStart, monthEnd).
func (r *InternRepository) RatingInputs(ctx context.Context, monthStart, monthEnd time.Time) ([]models.RatingInput, error) {
	const query = `SELECT i.id AS intern_id, i.name, i.last_name, i.branch_id, COALESCE(b.name, '') AS branch_name, i.grade,
        COALESCE(f.average_stars, 0) AS average_stars, COALESCE(f.feedback_count, 0) AS feedback_count,
        COALESCE(l.lesson_count, 0) AS lesson_count, COALESCE(l.confirmed_this_month, 0) AS confirmed_this_month
        FROM interns i
        LEFT JOIN branches b ON b.id = i.branch_id
        LEFT JOIN (SELECT intern_id, AVG(stars)::float8 AS average_stars, COUNT(*) AS feedback_count FROM feedbacks GROUP BY intern_id) f ON f.intern_id = i.id
        LEFT JOIN (SELECT intern_id, COUNT(*) AS lesson_count,
            COUNT(*) FILTER (WHERE status = 'confirmed' AND visit_date >= $1 AND visit_date < $2) AS confirmed_this_month
            FROM lesson_visits GROUP BY intern_id) l ON l.intern_id = i.id`
	var inputs []models.RatingInput
	if err := r.db.SelectContext(ctx, &inputs, query, monthStart, monthEnd); err != nil {
		return nil, fmt.Errorf("load rating inputs: %w", err)
	}
	return inputs, nil
}

// ResetEvaluatedMentors clears every intern's evaluated-mentor flags and returns how many were cleared.
func (r *InternRepository) ResetEvaluatedMentors(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM evaluated_mentors`)
	if err != nil {
		return 0, fmt.Errorf("reset evaluated mentors: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset evaluated mentors: %w", err)
	}
	return affected, nil
}

// EvaluatedMentors lists the mentors who rated the intern since the last reset.
func (r *InternRepository) EvaluatedMentors(ctx context.Context, internID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT mentor_id FROM evaluated_mentors WHERE intern_id = $1 ORDER BY evaluated_at ASC`, internID); err != nil {
		return nil, fmt.Errorf("list evaluated mentors: %w", err)
	}
	return ids, nil
}

func expectOneRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	return nil
}
