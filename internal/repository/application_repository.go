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

const applicationColumns = `a.id, a.name, a.surname, a.mentor_id, a.branch_id, a.grade, a.years_of_study, a.direction, a.telegram_username,
        a.phone, a.interview_date, a.status, a.about_yourself, a.what_you_know, a.project_link, a.created_at, a.updated_at`

const applicationDetailFrom = `SELECT ` + applicationColumns + `, m.name AS mentor_name, m.last_name AS mentor_last_name, b.name AS branch_name
        FROM applications a JOIN mentors m ON m.id = a.mentor_id JOIN branches b ON b.id = a.branch_id`

// ApplicationRepository stores admission applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs an ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a pending application.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.Status == "" {
		app.Status = models.ApplicationPending
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = app.CreatedAt
	const query = `INSERT INTO applications (id, name, surname, mentor_id, branch_id, grade, years_of_study, direction, telegram_username,
        phone, interview_date, status, about_yourself, what_you_know, project_link, created_at, updated_at)
        VALUES (:id, :name, :surname, :mentor_id, :branch_id, :grade, :years_of_study, :direction, :telegram_username,
        :phone, :interview_date, :status, :about_yourself, :what_you_know, :project_link, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// FindByID fetches an application with its mentor and branch names.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.ApplicationDetail, error) {
	var app models.ApplicationDetail
	if err := r.db.GetContext(ctx, &app, applicationDetailFrom+` WHERE a.id = $1`, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// FindByContact returns the newest application filed with the telegram username and phone.
func (r *ApplicationRepository) FindByContact(ctx context.Context, telegramUsername, phone string) (*models.ApplicationDetail, error) {
	var app models.ApplicationDetail
	query := applicationDetailFrom + ` WHERE a.telegram_username = $1 AND a.phone = $2 ORDER BY a.created_at DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &app, query, telegramUsername, phone); err != nil {
		return nil, err
	}
	return &app, nil
}

// List returns applications newest first with the total matching count.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if filter.BranchID != "" {
		args = append(args, filter.BranchID)
		conditions = append(conditions, fmt.Sprintf("a.branch_id = $%d", len(args)))
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	query := fmt.Sprintf(`%s%s ORDER BY a.created_at DESC LIMIT %d OFFSET %d`, applicationDetailFrom, where, size, (page-1)*size)
	var items []models.ApplicationDetail
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM applications a`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return items, total, nil
}

// UpdateDetails stores the second-step answers.
func (r *ApplicationRepository) UpdateDetails(ctx context.Context, id, aboutYourself, whatYouKnow string, at time.Time) error {
	const query = `UPDATE applications SET about_yourself = $2, what_you_know = $3, updated_at = $4 WHERE id = $1`
	return r.exec(ctx, "update application details", query, id, aboutYourself, whatYouKnow, at)
}

// UpdateStatus moves an application to status.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, at time.Time) error {
	return r.exec(ctx, "update application status", `UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1`, id, status, at)
}

// SetProjectLink records the applicant's project link, replacing any earlier one.
func (r *ApplicationRepository) SetProjectLink(ctx context.Context, id, link string, at time.Time) error {
	return r.exec(ctx, "set project link", `UPDATE applications SET project_link = $2, updated_at = $3 WHERE id = $1`, id, link, at)
}

func (r *ApplicationRepository) exec(ctx context.Context, op, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
