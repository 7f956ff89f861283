package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intern-progress-api/internal/models"
)

// MentorRepository reads mentors and branches.
type MentorRepository struct {
	db *sqlx.DB
}

// NewMentorRepository constructs a MentorRepository.
func NewMentorRepository(db *sqlx.DB) *MentorRepository {
	return &MentorRepository{db: db}
}

// FindByID fetches a mentor by ID.
func (r *MentorRepository) FindByID(ctx context.Context, id string) (*models.Mentor, error) {
	var mentor models.Mentor
	if err := r.db.GetContext(ctx, &mentor, `SELECT id, name, last_name, branch_id, created_at FROM mentors WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &mentor, nil
}

// List returns mentors, optionally restricted to a branch.
func (r *MentorRepository) List(ctx context.Context, branchID string) ([]models.Mentor, error) {
	query := `SELECT id, name, last_name, branch_id, created_at FROM mentors`
	args := []interface{}{}
	if branchID != "" {
		query += ` WHERE branch_id = $1`
		args = append(args, branchID)
	}
	var mentors []models.Mentor
	if err := r.db.SelectContext(ctx, &mentors, query+` ORDER BY name ASC, last_name ASC`, args...); err != nil {
		return nil, fmt.Errorf("list mentors: %w", err)
	}
	return mentors, nil
}

// FindBranch fetches a branch by ID.
func (r *MentorRepository) FindBranch(ctx context.Context, id string) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.GetContext(ctx, &branch, `SELECT id, name, created_at FROM branches WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &branch, nil
}
