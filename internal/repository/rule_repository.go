package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intern-progress-api/internal/models"
)

// RuleRepository manages the violation catalog and recorded violations.
type RuleRepository struct {
	db *sqlx.DB
}

// NewRuleRepository constructs a RuleRepository.
func NewRuleRepository(db *sqlx.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// ListRules returns catalog rules, optionally of one category.
func (r *RuleRepository) ListRules(ctx context.Context, category models.RuleCategory) ([]models.Rule, error) {
	query := `SELECT id, category, title, example, consequence, created_at FROM rules`
	args := []interface{}{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	var rules []models.Rule
	if err := r.db.SelectContext(ctx, &rules, query+` ORDER BY category ASC, title ASC`, args...); err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}

// FindRule fetches a rule by ID.
func (r *RuleRepository) FindRule(ctx context.Context, id string) (*models.Rule, error) {
	var rule models.Rule
	if err := r.db.GetContext(ctx, &rule, `SELECT id, category, title, example, consequence, created_at FROM rules WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &rule, nil
}

// CreateRule inserts a catalog rule.
func (r *RuleRepository) CreateRule(ctx context.Context, rule *models.Rule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO rules (id, category, title, example, consequence, created_at)
        VALUES (:id, :category, :title, :example, :consequence, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		if isUniqueViolation(err, "") {
			return ErrDuplicateRule
		}
		return fmt.Errorf("create rule: %w", err)
	}
	return nil
}

// CreateViolation records a violation.
func (r *RuleRepository) CreateViolation(ctx context.Context, violation *models.Violation) error {
	if violation.ID == "" {
		violation.ID = uuid.NewString()
	}
	if violation.CreatedAt.IsZero() {
		violation.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO violations (id, intern_id, rule_id, occurred_at, notes, consequence_applied, created_at)
        VALUES (:id, :intern_id, :rule_id, :occurred_at, :notes, :consequence_applied, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, violation); err != nil {
		return fmt.Errorf("create violation: %w", err)
	}
	return nil
}

// ListViolations returns violations joined with their rule and intern, newest first.
func (r *RuleRepository) ListViolations(ctx context.Context, filter models.ViolationFilter) ([]models.ViolationDetail, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.InternID != "" {
		args = append(args, filter.InternID)
		conditions = append(conditions, fmt.Sprintf("v.intern_id = $%d", len(args)))
	}
	if filter.BranchID != "" {
		args = append(args, filter.BranchID)
		conditions = append(conditions, fmt.Sprintf("i.branch_id = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("ru.category = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("v.occurred_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("v.occurred_at < $%d", len(args)))
	}

	base := fmt.Sprintf(`FROM violations v JOIN rules ru ON ru.id = v.rule_id JOIN interns i ON i.id = v.intern_id WHERE %s`, strings.Join(conditions, " AND "))
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	query := fmt.Sprintf(`SELECT v.id, v.intern_id, v.rule_id, v.occurred_at, v.notes, v.consequence_applied, v.created_at,
        ru.title AS rule_title, ru.category AS rule_category, i.name AS intern_name, i.last_name AS intern_last_name, i.branch_id
        %s ORDER BY v.occurred_at DESC LIMIT %d OFFSET %d`, base, size, (page-1)*size)
	var items []models.ViolationDetail
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list violations: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count violations: %w", err)
	}
	return items, total, nil
}
