package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/okr-performance-api/internal/models"
)

const userColumns = `id, email, name, department, role, active, created_at, updated_at`

// UserRepository provides read access to the roster.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// ListActive returns every active user ordered by name.
func (r *UserRepository) ListActive(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE active = TRUE ORDER BY name ASC, id ASC`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	return users, nil
}

// ListActiveByDepartment returns the active members of a department.
func (r *UserRepository) ListActiveByDepartment(ctx context.Context, department models.Department) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE active = TRUE AND department = $1 ORDER BY name ASC, id ASC`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, department); err != nil {
		return nil, fmt.Errorf("list department users: %w", err)
	}
	return users, nil
}

// CountActive returns the number of active users.
func (r *UserRepository) CountActive(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE active = TRUE`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
	}
	return total, nil
}
