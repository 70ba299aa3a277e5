package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/domain"
)

const userColumns = `user_id, email, display_name, password_hash, monthly_goal, created_at`

// UserRepository stores account records.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create persists a new account. The unique index on email backs the
// duplicate-registration check in the service.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	const stmt = `INSERT INTO users (` + userColumns + `) VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.pool.Exec(ctx, stmt, user.ID, user.Email, user.DisplayName, user.PasswordHash, user.MonthlyGoal, user.CreatedAt)
	return err
}

// Get fetches an account by ID; (nil, nil) when absent.
func (r *UserRepository) Get(ctx context.Context, userID string) (*domain.User, error) {
	return r.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE user_id=$1`, userID)
}

// GetByEmail fetches an account by email; (nil, nil) when absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

// UpdateProfile updates display name and monthly goal, returning the fresh
// row; (nil, nil) when the user does not exist.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID, displayName string, monthlyGoal int) (*domain.User, error) {
	const stmt = `UPDATE users SET display_name=$2, monthly_goal=$3 WHERE user_id=$1
        RETURNING ` + userColumns
	return r.queryUser(ctx, stmt, userID, displayName, monthlyGoal)
}

func (r *UserRepository) queryUser(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, query, args...)

	var user domain.User
	if err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.MonthlyGoal, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
