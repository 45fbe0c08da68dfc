package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/streetvoice-api/internal/models"
)

// ErrDuplicateEmail is returned when the unique email constraint fires.
var ErrDuplicateEmail = errors.New("email already exists")

const userColumns = `id, email, password_hash, full_name, phone, role, department, zone, admin_code, profile_pic_url, profile_complete, created_at, updated_at`

// UserRepository provides database access for accounts and profiles.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Create inserts a new user and returns the stored record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (` + userColumns + `) VALUES (:id, :email, :password_hash, :full_name, :phone, :role, :department, :zone, :admin_code, :profile_pic_url, :profile_complete, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// CompleteProfile stores the one-time profile update. It only matches rows
// that are still incomplete and returns sql.ErrNoRows otherwise.
func (r *UserRepository) CompleteProfile(ctx context.Context, id string, update models.ProfileUpdate) error {
	const query = `UPDATE users SET full_name = $2, phone = $3, role = $4, department = $5, zone = $6, admin_code = $7,
profile_pic_url = COALESCE(NULLIF($8, ''), profile_pic_url), profile_complete = TRUE, updated_at = $9
WHERE id = $1 AND profile_complete = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, update.FullName, update.Phone, update.Role, update.Department, update.Zone, update.AdminCode, update.ProfilePicURL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("complete profile: %w", err)
	}
	return expectAffected(res)
}
