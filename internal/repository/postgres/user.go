package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jkstudio99/DropStockAPI/internal/domain"
	apperrors "github.com/jkstudio99/DropStockAPI/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user into the database. The unique indexes on
// normalized_username and normalized_email are the real uniqueness
// guarantee; a duplicate insert maps to AlreadyExists.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, username, normalized_username, email, normalized_email, password_hash, security_stamp, email_confirmed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		u.ID,
		u.Username,
		u.NormalizedUsername,
		u.Email,
		u.NormalizedEmail,
		u.PasswordHash,
		u.SecurityStamp,
		u.EmailConfirmed,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "username", u.Username)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, username, normalized_username, email, normalized_email, password_hash, security_stamp, email_confirmed, created_at, updated_at
		FROM users
		WHERE id = $1`

	return r.scanUser(ctx, query, id)
}

// GetByUsername retrieves a user by username, matched case-insensitively
// through the normalized column.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT id, username, normalized_username, email, normalized_email, password_hash, security_stamp, email_confirmed, created_at, updated_at
		FROM users
		WHERE normalized_username = $1`

	return r.scanUser(ctx, query, domain.Normalize(username))
}

// GetByEmail retrieves a user by email address, matched case-insensitively
// through the normalized column.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, username, normalized_username, email, normalized_email, password_hash, security_stamp, email_confirmed, created_at, updated_at
		FROM users
		WHERE normalized_email = $1`

	return r.scanUser(ctx, query, domain.Normalize(email))
}

// UpdatePassword replaces the password hash and rotates the security stamp
// in a single statement so there is no window with a new password under an
// old stamp.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash, securityStamp string) error {
	query := `
		UPDATE users
		SET password_hash = $1, security_stamp = $2, updated_at = $3
		WHERE id = $4`

	ct, err := r.db.Exec(ctx, query, passwordHash, securityStamp, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", userID)
	}

	return nil
}

// UpdateSecurityStamp rotates the security stamp.
func (r *UserRepository) UpdateSecurityStamp(ctx context.Context, userID, securityStamp string) error {
	query := `
		UPDATE users
		SET security_stamp = $1, updated_at = $2
		WHERE id = $3`

	ct, err := r.db.Exec(ctx, query, securityStamp, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("update security stamp: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", userID)
	}

	return nil
}

// SetEmailConfirmed marks the user's email address as confirmed.
func (r *UserRepository) SetEmailConfirmed(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET email_confirmed = TRUE, updated_at = $1
		WHERE id = $2`

	ct, err := r.db.Exec(ctx, query, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("set email confirmed: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", userID)
	}

	return nil
}

// scanUser is a helper that executes a query expected to return a single user row.
func (r *UserRepository) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Username,
		&u.NormalizedUsername,
		&u.Email,
		&u.NormalizedEmail,
		&u.PasswordHash,
		&u.SecurityStamp,
		&u.EmailConfirmed,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}

// --- Role Repository ---

// RoleRepository implements repository.RoleRepository using PostgreSQL.
type RoleRepository struct {
	db DB
}

// NewRoleRepository creates a new PostgreSQL-backed role repository.
func NewRoleRepository(db DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Ensure creates the named role if it does not exist and returns its ID.
func (r *RoleRepository) Ensure(ctx context.Context, name string) (string, error) {
	query := `
		INSERT INTO roles (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	var id string
	if err := r.db.QueryRow(ctx, query, uuid.New().String(), name).Scan(&id); err != nil {
		return "", fmt.Errorf("ensure role %s: %w", name, err)
	}

	return id, nil
}

// AddToRole binds the user to the role. Existing memberships are left alone.
func (r *RoleRepository) AddToRole(ctx context.Context, userID, roleID string) error {
	query := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := r.db.Exec(ctx, query, userID, roleID); err != nil {
		return fmt.Errorf("add user to role: %w", err)
	}

	return nil
}

// RolesForUser returns the names of all roles the user holds.
func (r *RoleRepository) RolesForUser(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT r.name
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query roles for user: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan role name: %w", err)
		}
		roles = append(roles, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	return roles, nil
}
