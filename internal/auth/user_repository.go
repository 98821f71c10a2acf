package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

const userColumns = "id, username, password_hash, role, is_active, created_at, updated_at"

// SQLiteUserRepository implements UserRepository using SQLite.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed user repository.
func NewUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Create inserts a new user account. The ID is generated if empty.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = "usr-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Truncate(time.Second)
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash, string(user.Role),
		boolToInt(user.IsActive),
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their unique ID.
func (r *SQLiteUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByUsername retrieves a user by their username.
func (r *SQLiteUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

// List returns all users ordered by creation date.
func (r *SQLiteUserRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	return users, nil
}

// Update modifies a user's mutable fields (role, is_active).
func (r *SQLiteUserRepository) Update(ctx context.Context, user *User) error {
	now := time.Now().UTC().Truncate(time.Second)
	user.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		string(user.Role), boolToInt(user.IsActive), now.Format(time.RFC3339), user.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	return requireUserRow(result)
}

// UpdatePassword changes a user's password hash.
func (r *SQLiteUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	return requireUserRow(result)
}

// Delete removes a user account by ID.
func (r *SQLiteUserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	return requireUserRow(result)
}

// Count returns the total number of user accounts.
func (r *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// getUser executes a query and scans a single user result.
func (r *SQLiteUserRepository) getUser(ctx context.Context, query string, args ...any) (*User, error) {
	row := r.db.QueryRowContext(ctx, query, args...)
	return scanUser(row.Scan)
}

// scanUser scans a user from a row scan function.
func scanUser(scan func(dest ...any) error) (*User, error) {
	var (
		u                    User
		role                 string
		isActive             int
		createdAt, updatedAt string
	)

	err := scan(&u.ID, &u.Username, &u.PasswordHash, &role, &isActive,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.Role = Role(role)
	u.IsActive = isActive != 0

	if u.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if u.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &u, nil
}

func requireUserRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
