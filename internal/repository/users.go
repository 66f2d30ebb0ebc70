package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xdott/contact-dashboard-api/internal/entity"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup criteria.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailDuplicate is returned when the email is already registered.
	ErrEmailDuplicate = errors.New("email already exists")
	// ErrUsernameDuplicate is returned when the owner handle is already taken.
	ErrUsernameDuplicate = errors.New("username already exists")
)

// UsersRepository declares persistence operations for dashboard accounts.
type UsersRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Create(ctx context.Context, email, username, passwordHash, role string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Update(ctx context.Context, id uuid.UUID, email, username, passwordHash, role *string) (*entity.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RecordLogin(ctx context.Context, id uuid.UUID) error
}

// SQLiteUsersRepository implements UsersRepository on the embedded database.
type SQLiteUsersRepository struct {
	db *sql.DB
}

// NewSQLiteUsersRepository instantiates a users repository.
func NewSQLiteUsersRepository(db *sql.DB) *SQLiteUsersRepository {
	return &SQLiteUsersRepository{db: db}
}

var _ UsersRepository = (*SQLiteUsersRepository)(nil)

const userColumns = `id, email, username, password_hash, role, last_login_at, created_at, updated_at`

// FindByEmail fetches a user by email if present.
func (r *SQLiteUsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// FindByID retrieves a user by identifier.
func (r *SQLiteUsersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id.String())
	return scanUser(row)
}

// Create inserts a new user and returns the stored row.
func (r *SQLiteUsersRepository) Create(ctx context.Context, email, username, passwordHash, role string) (*entity.User, error) {
	id := uuid.New()
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, username, password_hash, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.String(), email, username, passwordHash, role, now, now,
	)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &entity.User{
		ID:           id,
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// List returns all users ordered by creation time.
func (r *SQLiteUsersRepository) List(ctx context.Context) ([]entity.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// Update applies the non-nil fields to the user and returns the updated row.
func (r *SQLiteUsersRepository) Update(ctx context.Context, id uuid.UUID, email, username, passwordHash, role *string) (*entity.User, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)

	if email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *email)
	}
	if username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *username)
	}
	if passwordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *passwordHash)
	}
	if role != nil {
		sets = append(sets, "role = ?")
		args = append(args, *role)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id.String())

	res, err := r.db.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update user result: %w", err)
	}
	if affected == 0 {
		return nil, ErrUserNotFound
	}

	return r.FindByID(ctx, id)
}

// Delete removes a user by id.
func (r *SQLiteUsersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user result: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RecordLogin stamps the account's last successful login time.
func (r *SQLiteUsersRepository) RecordLogin(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, time.Now().UTC(), id.String())
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record login result: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row *sql.Row) (*entity.User, error) {
	user, err := scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func scanUserRow(row rowScanner) (*entity.User, error) {
	var (
		user      entity.User
		rawID     string
		lastLogin sql.NullTime
	)
	if err := row.Scan(&rawID, &user.Email, &user.Username, &user.PasswordHash, &user.Role, &lastLogin, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	parsed, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse user id %q: %w", rawID, err)
	}
	user.ID = parsed
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLoginAt = &t
	}
	return &user, nil
}

// duplicateError maps a sqlite UNIQUE violation to the offending column's
// sentinel. The driver's error text names the column, e.g.
// "UNIQUE constraint failed: users.email".
func duplicateError(err error) error {
	if err == nil || !strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return nil
	}
	if strings.Contains(err.Error(), "users.username") {
		return ErrUsernameDuplicate
	}
	return ErrEmailDuplicate
}
