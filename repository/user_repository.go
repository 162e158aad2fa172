package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"musicfy/model"
)

// UserRepository defines the interface for user data operations. Methods
// that look up a single user return (nil, nil) when no row matches.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error
}

const userColumns = "id, username, email, password_hash, is_artist, created_at, updated_at"

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

// CreateUser adds a new user. A collision on the unique username or email
// index surfaces as ErrDuplicateUser.
func (r *mysqlUserRepository) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	query := "INSERT INTO users (username, email, password_hash, is_artist, created_at, updated_at) VALUES (?, ?, ?, ?, NOW(), NOW())"

	res, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.IsArtist)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicateUser
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for user: %w", err)
	}
	return id, nil
}

func (r *mysqlUserRepository) scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsArtist, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // user not found
		}
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *mysqlUserRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetUserByUsername retrieves a user by their username.
func (r *mysqlUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE username = ?"
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

// GetUserByEmail retrieves a user by their email address.
func (r *mysqlUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = ?"
	return r.scanUser(r.db.QueryRowContext(ctx, query, strings.ToLower(email)))
}

// GetUserByIdentifier resolves a login identifier that may be either an
// email address or a username.
func (r *mysqlUserRepository) GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	if strings.Contains(identifier, "@") {
		return r.GetUserByEmail(ctx, identifier)
	}
	return r.GetUserByUsername(ctx, identifier)
}

// UpdatePasswordHash replaces the stored hash. This is the only write path
// that touches the password column.
func (r *mysqlUserRepository) UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error {
	query := "UPDATE users SET password_hash = ?, updated_at = NOW() WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, passwordHash, userID); err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	return nil
}
