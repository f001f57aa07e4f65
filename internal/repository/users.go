package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/Clark-Hu/movie-reviews/internal/apperr"
	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// UsersRepository stores accounts. Passwords only ever reach the table as
// bcrypt hashes.
type UsersRepository struct {
	pool *pgxpool.Pool
	cost int
}

// UserCreateParams bundles the signup payload.
type UserCreateParams struct {
	Name     *string
	Username string
	Password string
}

// Create hashes the password and inserts a new user. A taken username yields ErrConflict.
func (r *UsersRepository) Create(ctx context.Context, params UserCreateParams) (domain.User, error) {
	if strings.TrimSpace(params.Username) == "" || params.Password == "" {
		return domain.User{}, apperr.Validation("username and password are required")
	}
	if len(params.Password) > MaxPasswordBytes {
		return domain.User{}, apperr.Validation("Password must be at most 72 bytes.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), r.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	const query = `
        INSERT INTO users (id, name, username, password)
        VALUES ($1,$2,$3,$4)
        RETURNING id, name, username, created_at
    `

	var user domain.User
	err = r.pool.QueryRow(ctx, query, uuid.New(), params.Name, params.Username, string(hash)).Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// FindByUsername looks a user up by login name. The password hash is only
// loaded when includePassword is set.
func (r *UsersRepository) FindByUsername(ctx context.Context, username string, includePassword bool) (domain.User, error) {
	columns := "id, name, username, created_at"
	if includePassword {
		columns += ", password"
	}
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, columns)

	var user domain.User
	dest := []any{&user.ID, &user.Name, &user.Username, &user.CreatedAt}
	if includePassword {
		dest = append(dest, &user.PasswordHash)
	}

	if err := r.pool.QueryRow(ctx, query, username).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// VerifyPassword reports whether candidate matches the user's stored hash.
// A missing or malformed hash is a mismatch, never an error.
func (r *UsersRepository) VerifyPassword(user domain.User, candidate string) bool {
	if user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(candidate)) == nil
}
