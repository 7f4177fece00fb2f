package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mindclaire/internal/common"
	"mindclaire/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)

	// VerifyByToken atomically marks the matching user verified and clears the
	// verification token pair. The single UPDATE guarantees two concurrent
	// calls with the same token cannot both succeed.
	VerifyByToken(ctx context.Context, token string, now time.Time) error

	SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error

	// ResetPasswordByToken atomically replaces the password hash and clears the
	// reset token pair, with the same single-use guarantee as VerifyByToken.
	ResetPasswordByToken(ctx context.Context, token, hashedPassword string, now time.Time) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, name, email, hashed_password, role, is_verified,
	verification_token, verification_token_expiry,
	reset_password_token, reset_password_expires, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.HashedPassword, &user.Role, &user.IsVerified,
		&user.VerificationToken, &user.VerificationTokenExpiry,
		&user.ResetPasswordToken, &user.ResetPasswordExpires, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, name, email, hashed_password, role, is_verified, verification_token, verification_token_expiry)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.HashedPassword, user.Role, user.IsVerified,
		user.VerificationToken, user.VerificationTokenExpiry,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) VerifyByToken(ctx context.Context, token string, now time.Time) error {
	query := `UPDATE users
	          SET is_verified = TRUE, verification_token = NULL, verification_token_expiry = NULL, updated_at = $2
	          WHERE verification_token = $1 AND verification_token_expiry > $2`
	result, err := r.db.ExecContext(ctx, query, token, now)
	if err != nil {
		return fmt.Errorf("pgUserRepository.VerifyByToken: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgUserRepository.VerifyByToken: %w", err)
	}
	if rows == 0 {
		// Wrong, expired, and already-consumed tokens are indistinguishable on
		// purpose: the caller must not learn which one it was.
		return common.ErrInvalidToken
	}
	return nil
}

func (r *pgUserRepository) SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error {
	query := `UPDATE users
	          SET reset_password_token = $2, reset_password_expires = $3, updated_at = now()
	          WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, userID, token, expiry)
	if err != nil {
		return fmt.Errorf("pgUserRepository.SetResetToken: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgUserRepository.SetResetToken: %w", err)
	}
	if rows == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) ResetPasswordByToken(ctx context.Context, token, hashedPassword string, now time.Time) error {
	query := `UPDATE users
	          SET hashed_password = $2, reset_password_token = NULL, reset_password_expires = NULL, updated_at = $3
	          WHERE reset_password_token = $1 AND reset_password_expires > $3`
	result, err := r.db.ExecContext(ctx, query, token, hashedPassword, now)
	if err != nil {
		return fmt.Errorf("pgUserRepository.ResetPasswordByToken: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgUserRepository.ResetPasswordByToken: %w", err)
	}
	if rows == 0 {
		return common.ErrInvalidToken
	}
	return nil
}
