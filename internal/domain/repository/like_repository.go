package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mindclaire/internal/common"
	"mindclaire/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type LikeRepository interface {
	Create(ctx context.Context, like *model.Like) error
	DeleteForBlog(ctx context.Context, userID, blogID string) error
	DeleteForComment(ctx context.Context, userID, commentID string) error
	ExistsForBlog(ctx context.Context, userID, blogID string) (bool, error)
	ExistsForComment(ctx context.Context, userID, commentID string) (bool, error)
	CountForBlog(ctx context.Context, blogID string) (int, error)
	CountForComment(ctx context.Context, commentID string) (int, error)
}

type pgLikeRepository struct {
	db *sql.DB
}

func NewPgLikeRepository(db *sql.DB) LikeRepository {
	return &pgLikeRepository{db: db}
}

func (r *pgLikeRepository) Create(ctx context.Context, l *model.Like) error {
	query := `INSERT INTO likes (id, user_id, blog_id, comment_id) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, l.ID, l.UserID, l.BlogID, l.CommentID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("already liked: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgLikeRepository.Create: %w", err)
	}
	return nil
}

func (r *pgLikeRepository) DeleteForBlog(ctx context.Context, userID, blogID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM likes WHERE user_id = $1 AND blog_id = $2`, userID, blogID)
	if err != nil {
		return fmt.Errorf("pgLikeRepository.DeleteForBlog: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgLikeRepository.DeleteForBlog: %w", err)
	}
	if rows == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgLikeRepository) DeleteForComment(ctx context.Context, userID, commentID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM likes WHERE user_id = $1 AND comment_id = $2`, userID, commentID)
	if err != nil {
		return fmt.Errorf("pgLikeRepository.DeleteForComment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgLikeRepository.DeleteForComment: %w", err)
	}
	if rows == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgLikeRepository) ExistsForBlog(ctx context.Context, userID, blogID string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM likes WHERE user_id = $1 AND blog_id = $2`, userID, blogID)
}

func (r *pgLikeRepository) ExistsForComment(ctx context.Context, userID, commentID string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM likes WHERE user_id = $1 AND comment_id = $2`, userID, commentID)
}

func (r *pgLikeRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("pgLikeRepository.exists: %w", err)
	}
	return true, nil
}

func (r *pgLikeRepository) CountForBlog(ctx context.Context, blogID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE blog_id = $1`, blogID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgLikeRepository.CountForBlog: %w", err)
	}
	return count, nil
}

func (r *pgLikeRepository) CountForComment(ctx context.Context, commentID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE comment_id = $1`, commentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgLikeRepository.CountForComment: %w", err)
	}
	return count, nil
}
