package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mindclaire/internal/common"
	"mindclaire/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type BlogRepository interface {
	Create(ctx context.Context, blog *model.Blog) error
	FindByID(ctx context.Context, id string) (*model.Blog, error)
	FindBySlug(ctx context.Context, slug string) (*model.Blog, error)
	List(ctx context.Context, limit, offset int, status model.BlogStatus, categoryID, searchTerm string) ([]model.Blog, int, error)
	Update(ctx context.Context, blog *model.Blog) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

type pgBlogRepository struct {
	db *sql.DB
}

func NewPgBlogRepository(db *sql.DB) BlogRepository {
	return &pgBlogRepository{db: db}
}

const blogColumns = `id, title, slug, content, excerpt, thumbnail, author_id, category_id,
	tags, status, published_at, views_count, created_at, updated_at`

// Tags live in a jsonb column; (un)marshalling stays here so callers only see
// []string.
func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

func (r *pgBlogRepository) scanBlog(scan func(dest ...interface{}) error) (*model.Blog, error) {
	b := &model.Blog{}
	var tagsRaw []byte
	err := scan(
		&b.ID, &b.Title, &b.Slug, &b.Content, &b.Excerpt, &b.Thumbnail, &b.AuthorID, &b.CategoryID,
		&tagsRaw, &b.Status, &b.PublishedAt, &b.ViewsCount, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(tagsRaw) > 0 {
		if err := json.Unmarshal(tagsRaw, &b.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	return b, nil
}

func (r *pgBlogRepository) Create(ctx context.Context, b *model.Blog) error {
	tags, err := encodeTags(b.Tags)
	if err != nil {
		return fmt.Errorf("pgBlogRepository.Create: %w", err)
	}
	query := `INSERT INTO blogs (id, title, slug, content, excerpt, thumbnail, author_id, category_id, tags, status, published_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.db.ExecContext(ctx, query,
		b.ID, b.Title, b.Slug, b.Content, b.Excerpt, b.Thumbnail, b.AuthorID, b.CategoryID,
		tags, b.Status, b.PublishedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("blog with given slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgBlogRepository.Create: %w", err)
	}
	return nil
}

func (r *pgBlogRepository) FindByID(ctx context.Context, id string) (*model.Blog, error) {
	query := `SELECT ` + blogColumns + ` FROM blogs WHERE id = $1`
	b, err := r.scanBlog(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgBlogRepository.FindByID: %w", err)
	}
	return b, nil
}

func (r *pgBlogRepository) FindBySlug(ctx context.Context, slug string) (*model.Blog, error) {
	query := `SELECT ` + blogColumns + ` FROM blogs WHERE slug = $1`
	b, err := r.scanBlog(r.db.QueryRowContext(ctx, query, slug).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgBlogRepository.FindBySlug: %w", err)
	}
	return b, nil
}

func (r *pgBlogRepository) List(ctx context.Context, limit, offset int, status model.BlogStatus, categoryID, searchTerm string) ([]model.Blog, int, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, status)
		argID++
	}
	if categoryID != "" {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argID))
		args = append(args, categoryID)
		argID++
	}
	if searchTerm != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR content ILIKE $%d)", argID, argID+1))
		likeTerm := "%" + searchTerm + "%"
		args = append(args, likeTerm, likeTerm)
		argID += 2
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blogs`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgBlogRepository.List count: %w", err)
	}

	query := `SELECT ` + blogColumns + ` FROM blogs` + whereClause +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgBlogRepository.List query: %w", err)
	}
	defer rows.Close()

	blogs := []model.Blog{}
	for rows.Next() {
		b, err := r.scanBlog(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("pgBlogRepository.List scan: %w", err)
		}
		blogs = append(blogs, *b)
	}
	return blogs, total, rows.Err()
}

func (r *pgBlogRepository) Update(ctx context.Context, b *model.Blog) error {
	tags, err := encodeTags(b.Tags)
	if err != nil {
		return fmt.Errorf("pgBlogRepository.Update: %w", err)
	}
	query := `UPDATE blogs
	          SET title = $2, slug = $3, content = $4, excerpt = $5, thumbnail = $6,
	              category_id = $7, tags = $8, status = $9, published_at = $10, updated_at = now()
	          WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		b.ID, b.Title, b.Slug, b.Content, b.Excerpt, b.Thumbnail,
		b.CategoryID, tags, b.Status, b.PublishedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("blog with given slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgBlogRepository.Update: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgBlogRepository.Update: %w", err)
	}
	if rows == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgBlogRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgBlogRepository.Delete: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgBlogRepository.Delete: %w", err)
	}
	if rows == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgBlogRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE blogs SET views_count = views_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgBlogRepository.IncrementViews: %w", err)
	}
	return nil
}
