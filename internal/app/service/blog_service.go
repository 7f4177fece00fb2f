package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"mindclaire/internal/common"
	"mindclaire/internal/domain/model"
	"mindclaire/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const excerptMaxLen = 100

type BlogService struct {
	blogRepo     repository.BlogRepository
	categoryRepo repository.CategoryRepository
}

func NewBlogService(blogRepo repository.BlogRepository, categoryRepo repository.CategoryRepository) *BlogService {
	return &BlogService{blogRepo: blogRepo, categoryRepo: categoryRepo}
}

type BlogRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	Thumbnail  string   `json:"thumbnail"`
	CategoryID string   `json:"category_id"`
	Tags       []string `json:"tags"`
	Status     string   `json:"status"`
}

type BlogListFilter struct {
	Page       int
	Limit      int
	Status     string
	CategoryID string
	Search     string
}

type BlogListResult struct {
	Blogs      []model.Blog `json:"blogs"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
}

func (s *BlogService) Create(ctx context.Context, authorID string, req BlogRequest) (*model.Blog, error) {
	if err := s.validate(ctx, &req); err != nil {
		return nil, err
	}

	blog := &model.Blog{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		Thumbnail:  req.Thumbnail,
		AuthorID:   authorID,
		CategoryID: req.CategoryID,
		Tags:       req.Tags,
		Status:     model.BlogStatus(req.Status),
	}
	blog.Slug = slug.Make(blog.Title)
	if blog.Excerpt == "" {
		blog.Excerpt = makeExcerpt(blog.Content)
	}
	if blog.Tags == nil {
		blog.Tags = []string{}
	}
	if blog.Status == model.BlogStatusPublished {
		now := time.Now()
		blog.PublishedAt = &now
	}

	if err := s.blogRepo.Create(ctx, blog); err != nil {
		return nil, fmt.Errorf("failed to create blog: %w", err)
	}
	return blog, nil
}

func (s *BlogService) List(ctx context.Context, filter BlogListFilter) (*BlogListResult, error) {
	page, limit := clampPage(filter.Page, filter.Limit)

	status := model.BlogStatus(filter.Status)
	if filter.Status != "" && !status.Valid() {
		return nil, fmt.Errorf("unknown blog status %q: %w", filter.Status, common.ErrValidation)
	}

	blogs, total, err := s.blogRepo.List(ctx, limit, (page-1)*limit, status, filter.CategoryID, filter.Search)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	return &BlogListResult{
		Blogs:      blogs,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}

// GetBySlug also counts the view. The counter is best-effort: a failed bump
// must not hide the blog.
func (s *BlogService) GetBySlug(ctx context.Context, blogSlug string) (*model.Blog, error) {
	blog, err := s.blogRepo.FindBySlug(ctx, blogSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to get blog: %w", err)
	}
	if err := s.blogRepo.IncrementViews(ctx, blog.ID); err == nil {
		blog.ViewsCount++
	}
	return blog, nil
}

func (s *BlogService) Update(ctx context.Context, id, actorID, actorRole string, req BlogRequest) (*model.Blog, error) {
	blog, err := s.blogRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get blog: %w", err)
	}
	if err := canModifyBlog(blog, actorID, actorRole); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &req); err != nil {
		return nil, err
	}

	wasPublished := blog.Status == model.BlogStatusPublished

	blog.Title = strings.TrimSpace(req.Title)
	blog.Slug = slug.Make(blog.Title)
	blog.Content = req.Content
	blog.Excerpt = req.Excerpt
	if blog.Excerpt == "" {
		blog.Excerpt = makeExcerpt(blog.Content)
	}
	blog.Thumbnail = req.Thumbnail
	blog.CategoryID = req.CategoryID
	blog.Tags = req.Tags
	if blog.Tags == nil {
		blog.Tags = []string{}
	}
	blog.Status = model.BlogStatus(req.Status)
	if blog.Status == model.BlogStatusPublished && !wasPublished && blog.PublishedAt == nil {
		now := time.Now()
		blog.PublishedAt = &now
	}

	if err := s.blogRepo.Update(ctx, blog); err != nil {
		return nil, fmt.Errorf("failed to update blog: %w", err)
	}
	return blog, nil
}

func (s *BlogService) Delete(ctx context.Context, id, actorID, actorRole string) error {
	blog, err := s.blogRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get blog: %w", err)
	}
	if err := canModifyBlog(blog, actorID, actorRole); err != nil {
		return err
	}
	if err := s.blogRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete blog: %w", err)
	}
	return nil
}

func (s *BlogService) validate(ctx context.Context, req *BlogRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Content == "" || req.CategoryID == "" || req.Status == "" {
		return fmt.Errorf("title, content, category_id and status are required: %w", common.ErrValidation)
	}
	if !model.BlogStatus(req.Status).Valid() {
		return fmt.Errorf("unknown blog status %q: %w", req.Status, common.ErrValidation)
	}

	if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("category does not exist: %w", common.ErrValidation)
		}
		return fmt.Errorf("failed to check category: %w", err)
	}
	return nil
}

func canModifyBlog(blog *model.Blog, actorID, actorRole string) error {
	if blog.AuthorID == actorID || actorRole == model.RoleAdmin || actorRole == model.RoleSuperAdmin {
		return nil
	}
	return fmt.Errorf("only the author or an admin may modify this blog: %w", common.ErrForbidden)
}

func makeExcerpt(content string) string {
	if utf8.RuneCountInString(content) <= excerptMaxLen {
		return content
	}
	runes := []rune(content)
	return string(runes[:excerptMaxLen])
}
