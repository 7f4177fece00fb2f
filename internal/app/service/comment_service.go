package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mindclaire/internal/common"
	"mindclaire/internal/domain/model"
	"mindclaire/internal/domain/repository"

	"github.com/google/uuid"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	blogRepo    repository.BlogRepository
}

func NewCommentService(commentRepo repository.CommentRepository, blogRepo repository.BlogRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, blogRepo: blogRepo}
}

type CommentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id,omitempty"`
}

func (s *CommentService) Add(ctx context.Context, blogID, userID string, req CommentRequest) (*model.Comment, error) {
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return nil, fmt.Errorf("comment content is required: %w", common.ErrValidation)
	}

	if _, err := s.blogRepo.FindByID(ctx, blogID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("blog does not exist: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to check blog: %w", err)
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.FindByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, fmt.Errorf("parent comment does not exist: %w", common.ErrValidation)
			}
			return nil, fmt.Errorf("failed to check parent comment: %w", err)
		}
		if parent.BlogID != blogID {
			return nil, fmt.Errorf("parent comment belongs to another blog: %w", common.ErrValidation)
		}
	}

	comment := &model.Comment{
		ID:         uuid.NewString(),
		BlogID:     blogID,
		UserID:     userID,
		Content:    req.Content,
		ParentID:   req.ParentID,
		IsApproved: true,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) ListByBlog(ctx context.Context, blogID string) ([]model.Comment, error) {
	if _, err := s.blogRepo.FindByID(ctx, blogID); err != nil {
		return nil, fmt.Errorf("failed to check blog: %w", err)
	}
	comments, err := s.commentRepo.ListByBlog(ctx, blogID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// Update is restricted to the comment's author.
func (s *CommentService) Update(ctx context.Context, id, actorID string, req CommentRequest) (*model.Comment, error) {
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return nil, fmt.Errorf("comment content is required: %w", common.ErrValidation)
	}

	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	if comment.UserID != actorID {
		return nil, fmt.Errorf("only the author may edit this comment: %w", common.ErrForbidden)
	}

	comment.Content = req.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return comment, nil
}

// Delete is allowed for the author and for moderators (admin or superadmin).
func (s *CommentService) Delete(ctx context.Context, id, actorID, actorRole string) error {
	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get comment: %w", err)
	}
	if comment.UserID != actorID && actorRole != model.RoleAdmin && actorRole != model.RoleSuperAdmin {
		return fmt.Errorf("only the author or a moderator may delete this comment: %w", common.ErrForbidden)
	}
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
