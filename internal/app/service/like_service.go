package service

import (
	"context"
	"fmt"

	"mindclaire/internal/domain/model"
	"mindclaire/internal/domain/repository"

	"github.com/google/uuid"
)

type LikeService struct {
	likeRepo    repository.LikeRepository
	blogRepo    repository.BlogRepository
	commentRepo repository.CommentRepository
}

func NewLikeService(likeRepo repository.LikeRepository, blogRepo repository.BlogRepository, commentRepo repository.CommentRepository) *LikeService {
	return &LikeService{likeRepo: likeRepo, blogRepo: blogRepo, commentRepo: commentRepo}
}

type LikeResult struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// ToggleBlogLike likes the blog, or removes the like if one already exists.
func (s *LikeService) ToggleBlogLike(ctx context.Context, blogID, userID string) (*LikeResult, error) {
	if _, err := s.blogRepo.FindByID(ctx, blogID); err != nil {
		return nil, fmt.Errorf("failed to check blog: %w", err)
	}

	liked, err := s.likeRepo.ExistsForBlog(ctx, userID, blogID)
	if err != nil {
		return nil, fmt.Errorf("failed to check like: %w", err)
	}

	if liked {
		if err := s.likeRepo.DeleteForBlog(ctx, userID, blogID); err != nil {
			return nil, fmt.Errorf("failed to remove like: %w", err)
		}
	} else {
		like := &model.Like{ID: uuid.NewString(), UserID: userID, BlogID: &blogID}
		if err := s.likeRepo.Create(ctx, like); err != nil {
			return nil, fmt.Errorf("failed to add like: %w", err)
		}
	}

	count, err := s.likeRepo.CountForBlog(ctx, blogID)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	return &LikeResult{Liked: !liked, Count: count}, nil
}

// ToggleCommentLike mirrors ToggleBlogLike for comments.
func (s *LikeService) ToggleCommentLike(ctx context.Context, commentID, userID string) (*LikeResult, error) {
	if _, err := s.commentRepo.FindByID(ctx, commentID); err != nil {
		return nil, fmt.Errorf("failed to check comment: %w", err)
	}

	liked, err := s.likeRepo.ExistsForComment(ctx, userID, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check like: %w", err)
	}

	if liked {
		if err := s.likeRepo.DeleteForComment(ctx, userID, commentID); err != nil {
			return nil, fmt.Errorf("failed to remove like: %w", err)
		}
	} else {
		like := &model.Like{ID: uuid.NewString(), UserID: userID, CommentID: &commentID}
		if err := s.likeRepo.Create(ctx, like); err != nil {
			return nil, fmt.Errorf("failed to add like: %w", err)
		}
	}

	count, err := s.likeRepo.CountForComment(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	return &LikeResult{Liked: !liked, Count: count}, nil
}
