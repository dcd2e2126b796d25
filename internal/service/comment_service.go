package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/backend/internal/domain"
	"vidtube/backend/internal/repository"
)

// CommentService handles comments on videos with owner-only mutation.
type CommentService interface {
	ListForVideo(ctx context.Context, videoID, viewer primitive.ObjectID, page, limit int64) ([]domain.CommentView, error)
	Add(ctx context.Context, ownerID, videoID primitive.ObjectID, content string) (*domain.Comment, error)
	Update(ctx context.Context, actor, commentID primitive.ObjectID, content string) (*domain.Comment, error)
	Delete(ctx context.Context, actor, commentID primitive.ObjectID) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	videoRepo   repository.VideoRepository
}

// NewCommentService creates a new instance of commentService.
func NewCommentService(commentRepo repository.CommentRepository, videoRepo repository.VideoRepository) CommentService {
	return &commentService{commentRepo: commentRepo, videoRepo: videoRepo}
}

// ListForVideo returns a page of comment views for a video, newest first.
// A video with no comments yields an empty list, not an error.
func (s *commentService) ListForVideo(ctx context.Context, videoID, viewer primitive.ObjectID, page, limit int64) ([]domain.CommentView, error) {
	if err := s.videoExists(ctx, videoID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListForVideo(ctx, videoID, viewer, page, limit)
}

// Add attaches a comment to a video.
func (s *commentService) Add(ctx context.Context, ownerID, videoID primitive.ObjectID, content string) (*domain.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if err := s.videoExists(ctx, videoID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{Content: content, VideoID: videoID, OwnerID: ownerID}
	commentID, err := s.commentRepo.Create(ctx, comment)
	if err != nil {
		return nil, err
	}
	comment.ID = commentID
	return comment, nil
}

// Update edits a comment's content, owner only.
func (s *commentService) Update(ctx context.Context, actor, commentID primitive.ObjectID, content string) (*domain.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if err := s.checkOwnership(ctx, actor, commentID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.UpdateContent(ctx, commentID, content)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: comment", ErrNotFound)
		}
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment, owner only.
func (s *commentService) Delete(ctx context.Context, actor, commentID primitive.ObjectID) error {
	if err := s.checkOwnership(ctx, actor, commentID); err != nil {
		return err
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: comment", ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *commentService) videoExists(ctx context.Context, videoID primitive.ObjectID) error {
	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: video", ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *commentService) checkOwnership(ctx context.Context, actor, commentID primitive.ObjectID) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: comment", ErrNotFound)
		}
		return err
	}
	if comment.OwnerID != actor {
		return ErrNotOwner
	}
	return nil
}
