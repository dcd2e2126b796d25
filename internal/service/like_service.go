package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/backend/internal/domain"
	"vidtube/backend/internal/repository"
)

// LikeService handles like toggles on videos, comments and tweets.
// Toggling twice always returns the pair to its original state.
type LikeService interface {
	ToggleVideoLike(ctx context.Context, videoID, userID primitive.ObjectID) (*domain.Like, bool, error)
	ToggleCommentLike(ctx context.Context, commentID, userID primitive.ObjectID) (*domain.Like, bool, error)
	ToggleTweetLike(ctx context.Context, tweetID, userID primitive.ObjectID) (*domain.Like, bool, error)
	GetLikedVideos(ctx context.Context, userID primitive.ObjectID) ([]domain.LikedVideoView, error)
}

type likeService struct {
	likeRepo    repository.LikeRepository
	videoRepo   repository.VideoRepository
	commentRepo repository.CommentRepository
	tweetRepo   repository.TweetRepository
}

// NewLikeService creates a new instance of likeService.
func NewLikeService(
	likeRepo repository.LikeRepository,
	videoRepo repository.VideoRepository,
	commentRepo repository.CommentRepository,
	tweetRepo repository.TweetRepository,
) LikeService {
	return &likeService{
		likeRepo:    likeRepo,
		videoRepo:   videoRepo,
		commentRepo: commentRepo,
		tweetRepo:   tweetRepo,
	}
}

// ToggleVideoLike flips the like state for a video. The returned bool is
// true when the toggle resulted in a like.
func (s *likeService) ToggleVideoLike(ctx context.Context, videoID, userID primitive.ObjectID) (*domain.Like, bool, error) {
	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: video", ErrNotFound)
		}
		return nil, false, err
	}
	return s.likeRepo.ToggleVideo(ctx, videoID, userID)
}

// ToggleCommentLike flips the like state for a comment.
func (s *likeService) ToggleCommentLike(ctx context.Context, commentID, userID primitive.ObjectID) (*domain.Like, bool, error) {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: comment", ErrNotFound)
		}
		return nil, false, err
	}
	return s.likeRepo.ToggleComment(ctx, commentID, userID)
}

// ToggleTweetLike flips the like state for a tweet.
func (s *likeService) ToggleTweetLike(ctx context.Context, tweetID, userID primitive.ObjectID) (*domain.Like, bool, error) {
	if _, err := s.tweetRepo.GetByID(ctx, tweetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: tweet", ErrNotFound)
		}
		return nil, false, err
	}
	return s.likeRepo.ToggleTweet(ctx, tweetID, userID)
}

// GetLikedVideos returns the videos the user has liked; an empty list is
// a valid result.
func (s *likeService) GetLikedVideos(ctx context.Context, userID primitive.ObjectID) ([]domain.LikedVideoView, error) {
	return s.likeRepo.ListLikedVideos(ctx, userID)
}
