package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/backend/internal/domain"
	"vidtube/backend/internal/repository"
)

// TweetService handles the tweet CRUD lifecycle with owner-only mutation.
type TweetService interface {
	Create(ctx context.Context, ownerID primitive.ObjectID, content string) (*domain.Tweet, error)
	ListByOwner(ctx context.Context, ownerID, viewer primitive.ObjectID) ([]domain.TweetView, error)
	Update(ctx context.Context, actor, tweetID primitive.ObjectID, content string) (*domain.Tweet, error)
	Delete(ctx context.Context, actor, tweetID primitive.ObjectID) error
}

type tweetService struct {
	tweetRepo repository.TweetRepository
	userRepo  repository.UserRepository
}

// NewTweetService creates a new instance of tweetService.
func NewTweetService(tweetRepo repository.TweetRepository, userRepo repository.UserRepository) TweetService {
	return &tweetService{tweetRepo: tweetRepo, userRepo: userRepo}
}

// Create posts a new tweet.
func (s *tweetService) Create(ctx context.Context, ownerID primitive.ObjectID, content string) (*domain.Tweet, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	tweet := &domain.Tweet{Content: content, OwnerID: ownerID}
	tweetID, err := s.tweetRepo.Create(ctx, tweet)
	if err != nil {
		return nil, err
	}
	tweet.ID = tweetID
	return tweet, nil
}

// ListByOwner returns a user's tweets with like data relative to the
// viewer. The owner must exist; an empty list is a valid result.
func (s *tweetService) ListByOwner(ctx context.Context, ownerID, viewer primitive.ObjectID) ([]domain.TweetView, error) {
	if _, err := s.userRepo.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}
	return s.tweetRepo.ListByOwner(ctx, ownerID, viewer)
}

// Update edits a tweet's content, owner only.
func (s *tweetService) Update(ctx context.Context, actor, tweetID primitive.ObjectID, content string) (*domain.Tweet, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if err := s.checkOwnership(ctx, actor, tweetID); err != nil {
		return nil, err
	}

	tweet, err := s.tweetRepo.UpdateContent(ctx, tweetID, content)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: tweet", ErrNotFound)
		}
		return nil, err
	}
	return tweet, nil
}

// Delete removes a tweet, owner only.
func (s *tweetService) Delete(ctx context.Context, actor, tweetID primitive.ObjectID) error {
	if err := s.checkOwnership(ctx, actor, tweetID); err != nil {
		return err
	}

	if err := s.tweetRepo.Delete(ctx, tweetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: tweet", ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *tweetService) checkOwnership(ctx context.Context, actor, tweetID primitive.ObjectID) error {
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: tweet", ErrNotFound)
		}
		return err
	}
	if tweet.OwnerID != actor {
		return ErrNotOwner
	}
	return nil
}
