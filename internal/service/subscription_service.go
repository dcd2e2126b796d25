package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/backend/internal/domain"
	"vidtube/backend/internal/repository"
)

// SubscriptionService handles the subscribe/unsubscribe toggle and the
// subscriber listings.
type SubscriptionService interface {
	Toggle(ctx context.Context, channelID, subscriberID primitive.ObjectID) (*domain.Subscription, bool, error)
	GetChannelSubscribers(ctx context.Context, channelID primitive.ObjectID) ([]domain.SubscriberView, error)
	GetSubscribedChannels(ctx context.Context, subscriberID primitive.ObjectID) ([]domain.SubscribedChannelView, error)
}

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
}

// NewSubscriptionService creates a new instance of subscriptionService.
func NewSubscriptionService(subscriptionRepo repository.SubscriptionRepository, userRepo repository.UserRepository) SubscriptionService {
	return &subscriptionService{subscriptionRepo: subscriptionRepo, userRepo: userRepo}
}

// Toggle flips the subscription state for a (subscriber, channel) pair.
// Subscribing to your own channel is always rejected.
func (s *subscriptionService) Toggle(ctx context.Context, channelID, subscriberID primitive.ObjectID) (*domain.Subscription, bool, error) {
	if channelID == subscriberID {
		return nil, false, ErrSelfSubscription
	}
	if err := s.userExists(ctx, channelID, "channel"); err != nil {
		return nil, false, err
	}

	return s.subscriptionRepo.Toggle(ctx, channelID, subscriberID)
}

// GetChannelSubscribers lists a channel's subscribers with their public
// profiles. A channel with no subscribers yields an empty list.
func (s *subscriptionService) GetChannelSubscribers(ctx context.Context, channelID primitive.ObjectID) ([]domain.SubscriberView, error) {
	if err := s.userExists(ctx, channelID, "channel"); err != nil {
		return nil, err
	}
	return s.subscriptionRepo.ListSubscribers(ctx, channelID)
}

// GetSubscribedChannels lists the channels a user is subscribed to.
func (s *subscriptionService) GetSubscribedChannels(ctx context.Context, subscriberID primitive.ObjectID) ([]domain.SubscribedChannelView, error) {
	if err := s.userExists(ctx, subscriberID, "subscriber"); err != nil {
		return nil, err
	}
	return s.subscriptionRepo.ListSubscribedChannels(ctx, subscriberID)
}

func (s *subscriptionService) userExists(ctx context.Context, id primitive.ObjectID, what string) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, what)
		}
		return err
	}
	return nil
}
