package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/backend/internal/domain"
	"vidtube/backend/internal/repository"
)

// DashboardService aggregates the owner-facing channel statistics.
type DashboardService interface {
	GetChannelStats(ctx context.Context, channelID primitive.ObjectID) (*domain.ChannelStats, error)
	GetChannelVideos(ctx context.Context, channelID primitive.ObjectID) ([]domain.VideoView, error)
}

type dashboardService struct {
	videoRepo        repository.VideoRepository
	subscriptionRepo repository.SubscriptionRepository
	likeRepo         repository.LikeRepository
	userRepo         repository.UserRepository
}

// NewDashboardService creates a new instance of dashboardService.
func NewDashboardService(
	videoRepo repository.VideoRepository,
	subscriptionRepo repository.SubscriptionRepository,
	likeRepo repository.LikeRepository,
	userRepo repository.UserRepository,
) DashboardService {
	return &dashboardService{
		videoRepo:        videoRepo,
		subscriptionRepo: subscriptionRepo,
		likeRepo:         likeRepo,
		userRepo:         userRepo,
	}
}

// GetChannelStats computes subscriber, video, view and like totals for a
// channel's published videos.
func (s *dashboardService) GetChannelStats(ctx context.Context, channelID primitive.ObjectID) (*domain.ChannelStats, error) {
	if err := s.channelExists(ctx, channelID); err != nil {
		return nil, err
	}

	subscribers, err := s.subscriptionRepo.CountSubscribers(ctx, channelID)
	if err != nil {
		return nil, err
	}

	videos, err := s.videoRepo.ListPublishedByOwner(ctx, channelID)
	if err != nil {
		return nil, err
	}

	var totalViews int64
	videoIDs := make([]primitive.ObjectID, 0, len(videos))
	for _, v := range videos {
		totalViews += v.Views
		videoIDs = append(videoIDs, v.ID)
	}

	likes, err := s.likeRepo.CountForVideos(ctx, videoIDs)
	if err != nil {
		return nil, err
	}

	return &domain.ChannelStats{
		TotalSubscribers: subscribers,
		TotalVideos:      int64(len(videos)),
		TotalViews:       totalViews,
		TotalLikes:       likes,
	}, nil
}

// GetChannelVideos lists a channel's published videos with owner info.
func (s *dashboardService) GetChannelVideos(ctx context.Context, channelID primitive.ObjectID) ([]domain.VideoView, error) {
	if err := s.channelExists(ctx, channelID); err != nil {
		return nil, err
	}
	return s.videoRepo.ListChannelViews(ctx, channelID)
}

func (s *dashboardService) channelExists(ctx context.Context, channelID primitive.ObjectID) error {
	if _, err := s.userRepo.GetByID(ctx, channelID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: channel", ErrNotFound)
		}
		return err
	}
	return nil
}
