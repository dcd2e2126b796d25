package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/backend/internal/domain"
	"vidtube/backend/internal/repository"
)

// PlaylistService handles playlists and their video membership.
type PlaylistService interface {
	Create(ctx context.Context, ownerID primitive.ObjectID, name, description string) (*domain.Playlist, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.PlaylistView, error)
	Get(ctx context.Context, playlistID primitive.ObjectID) (*domain.PlaylistView, error)
	Update(ctx context.Context, actor, playlistID primitive.ObjectID, name, description string) (*domain.Playlist, error)
	Delete(ctx context.Context, actor, playlistID primitive.ObjectID) error
	AddVideo(ctx context.Context, actor, playlistID, videoID primitive.ObjectID) (*domain.Playlist, error)
	RemoveVideo(ctx context.Context, actor, playlistID, videoID primitive.ObjectID) (*domain.Playlist, error)
}

type playlistService struct {
	playlistRepo repository.PlaylistRepository
	videoRepo    repository.VideoRepository
	userRepo     repository.UserRepository
}

// NewPlaylistService creates a new instance of playlistService.
func NewPlaylistService(playlistRepo repository.PlaylistRepository, videoRepo repository.VideoRepository, userRepo repository.UserRepository) PlaylistService {
	return &playlistService{
		playlistRepo: playlistRepo,
		videoRepo:    videoRepo,
		userRepo:     userRepo,
	}
}

// Create makes a new, empty playlist.
func (s *playlistService) Create(ctx context.Context, ownerID primitive.ObjectID, name, description string) (*domain.Playlist, error) {
	if name == "" || description == "" {
		return nil, fmt.Errorf("%w: name and description are required", ErrInvalidInput)
	}

	playlist := &domain.Playlist{Name: name, Description: description, OwnerID: ownerID}
	playlistID, err := s.playlistRepo.Create(ctx, playlist)
	if err != nil {
		return nil, err
	}
	playlist.ID = playlistID
	return playlist, nil
}

// ListByOwner returns a user's playlists. The owner must exist.
func (s *playlistService) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.PlaylistView, error) {
	if _, err := s.userRepo.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}
	return s.playlistRepo.ListByOwner(ctx, ownerID)
}

// Get returns the playlist view with owner and video details.
func (s *playlistService) Get(ctx context.Context, playlistID primitive.ObjectID) (*domain.PlaylistView, error) {
	view, err := s.playlistRepo.GetView(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: playlist", ErrNotFound)
		}
		return nil, err
	}
	return view, nil
}

// Update renames a playlist, owner only.
func (s *playlistService) Update(ctx context.Context, actor, playlistID primitive.ObjectID, name, description string) (*domain.Playlist, error) {
	if name == "" || description == "" {
		return nil, fmt.Errorf("%w: name and description are required", ErrInvalidInput)
	}
	if _, err := s.ownedPlaylist(ctx, actor, playlistID); err != nil {
		return nil, err
	}

	playlist, err := s.playlistRepo.Update(ctx, playlistID, name, description)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: playlist", ErrNotFound)
		}
		return nil, err
	}
	return playlist, nil
}

// Delete removes a playlist, owner only.
func (s *playlistService) Delete(ctx context.Context, actor, playlistID primitive.ObjectID) error {
	if _, err := s.ownedPlaylist(ctx, actor, playlistID); err != nil {
		return err
	}

	if err := s.playlistRepo.Delete(ctx, playlistID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: playlist", ErrNotFound)
		}
		return err
	}
	return nil
}

// AddVideo appends a video, owner only; adding a video twice is a
// conflict and leaves the playlist unchanged.
func (s *playlistService) AddVideo(ctx context.Context, actor, playlistID, videoID primitive.ObjectID) (*domain.Playlist, error) {
	if _, err := s.ownedPlaylist(ctx, actor, playlistID); err != nil {
		return nil, err
	}
	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: video", ErrNotFound)
		}
		return nil, err
	}

	if err := s.playlistRepo.AddVideo(ctx, playlistID, videoID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrVideoInPlaylist
		}
		return nil, err
	}

	return s.playlistRepo.GetByID(ctx, playlistID)
}

// RemoveVideo pulls a video, owner only; removing an absent video is a
// conflict.
func (s *playlistService) RemoveVideo(ctx context.Context, actor, playlistID, videoID primitive.ObjectID) (*domain.Playlist, error) {
	if _, err := s.ownedPlaylist(ctx, actor, playlistID); err != nil {
		return nil, err
	}

	if err := s.playlistRepo.RemoveVideo(ctx, playlistID, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVideoNotInPlaylist
		}
		return nil, err
	}

	return s.playlistRepo.GetByID(ctx, playlistID)
}

func (s *playlistService) ownedPlaylist(ctx context.Context, actor, playlistID primitive.ObjectID) (*domain.Playlist, error) {
	playlist, err := s.playlistRepo.GetByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: playlist", ErrNotFound)
		}
		return nil, err
	}
	if playlist.OwnerID != actor {
		return nil, ErrNotOwner
	}
	return playlist, nil
}
