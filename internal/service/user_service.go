package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/backend/internal/domain"
	"vidtube/backend/internal/repository"
	"vidtube/backend/internal/storage"
)

// UserService handles profile reads and updates for authenticated users.
type UserService interface {
	GetCurrent(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	UpdateAccount(ctx context.Context, userID primitive.ObjectID, fullName, email string) (*domain.User, error)
	UpdateAvatar(ctx context.Context, userID primitive.ObjectID, upload FileUpload) (*domain.User, error)
	UpdateCoverImage(ctx context.Context, userID primitive.ObjectID, upload FileUpload) (*domain.User, error)
	GetChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*domain.ChannelProfile, error)
	GetWatchHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.VideoSummary, error)
}

type userService struct {
	userRepo repository.UserRepository
	storage  storage.FileStorage
	log      *logrus.Logger
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository, fileStorage storage.FileStorage, log *logrus.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		storage:  fileStorage,
		log:      log,
	}
}

// GetCurrent returns the authenticated user's own record.
func (s *userService) GetCurrent(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// UpdateAccount changes the mutable profile fields. At least one field
// must be provided.
func (s *userService) UpdateAccount(ctx context.Context, userID primitive.ObjectID, fullName, email string) (*domain.User, error) {
	if fullName == "" && email == "" {
		return nil, fmt.Errorf("%w: at least one of fullName or email is required", ErrInvalidInput)
	}

	user, err := s.userRepo.UpdateAccount(ctx, userID, fullName, email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%w: email already in use", ErrConflict)
		}
		return nil, err
	}
	return user, nil
}

// UpdateAvatar replaces the user's avatar. The new blob is stored first,
// then the record updated, and only then is the old blob deleted, so a
// partial failure never leaves the user without a valid image. A failed
// old-blob delete is logged and the orphan left for a GC sweep.
func (s *userService) UpdateAvatar(ctx context.Context, userID primitive.ObjectID, upload FileUpload) (*domain.User, error) {
	return s.replaceImage(ctx, userID, upload, "avatars",
		func(u *domain.User) domain.MediaRef { return u.Avatar },
		s.userRepo.UpdateAvatar,
	)
}

// UpdateCoverImage replaces the user's cover image with the same
// store-update-delete ordering as UpdateAvatar.
func (s *userService) UpdateCoverImage(ctx context.Context, userID primitive.ObjectID, upload FileUpload) (*domain.User, error) {
	return s.replaceImage(ctx, userID, upload, "covers",
		func(u *domain.User) domain.MediaRef { return u.CoverImage },
		s.userRepo.UpdateCoverImage,
	)
}

func (s *userService) replaceImage(
	ctx context.Context,
	userID primitive.ObjectID,
	upload FileUpload,
	prefix string,
	current func(*domain.User) domain.MediaRef,
	persist func(context.Context, primitive.ObjectID, domain.MediaRef) (*domain.User, error),
) (*domain.User, error) {
	if upload.Reader == nil {
		return nil, fmt.Errorf("%w: image file is missing", ErrInvalidInput)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}
	previous := current(user)

	stored, err := s.storage.Upload(ctx, objectKey(prefix, upload.Filename), upload.ContentType, upload.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: storing image: %v", ErrUpstream, err)
	}

	updated, err := persist(ctx, userID, domain.MediaRef{URL: stored.URL, ObjectKey: stored.ObjectKey})
	if err != nil {
		// The record still points at the old blob; remove the new one.
		if delErr := s.storage.DeleteObject(ctx, stored.ObjectKey); delErr != nil {
			s.log.WithError(delErr).WithField("objectKey", stored.ObjectKey).Warn("Orphaned blob left in storage for GC sweep")
		}
		return nil, err
	}

	if !previous.IsZero() {
		if err := s.storage.DeleteObject(ctx, previous.ObjectKey); err != nil {
			s.log.WithError(err).WithField("objectKey", previous.ObjectKey).Warn("Orphaned blob left in storage for GC sweep")
		}
	}

	return updated, nil
}

// GetChannelProfile returns the channel view for a username, with
// subscription counts and the viewer's isSubscribed flag.
func (s *userService) GetChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*domain.ChannelProfile, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	// Usernames are stored lowercase, so match them the same way.
	profile, err := s.userRepo.GetChannelProfile(ctx, strings.ToLower(username), viewer)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: channel does not exist", ErrNotFound)
		}
		return nil, err
	}
	return profile, nil
}

// GetWatchHistory returns the viewer's watch history. An empty history is
// a valid result, not an error.
func (s *userService) GetWatchHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.VideoSummary, error) {
	history, err := s.userRepo.GetWatchHistory(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}
	return history, nil
}
