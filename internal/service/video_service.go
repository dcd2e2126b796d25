package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/backend/internal/domain"
	"vidtube/backend/internal/repository"
	"vidtube/backend/internal/storage"
)

// sortableVideoFields whitelists the sort keys accepted by the listing.
var sortableVideoFields = map[string]bool{
	"createdAt": true,
	"title":     true,
	"duration":  true,
	"views":     true,
}

// VideoService handles the video lifecycle and read models.
type VideoService interface {
	List(ctx context.Context, q repository.ListVideosQuery) ([]domain.VideoView, error)
	Publish(ctx context.Context, ownerID primitive.ObjectID, title, description string, duration float64, videoFile, thumbnail FileUpload) (*domain.Video, error)
	Get(ctx context.Context, videoID, viewer primitive.ObjectID) (*domain.VideoView, error)
	Update(ctx context.Context, actor, videoID primitive.ObjectID, title, description string, thumbnail *FileUpload) (*domain.Video, error)
	Delete(ctx context.Context, actor, videoID primitive.ObjectID) error
	TogglePublish(ctx context.Context, actor, videoID primitive.ObjectID) (*domain.Video, error)
}

type videoService struct {
	videoRepo   repository.VideoRepository
	userRepo    repository.UserRepository
	likeRepo    repository.LikeRepository
	commentRepo repository.CommentRepository
	storage     storage.FileStorage
	log         *logrus.Logger
}

// NewVideoService creates a new instance of videoService.
func NewVideoService(
	videoRepo repository.VideoRepository,
	userRepo repository.UserRepository,
	likeRepo repository.LikeRepository,
	commentRepo repository.CommentRepository,
	fileStorage storage.FileStorage,
	log *logrus.Logger,
) VideoService {
	return &videoService{
		videoRepo:   videoRepo,
		userRepo:    userRepo,
		likeRepo:    likeRepo,
		commentRepo: commentRepo,
		storage:     fileStorage,
		log:         log,
	}
}

// List returns published-video views matching the query. The handler has
// already sanitized page and limit; the sort key is whitelisted here.
func (s *videoService) List(ctx context.Context, q repository.ListVideosQuery) ([]domain.VideoView, error) {
	if q.SortBy != "" && !sortableVideoFields[q.SortBy] {
		return nil, fmt.Errorf("%w: unsupported sort field %q", ErrInvalidInput, q.SortBy)
	}
	return s.videoRepo.List(ctx, q)
}

// Publish uploads the media pair and creates the video record. If record
// creation fails, the just-uploaded blobs are removed again.
func (s *videoService) Publish(ctx context.Context, ownerID primitive.ObjectID, title, description string, duration float64, videoFile, thumbnail FileUpload) (*domain.Video, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if videoFile.Reader == nil || thumbnail.Reader == nil {
		return nil, fmt.Errorf("%w: video file and thumbnail are required", ErrInvalidInput)
	}

	videoObj, err := s.storage.Upload(ctx, objectKey("videos", videoFile.Filename), videoFile.ContentType, videoFile.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: storing video file: %v", ErrUpstream, err)
	}
	thumbObj, err := s.storage.Upload(ctx, objectKey("thumbnails", thumbnail.Filename), thumbnail.ContentType, thumbnail.Reader)
	if err != nil {
		s.deleteBlobQuietly(ctx, videoObj.ObjectKey)
		return nil, fmt.Errorf("%w: storing thumbnail: %v", ErrUpstream, err)
	}

	video := &domain.Video{
		VideoFile:   domain.MediaRef{URL: videoObj.URL, ObjectKey: videoObj.ObjectKey},
		Thumbnail:   domain.MediaRef{URL: thumbObj.URL, ObjectKey: thumbObj.ObjectKey},
		Title:       title,
		Description: description,
		Duration:    duration,
		IsPublished: true,
		OwnerID:     ownerID,
	}

	videoID, err := s.videoRepo.Create(ctx, video)
	if err != nil {
		s.deleteBlobQuietly(ctx, videoObj.ObjectKey)
		s.deleteBlobQuietly(ctx, thumbObj.ObjectKey)
		return nil, err
	}
	video.ID = videoID

	return video, nil
}

// Get returns the full video view, bumps the view counter and records the
// video in the viewer's watch history. Unpublished videos are visible only
// to their owner.
func (s *videoService) Get(ctx context.Context, videoID, viewer primitive.ObjectID) (*domain.VideoView, error) {
	view, err := s.videoRepo.GetView(ctx, videoID, viewer)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: video", ErrNotFound)
		}
		return nil, err
	}
	if !view.IsPublished && view.OwnerID != viewer {
		return nil, fmt.Errorf("%w: video", ErrNotFound)
	}

	// Draft media stays off the public URL space; the owner gets a
	// short-lived presigned link instead.
	if !view.IsPublished {
		signed, err := s.storage.GeneratePresignedDownloadURL(ctx, view.VideoFile.ObjectKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			return nil, fmt.Errorf("%w: signing draft media URL: %v", ErrUpstream, err)
		}
		view.VideoFile.URL = signed
	}

	if err := s.videoRepo.IncrementViews(ctx, videoID); err != nil {
		s.log.WithError(err).WithField("videoID", videoID.Hex()).Warn("Failed to increment view count")
	} else {
		view.Views++
	}
	if err := s.userRepo.AppendWatchHistory(ctx, viewer, videoID); err != nil {
		s.log.WithError(err).WithField("userID", viewer.Hex()).Warn("Failed to record watch history")
	}

	return view, nil
}

// Update edits metadata and optionally replaces the thumbnail, owner only.
func (s *videoService) Update(ctx context.Context, actor, videoID primitive.ObjectID, title, description string, thumbnail *FileUpload) (*domain.Video, error) {
	video, err := s.ownedVideo(ctx, actor, videoID)
	if err != nil {
		return nil, err
	}
	if title == "" && description == "" && thumbnail == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	if title != "" {
		video.Title = title
	}
	if description != "" {
		video.Description = description
	}

	var previousThumb domain.MediaRef
	if thumbnail != nil {
		stored, err := s.storage.Upload(ctx, objectKey("thumbnails", thumbnail.Filename), thumbnail.ContentType, thumbnail.Reader)
		if err != nil {
			return nil, fmt.Errorf("%w: storing thumbnail: %v", ErrUpstream, err)
		}
		previousThumb = video.Thumbnail
		video.Thumbnail = domain.MediaRef{URL: stored.URL, ObjectKey: stored.ObjectKey}
	}

	if err := s.videoRepo.Update(ctx, video); err != nil {
		if thumbnail != nil {
			s.deleteBlobQuietly(ctx, video.Thumbnail.ObjectKey)
		}
		return nil, err
	}

	// Old thumbnail goes last, after the record points at the new one.
	if !previousThumb.IsZero() {
		s.deleteBlobQuietly(ctx, previousThumb.ObjectKey)
	}

	return video, nil
}

// Delete removes the record, its likes and comments, then the blobs.
// Blob deletion failures are logged, leaving orphans for a GC sweep.
func (s *videoService) Delete(ctx context.Context, actor, videoID primitive.ObjectID) error {
	video, err := s.ownedVideo(ctx, actor, videoID)
	if err != nil {
		return err
	}

	if err := s.videoRepo.Delete(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: video", ErrNotFound)
		}
		return err
	}

	if err := s.likeRepo.DeleteByVideoID(ctx, videoID); err != nil {
		s.log.WithError(err).WithField("videoID", videoID.Hex()).Warn("Failed to delete likes of removed video")
	}
	if err := s.commentRepo.DeleteByVideoID(ctx, videoID); err != nil {
		s.log.WithError(err).WithField("videoID", videoID.Hex()).Warn("Failed to delete comments of removed video")
	}

	s.deleteBlobQuietly(ctx, video.VideoFile.ObjectKey)
	s.deleteBlobQuietly(ctx, video.Thumbnail.ObjectKey)

	return nil
}

// TogglePublish flips the publish flag, owner only.
func (s *videoService) TogglePublish(ctx context.Context, actor, videoID primitive.ObjectID) (*domain.Video, error) {
	video, err := s.ownedVideo(ctx, actor, videoID)
	if err != nil {
		return nil, err
	}

	video.IsPublished = !video.IsPublished
	if err := s.videoRepo.SetPublished(ctx, videoID, video.IsPublished); err != nil {
		return nil, err
	}
	return video, nil
}

// ownedVideo loads a video and enforces ownership: existence is checked
// first (not found), ownership second (forbidden).
func (s *videoService) ownedVideo(ctx context.Context, actor, videoID primitive.ObjectID) (*domain.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: video", ErrNotFound)
		}
		return nil, err
	}
	if video.OwnerID != actor {
		return nil, ErrNotOwner
	}
	return video, nil
}

func (s *videoService) deleteBlobQuietly(ctx context.Context, objectKey string) {
	if objectKey == "" {
		return
	}
	if err := s.storage.DeleteObject(ctx, objectKey); err != nil {
		s.log.WithError(err).WithField("objectKey", objectKey).Warn("Orphaned blob left in storage for GC sweep")
	}
}
