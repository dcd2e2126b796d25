package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/backend/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("duplicate value for unique field")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ListVideosQuery narrows and pages the published-video listing.
type ListVideosQuery struct {
	// Search is matched case-insensitively against title and description.
	Search string
	// OwnerID restricts results to one channel when non-nil.
	OwnerID *primitive.ObjectID
	// Viewer is the requesting user, used for the isLiked flag.
	Viewer   primitive.ObjectID
	SortBy   string
	SortDesc bool
	Page     int64
	Limit    int64
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	UpdateAccount(ctx context.Context, id primitive.ObjectID, fullName, email string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error
	UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatar domain.MediaRef) (*domain.User, error)
	UpdateCoverImage(ctx context.Context, id primitive.ObjectID, cover domain.MediaRef) (*domain.User, error)
	AppendWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error

	// GetChannelProfile assembles the channel view for a username, with
	// subscription-derived fields relative to the viewer.
	GetChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*domain.ChannelProfile, error)
	// GetWatchHistory assembles the viewer's watch history with owner info.
	GetWatchHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.VideoSummary, error)
}

// VideoRepository defines the interface for interacting with video data.
type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Video, error)
	Update(ctx context.Context, video *domain.Video) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetPublished(ctx context.Context, id primitive.ObjectID, published bool) error
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	ListPublishedByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Video, error)

	// List assembles published-video views matching the query.
	List(ctx context.Context, q ListVideosQuery) ([]domain.VideoView, error)
	// GetView assembles the full video view relative to the viewer.
	GetView(ctx context.Context, id, viewer primitive.ObjectID) (*domain.VideoView, error)
	// ListChannelViews assembles published videos of one channel with owner info.
	ListChannelViews(ctx context.Context, channelID primitive.ObjectID) ([]domain.VideoView, error)
}

// TweetRepository defines the interface for interacting with tweet data.
type TweetRepository interface {
	Create(ctx context.Context, tweet *domain.Tweet) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Tweet, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*domain.Tweet, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// ListByOwner assembles a user's tweets with owner and like information.
	ListByOwner(ctx context.Context, ownerID, viewer primitive.ObjectID) ([]domain.TweetView, error)
}

// CommentRepository defines the interface for interacting with comment data.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Comment, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*domain.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByVideoID(ctx context.Context, videoID primitive.ObjectID) error

	// ListForVideo assembles a page of comment views, newest first.
	ListForVideo(ctx context.Context, videoID, viewer primitive.ObjectID, page, limit int64) ([]domain.CommentView, error)
}

// LikeRepository defines the interface for interacting with like data.
// Toggle methods are atomic: delete-if-present, otherwise insert, so two
// concurrent toggles can never produce a duplicate (likedBy, target) pair.
type LikeRepository interface {
	ToggleVideo(ctx context.Context, videoID, userID primitive.ObjectID) (*domain.Like, bool, error)
	ToggleComment(ctx context.Context, commentID, userID primitive.ObjectID) (*domain.Like, bool, error)
	ToggleTweet(ctx context.Context, tweetID, userID primitive.ObjectID) (*domain.Like, bool, error)
	DeleteByVideoID(ctx context.Context, videoID primitive.ObjectID) error
	CountForVideos(ctx context.Context, videoIDs []primitive.ObjectID) (int64, error)

	// ListLikedVideos assembles the videos the user has liked.
	ListLikedVideos(ctx context.Context, userID primitive.ObjectID) ([]domain.LikedVideoView, error)
}

// SubscriptionRepository defines the interface for subscription data.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, channelID, subscriberID primitive.ObjectID) (*domain.Subscription, bool, error)
	CountSubscribers(ctx context.Context, channelID primitive.ObjectID) (int64, error)

	ListSubscribers(ctx context.Context, channelID primitive.ObjectID) ([]domain.SubscriberView, error)
	ListSubscribedChannels(ctx context.Context, subscriberID primitive.ObjectID) ([]domain.SubscribedChannelView, error)
}

// PlaylistRepository defines the interface for interacting with playlists.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *domain.Playlist) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Playlist, error)
	Update(ctx context.Context, id primitive.ObjectID, name, description string) (*domain.Playlist, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AddVideo appends atomically; ErrConflict when already present.
	AddVideo(ctx context.Context, playlistID, videoID primitive.ObjectID) error
	// RemoveVideo pulls atomically; ErrNotFound when not present.
	RemoveVideo(ctx context.Context, playlistID, videoID primitive.ObjectID) error

	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.PlaylistView, error)
	GetView(ctx context.Context, id primitive.ObjectID) (*domain.PlaylistView, error)
}
