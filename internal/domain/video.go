package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video represents a published piece of media. The actual media files live
// in blob storage; the document stores references plus metadata.
type Video struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VideoFile   MediaRef           `bson:"videoFile" json:"videoFile"`
	Thumbnail   MediaRef           `bson:"thumbnail" json:"thumbnail"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Duration    float64            `bson:"duration" json:"duration"` // seconds
	Views       int64              `bson:"views" json:"views"`
	IsPublished bool               `bson:"isPublished" json:"isPublished"`
	OwnerID     primitive.ObjectID `bson:"owner" json:"owner"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// VideoView is the denormalized read model for a video: the video itself
// plus its owner's public profile and like information relative to the
// requesting viewer.
type VideoView struct {
	Video     `bson:",inline"`
	Owner     *OwnerInfo `bson:"ownerInfo" json:"ownerInfo"`
	LikeCount int64      `bson:"likeCount" json:"likeCount"`
	IsLiked   bool       `bson:"isLiked" json:"isLiked"`
}

// VideoSummary is the reduced video projection embedded in listing views
// (liked videos, playlist contents, watch history).
type VideoSummary struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	VideoFile   MediaRef           `bson:"videoFile" json:"videoFile"`
	Thumbnail   MediaRef           `bson:"thumbnail" json:"thumbnail"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Duration    float64            `bson:"duration" json:"duration"`
	Views       int64              `bson:"views" json:"views"`
	Owner       *OwnerInfo         `bson:"ownerInfo,omitempty" json:"ownerInfo,omitempty"`
}

// ChannelStats aggregates the dashboard numbers for a channel.
type ChannelStats struct {
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int64 `json:"totalLikes"`
}
