package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like records that a user liked exactly one target: a video, a comment or
// a tweet. Its existence is the signal; unliking deletes the document.
// At most one Like exists per (likedBy, target) pair.
type Like struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	VideoID   *primitive.ObjectID `bson:"video,omitempty" json:"video,omitempty"`
	CommentID *primitive.ObjectID `bson:"comment,omitempty" json:"comment,omitempty"`
	TweetID   *primitive.ObjectID `bson:"tweet,omitempty" json:"tweet,omitempty"`
	LikedBy   primitive.ObjectID  `bson:"likedBy" json:"likedBy"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// LikedVideoView is one entry of the liked-videos listing: the like record
// joined with the video it targets and the liker's public profile.
type LikedVideoView struct {
	Like  `bson:",inline"`
	Video *VideoSummary `bson:"videoDetails" json:"videoDetails"`
	Liker *OwnerInfo    `bson:"likerDetails" json:"likerDetails"`
}
