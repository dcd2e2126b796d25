package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a text reply attached to a video.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string             `bson:"content" json:"content"`
	VideoID   primitive.ObjectID `bson:"video" json:"video"`
	OwnerID   primitive.ObjectID `bson:"owner" json:"owner"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CommentView is a comment joined with its author's public profile and
// like data relative to the requesting viewer.
type CommentView struct {
	Comment   `bson:",inline"`
	Owner     *OwnerInfo `bson:"ownerInfo" json:"ownerInfo"`
	LikeCount int64      `bson:"likeCount" json:"likeCount"`
	IsLiked   bool       `bson:"isLiked" json:"isLiked"`
}
