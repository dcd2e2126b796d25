package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tweet is a short text post owned by a user.
type Tweet struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string             `bson:"content" json:"content"`
	OwnerID   primitive.ObjectID `bson:"owner" json:"owner"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TweetView is a tweet joined with its owner's public profile and like data.
type TweetView struct {
	Tweet     `bson:",inline"`
	Owner     *OwnerInfo `bson:"ownerInfo" json:"ownerInfo"`
	LikeCount int64      `bson:"likeCount" json:"likeCount"`
	IsLiked   bool       `bson:"isLiked" json:"isLiked"`
}
