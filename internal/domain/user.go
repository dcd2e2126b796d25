package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaRef points at an object stored in blob storage. The public URL is
// what clients render; the object key is what we need to delete or replace
// the blob and is never exposed over the API.
type MediaRef struct {
	URL       string `bson:"url" json:"url"`
	ObjectKey string `bson:"objectKey" json:"-"`
}

// IsZero reports whether the reference points at nothing.
func (m MediaRef) IsZero() bool {
	return m.URL == "" && m.ObjectKey == ""
}

// User represents a registered account. A user is also a "channel" that
// other users can subscribe to.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"` // unique, stored lowercase
	Email        string             `bson:"email" json:"email"`       // unique
	FullName     string             `bson:"fullName" json:"fullName"`
	Avatar       MediaRef           `bson:"avatar" json:"avatar"`
	CoverImage   MediaRef           `bson:"coverImage,omitempty" json:"coverImage"`
	PasswordHash string             `bson:"passwordHash" json:"-"` // never expose this via JSON
	RefreshToken string             `bson:"refreshToken,omitempty" json:"-"`
	// Ordered video references, most recently watched last.
	WatchHistory []primitive.ObjectID `bson:"watchHistory,omitempty" json:"watchHistory,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ChannelProfile is the view model for a channel page: the channel's public
// fields plus subscription-derived fields relative to the requesting viewer.
type ChannelProfile struct {
	ID                   primitive.ObjectID `bson:"_id" json:"id"`
	Username             string             `bson:"username" json:"username"`
	FullName             string             `bson:"fullName" json:"fullName"`
	Email                string             `bson:"email" json:"email"`
	Avatar               MediaRef           `bson:"avatar" json:"avatar"`
	CoverImage           MediaRef           `bson:"coverImage" json:"coverImage"`
	SubscriberCount      int64              `bson:"subscriberCount" json:"subscriberCount"`
	ChannelsSubscribedTo int64              `bson:"channelsSubscribedTo" json:"channelsSubscribedTo"`
	IsSubscribed         bool               `bson:"isSubscribed" json:"isSubscribed"`
}

// OwnerInfo is the reduced user projection embedded in views of owned
// entities (videos, comments, tweets, playlists).
type OwnerInfo struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	FullName string             `bson:"fullName" json:"fullName"`
	Avatar   MediaRef           `bson:"avatar" json:"avatar"`
}
