package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Playlist is an ordered collection of video references owned by a user.
// Duplicate video entries are disallowed.
type Playlist struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	OwnerID     primitive.ObjectID   `bson:"owner" json:"owner"`
	VideoIDs    []primitive.ObjectID `bson:"videos" json:"videos"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Contains reports whether the playlist already references the video.
func (p *Playlist) Contains(videoID primitive.ObjectID) bool {
	for _, id := range p.VideoIDs {
		if id == videoID {
			return true
		}
	}
	return false
}

// PlaylistView is a playlist joined with its owner's public profile and,
// for the detail view, the referenced videos.
type PlaylistView struct {
	Playlist `bson:",inline"`
	Owner    *OwnerInfo     `bson:"ownerInfo" json:"ownerInfo"`
	Videos   []VideoSummary `bson:"videoDetails,omitempty" json:"videoDetails,omitempty"`
}
