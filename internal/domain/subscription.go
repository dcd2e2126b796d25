package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription links a subscriber to the channel (user) they subscribe to.
// A user can never subscribe to themselves, and at most one Subscription
// exists per (subscriber, channel) pair.
type Subscription struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChannelID    primitive.ObjectID `bson:"channel" json:"channel"`
	SubscriberID primitive.ObjectID `bson:"subscriber" json:"subscriber"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SubscriberView is one entry of a channel's subscriber listing: the
// subscription record with the subscriber's public profile joined in.
type SubscriberView struct {
	Subscription `bson:",inline"`
	Subscriber   *OwnerInfo `bson:"subscriberInfo" json:"subscriberInfo"`
}

// SubscribedChannelView is one entry of a user's subscribed-channels
// listing: the subscription record with the channel's public profile.
type SubscribedChannelView struct {
	Subscription `bson:",inline"`
	Channel      *OwnerInfo `bson:"channelInfo" json:"channelInfo"`
}
