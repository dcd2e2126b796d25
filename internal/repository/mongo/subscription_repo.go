package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vidtube/backend/internal/domain"
	"vidtube/backend/internal/repository"
	"vidtube/backend/internal/views"
)

const subscriptionCollectionName = "subscriptions"

// mongoSubscriptionRepository implements repository.SubscriptionRepository.
type mongoSubscriptionRepository struct {
	collection *mongo.Collection
	assembler  *views.Assembler
}

// NewMongoSubscriptionRepository creates a new Subscription repository
// backed by MongoDB.
func NewMongoSubscriptionRepository(db *mongo.Database) repository.SubscriptionRepository {
	return &mongoSubscriptionRepository{
		collection: db.Collection(subscriptionCollectionName),
		assembler:  views.NewAssembler(db),
	}
}

// Toggle flips the subscription state for a (subscriber, channel) pair:
// delete if present, conditional upsert if absent. The unique index keeps
// concurrent toggles from producing duplicate pairs. The self-subscribe
// rule is enforced in the service layer.
func (r *mongoSubscriptionRepository) Toggle(ctx context.Context, channelID, subscriberID primitive.ObjectID) (*domain.Subscription, bool, error) {
	filter := bson.M{"channel": channelID, "subscriber": subscriberID}

	deleted, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	if deleted.DeletedCount > 0 {
		return nil, false, nil
	}

	now := time.Now().UTC()
	sub := &domain.Subscription{
		ID:           primitive.NewObjectID(),
		ChannelID:    channelID,
		SubscriberID: subscriberID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	opts := options.Update().SetUpsert(true)
	_, err = r.collection.UpdateOne(ctx, filter, bson.M{"$setOnInsert": sub}, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return sub, true, nil
		}
		return nil, false, err
	}
	return sub, true, nil
}

// CountSubscribers counts the subscribers of a channel.
func (r *mongoSubscriptionRepository) CountSubscribers(ctx context.Context, channelID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"channel": channelID})
}

// ListSubscribers assembles a channel's subscriptions with each
// subscriber's public profile joined in.
func (r *mongoSubscriptionRepository) ListSubscribers(ctx context.Context, channelID primitive.ObjectID) ([]domain.SubscriberView, error) {
	spec := views.Spec{
		Match: bson.M{"channel": channelID},
		Joins: []views.Join{
			{
				From: userCollectionName, LocalField: "subscriber", ForeignField: "_id",
				As: "subscriberInfo", Single: true,
				Project: ownerInfoProjection,
			},
		},
		Sort: &views.Sort{Field: "createdAt", Desc: true},
	}

	results := []domain.SubscriberView{}
	if err := r.assembler.Assemble(ctx, subscriptionCollectionName, spec, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// ListSubscribedChannels assembles a user's subscriptions with each
// channel's public profile joined in.
func (r *mongoSubscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberID primitive.ObjectID) ([]domain.SubscribedChannelView, error) {
	spec := views.Spec{
		Match: bson.M{"subscriber": subscriberID},
		Joins: []views.Join{
			{
				From: userCollectionName, LocalField: "channel", ForeignField: "_id",
				As: "channelInfo", Single: true,
				Project: ownerInfoProjection,
			},
		},
		Sort: &views.Sort{Field: "createdAt", Desc: true},
	}

	results := []domain.SubscribedChannelView{}
	if err := r.assembler.Assemble(ctx, subscriptionCollectionName, spec, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// EnsureSubscriptionIndexes creates the unique (subscriber, channel) index.
func EnsureSubscriptionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "channel", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
