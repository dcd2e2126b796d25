package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vidtube/backend/internal/domain"
	"vidtube/backend/internal/repository"
	"vidtube/backend/internal/views"
)

const tweetCollectionName = "tweets"

// mongoTweetRepository implements repository.TweetRepository.
type mongoTweetRepository struct {
	collection *mongo.Collection
	assembler  *views.Assembler
}

// NewMongoTweetRepository creates a new Tweet repository backed by MongoDB.
func NewMongoTweetRepository(db *mongo.Database) repository.TweetRepository {
	return &mongoTweetRepository{
		collection: db.Collection(tweetCollectionName),
		assembler:  views.NewAssembler(db),
	}
}

// Create inserts a new tweet.
func (r *mongoTweetRepository) Create(ctx context.Context, tweet *domain.Tweet) (primitive.ObjectID, error) {
	if tweet.Content == "" || tweet.OwnerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("tweet content and owner ID are required")
	}

	tweet.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tweet.CreatedAt = now
	tweet.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, tweet)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a tweet by its ID.
func (r *mongoTweetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Tweet, error) {
	var tweet domain.Tweet
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tweet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tweet, nil
}

// UpdateContent replaces a tweet's text and returns the updated document.
func (r *mongoTweetRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*domain.Tweet, error) {
	update := bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}}

	var tweet domain.Tweet
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&tweet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tweet, nil
}

// Delete removes a tweet.
func (r *mongoTweetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByOwner assembles a user's tweets with owner profile, like count and
// the viewer's isLiked flag, newest first.
func (r *mongoTweetRepository) ListByOwner(ctx context.Context, ownerID, viewer primitive.ObjectID) ([]domain.TweetView, error) {
	spec := views.Spec{
		Match: bson.M{"owner": ownerID},
		Joins: []views.Join{
			{
				From: userCollectionName, LocalField: "owner", ForeignField: "_id",
				As: "ownerInfo", Single: true,
				Project: ownerInfoProjection,
			},
			{From: likeCollectionName, LocalField: "_id", ForeignField: "tweet", As: "likes"},
		},
		Counts: []views.Count{{As: "likeCount", Of: "likes"}},
		Flags:  []views.Flag{{As: "isLiked", Of: "likes", Key: "likedBy", Member: viewer}},
		Unset:  []string{"likes"},
		Sort:   &views.Sort{Field: "createdAt", Desc: true},
	}

	results := []domain.TweetView{}
	if err := r.assembler.Assemble(ctx, tweetCollectionName, spec, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// EnsureTweetIndexes creates necessary indexes for the tweets collection.
func EnsureTweetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
