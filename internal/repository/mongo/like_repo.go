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

const likeCollectionName = "likes"

// mongoLikeRepository implements repository.LikeRepository.
type mongoLikeRepository struct {
	collection *mongo.Collection
	assembler  *views.Assembler
}

// NewMongoLikeRepository creates a new Like repository backed by MongoDB.
func NewMongoLikeRepository(db *mongo.Database) repository.LikeRepository {
	return &mongoLikeRepository{
		collection: db.Collection(likeCollectionName),
		assembler:  views.NewAssembler(db),
	}
}

// ToggleVideo flips the like state for a (user, video) pair. It returns
// the created like and true when the toggle liked, or nil and false when
// it unliked.
func (r *mongoLikeRepository) ToggleVideo(ctx context.Context, videoID, userID primitive.ObjectID) (*domain.Like, bool, error) {
	filter := bson.M{"video": videoID, "likedBy": userID}
	return r.toggle(ctx, filter, &domain.Like{VideoID: &videoID, LikedBy: userID})
}

// ToggleComment flips the like state for a (user, comment) pair.
func (r *mongoLikeRepository) ToggleComment(ctx context.Context, commentID, userID primitive.ObjectID) (*domain.Like, bool, error) {
	filter := bson.M{"comment": commentID, "likedBy": userID}
	return r.toggle(ctx, filter, &domain.Like{CommentID: &commentID, LikedBy: userID})
}

// ToggleTweet flips the like state for a (user, tweet) pair.
func (r *mongoLikeRepository) ToggleTweet(ctx context.Context, tweetID, userID primitive.ObjectID) (*domain.Like, bool, error) {
	filter := bson.M{"tweet": tweetID, "likedBy": userID}
	return r.toggle(ctx, filter, &domain.Like{TweetID: &tweetID, LikedBy: userID})
}

// toggle first deletes any existing like for the pair; if nothing was
// deleted it inserts one via a conditional upsert. Together with the
// unique partial indexes this keeps the at-most-one-per-pair invariant
// even under concurrent toggles of the same pair.
func (r *mongoLikeRepository) toggle(ctx context.Context, filter bson.M, like *domain.Like) (*domain.Like, bool, error) {
	deleted, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	if deleted.DeletedCount > 0 {
		return nil, false, nil
	}

	like.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	like.CreatedAt = now
	like.UpdatedAt = now

	opts := options.Update().SetUpsert(true)
	_, err = r.collection.UpdateOne(ctx, filter, bson.M{"$setOnInsert": like}, opts)
	if err != nil {
		// A concurrent toggle won the insert; the pair is liked either way.
		if mongo.IsDuplicateKeyError(err) {
			return like, true, nil
		}
		return nil, false, err
	}
	return like, true, nil
}

// DeleteByVideoID removes all likes targeting a video, used when the
// video itself is deleted.
func (r *mongoLikeRepository) DeleteByVideoID(ctx context.Context, videoID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"video": videoID})
	return err
}

// CountForVideos counts likes across a set of videos.
func (r *mongoLikeRepository) CountForVideos(ctx context.Context, videoIDs []primitive.ObjectID) (int64, error) {
	if len(videoIDs) == 0 {
		return 0, nil
	}
	return r.collection.CountDocuments(ctx, bson.M{"video": bson.M{"$in": videoIDs}})
}

// ListLikedVideos assembles the user's video likes with the target video
// and the liker's public profile joined in.
func (r *mongoLikeRepository) ListLikedVideos(ctx context.Context, userID primitive.ObjectID) ([]domain.LikedVideoView, error) {
	spec := views.Spec{
		Match: bson.M{"likedBy": userID, "video": bson.M{"$exists": true}},
		Joins: []views.Join{
			{
				From: videoCollectionName, LocalField: "video", ForeignField: "_id",
				As: "videoDetails", Single: true,
				Project: bson.M{
					"videoFile":   1,
					"thumbnail":   1,
					"title":       1,
					"description": 1,
					"duration":    1,
					"views":       1,
				},
			},
			{
				From: userCollectionName, LocalField: "likedBy", ForeignField: "_id",
				As: "likerDetails", Single: true,
				Project: ownerInfoProjection,
			},
		},
		Sort: &views.Sort{Field: "createdAt", Desc: true},
	}

	results := []domain.LikedVideoView{}
	if err := r.assembler.Assemble(ctx, likeCollectionName, spec, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// EnsureLikeIndexes creates the unique partial indexes enforcing at most
// one like per (likedBy, target) pair.
func EnsureLikeIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: "video", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"video": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: "comment", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"comment": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: "tweet", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"tweet": bson.M{"$exists": true}}),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
