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

const commentCollectionName = "comments"

// mongoCommentRepository implements repository.CommentRepository.
type mongoCommentRepository struct {
	collection *mongo.Collection
	assembler  *views.Assembler
}

// NewMongoCommentRepository creates a new Comment repository backed by MongoDB.
func NewMongoCommentRepository(db *mongo.Database) repository.CommentRepository {
	return &mongoCommentRepository{
		collection: db.Collection(commentCollectionName),
		assembler:  views.NewAssembler(db),
	}
}

// Create inserts a new comment.
func (r *mongoCommentRepository) Create(ctx context.Context, comment *domain.Comment) (primitive.ObjectID, error) {
	if comment.Content == "" || comment.OwnerID == primitive.NilObjectID || comment.VideoID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("comment content, owner ID and video ID are required")
	}

	comment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, comment)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a comment by its ID.
func (r *mongoCommentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// UpdateContent replaces a comment's text and returns the updated document.
func (r *mongoCommentRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*domain.Comment, error) {
	update := bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}}

	var comment domain.Comment
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// Delete removes a comment.
func (r *mongoCommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByVideoID removes all comments of a video, used when the video
// itself is deleted.
func (r *mongoCommentRepository) DeleteByVideoID(ctx context.Context, videoID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"video": videoID})
	return err
}

// ListForVideo assembles a page of comment views for a video, newest
// first: author profile joined in, like count and viewer flag derived.
// An empty page is a valid outcome, not an error.
func (r *mongoCommentRepository) ListForVideo(ctx context.Context, videoID, viewer primitive.ObjectID, page, limit int64) ([]domain.CommentView, error) {
	spec := views.Spec{
		Match: bson.M{"video": videoID},
		Joins: []views.Join{
			{
				From: userCollectionName, LocalField: "owner", ForeignField: "_id",
				As: "ownerInfo", Single: true,
				Project: ownerInfoProjection,
			},
			{From: likeCollectionName, LocalField: "_id", ForeignField: "comment", As: "likes"},
		},
		Counts: []views.Count{{As: "likeCount", Of: "likes"}},
		Flags:  []views.Flag{{As: "isLiked", Of: "likes", Key: "likedBy", Member: viewer}},
		Unset:  []string{"likes"},
		Sort:   &views.Sort{Field: "createdAt", Desc: true},
		Page:   &views.Page{Number: page, Limit: limit},
	}

	results := []domain.CommentView{}
	if err := r.assembler.Assemble(ctx, commentCollectionName, spec, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// EnsureCommentIndexes creates necessary indexes for the comments collection.
func EnsureCommentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "video", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
