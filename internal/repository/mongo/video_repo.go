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

const videoCollectionName = "videos"

// mongoVideoRepository implements repository.VideoRepository.
type mongoVideoRepository struct {
	collection *mongo.Collection
	assembler  *views.Assembler
}

// NewMongoVideoRepository creates a new Video repository backed by MongoDB.
func NewMongoVideoRepository(db *mongo.Database) repository.VideoRepository {
	return &mongoVideoRepository{
		collection: db.Collection(videoCollectionName),
		assembler:  views.NewAssembler(db),
	}
}

// Create inserts a new video document.
func (r *mongoVideoRepository) Create(ctx context.Context, video *domain.Video) (primitive.ObjectID, error) {
	if video.Title == "" || video.OwnerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("video title and owner ID are required")
	}

	video.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	video.CreatedAt = now
	video.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, video)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a video by its ID.
func (r *mongoVideoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Video, error) {
	var video domain.Video
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

// Update persists the mutable metadata fields of a video.
func (r *mongoVideoRepository) Update(ctx context.Context, video *domain.Video) error {
	update := bson.M{"$set": bson.M{
		"title":       video.Title,
		"description": video.Description,
		"thumbnail":   video.Thumbnail,
		"updatedAt":   time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": video.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a video document.
func (r *mongoVideoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetPublished flips the publish flag.
func (r *mongoVideoRepository) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) error {
	update := bson.M{"$set": bson.M{"isPublished": published, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter by one. A single document update
// is atomic, so concurrent views never lose counts.
func (r *mongoVideoRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$inc": bson.M{"views": 1}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListPublishedByOwner returns the raw published videos of a channel,
// used by the dashboard stats computation.
func (r *mongoVideoRepository) ListPublishedByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Video, error) {
	filter := bson.M{"owner": ownerID, "isPublished": true}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	videos := []domain.Video{}
	if err = cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// List assembles published-video views matching the query: owner profile
// joined in, like count and the viewer's isLiked flag derived.
func (r *mongoVideoRepository) List(ctx context.Context, q repository.ListVideosQuery) ([]domain.VideoView, error) {
	match := bson.M{"isPublished": true}
	for k, v := range views.SearchFilter(q.Search, "title", "description") {
		match[k] = v
	}
	if q.OwnerID != nil {
		match["owner"] = *q.OwnerID
	}

	sortField := q.SortBy
	if sortField == "" {
		sortField = "createdAt"
	}

	spec := r.viewSpec(match, q.Viewer)
	spec.Sort = &views.Sort{Field: sortField, Desc: q.SortDesc}
	spec.Page = &views.Page{Number: q.Page, Limit: q.Limit}

	results := []domain.VideoView{}
	if err := r.assembler.Assemble(ctx, videoCollectionName, spec, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GetView assembles the full view of one video relative to the viewer.
func (r *mongoVideoRepository) GetView(ctx context.Context, id, viewer primitive.ObjectID) (*domain.VideoView, error) {
	spec := r.viewSpec(bson.M{"_id": id}, viewer)

	var view domain.VideoView
	found, err := r.assembler.AssembleOne(ctx, videoCollectionName, spec, &view)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.ErrNotFound
	}
	return &view, nil
}

// ListChannelViews assembles all published videos of one channel.
func (r *mongoVideoRepository) ListChannelViews(ctx context.Context, channelID primitive.ObjectID) ([]domain.VideoView, error) {
	spec := r.viewSpec(bson.M{"owner": channelID, "isPublished": true}, primitive.NilObjectID)
	spec.Sort = &views.Sort{Field: "createdAt", Desc: true}

	results := []domain.VideoView{}
	if err := r.assembler.Assemble(ctx, videoCollectionName, spec, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// viewSpec is the shared shape of every video view: owner join, like join,
// like count plus viewer flag, raw like array dropped.
func (r *mongoVideoRepository) viewSpec(match bson.M, viewer primitive.ObjectID) views.Spec {
	return views.Spec{
		Match: match,
		Joins: []views.Join{
			{
				From: userCollectionName, LocalField: "owner", ForeignField: "_id",
				As: "ownerInfo", Single: true,
				Project: ownerInfoProjection,
			},
			{From: likeCollectionName, LocalField: "_id", ForeignField: "video", As: "likes"},
		},
		Counts: []views.Count{{As: "likeCount", Of: "likes"}},
		Flags:  []views.Flag{{As: "isLiked", Of: "likes", Key: "likedBy", Member: viewer}},
		Unset:  []string{"likes"},
	}
}

// EnsureVideoIndexes creates necessary indexes for the videos collection.
func EnsureVideoIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
