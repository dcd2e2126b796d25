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

const playlistCollectionName = "playlists"

// mongoPlaylistRepository implements repository.PlaylistRepository.
type mongoPlaylistRepository struct {
	collection *mongo.Collection
	assembler  *views.Assembler
}

// NewMongoPlaylistRepository creates a new Playlist repository backed by MongoDB.
func NewMongoPlaylistRepository(db *mongo.Database) repository.PlaylistRepository {
	return &mongoPlaylistRepository{
		collection: db.Collection(playlistCollectionName),
		assembler:  views.NewAssembler(db),
	}
}

// Create inserts a new playlist with an empty video list.
func (r *mongoPlaylistRepository) Create(ctx context.Context, playlist *domain.Playlist) (primitive.ObjectID, error) {
	if playlist.Name == "" || playlist.OwnerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("playlist name and owner ID are required")
	}

	playlist.ID = primitive.NewObjectID()
	if playlist.VideoIDs == nil {
		playlist.VideoIDs = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	playlist.CreatedAt = now
	playlist.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, playlist)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a playlist by its ID.
func (r *mongoPlaylistRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Playlist, error) {
	var playlist domain.Playlist
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&playlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &playlist, nil
}

// Update replaces the playlist name and description and returns the
// updated document.
func (r *mongoPlaylistRepository) Update(ctx context.Context, id primitive.ObjectID, name, description string) (*domain.Playlist, error) {
	update := bson.M{"$set": bson.M{
		"name":        name,
		"description": description,
		"updatedAt":   time.Now().UTC(),
	}}

	var playlist domain.Playlist
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&playlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &playlist, nil
}

// Delete removes a playlist.
func (r *mongoPlaylistRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddVideo appends a video reference in one conditional update: the filter
// only matches when the video is not yet present, so a duplicate add maps
// to ErrConflict without a read-modify-write race.
func (r *mongoPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID primitive.ObjectID) error {
	filter := bson.M{"_id": playlistID, "videos": bson.M{"$ne": videoID}}
	update := bson.M{
		"$push": bson.M{"videos": videoID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Either the playlist does not exist or the video is already in it;
		// the caller has already checked existence.
		return repository.ErrConflict
	}
	return nil
}

// RemoveVideo pulls a video reference; removing an absent video maps to
// ErrNotFound, mirroring AddVideo's conditional filter.
func (r *mongoPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID primitive.ObjectID) error {
	filter := bson.M{"_id": playlistID, "videos": videoID}
	update := bson.M{
		"$pull": bson.M{"videos": videoID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByOwner assembles a user's playlists with the owner's public profile.
func (r *mongoPlaylistRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.PlaylistView, error) {
	spec := views.Spec{
		Match: bson.M{"owner": ownerID},
		Joins: []views.Join{
			{
				From: userCollectionName, LocalField: "owner", ForeignField: "_id",
				As: "ownerInfo", Single: true,
				Project: ownerInfoProjection,
			},
		},
		Sort: &views.Sort{Field: "createdAt", Desc: true},
	}

	results := []domain.PlaylistView{}
	if err := r.assembler.Assemble(ctx, playlistCollectionName, spec, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GetView assembles one playlist with owner profile and video details.
func (r *mongoPlaylistRepository) GetView(ctx context.Context, id primitive.ObjectID) (*domain.PlaylistView, error) {
	spec := views.Spec{
		Match: bson.M{"_id": id},
		Joins: []views.Join{
			{
				From: userCollectionName, LocalField: "owner", ForeignField: "_id",
				As: "ownerInfo", Single: true,
				Project: ownerInfoProjection,
			},
			{
				From: videoCollectionName, LocalField: "videos", ForeignField: "_id",
				As: "videoDetails",
				Project: bson.M{
					"videoFile":   1,
					"thumbnail":   1,
					"title":       1,
					"description": 1,
					"duration":    1,
					"views":       1,
				},
			},
		},
	}

	var view domain.PlaylistView
	found, err := r.assembler.AssembleOne(ctx, playlistCollectionName, spec, &view)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.ErrNotFound
	}
	return &view, nil
}

// EnsurePlaylistIndexes creates necessary indexes for the playlists collection.
func EnsurePlaylistIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
