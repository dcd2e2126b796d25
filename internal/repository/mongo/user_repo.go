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

const userCollectionName = "users"

// mongoUserRepository implements repository.UserRepository using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
	assembler  *views.Assembler
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
		assembler:  views.NewAssembler(db),
	}
}

// Create inserts a new user. The unique indexes on username and email turn
// duplicate registrations into repository.ErrConflict.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Username == "" || user.Email == "" || user.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("username, email and password hash are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsernameOrEmail retrieves a user matching either credential field.
// Empty arguments are excluded from the match.
func (r *mongoUserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	or := bson.A{}
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, repository.ErrNotFound
	}

	var user domain.User
	err := r.collection.FindOne(ctx, bson.M{"$or": or}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateAccount sets the profile fields that are allowed to change and
// returns the updated document.
func (r *mongoUserRepository) UpdateAccount(ctx context.Context, id primitive.ObjectID, fullName, email string) (*domain.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if fullName != "" {
		set["fullName"] = fullName
	}
	if email != "" {
		set["email"] = email
	}

	return r.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

// UpdatePasswordHash replaces the stored credential hash.
func (r *mongoUserRepository) UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	update := bson.M{"$set": bson.M{"passwordHash": hash, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetRefreshToken persists the current refresh token on the user record so
// the refresh endpoint can validate incoming tokens against it.
func (r *mongoUserRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	update := bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ClearRefreshToken removes the stored refresh token on logout.
func (r *mongoUserRepository) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$unset": bson.M{"refreshToken": 1},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateAvatar replaces the avatar reference and returns the updated user.
func (r *mongoUserRepository) UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatar domain.MediaRef) (*domain.User, error) {
	update := bson.M{"$set": bson.M{"avatar": avatar, "updatedAt": time.Now().UTC()}}
	return r.findOneAndUpdate(ctx, id, update)
}

// UpdateCoverImage replaces the cover image reference and returns the updated user.
func (r *mongoUserRepository) UpdateCoverImage(ctx context.Context, id primitive.ObjectID, cover domain.MediaRef) (*domain.User, error) {
	update := bson.M{"$set": bson.M{"coverImage": cover, "updatedAt": time.Now().UTC()}}
	return r.findOneAndUpdate(ctx, id, update)
}

// AppendWatchHistory appends a video reference to the user's watch history.
// $addToSet keeps a rewatched video from appearing twice.
func (r *mongoUserRepository) AppendWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"watchHistory": videoID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*domain.User, error) {
	var user domain.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return &user, nil
}

// GetChannelProfile assembles the channel page view: the user document
// joined twice against subscriptions (as channel and as subscriber), with
// counts and the viewer's isSubscribed flag derived from the joined sets.
func (r *mongoUserRepository) GetChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*domain.ChannelProfile, error) {
	spec := views.Spec{
		Match: bson.M{"username": username},
		Joins: []views.Join{
			{From: subscriptionCollectionName, LocalField: "_id", ForeignField: "channel", As: "subscribers"},
			{From: subscriptionCollectionName, LocalField: "_id", ForeignField: "subscriber", As: "subscribedTo"},
		},
		Counts: []views.Count{
			{As: "subscriberCount", Of: "subscribers"},
			{As: "channelsSubscribedTo", Of: "subscribedTo"},
		},
		Flags: []views.Flag{
			{As: "isSubscribed", Of: "subscribers", Key: "subscriber", Member: viewer},
		},
		Project: bson.M{
			"username":             1,
			"fullName":             1,
			"email":                1,
			"avatar":               1,
			"coverImage":           1,
			"subscriberCount":      1,
			"channelsSubscribedTo": 1,
			"isSubscribed":         1,
		},
	}

	var profile domain.ChannelProfile
	found, err := r.assembler.AssembleOne(ctx, userCollectionName, spec, &profile)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.ErrNotFound
	}
	return &profile, nil
}

// GetWatchHistory assembles the user's watch history videos, each joined
// with its owner's public profile.
func (r *mongoUserRepository) GetWatchHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.VideoSummary, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.WatchHistory) == 0 {
		return []domain.VideoSummary{}, nil
	}

	spec := views.Spec{
		Match: bson.M{"_id": bson.M{"$in": user.WatchHistory}},
		Joins: []views.Join{
			{
				From: userCollectionName, LocalField: "owner", ForeignField: "_id",
				As: "ownerInfo", Single: true,
				Project: ownerInfoProjection,
			},
		},
		Project: bson.M{
			"videoFile":   1,
			"thumbnail":   1,
			"title":       1,
			"description": 1,
			"duration":    1,
			"views":       1,
			"ownerInfo":   1,
		},
	}

	history := []domain.VideoSummary{}
	if err := r.assembler.Assemble(ctx, videoCollectionName, spec, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// ownerInfoProjection is the reduced user shape joined into owned-entity views.
var ownerInfoProjection = bson.M{"username": 1, "fullName": 1, "avatar": 1}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
