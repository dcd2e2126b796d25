package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/backend/internal/domain"
	"vidtube/backend/internal/repository"
	"vidtube/backend/internal/storage"
)

// In-memory fakes of the repository interfaces. Hand-written fakes (not a
// mock framework) keep the tests readable: what each fake does is right
// here, and error injection is a field assignment away.

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// --- user repository ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
	// set to simulate a database failure on the corresponding method
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (f *fakeUserRepo) add(user *domain.User) *domain.User {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	stored := *user
	f.users[user.ID] = &stored
	return &stored
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if f.createErr != nil {
		return primitive.NilObjectID, f.createErr
	}
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return f.add(user).ID, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	for _, u := range f.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) UpdateAccount(_ context.Context, id primitive.ObjectID, fullName, email string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.FullName = fullName
	u.Email = email
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) UpdatePasswordHash(_ context.Context, id primitive.ObjectID, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserRepo) SetRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (f *fakeUserRepo) ClearRefreshToken(_ context.Context, id primitive.ObjectID) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.RefreshToken = ""
	return nil
}

func (f *fakeUserRepo) UpdateAvatar(_ context.Context, id primitive.ObjectID, avatar domain.MediaRef) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Avatar = avatar
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) UpdateCoverImage(_ context.Context, id primitive.ObjectID, cover domain.MediaRef) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.CoverImage = cover
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) AppendWatchHistory(_ context.Context, userID, videoID primitive.ObjectID) error {
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.WatchHistory = append(u.WatchHistory, videoID)
	return nil
}

func (f *fakeUserRepo) GetChannelProfile(_ context.Context, username string, _ primitive.ObjectID) (*domain.ChannelProfile, error) {
	for _, u := range f.users {
		if u.Username == username {
			return &domain.ChannelProfile{
				ID:       u.ID,
				Username: u.Username,
				FullName: u.FullName,
				Email:    u.Email,
			}, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetWatchHistory(_ context.Context, userID primitive.ObjectID) ([]domain.VideoSummary, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	history := make([]domain.VideoSummary, 0, len(u.WatchHistory))
	for _, id := range u.WatchHistory {
		history = append(history, domain.VideoSummary{ID: id})
	}
	return history, nil
}

// --- video repository ---

type fakeVideoRepo struct {
	videos map[primitive.ObjectID]*domain.Video
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[primitive.ObjectID]*domain.Video)}
}

func (f *fakeVideoRepo) add(video *domain.Video) *domain.Video {
	if video.ID.IsZero() {
		video.ID = primitive.NewObjectID()
	}
	stored := *video
	f.videos[video.ID] = &stored
	return &stored
}

func (f *fakeVideoRepo) Create(_ context.Context, video *domain.Video) (primitive.ObjectID, error) {
	video.CreatedAt = time.Now()
	video.UpdatedAt = time.Now()
	return f.add(video).ID, nil
}

func (f *fakeVideoRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Video, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (f *fakeVideoRepo) Update(_ context.Context, video *domain.Video) error {
	if _, ok := f.videos[video.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *video
	f.videos[video.ID] = &stored
	return nil
}

func (f *fakeVideoRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.videos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.videos, id)
	return nil
}

func (f *fakeVideoRepo) SetPublished(_ context.Context, id primitive.ObjectID, published bool) error {
	v, ok := f.videos[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.IsPublished = published
	return nil
}

func (f *fakeVideoRepo) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	v, ok := f.videos[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.Views++
	return nil
}

func (f *fakeVideoRepo) ListPublishedByOwner(_ context.Context, ownerID primitive.ObjectID) ([]domain.Video, error) {
	var result []domain.Video
	for _, v := range f.videos {
		if v.OwnerID == ownerID && v.IsPublished {
			result = append(result, *v)
		}
	}
	return result, nil
}

func (f *fakeVideoRepo) List(_ context.Context, q repository.ListVideosQuery) ([]domain.VideoView, error) {
	var result []domain.VideoView
	for _, v := range f.videos {
		if !v.IsPublished {
			continue
		}
		if q.OwnerID != nil && v.OwnerID != *q.OwnerID {
			continue
		}
		result = append(result, domain.VideoView{Video: *v})
	}
	return result, nil
}

func (f *fakeVideoRepo) GetView(_ context.Context, id, _ primitive.ObjectID) (*domain.VideoView, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.VideoView{Video: *v}, nil
}

func (f *fakeVideoRepo) ListChannelViews(_ context.Context, channelID primitive.ObjectID) ([]domain.VideoView, error) {
	var result []domain.VideoView
	for _, v := range f.videos {
		if v.OwnerID == channelID && v.IsPublished {
			result = append(result, domain.VideoView{Video: *v})
		}
	}
	return result, nil
}

// --- tweet repository ---

type fakeTweetRepo struct {
	tweets map[primitive.ObjectID]*domain.Tweet
}

func newFakeTweetRepo() *fakeTweetRepo {
	return &fakeTweetRepo{tweets: make(map[primitive.ObjectID]*domain.Tweet)}
}

func (f *fakeTweetRepo) add(tweet *domain.Tweet) *domain.Tweet {
	if tweet.ID.IsZero() {
		tweet.ID = primitive.NewObjectID()
	}
	stored := *tweet
	f.tweets[tweet.ID] = &stored
	return &stored
}

func (f *fakeTweetRepo) Create(_ context.Context, tweet *domain.Tweet) (primitive.ObjectID, error) {
	tweet.CreatedAt = time.Now()
	return f.add(tweet).ID, nil
}

func (f *fakeTweetRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Tweet, error) {
	t, ok := f.tweets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTweetRepo) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (*domain.Tweet, error) {
	t, ok := f.tweets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.Content = content
	copied := *t
	return &copied, nil
}

func (f *fakeTweetRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.tweets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.tweets, id)
	return nil
}

func (f *fakeTweetRepo) ListByOwner(_ context.Context, ownerID, _ primitive.ObjectID) ([]domain.TweetView, error) {
	var result []domain.TweetView
	for _, t := range f.tweets {
		if t.OwnerID == ownerID {
			result = append(result, domain.TweetView{Tweet: *t})
		}
	}
	return result, nil
}

// --- comment repository ---

type fakeCommentRepo struct {
	comments map[primitive.ObjectID]*domain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[primitive.ObjectID]*domain.Comment)}
}

func (f *fakeCommentRepo) add(comment *domain.Comment) *domain.Comment {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	stored := *comment
	f.comments[comment.ID] = &stored
	return &stored
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) (primitive.ObjectID, error) {
	comment.CreatedAt = time.Now()
	return f.add(comment).ID, nil
}

func (f *fakeCommentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCommentRepo) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (*domain.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Content = content
	copied := *c
	return &copied, nil
}

func (f *fakeCommentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeCommentRepo) DeleteByVideoID(_ context.Context, videoID primitive.ObjectID) error {
	for id, c := range f.comments {
		if c.VideoID == videoID {
			delete(f.comments, id)
		}
	}
	return nil
}

func (f *fakeCommentRepo) ListForVideo(_ context.Context, videoID, _ primitive.ObjectID, _, _ int64) ([]domain.CommentView, error) {
	var result []domain.CommentView
	for _, c := range f.comments {
		if c.VideoID == videoID {
			result = append(result, domain.CommentView{Comment: *c})
		}
	}
	return result, nil
}

// --- like repository ---

type fakeLikeRepo struct {
	likes map[string]*domain.Like // keyed by target kind + target id + user id
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: make(map[string]*domain.Like)}
}

func likeKey(kind string, targetID, userID primitive.ObjectID) string {
	return fmt.Sprintf("%s/%s/%s", kind, targetID.Hex(), userID.Hex())
}

func (f *fakeLikeRepo) toggle(kind string, targetID, userID primitive.ObjectID, like *domain.Like) (*domain.Like, bool, error) {
	key := likeKey(kind, targetID, userID)
	if _, ok := f.likes[key]; ok {
		delete(f.likes, key)
		return nil, false, nil
	}
	like.ID = primitive.NewObjectID()
	like.LikedBy = userID
	like.CreatedAt = time.Now()
	f.likes[key] = like
	return like, true, nil
}

func (f *fakeLikeRepo) ToggleVideo(_ context.Context, videoID, userID primitive.ObjectID) (*domain.Like, bool, error) {
	return f.toggle("video", videoID, userID, &domain.Like{VideoID: &videoID})
}

func (f *fakeLikeRepo) ToggleComment(_ context.Context, commentID, userID primitive.ObjectID) (*domain.Like, bool, error) {
	return f.toggle("comment", commentID, userID, &domain.Like{CommentID: &commentID})
}

func (f *fakeLikeRepo) ToggleTweet(_ context.Context, tweetID, userID primitive.ObjectID) (*domain.Like, bool, error) {
	return f.toggle("tweet", tweetID, userID, &domain.Like{TweetID: &tweetID})
}

func (f *fakeLikeRepo) DeleteByVideoID(_ context.Context, videoID primitive.ObjectID) error {
	for key, l := range f.likes {
		if l.VideoID != nil && *l.VideoID == videoID {
			delete(f.likes, key)
		}
	}
	return nil
}

func (f *fakeLikeRepo) CountForVideos(_ context.Context, videoIDs []primitive.ObjectID) (int64, error) {
	var count int64
	for _, l := range f.likes {
		if l.VideoID == nil {
			continue
		}
		for _, id := range videoIDs {
			if *l.VideoID == id {
				count++
				break
			}
		}
	}
	return count, nil
}

func (f *fakeLikeRepo) ListLikedVideos(_ context.Context, userID primitive.ObjectID) ([]domain.LikedVideoView, error) {
	var result []domain.LikedVideoView
	for _, l := range f.likes {
		if l.VideoID != nil && l.LikedBy == userID {
			result = append(result, domain.LikedVideoView{Like: *l})
		}
	}
	return result, nil
}

// --- subscription repository ---

type fakeSubscriptionRepo struct {
	subs map[string]*domain.Subscription // keyed by subscriber id + channel id
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[string]*domain.Subscription)}
}

func subKey(channelID, subscriberID primitive.ObjectID) string {
	return subscriberID.Hex() + "/" + channelID.Hex()
}

func (f *fakeSubscriptionRepo) Toggle(_ context.Context, channelID, subscriberID primitive.ObjectID) (*domain.Subscription, bool, error) {
	key := subKey(channelID, subscriberID)
	if _, ok := f.subs[key]; ok {
		delete(f.subs, key)
		return nil, false, nil
	}
	sub := &domain.Subscription{
		ID:           primitive.NewObjectID(),
		ChannelID:    channelID,
		SubscriberID: subscriberID,
		CreatedAt:    time.Now(),
	}
	f.subs[key] = sub
	return sub, true, nil
}

func (f *fakeSubscriptionRepo) CountSubscribers(_ context.Context, channelID primitive.ObjectID) (int64, error) {
	var count int64
	for _, s := range f.subs {
		if s.ChannelID == channelID {
			count++
		}
	}
	return count, nil
}

func (f *fakeSubscriptionRepo) ListSubscribers(_ context.Context, channelID primitive.ObjectID) ([]domain.SubscriberView, error) {
	var result []domain.SubscriberView
	for _, s := range f.subs {
		if s.ChannelID == channelID {
			result = append(result, domain.SubscriberView{Subscription: *s})
		}
	}
	return result, nil
}

func (f *fakeSubscriptionRepo) ListSubscribedChannels(_ context.Context, subscriberID primitive.ObjectID) ([]domain.SubscribedChannelView, error) {
	var result []domain.SubscribedChannelView
	for _, s := range f.subs {
		if s.SubscriberID == subscriberID {
			result = append(result, domain.SubscribedChannelView{Subscription: *s})
		}
	}
	return result, nil
}

// --- playlist repository ---

type fakePlaylistRepo struct {
	playlists map[primitive.ObjectID]*domain.Playlist
}

func newFakePlaylistRepo() *fakePlaylistRepo {
	return &fakePlaylistRepo{playlists: make(map[primitive.ObjectID]*domain.Playlist)}
}

func (f *fakePlaylistRepo) add(playlist *domain.Playlist) *domain.Playlist {
	if playlist.ID.IsZero() {
		playlist.ID = primitive.NewObjectID()
	}
	stored := *playlist
	f.playlists[playlist.ID] = &stored
	return &stored
}

func (f *fakePlaylistRepo) Create(_ context.Context, playlist *domain.Playlist) (primitive.ObjectID, error) {
	playlist.CreatedAt = time.Now()
	return f.add(playlist).ID, nil
}

func (f *fakePlaylistRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Playlist, error) {
	p, ok := f.playlists[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakePlaylistRepo) Update(_ context.Context, id primitive.ObjectID, name, description string) (*domain.Playlist, error) {
	p, ok := f.playlists[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Name = name
	p.Description = description
	copied := *p
	return &copied, nil
}

func (f *fakePlaylistRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.playlists[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.playlists, id)
	return nil
}

func (f *fakePlaylistRepo) AddVideo(_ context.Context, playlistID, videoID primitive.ObjectID) error {
	p, ok := f.playlists[playlistID]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Contains(videoID) {
		return repository.ErrConflict
	}
	p.VideoIDs = append(p.VideoIDs, videoID)
	return nil
}

func (f *fakePlaylistRepo) RemoveVideo(_ context.Context, playlistID, videoID primitive.ObjectID) error {
	p, ok := f.playlists[playlistID]
	if !ok {
		return repository.ErrNotFound
	}
	for i, id := range p.VideoIDs {
		if id == videoID {
			p.VideoIDs = append(p.VideoIDs[:i], p.VideoIDs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakePlaylistRepo) ListByOwner(_ context.Context, ownerID primitive.ObjectID) ([]domain.PlaylistView, error) {
	var result []domain.PlaylistView
	for _, p := range f.playlists {
		if p.OwnerID == ownerID {
			result = append(result, domain.PlaylistView{Playlist: *p})
		}
	}
	return result, nil
}

func (f *fakePlaylistRepo) GetView(_ context.Context, id primitive.ObjectID) (*domain.PlaylistView, error) {
	p, ok := f.playlists[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.PlaylistView{Playlist: *p}, nil
}

// --- file storage ---

type fakeStorage struct {
	objects map[string]string // object key -> content type
	deleted []string
	// set to simulate an upload failure
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]string)}
}

func (f *fakeStorage) Upload(_ context.Context, objectKey, contentType string, _ io.Reader) (*storage.StoredObject, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.objects[objectKey] = contentType
	return &storage.StoredObject{
		ObjectKey: objectKey,
		URL:       "https://cdn.test/" + objectKey,
	}, nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://cdn.test/presigned/" + objectKey, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	delete(f.objects, objectKey)
	f.deleted = append(f.deleted, objectKey)
	return nil
}
