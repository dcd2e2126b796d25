package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"vidtube/backend/internal/config"
	"vidtube/backend/internal/domain"
	"vidtube/backend/internal/repository"
	"vidtube/backend/internal/storage"
)

// TokenPair is the access/refresh token pair issued at login and rotated
// on refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService handles registration, login and the token lifecycle.
type AuthService interface {
	Register(ctx context.Context, username, email, fullName, password string, avatar FileUpload, coverImage *FileUpload) (*domain.User, error)
	Login(ctx context.Context, username, email, password string) (*domain.User, TokenPair, error)
	Logout(ctx context.Context, userID primitive.ObjectID) error
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error
	ParseAccessToken(token string) (*AccessClaims, error)
}

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// refreshClaims is the payload of a refresh token. It carries only the
// user id; everything else is validated against the stored copy.
type refreshClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo repository.UserRepository
	storage  storage.FileStorage
	jwtCfg   config.JWTConfig
	log      *logrus.Logger
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, fileStorage storage.FileStorage, jwtCfg config.JWTConfig, log *logrus.Logger) AuthService {
	if jwtCfg.AccessSecret == "" || jwtCfg.RefreshSecret == "" {
		panic("JWT secrets cannot be empty")
	}
	return &authService{
		userRepo: userRepo,
		storage:  fileStorage,
		jwtCfg:   jwtCfg,
		log:      log,
	}
}

// Register creates a new account. The avatar is required; the cover image
// is optional. Blobs are stored before the user record is created, and
// removed again if creation fails, so a failed registration leaves no
// dangling references.
func (s *authService) Register(ctx context.Context, username, email, fullName, password string, avatar FileUpload, coverImage *FileUpload) (*domain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || email == "" || fullName == "" || password == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrInvalidInput)
	}
	if avatar.Reader == nil {
		return nil, fmt.Errorf("%w: avatar image is required", ErrInvalidInput)
	}

	_, err := s.userRepo.GetByUsernameOrEmail(ctx, username, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	avatarObj, err := s.storage.Upload(ctx, objectKey("avatars", avatar.Filename), avatar.ContentType, avatar.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: storing avatar: %v", ErrUpstream, err)
	}

	var coverRef domain.MediaRef
	if coverImage != nil {
		coverObj, err := s.storage.Upload(ctx, objectKey("covers", coverImage.Filename), coverImage.ContentType, coverImage.Reader)
		if err != nil {
			s.deleteBlobQuietly(ctx, avatarObj.ObjectKey)
			return nil, fmt.Errorf("%w: storing cover image: %v", ErrUpstream, err)
		}
		coverRef = domain.MediaRef{URL: coverObj.URL, ObjectKey: coverObj.ObjectKey}
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hashedPassword),
		Avatar:       domain.MediaRef{URL: avatarObj.URL, ObjectKey: avatarObj.ObjectKey},
		CoverImage:   coverRef,
	}

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		s.deleteBlobQuietly(ctx, avatarObj.ObjectKey)
		if !coverRef.IsZero() {
			s.deleteBlobQuietly(ctx, coverRef.ObjectKey)
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID
	user.PasswordHash = ""

	return user, nil
}

// Login authenticates by username or email and issues a token pair. The
// refresh token is persisted on the user record so it can be validated
// and revoked server-side.
func (s *authService) Login(ctx context.Context, username, email, password string) (*domain.User, TokenPair, error) {
	if username == "" && email == "" {
		return nil, TokenPair{}, fmt.Errorf("%w: username or email is required", ErrInvalidInput)
	}
	if password == "" {
		return nil, TokenPair{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	user, err := s.userRepo.GetByUsernameOrEmail(ctx, strings.ToLower(username), email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, TokenPair{}, ErrAuthenticationFailed
		}
		return nil, TokenPair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, TokenPair{}, ErrAuthenticationFailed
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	user.PasswordHash = ""
	user.RefreshToken = ""
	return user, pair, nil
}

// Logout clears the stored refresh token, invalidating the session.
func (s *authService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	return s.userRepo.ClearRefreshToken(ctx, userID)
}

// Refresh validates an incoming refresh token against both its signature
// and the server-stored value, then rotates the pair.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, fmt.Errorf("%w: refresh token is required", ErrUnauthenticated)
	}

	claims := &refreshClaims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtCfg.RefreshSecret), nil
	})
	if err != nil || !token.Valid {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, err
	}

	// Rotation: only the most recently issued refresh token is stored, so
	// a replayed older token is rejected here.
	if user.RefreshToken != refreshToken {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	return s.issueTokenPair(ctx, user)
}

// ChangePassword verifies the old password before storing the new hash.
func (s *authService) ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", ErrInvalidInput)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: user", ErrNotFound)
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return fmt.Errorf("%w: old password is incorrect", ErrInvalidInput)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.userRepo.UpdatePasswordHash(ctx, userID, string(hashed))
}

// ParseAccessToken validates an access token and returns its claims.
func (s *authService) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtCfg.AccessSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token has expired", ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: invalid token claims", ErrUnauthenticated)
	}
	return claims, nil
}

func (s *authService) issueTokenPair(ctx context.Context, user *domain.User) (TokenPair, error) {
	now := time.Now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessClaims{
		UserID:   user.ID.Hex(),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.AccessExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "vidtube",
		},
	})
	accessToken, err := access.SignedString([]byte(s.jwtCfg.AccessSecret))
	if err != nil {
		return TokenPair{}, fmt.Errorf("signing access token: %w", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, &refreshClaims{
		UserID: user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.RefreshExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "vidtube",
		},
	})
	refreshToken, err := refresh.SignedString([]byte(s.jwtCfg.RefreshSecret))
	if err != nil {
		return TokenPair{}, fmt.Errorf("signing refresh token: %w", err)
	}

	if err := s.userRepo.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *authService) deleteBlobQuietly(ctx context.Context, objectKey string) {
	if objectKey == "" {
		return
	}
	if err := s.storage.DeleteObject(ctx, objectKey); err != nil {
		s.log.WithError(err).WithField("objectKey", objectKey).Warn("Orphaned blob left in storage for GC sweep")
	}
}
