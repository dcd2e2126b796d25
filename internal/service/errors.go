package service

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by all services. Handlers map these to HTTP status
// codes with errors.Is; specific errors below wrap one of them so a single
// check at the API boundary is enough.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrConflict        = errors.New("conflict")
	ErrUpstream        = errors.New("upstream failure")
)

var (
	ErrUserAlreadyExists    = fmt.Errorf("%w: user with this email or username already exists", ErrConflict)
	ErrAuthenticationFailed = fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	ErrInvalidRefreshToken  = fmt.Errorf("%w: refresh token is expired or used", ErrUnauthenticated)
	ErrNotOwner             = fmt.Errorf("%w: you do not own this resource", ErrForbidden)
	ErrSelfSubscription     = fmt.Errorf("%w: you cannot subscribe to your own channel", ErrInvalidInput)
	ErrVideoInPlaylist      = fmt.Errorf("%w: video is already in the playlist", ErrConflict)
	ErrVideoNotInPlaylist   = fmt.Errorf("%w: video is not in the playlist", ErrConflict)
)
