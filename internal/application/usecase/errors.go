package usecase

import "errors"

var (
	ErrMissingAccessToken = errors.New("access token is required")
	ErrMissingAuthCode    = errors.New("authorization code is required")
	ErrInvalidPage        = errors.New("page must be a positive integer")
	ErrStorageDisabled    = errors.New("track storage is not configured")
	ErrNoPath             = errors.New("activity has no path")
	ErrCacheUnavailable   = errors.New("activity cache is unavailable")
)
