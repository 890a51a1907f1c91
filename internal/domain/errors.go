package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrAllChannelsFailed = errors.New("all channels failed")
	ErrProviderFailure   = errors.New("provider failure")
)
