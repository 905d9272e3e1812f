package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateJob     = errors.New("duplicate job id")
	ErrResultNotReady   = errors.New("result not ready")
	ErrQueueUnavailable = errors.New("queue unavailable")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrCacheUnavailable = errors.New("cache unavailable")
)
