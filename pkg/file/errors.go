package file

import "errors"

var (
	ErrInvalidPath   = errors.New("invalid path")
	ErrInvalidConfig = errors.New("invalid configuration")

	ErrFileNotFound     = errors.New("file not found")
	ErrIsDirectory      = errors.New("path is a directory")
	ErrFailedToOpenFile = errors.New("failed to open file")
	ErrFailedToStatPath = errors.New("failed to stat path")

	// ErrNotModified reports that the object still has the version the caller
	// already holds.
	ErrNotModified = errors.New("object not modified")

	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrRequestTimeout     = errors.New("request timed out")
	ErrServiceUnavailable = errors.New("service temporarily unavailable") // Used for throttling and retries

	ErrOperationTimeout   = errors.New("operation timed out")
	ErrOperationCanceled  = errors.New("operation canceled")
	ErrFailedToLoadConfig = errors.New("failed to load AWS config")
)
