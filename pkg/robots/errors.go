package robots

import "errors"

var (
	// ErrInvalidAddress is returned for a malformed IP address or range entry.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidPattern is returned when a heuristic pattern fails to compile.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrDatabaseLoad is returned when the database file is missing, unreadable
	// or not shaped like a robots database.
	ErrDatabaseLoad = errors.New("failed to load robots database")

	// ErrUnknownFormat is returned for an unsupported database document format.
	ErrUnknownFormat = errors.New("unknown database format")

	// ErrNoDatabase is returned by a Store that has no snapshot yet.
	ErrNoDatabase = errors.New("robots database not loaded")

	// ErrNotModified is returned by a LoaderFunc whose source has not changed
	// since the last load. Store.Reload treats it as success.
	ErrNotModified = errors.New("robots database not modified")
)
