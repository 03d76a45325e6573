package filter

import "errors"

var (
	ErrNilSource     = errors.New("filter source is nil")
	ErrNoSourceField = errors.New("at least one of ip source or user agent source is required")
)
