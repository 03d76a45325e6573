package geo

import "errors"

var (
	ErrOpenDatabase   = errors.New("failed to open geoip database")
	ErrInvalidAddress = errors.New("invalid ip address")
	ErrLookup         = errors.New("geoip lookup failed")
)
