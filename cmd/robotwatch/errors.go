package main

import "errors"

var (
	errUnknownCommand = errors.New("unknown command")
	errUnknownSource  = errors.New("unknown source")
	errUnknownCache   = errors.New("unknown cache")
)
