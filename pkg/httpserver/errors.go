package httpserver

import "errors"

var (
	ErrStart          = errors.New("http server failed to start")
	ErrAlreadyRunning = errors.New("http server already running")
	ErrShutdown       = errors.New("http server shutdown failed")
)
