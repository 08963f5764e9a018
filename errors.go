package restcore

import "errors"

var (
	ErrAlreadyRunning = errors.New("server is already running")
	ErrServerStopped  = errors.New("server is stopped and can't be started again")
	ErrRoutesFrozen   = errors.New("routes can't be added once the server was started")
)
