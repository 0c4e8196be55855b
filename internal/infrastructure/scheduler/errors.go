package scheduler

import "errors"

var (
	// ErrSweeperNotRunning is returned when triggering a stopped sweeper
	ErrSweeperNotRunning = errors.New("report sweeper is not running")

	// ErrInvalidConfig is returned when sweeper configuration is invalid
	ErrInvalidConfig = errors.New("invalid sweeper configuration")
)
