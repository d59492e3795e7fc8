package common

import (
	"errors"

	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/traffic"
)

// ErrNotFound signals that no history exists for the queried repository
var ErrNotFound = errors.New("repository not found")

// ErrInvalidRange signals a reversed or unparseable date range
var ErrInvalidRange = traffic.ErrInvalidRange

// ErrUpstreamFailure signals that fetching from the source hosting API failed
var ErrUpstreamFailure = errors.New("upstream failure")

// ErrPersistenceFailure signals that the history store could not be read or written
var ErrPersistenceFailure = errors.New("persistence failure")
