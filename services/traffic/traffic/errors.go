package traffic

import "errors"

// ErrInvalidRange signals a date range whose start is after its end or whose bounds cannot be parsed
var ErrInvalidRange = errors.New("invalid date range")
