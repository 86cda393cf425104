package util

import "errors"

var (
	ErrItemNotFound     = errors.New("learnable item not found")
	ErrInvalidDomain    = errors.New("invalid content domain")
	ErrInvalidTimeframe = errors.New("invalid digest timeframe")
	ErrInvalidMode      = errors.New("invalid engine mode")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidClock     = errors.New("invalid time, expected HH:MM")
	ErrStateCorrupted   = errors.New("engine state document corrupted")
)
