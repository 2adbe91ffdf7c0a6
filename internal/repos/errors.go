package repos

import "errors"

var (
	// ErrDuplicateEarning is returned when a ledger line for the same
	// (teacher, period, revenue source) already exists.
	ErrDuplicateEarning = errors.New("earning already recorded for teacher, period and source")
)
