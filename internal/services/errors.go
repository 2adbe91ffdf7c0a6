package services

import "errors"

var (
	// ErrInvalidPeriod indicates a period key that is not YYYY-MM.
	ErrInvalidPeriod = errors.New("invalid period, expected YYYY-MM")
	// ErrPoolDistributed indicates the period has already been distributed.
	ErrPoolDistributed = errors.New("revenue pool already distributed for period")
	// ErrPoolBusy indicates another distribution run holds the period lease.
	ErrPoolBusy = errors.New("distribution already in progress for period")
)
