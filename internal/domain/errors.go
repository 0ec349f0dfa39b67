package domain

import "errors"

var (
	ErrInvalidID        = errors.New("invalid id")
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidDay       = errors.New("invalid calendar day")
	ErrInvalidDateRange = errors.New("start date is after end date")
)
