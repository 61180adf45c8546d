package domain

import "errors"

var (
	ErrTripNotFound = errors.New("trip not found")
	ErrZoneNotFound = errors.New("zone not found")
	ErrInvalidParam = errors.New("invalid parameter")
)
