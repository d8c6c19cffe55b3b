package services

import "errors"

// Every failed transition returns one of these, usually wrapped with detail.
// Nothing is written when an operation fails.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidSecret      = errors.New("invalid secret")
	ErrWrongDeposit       = errors.New("wrong deposit")
	ErrWrongPrice         = errors.New("wrong price")
	ErrAlreadyOwned       = errors.New("already owned")
	ErrAlreadyQueued      = errors.New("already queued")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrOverflow           = errors.New("overflow")
	ErrNotFound           = errors.New("not found")
	ErrNotClaimed         = errors.New("not claimed")
	ErrInvalidRange       = errors.New("invalid range")
	ErrLineCorrupted      = errors.New("line corrupted")
)
