package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrOrderRejected    = errors.New("order rejected")
	ErrDuplicateRequest = errors.New("request already pending")
	ErrAlreadyInactive  = errors.New("notification already inactive")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidTable     = errors.New("invalid table")
)
