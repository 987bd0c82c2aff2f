package repository

import "errors"

var (
	ErrNotFound            = errors.New("record not found")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrDuplicateJob        = errors.New("job already exists")
	ErrDuplicatePayment    = errors.New("payment reference already exists")
)
