package repositories

import "errors"

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateOrderID = errors.New("duplicate order id")
	ErrDuplicateEmail   = errors.New("duplicate email")
)
