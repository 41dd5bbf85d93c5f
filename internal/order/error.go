package order

import "errors"

var (
	ErrOrderNumberExhausted = errors.New("could not allocate a unique order number")
	ErrEmptyOrder           = errors.New("order has no items")
)
