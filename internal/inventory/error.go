package inventory

import "fmt"

// InsufficientStockError is returned when a decrement asks for more units
// than the product holds. Stock is left untouched.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}
