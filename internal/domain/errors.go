package domain

import "fmt"

// ValidationError reports malformed order input. Nothing is written when it
// is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a missing product or order.
type NotFoundError struct {
	Resource string // "product" or "order"
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NewProductNotFound builds a NotFoundError for a catalog SKU.
func NewProductNotFound(sku string) *NotFoundError {
	return &NotFoundError{Resource: "product", Key: sku}
}

// NewOrderNotFound builds a NotFoundError for an order ID.
func NewOrderNotFound(id string) *NotFoundError {
	return &NotFoundError{Resource: "order", Key: id}
}

// InsufficientStockError reports that a requested quantity exceeds what the
// catalog currently holds for a SKU.
type InsufficientStockError struct {
	SKU       string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.SKU, e.Requested, e.Available)
}

// TotalMismatchError reports that the client-claimed order total disagrees
// with the server-computed one beyond TotalTolerance.
type TotalMismatchError struct {
	Claimed  float64
	Computed float64
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("order total mismatch: claimed %.2f, computed %.2f",
		e.Claimed, e.Computed)
}

// StorageError wraps an I/O failure from the database. It is the only order
// placement failure a caller may retry, since nothing was committed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
