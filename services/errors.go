package services

import (
	"fmt"
	"time"
)

// Workflow errors carry enough context for the HTTP boundary to build a
// response without re-querying. Controllers map them to status codes with
// errors.As; none of them is fatal, and a failed workflow leaves prior
// state untouched.

// ValidationError reports malformed input for a named field.
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

// NotFoundError reports an absent order, product, cart or user.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// EmptyCartError rejects checkout on a cart with no lines.
type EmptyCartError struct{}

func (e *EmptyCartError) Error() string {
	return "cart is empty"
}

// ProductUnavailableError names a product that is inactive or whose variant
// no longer exists by the time the cart is checked out.
type ProductUnavailableError struct {
	ProductID string
	Title     string
}

func (e *ProductUnavailableError) Error() string {
	name := e.Title
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("product %s is no longer available", name)
}

// InsufficientStockError carries the quantity still available for the
// requested variant.
type InsufficientStockError struct {
	ProductID string
	Title     string
	Size      string
	Color     string
	Available int
}

func (e *InsufficientStockError) Error() string {
	name := e.Title
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for %s (%s/%s): %d available", name, e.Size, e.Color, e.Available)
}

// InvalidTransitionError reports a disallowed order status change.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order cannot move from %s to %s", e.From, e.To)
}

// ReturnWindowExpiredError rejects a return requested after the window
// measured from delivery has closed.
type ReturnWindowExpiredError struct {
	DeliveredAt time.Time
	WindowDays  int
}

func (e *ReturnWindowExpiredError) Error() string {
	return fmt.Sprintf("return period has expired (%d days from delivery)", e.WindowDays)
}
