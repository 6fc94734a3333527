// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity or key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyRegistered indicates the email is already taken (case/whitespace-insensitive).
	ErrAlreadyRegistered = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInsufficientStock indicates a decrement larger than the current stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrExceedsStock indicates a cart quantity above the product's current stock.
	ErrExceedsStock = errors.New("quantity exceeds stock")

	// ErrEmptyCart indicates checkout of a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrForbidden indicates a cart mutation attempted with a guest capability.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation")

	// ErrCorruptState indicates persisted state that could not be read or decoded.
	ErrCorruptState = errors.New("corrupt persisted state")
)
