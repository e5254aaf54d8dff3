package services

import "errors"

// Domain errors surfaced by the cart, checkout, order and wallet services.
// Controllers map these to response codes; anything else is reported as an
// internal error. Every operation that returns one of these has already
// rolled back its transaction.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInvalidSize         = errors.New("invalid size for this product")
	ErrOutOfStock          = errors.New("insufficient stock")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrInvalidWalletAmount = errors.New("invalid wallet amount")
	ErrWalletRequiresUser  = errors.New("wallet payments require a registered user")
	ErrAlreadyReturned     = errors.New("order is already returned")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrNotCustomizable     = errors.New("product cannot be personalized")
	ErrFinalImageRequired  = errors.New("final image is required")
	ErrGuestOrder          = errors.New("operation requires a registered buyer")
	ErrReturnExists        = errors.New("a return request already exists for this order")
)
