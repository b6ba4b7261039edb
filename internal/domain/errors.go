package domain

import "fmt"

// Error types for consistent error handling across the bot.

// ErrInvalidPrincipal indicates a non-positive loan amount.
type ErrInvalidPrincipal struct {
	Principal float64
}

func (e *ErrInvalidPrincipal) Error() string {
	return fmt.Sprintf("invalid principal: %.2f (must be > 0)", e.Principal)
}

// ErrInvalidRate indicates a negative annual rate.
type ErrInvalidRate struct {
	Rate float64
}

func (e *ErrInvalidRate) Error() string {
	return fmt.Sprintf("invalid annual rate: %.2f%% (must be >= 0)", e.Rate)
}

// ErrInvalidTerm indicates a term shorter than one month.
type ErrInvalidTerm struct {
	Months int
}

func (e *ErrInvalidTerm) Error() string {
	return fmt.Sprintf("invalid term: %d months (must be >= 1)", e.Months)
}

// ErrOutOfRange indicates a value outside the product's bounds. Raised by
// the dialog layer, never by the engine itself.
type ErrOutOfRange struct {
	Field string
	Min   float64
	Max   float64
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("%s out of range [%.0f; %.0f]", e.Field, e.Min, e.Max)
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrForbidden indicates the user lacks permission for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}
