package cloud

import "errors"

var (
	// ErrInvalidDomain is returned when a logarithmic scale is requested over
	// a range whose minimum is not positive.
	ErrInvalidDomain = errors.New("invalid domain for logarithmic scale")

	// ErrDegenerateRange is returned when a range has no extent (min == max)
	// or holds no values at all.
	ErrDegenerateRange = errors.New("degenerate range")

	// ErrMissingRole is returned when a range, scale or column is requested
	// for a role the mapping does not bind.
	ErrMissingRole = errors.New("role is not mapped")

	// ErrNumericCoercion marks a cell that could not be parsed as a number.
	ErrNumericCoercion = errors.New("numeric coercion failed")
)
