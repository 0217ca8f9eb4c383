package panel

import "errors"

var (
	// ErrInvalidArgument reports malformed sizes, rates or grids.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfBounds reports a pixel coordinate outside the surface.
	ErrOutOfBounds = errors.New("pixel out of bounds")
	// ErrNotFound reports a missing image file.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied reports a window attribute the host refused.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrClosed reports an operation on a closed surface that needs its window.
	ErrClosed = errors.New("surface closed")
)
