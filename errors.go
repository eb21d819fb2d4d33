package herofield

import "errors"

var (
	// ErrCapability is returned by Mount when the host cannot present
	// frames. The caller should fall back to a static background.
	ErrCapability = errors.New("herofield: drawing surface unavailable")

	// ErrInvalidConfig is returned when an option is out of range.
	ErrInvalidConfig = errors.New("herofield: invalid config")

	// ErrNilHost is returned by Mount when host is nil.
	ErrNilHost = errors.New("herofield: nil host")
)
