package swapchain

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidConfig marks configuration errors. They are detected before any native call is issued.
	ErrInvalidConfig = errors.New("invalid swap chain configuration")
	// ErrNilSemaphore is returned when an acquire is requested without a semaphore to signal.
	ErrNilSemaphore = errors.New("acquire requires a non-nil semaphore")
	// ErrDestroyed is returned by operations on a destroyed Chain or Manager.
	ErrDestroyed = errors.New("swap chain already destroyed")
)
