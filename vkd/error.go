package vkd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// NativeError is a non-success result returned by a native call that the caller cannot recover from.
type NativeError struct {
	Op     string
	Result vk.Result
}

func (e *NativeError) Error() string {
	return fmt.Sprintf("%s failed with result code: %d", e.Op, e.Result)
}

// Check turns a vk.Result into an error. Only vk.Success is treated as success.
func Check(res vk.Result, op string) error {
	if res == vk.Success {
		return nil
	}
	return errors.WithStack(&NativeError{Op: op, Result: res})
}

// ResultOf extracts the native result code carried by err, if any.
func ResultOf(err error) (vk.Result, bool) {
	var ne *NativeError
	if errors.As(err, &ne) {
		return ne.Result, true
	}
	return vk.Success, false
}
