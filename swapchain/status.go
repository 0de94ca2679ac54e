package swapchain

import (
	vk "github.com/goki/vulkan"

	"GPU_present_chain/vkd"
)

// Status tells the render loop whether the chain still matches its surface after an acquire or present.
// It is ordinary control flow, checked every frame, and never returned as an error.
type Status uint8

const (
	// Optimal means the chain matches the surface.
	Optimal Status = iota
	// Suboptimal means the image is still presentable this frame but the chain no longer matches the
	// surface exactly. Rebuilding is up to the caller.
	Suboptimal
	// OutOfDate means the chain is unusable and has to be recreated before continuing.
	OutOfDate
)

// MustRebuild reports whether the chain has to be recreated before the next frame.
func (s Status) MustRebuild() bool {
	return s == OutOfDate
}

// Degraded reports whether the chain still works but no longer matches the surface.
func (s Status) Degraded() bool {
	return s == Suboptimal
}

// Code returns the native result the status was derived from.
func (s Status) Code() vk.Result {
	switch s {
	case Suboptimal:
		return vk.Suboptimal
	case OutOfDate:
		return vk.ErrorOutOfDate
	default:
		return vk.Success
	}
}

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Suboptimal:
		return "suboptimal"
	case OutOfDate:
		return "out of date"
	default:
		return "unknown"
	}
}

// statusOf maps the result of an acquire or present. Any result other than success, suboptimal or
// out-of-date is fatal.
func statusOf(res vk.Result, op string) (Status, error) {
	switch res {
	case vk.Success:
		return Optimal, nil
	case vk.Suboptimal:
		return Suboptimal, nil
	case vk.ErrorOutOfDate:
		return OutOfDate, nil
	default:
		return Optimal, vkd.Check(res, op)
	}
}
