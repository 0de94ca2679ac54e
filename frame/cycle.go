package frame

import (
	"log"
	"math"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"GPU_present_chain/vkd"
)

// Cycle hands out a fixed set of slots round robin. The number of slots is the number of frames in
// flight and does not depend on the chain image count.
type Cycle struct {
	dev    vkd.Device
	slots  []*Slot
	cursor int
}

// NewCycle creates n slots with fresh primitives.
func NewCycle(dev vkd.Device, n int) (*Cycle, error) {
	if n < 1 {
		return nil, errors.Wrapf(ErrInvalidSlot, "a cycle needs at least one slot, got %d", n)
	}
	slots := make([]*Slot, 0, n)
	for i := 0; i < n; i++ {
		s, err := CreateSlot(dev, i)
		if err != nil {
			for _, created := range slots {
				created.Destroy()
			}
			return nil, err
		}
		slots = append(slots, s)
	}
	log.Printf("Successfully created %d frame slots", n)
	return &Cycle{dev: dev, slots: slots}, nil
}

// NewCycleOf cycles over existing slots, which all have to belong to the same device.
func NewCycleOf(slots ...*Slot) (*Cycle, error) {
	if len(slots) == 0 {
		return nil, errors.Wrap(ErrInvalidSlot, "a cycle needs at least one slot")
	}
	for i, s := range slots {
		if s == nil {
			return nil, errors.Wrapf(ErrInvalidSlot, "slot %d is nil", i)
		}
	}
	return &Cycle{dev: slots[0].dev, slots: append([]*Slot(nil), slots...)}, nil
}

// Next returns the slot for the coming frame, starting with slot 0.
func (c *Cycle) Next() *Slot {
	s := c.slots[c.cursor]
	c.cursor = (c.cursor + 1) % len(c.slots)
	return s
}

func (c *Cycle) Len() int {
	return len(c.slots)
}

func (c *Cycle) Slot(i int) *Slot {
	return c.slots[i]
}

// WaitIdle blocks until the work of every slot completed.
func (c *Cycle) WaitIdle() error {
	fences := make([]vk.Fence, len(c.slots))
	for i, s := range c.slots {
		fences[i] = s.fence
	}
	res := c.dev.Dispatch.WaitForFences(c.dev.Logical, fences, math.MaxUint64)
	return errors.Wrap(vkd.Check(res, "vkWaitForFences"), "wait for all frame slots")
}

func (c *Cycle) Destroy() {
	for _, s := range c.slots {
		s.Destroy()
	}
	c.slots = nil
}
