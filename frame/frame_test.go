package frame

import (
	"testing"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"GPU_present_chain/swapchain"
	"GPU_present_chain/vkd"
	"GPU_present_chain/vkd/vkdtest"
)

type sequence struct {
	queue   *DispatchQueue
	buffers []vk.CommandBuffer
}

func (s sequence) Queue() WorkQueue            { return s.queue }
func (s sequence) Buffers() []vk.CommandBuffer { return s.buffers }

func testChain(t *testing.T, f *vkdtest.Fake) *swapchain.Chain {
	t.Helper()
	s := swapchain.WrapSurface(f.Instance(), f.NewSurface(), f)
	p, err := s.Properties(nil)()
	if err != nil {
		t.Fatalf("Properties: %v", err)
	}
	c, err := swapchain.NewBuilder(s).
		ImageCount(p.Capabilities.MinImageCount).
		Format(p.Formats[0]).
		Extent(p.Capabilities.CurrentExtent).
		Build(f.Device(), p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return c
}

func TestNewSlot(t *testing.T) {
	f := vkdtest.New()
	sem := f.NewSemaphore()
	fence := f.NewFence(true)

	if _, err := NewSlot(f.Device(), 0, sem, sem, fence); !errors.Is(err, ErrAliasedSemaphores) {
		t.Errorf("aliased semaphores err = %v", err)
	}
	if _, err := NewSlot(f.Device(), 0, sem, f.NewSemaphore(), nil); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("null fence err = %v", err)
	}
	s, err := NewSlot(f.Device(), 3, sem, f.NewSemaphore(), fence)
	if err != nil {
		t.Fatalf("NewSlot: %v", err)
	}
	if s.Index() != 3 || s.Available() != sem || s.Fence() != fence {
		t.Error("slot does not expose its primitives")
	}
}

func TestCycleOrder(t *testing.T) {
	f := vkdtest.New()
	c, err := NewCycle(f.Device(), 2)
	if err != nil {
		t.Fatalf("NewCycle: %v", err)
	}
	want := []int{0, 1, 0, 1, 0}
	for i, w := range want {
		if got := c.Next().Index(); got != w {
			t.Errorf("Next #%d = slot %d, want %d", i, got, w)
		}
	}
	if c.Len() != 2 || c.Slot(1).Index() != 1 {
		t.Errorf("Len = %d", c.Len())
	}
	if f.Live(vkdtest.KindSemaphore) != 4 || f.Live(vkdtest.KindFence) != 2 {
		t.Errorf("live primitives: %d semaphores, %d fences", f.Live(vkdtest.KindSemaphore), f.Live(vkdtest.KindFence))
	}
	for i := 0; i < c.Len(); i++ {
		if !f.Signaled(c.Slot(i).Fence()) {
			t.Errorf("fence of slot %d not created signaled", i)
		}
	}
	c.Destroy()
	if f.Live(vkdtest.KindSemaphore) != 0 || f.Live(vkdtest.KindFence) != 0 || len(f.Misuse) != 0 {
		t.Errorf("after destroy: %d semaphores, %d fences, misuse %v",
			f.Live(vkdtest.KindSemaphore), f.Live(vkdtest.KindFence), f.Misuse)
	}
}

func TestNewCycleOf(t *testing.T) {
	f := vkdtest.New()
	if _, err := NewCycleOf(); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("empty cycle err = %v", err)
	}
	a, _ := CreateSlot(f.Device(), 0)
	b, _ := CreateSlot(f.Device(), 1)
	c, err := NewCycleOf(b, a)
	if err != nil {
		t.Fatalf("NewCycleOf: %v", err)
	}
	if c.Next() != b || c.Next() != a || c.Next() != b {
		t.Error("cycle does not follow the given slot order")
	}
}

func TestNewCycleCleansUpOnFailure(t *testing.T) {
	f := vkdtest.New()
	f.FenceResult = vk.ErrorOutOfDeviceMemory
	if _, err := NewCycle(f.Device(), 3); err == nil {
		t.Fatal("NewCycle succeeded without fences")
	}
	if f.Live(vkdtest.KindSemaphore) != 0 {
		t.Errorf("%d semaphores leaked", f.Live(vkdtest.KindSemaphore))
	}
}

func TestFrameOrdering(t *testing.T) {
	f := vkdtest.New()
	chain := testChain(t, f)
	cycle, err := NewCycle(f.Device(), 2)
	if err != nil {
		t.Fatalf("NewCycle: %v", err)
	}
	seq := sequence{queue: NewDispatchQueue(f, f.Queue(), 0), buffers: []vk.CommandBuffer{nil}}

	for frame := 0; frame < 4; frame++ {
		slot := cycle.Next()
		idx, status, err := slot.Acquire(chain)
		if err != nil || status != swapchain.Optimal {
			t.Fatalf("frame %d: Acquire = %s, %v", frame, status, err)
		}
		if f.Signaled(slot.Fence()) {
			t.Fatalf("frame %d: fence still signaled after acquire", frame)
		}
		if err := slot.Render(seq); err != nil {
			t.Fatalf("frame %d: Render: %v", frame, err)
		}
		if status, err := slot.Present(seq, idx, chain); err != nil || status != swapchain.Optimal {
			t.Fatalf("frame %d: Present = %s, %v", frame, status, err)
		}

		acq := f.Acquires[frame]
		sub := f.Submits[frame]
		pre := f.Presents[frame]
		if acq.Semaphore != slot.Available() || acq.Fence != nil {
			t.Errorf("frame %d: acquire signaled %v / %v", frame, acq.Semaphore, acq.Fence)
		}
		if sub.Info.PWaitSemaphores[0] != slot.Available() || sub.Info.PSignalSemaphores[0] != slot.Ready() || sub.Fence != slot.Fence() {
			t.Errorf("frame %d: submit does not chain available -> ready", frame)
		}
		if sub.Info.PWaitDstStageMask[0] != vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit) {
			t.Errorf("frame %d: wait stage = %d", frame, sub.Info.PWaitDstStageMask[0])
		}
		if pre.Wait[0] != slot.Ready() || pre.Indices[0] != idx || pre.Queue != f.Queue() {
			t.Errorf("frame %d: present does not wait on ready", frame)
		}
	}
	if err := cycle.WaitIdle(); err != nil {
		t.Errorf("WaitIdle: %v", err)
	}
	if len(f.Misuse) != 0 {
		t.Errorf("misuse: %v", f.Misuse)
	}
}

func TestAcquireOutOfDateKeepsFence(t *testing.T) {
	f := vkdtest.New()
	chain := testChain(t, f)
	slot, err := CreateSlot(f.Device(), 0)
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}

	f.AcquireResults = []vk.Result{vk.ErrorOutOfDate}
	_, status, err := slot.Acquire(chain)
	if err != nil || status != swapchain.OutOfDate {
		t.Fatalf("Acquire = %s, %v, want out of date", status, err)
	}
	if !f.Signaled(slot.Fence()) {
		t.Error("fence reset although no image was acquired")
	}
	if err := slot.Wait(); err != nil {
		t.Errorf("Wait after out of date: %v", err)
	}

	f.AcquireResults = []vk.Result{vk.Suboptimal}
	idx, status, err := slot.Acquire(chain)
	if err != nil || status != swapchain.Suboptimal {
		t.Fatalf("Acquire = %d, %s, %v, want suboptimal", idx, status, err)
	}
	if f.Signaled(slot.Fence()) {
		t.Error("fence not reset after suboptimal acquire")
	}
}

func TestPresentStatus(t *testing.T) {
	f := vkdtest.New()
	chain := testChain(t, f)
	slot, err := CreateSlot(f.Device(), 0)
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}
	seq := sequence{queue: NewDispatchQueue(f, f.Queue(), 0), buffers: []vk.CommandBuffer{nil}}

	f.PresentResults = []vk.Result{vk.ErrorOutOfDate, vk.Suboptimal}
	for _, want := range []swapchain.Status{swapchain.OutOfDate, swapchain.Suboptimal, swapchain.Optimal} {
		idx, _, err := slot.Acquire(chain)
		if err != nil {
			t.Fatalf("Acquire: %v", err)
		}
		if err := slot.Render(seq); err != nil {
			t.Fatalf("Render: %v", err)
		}
		status, err := slot.Present(seq, idx, chain)
		if err != nil || status != want {
			t.Errorf("Present = %s, %v, want %s", status, err, want)
		}
	}

	f.PresentResults = []vk.Result{vk.ErrorSurfaceLost}
	idx, _, _ := slot.Acquire(chain)
	if err := slot.Render(seq); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := slot.Present(seq, idx, chain); err == nil {
		t.Error("surface lost reported as a status")
	}
}

func TestAcquireFatal(t *testing.T) {
	f := vkdtest.New()
	chain := testChain(t, f)
	slot, _ := CreateSlot(f.Device(), 0)

	f.AcquireResults = []vk.Result{vk.ErrorDeviceLost}
	_, _, err := slot.Acquire(chain)
	if res, ok := vkd.ResultOf(err); !ok || res != vk.ErrorDeviceLost {
		t.Errorf("err = %v, want device lost", err)
	}

	f.WaitResult = vk.ErrorDeviceLost
	if _, _, err := slot.Acquire(chain); err == nil {
		t.Error("failed fence wait not reported")
	}
	if len(f.Acquires) != 1 {
		t.Errorf("acquire issued after a failed wait")
	}
}

func TestRenderFailure(t *testing.T) {
	f := vkdtest.New()
	slot, _ := CreateSlot(f.Device(), 0)
	f.SubmitResult = vk.ErrorDeviceLost
	seq := sequence{queue: NewDispatchQueue(f, f.Queue(), 0)}
	err := slot.Render(seq)
	var ne *vkd.NativeError
	if !errors.As(err, &ne) || ne.Result != vk.ErrorDeviceLost {
		t.Errorf("err = %v", err)
	}
}
