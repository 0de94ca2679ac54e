package swapchain

import (
	"testing"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"GPU_present_chain/vkd/vkdtest"
)

func defaultStrategies(win FramebufferSizer) []Strategy {
	return []Strategy{
		ImageCountStrategy{Policy: CountMinPlusOne},
		SurfaceFormatStrategy{Preferred: vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}},
		ExtentStrategy{Window: win},
		PresentModeStrategy{Preferred: []vk.PresentMode{vk.PresentModeMailbox}},
		SharingModeStrategy{Families: []uint32{0}},
	}
}

func TestNewManager(t *testing.T) {
	f := vkdtest.New()
	m, err := NewManager(f.Device(), testSurface(f), defaultStrategies(fakeWindow{1, 1})...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	c := m.Chain()
	if c.ImageCount() != 3 {
		t.Errorf("image count = %d, want 3", c.ImageCount())
	}
	if c.PresentMode() != vk.PresentModeMailbox {
		t.Errorf("present mode = %s, want mailbox", PresentModeName(c.PresentMode()))
	}
	if c.Format().Format != vk.FormatB8g8r8a8Srgb {
		t.Errorf("format = %s", FormatName(c.Format()))
	}
	if m.Generation() != 0 || m.Properties() == nil {
		t.Errorf("generation = %d, properties = %v", m.Generation(), m.Properties())
	}
}

func TestNewManagerStrategyFailure(t *testing.T) {
	f := vkdtest.New()
	f.Capabilities.MaxImageCount = 2
	_, err := NewManager(f.Device(), testSurface(f), defaultStrategies(fakeWindow{1, 1})...)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
	if len(f.SwapchainInfos) != 0 {
		t.Error("swap chain created despite failing strategy")
	}
}

func TestRecreate(t *testing.T) {
	f := vkdtest.New()
	win := &resizableWindow{w: 640, h: 480}
	f.Capabilities.CurrentExtent = vk.Extent2D{Width: undefinedExtent, Height: undefinedExtent}
	m, err := NewManager(f.Device(), testSurface(f), defaultStrategies(win)...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	old := m.Chain()
	queries := f.CapabilityQueries

	win.w, win.h = 1280, 720
	c, err := m.Recreate()
	if err != nil {
		t.Fatalf("Recreate: %v", err)
	}
	if c == old || c.ID() == old.ID() || c.Handle() == old.Handle() {
		t.Error("recreated chain is not distinct from the old one")
	}
	if !old.IsDestroyed() || c.IsDestroyed() {
		t.Errorf("old destroyed = %v, new destroyed = %v", old.IsDestroyed(), c.IsDestroyed())
	}
	if m.Chain() != c || m.Generation() != 1 {
		t.Errorf("manager did not switch to the new chain")
	}
	if e := c.Extent(); e.Width != 1280 || e.Height != 720 {
		t.Errorf("extent = %dx%d, want 1280x720", e.Width, e.Height)
	}
	if f.CapabilityQueries != queries+1 {
		t.Errorf("capabilities queried %d times on recreate, want 1", f.CapabilityQueries-queries)
	}
	if f.SwapchainInfos[1].OldSwapchain != old.Handle() {
		t.Error("recreate did not hand over the old swap chain")
	}
	if f.Live(vkdtest.KindSwapchain) != 1 || f.Live(vkdtest.KindImageView) != c.ImageCount() {
		t.Errorf("live objects: %d swap chains, %d views", f.Live(vkdtest.KindSwapchain), f.Live(vkdtest.KindImageView))
	}
	if len(f.Misuse) != 0 {
		t.Errorf("misuse: %v", f.Misuse)
	}
}

func TestRecreateConfigFailureKeepsChain(t *testing.T) {
	f := vkdtest.New()
	m, err := NewManager(f.Device(), testSurface(f), defaultStrategies(fakeWindow{1, 1})...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	old := m.Chain()
	f.Capabilities.MaxImageCount = 2
	if _, err := m.Recreate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Recreate err = %v, want ErrInvalidConfig", err)
	}
	if m.Chain() != old || old.IsDestroyed() || old.Retired() || m.Generation() != 0 {
		t.Error("recreate failing before any native call changed the current chain")
	}
	if len(f.SwapchainInfos) != 1 {
		t.Errorf("%d swap chain creations, want 1", len(f.SwapchainInfos))
	}
}

func TestRecreateNativeFailureRetiresChain(t *testing.T) {
	f := vkdtest.New()
	m, err := NewManager(f.Device(), testSurface(f), defaultStrategies(fakeWindow{1, 1})...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	old := m.Chain()
	f.CreateSwapchainResult = vk.ErrorSurfaceLost
	if _, err := m.Recreate(); err == nil {
		t.Fatal("Recreate succeeded")
	}
	if m.Chain() != old || old.IsDestroyed() || m.Generation() != 0 {
		t.Fatal("failed recreate replaced or destroyed the current chain")
	}
	if !old.Retired() || !f.Retired(old.Handle()) {
		t.Fatal("chain handed to the failed creation is not retired")
	}

	acquires := len(f.Acquires)
	if _, status, err := old.Acquire(f.NewSemaphore(), nil); err != nil || status != OutOfDate {
		t.Errorf("Acquire on retired chain = %s, %v, want OutOfDate", status, err)
	}
	if len(f.Acquires) != acquires {
		t.Error("retired chain acquired from the driver")
	}

	f.CreateSwapchainResult = vk.Success
	c, err := m.Recreate()
	if err != nil {
		t.Fatalf("second Recreate: %v", err)
	}
	if f.SwapchainInfos[2].OldSwapchain != nil {
		t.Error("retired chain handed over a second time")
	}
	if !old.IsDestroyed() || m.Chain() != c || m.Generation() != 1 {
		t.Error("retired chain not replaced")
	}
	if f.Live(vkdtest.KindSwapchain) != 1 {
		t.Errorf("%d live swap chains, want 1", f.Live(vkdtest.KindSwapchain))
	}
	if len(f.Misuse) != 0 {
		t.Errorf("misuse: %v", f.Misuse)
	}
}

func TestAttachmentView(t *testing.T) {
	f := vkdtest.New()
	m, err := NewManager(f.Device(), testSurface(f), defaultStrategies(fakeWindow{1, 1})...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	first := m.AttachmentView(0)
	latest := m.AttachmentView(LatestImage)

	if _, err := latest.Resolve(); err == nil {
		t.Error("latest view resolved before any acquire")
	}
	view, err := first.Resolve()
	if err != nil || view != m.Chain().View(0) {
		t.Errorf("Resolve = %v, %v", view, err)
	}

	if _, _, err := m.Chain().Acquire(f.NewSemaphore(), nil); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, _, err := m.Chain().Acquire(f.NewSemaphore(), nil); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if view, err := latest.Resolve(); err != nil || view != m.Chain().View(1) {
		t.Errorf("latest Resolve = %v, %v, want view 1", view, err)
	}

	if _, err := m.Recreate(); err != nil {
		t.Fatalf("Recreate: %v", err)
	}
	if view, err := first.Resolve(); err != nil || view != m.Chain().View(0) {
		t.Errorf("Resolve after recreate = %v, %v, want view of the new chain", view, err)
	}
	if _, err := m.AttachmentView(7).Resolve(); err == nil {
		t.Error("out of range view resolved")
	}
}

func TestManagerDestroy(t *testing.T) {
	f := vkdtest.New()
	m, err := NewManager(f.Device(), testSurface(f), defaultStrategies(fakeWindow{1, 1})...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	c := m.Chain()
	if err := m.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if !c.IsDestroyed() || m.Chain() != nil {
		t.Error("current chain survived Destroy")
	}
	if err := m.Destroy(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("second Destroy err = %v", err)
	}
	if _, err := m.Recreate(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Recreate err = %v", err)
	}
	if _, err := m.AttachmentView(0).Resolve(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Resolve err = %v", err)
	}
}

type resizableWindow struct {
	w, h int
}

func (w *resizableWindow) FramebufferSize() (int, int) { return w.w, w.h }
