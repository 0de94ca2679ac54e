package swapchain

import (
	"testing"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"GPU_present_chain/vkd/vkdtest"
)

type fakeWindow struct {
	w, h int
}

func (w fakeWindow) Surface(vk.Instance) (vk.Surface, error) { return nil, errors.New("not supported") }
func (w fakeWindow) FramebufferSize() (int, int)             { return w.w, w.h }

func testProperties(t *testing.T, f *vkdtest.Fake) *Properties {
	t.Helper()
	p, err := QueryProperties(f, nil, f.NewSurface())
	if err != nil {
		t.Fatalf("QueryProperties: %v", err)
	}
	return p
}

func TestExtentStrategy(t *testing.T) {
	tests := []struct {
		name    string
		current vk.Extent2D
		window  fakeWindow
		want    vk.Extent2D
	}{
		{"current extent used verbatim", vk.Extent2D{Width: 800, Height: 600}, fakeWindow{1, 1}, vk.Extent2D{Width: 800, Height: 600}},
		{"framebuffer inside range", vk.Extent2D{Width: undefinedExtent, Height: undefinedExtent}, fakeWindow{1024, 768}, vk.Extent2D{Width: 1024, Height: 768}},
		{"framebuffer clamped to max", vk.Extent2D{Width: undefinedExtent, Height: undefinedExtent}, fakeWindow{5000, 300}, vk.Extent2D{Width: 4096, Height: 300}},
		{"framebuffer clamped to min", vk.Extent2D{Width: undefinedExtent, Height: undefinedExtent}, fakeWindow{0, 10}, vk.Extent2D{Width: 16, Height: 16}},
		{"negative size clamped to min", vk.Extent2D{Width: undefinedExtent, Height: undefinedExtent}, fakeWindow{-3, -7}, vk.Extent2D{Width: 16, Height: 16}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := vkdtest.New()
			f.Capabilities.CurrentExtent = tt.current
			f.Capabilities.MinImageExtent = vk.Extent2D{Width: 16, Height: 16}
			p := testProperties(t, f)
			b := NewBuilder(nil)
			if err := (ExtentStrategy{Window: tt.window}).Configure(b, p); err != nil {
				t.Fatalf("Configure: %v", err)
			}
			got := b.Config(p).Extent
			if !sameExtent(got, tt.want) {
				t.Errorf("extent = %dx%d, want %dx%d", got.Width, got.Height, tt.want.Width, tt.want.Height)
			}
		})
	}
}

func TestExtentStrategyWithoutWindow(t *testing.T) {
	f := vkdtest.New()
	f.Capabilities.CurrentExtent = vk.Extent2D{Width: undefinedExtent, Height: undefinedExtent}
	p := testProperties(t, f)
	err := (ExtentStrategy{}).Configure(NewBuilder(nil), p)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestImageCountStrategy(t *testing.T) {
	tests := []struct {
		name     string
		min, max uint32
		policy   CountPolicy
		want     uint32
		wantErr  bool
	}{
		{"min", 2, 8, CountMin, 2, false},
		{"max", 2, 8, CountMax, 8, false},
		{"min plus one", 2, 8, CountMinPlusOne, 3, false},
		{"min plus one unbounded", 3, 0, CountMinPlusOne, 4, false},
		{"min plus one without headroom", 3, 3, CountMinPlusOne, 0, true},
		{"max unbounded", 2, 0, CountMax, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := vkdtest.New()
			f.Capabilities.MinImageCount = tt.min
			f.Capabilities.MaxImageCount = tt.max
			p := testProperties(t, f)
			b := NewBuilder(nil)
			err := (ImageCountStrategy{Policy: tt.policy}).Configure(b, p)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("err = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Configure: %v", err)
			}
			if got := b.Config(p).ImageCount; got != tt.want {
				t.Errorf("image count = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPresentModeStrategy(t *testing.T) {
	tests := []struct {
		name      string
		supported []vk.PresentMode
		preferred []vk.PresentMode
		want      vk.PresentMode
	}{
		{"preferred supported", []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}, []vk.PresentMode{vk.PresentModeMailbox}, vk.PresentModeMailbox},
		{"first supported preference wins", []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate}, []vk.PresentMode{vk.PresentModeMailbox, vk.PresentModeImmediate}, vk.PresentModeImmediate},
		{"falls back to fifo", []vk.PresentMode{vk.PresentModeFifo}, []vk.PresentMode{vk.PresentModeMailbox}, vk.PresentModeFifo},
		{"no preference", []vk.PresentMode{vk.PresentModeMailbox, vk.PresentModeFifo}, nil, vk.PresentModeFifo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := vkdtest.New()
			f.PresentModes = tt.supported
			p := testProperties(t, f)
			b := NewBuilder(nil)
			if err := (PresentModeStrategy{Preferred: tt.preferred}).Configure(b, p); err != nil {
				t.Fatalf("Configure: %v", err)
			}
			if got := b.Config(p).PresentMode; got != tt.want {
				t.Errorf("present mode = %s, want %s", PresentModeName(got), PresentModeName(tt.want))
			}
		})
	}
}

func TestSharingModeStrategy(t *testing.T) {
	tests := []struct {
		name     string
		families []uint32
		mode     vk.SharingMode
		want     []uint32
		wantErr  bool
	}{
		{"single family", []uint32{0}, vk.SharingModeExclusive, []uint32{0}, false},
		{"duplicates collapse", []uint32{2, 2}, vk.SharingModeExclusive, []uint32{2}, false},
		{"two families", []uint32{0, 1}, vk.SharingModeConcurrent, []uint32{0, 1}, false},
		{"none", nil, 0, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := vkdtest.New()
			p := testProperties(t, f)
			b := NewBuilder(nil)
			err := (SharingModeStrategy{Families: tt.families}).Configure(b, p)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("err = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Configure: %v", err)
			}
			got := b.Config(p).Sharing
			if got.Mode != tt.mode {
				t.Errorf("mode = %d, want %d", got.Mode, tt.mode)
			}
			if len(got.Families) != len(tt.want) {
				t.Fatalf("families = %v, want %v", got.Families, tt.want)
			}
			for i := range tt.want {
				if got.Families[i] != tt.want[i] {
					t.Errorf("families = %v, want %v", got.Families, tt.want)
				}
			}
		})
	}
}

func TestSurfaceFormatStrategy(t *testing.T) {
	srgb := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	unorm := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	rgba := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	f := vkdtest.New()
	p := testProperties(t, f)

	b := NewBuilder(nil)
	if err := (SurfaceFormatStrategy{Preferred: srgb}).Configure(b, p); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if got := b.Config(p).Format; !sameFormat(got, srgb) {
		t.Errorf("format = %s, want %s", FormatName(got), FormatName(srgb))
	}

	b = NewBuilder(nil)
	if err := (SurfaceFormatStrategy{Preferred: rgba}).Configure(b, p); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if got := b.Config(p).Format; !sameFormat(got, unorm) {
		t.Errorf("fallback format = %s, want first reported %s", FormatName(got), FormatName(unorm))
	}

	f.Formats = nil
	p = testProperties(t, f)
	err := (SurfaceFormatStrategy{Preferred: srgb}).Configure(NewBuilder(nil), p)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestCompositeAlphaStrategy(t *testing.T) {
	f := vkdtest.New()
	f.Capabilities.SupportedCompositeAlpha = vk.CompositeAlphaFlags(vk.CompositeAlphaPreMultipliedBit | vk.CompositeAlphaInheritBit)
	p := testProperties(t, f)

	b := NewBuilder(nil)
	if got := b.Config(p).CompositeAlpha; got != vk.CompositeAlphaPreMultipliedBit {
		t.Errorf("default alpha = %d, want lowest supported bit %d", got, vk.CompositeAlphaPreMultipliedBit)
	}
	s := CompositeAlphaStrategy{Preferred: []vk.CompositeAlphaFlagBits{vk.CompositeAlphaOpaqueBit, vk.CompositeAlphaInheritBit}}
	if err := s.Configure(b, p); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if got := b.Config(p).CompositeAlpha; got != vk.CompositeAlphaInheritBit {
		t.Errorf("alpha = %d, want %d", got, vk.CompositeAlphaInheritBit)
	}
}

func TestStrategyOrderIndependence(t *testing.T) {
	f := vkdtest.New()
	p := testProperties(t, f)
	strategies := []Strategy{
		ImageCountStrategy{Policy: CountMinPlusOne},
		PresentModeStrategy{Preferred: []vk.PresentMode{vk.PresentModeMailbox}},
		SharingModeStrategy{Families: []uint32{0}},
		SurfaceFormatStrategy{Preferred: vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}},
		ExtentStrategy{Window: fakeWindow{1, 1}},
	}
	forward, backward := NewBuilder(nil), NewBuilder(nil)
	for i := range strategies {
		if err := strategies[i].Configure(forward, p); err != nil {
			t.Fatalf("Configure: %v", err)
		}
		if err := strategies[len(strategies)-1-i].Configure(backward, p); err != nil {
			t.Fatalf("Configure: %v", err)
		}
	}
	a, b := forward.Config(p), backward.Config(p)
	if a.ImageCount != b.ImageCount || !sameFormat(a.Format, b.Format) || !sameExtent(a.Extent, b.Extent) ||
		a.PresentMode != b.PresentMode || a.Sharing.Mode != b.Sharing.Mode {
		t.Errorf("configs differ by strategy order: %+v vs %+v", a, b)
	}
}

func TestParsePresentMode(t *testing.T) {
	for _, name := range []string{"fifo", "mailbox", "immediate", "fifo-relaxed"} {
		m, err := ParsePresentMode(name)
		if err != nil {
			t.Fatalf("ParsePresentMode(%q): %v", name, err)
		}
		if got := PresentModeName(m); got != name {
			t.Errorf("round trip of %q gave %q", name, got)
		}
	}
	if _, err := ParsePresentMode("vsync"); err == nil {
		t.Error("ParsePresentMode accepted an unknown mode")
	}
	if p, err := ParseCountPolicy("MIN+1"); err != nil || p != CountMinPlusOne {
		t.Errorf("ParseCountPolicy = %v, %v", p, err)
	}
}
