package swapchain

import (
	"testing"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"GPU_present_chain/vkd"
	"GPU_present_chain/vkd/vkdtest"
)

type surfaceWindow struct {
	f *vkdtest.Fake
}

func (w surfaceWindow) Surface(vk.Instance) (vk.Surface, error) { return w.f.NewSurface(), nil }
func (w surfaceWindow) FramebufferSize() (int, int)             { return 640, 480 }

func TestNewSurface(t *testing.T) {
	f := vkdtest.New()
	s, err := NewSurface(f.Instance(), surfaceWindow{f}, f)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	if s.Handle() == nil || f.Live(vkdtest.KindSurface) != 1 {
		t.Fatal("surface not created")
	}
	s.Destroy()
	if !s.IsDestroyed() || f.Live(vkdtest.KindSurface) != 0 {
		t.Error("surface not released")
	}
	if _, err := NewSurface(f.Instance(), fakeWindow{}, f); err == nil {
		t.Error("window failure not reported")
	}
}

func TestSurfaceDoubleDestroyPanics(t *testing.T) {
	f := vkdtest.New()
	s := testSurface(f)
	s.Destroy()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("second Destroy did not panic")
		}
		if err, ok := r.(error); !ok || !errors.HasAssertionFailure(err) {
			t.Errorf("panic value = %v, want assertion failure", r)
		}
	}()
	s.Destroy()
}

func TestPresentationSupported(t *testing.T) {
	f := vkdtest.New()
	f.PresentFamilies[2] = true
	s := testSurface(f)
	for family, want := range map[uint32]bool{0: true, 1: false, 2: true} {
		got, err := s.PresentationSupported(nil, family)
		if err != nil || got != want {
			t.Errorf("family %d: %v, %v, want %v", family, got, err, want)
		}
	}
	f.SupportResult = vk.ErrorSurfaceLost
	if _, err := s.PresentationSupported(nil, 0); err == nil {
		t.Error("native failure not reported")
	}
}

func TestPropertiesRequery(t *testing.T) {
	f := vkdtest.New()
	s := testSurface(f)
	props := s.Properties(nil)

	p, err := props()
	if err != nil {
		t.Fatalf("Properties: %v", err)
	}
	if !p.CurrentExtentDefined() || !p.ImageCountBounded() || len(p.Formats) != 2 || len(p.PresentModes) != 2 {
		t.Errorf("properties = %+v", p)
	}

	f.Capabilities.CurrentExtent = vk.Extent2D{Width: 800, Height: 600}
	p, err = props()
	if err != nil {
		t.Fatalf("Properties: %v", err)
	}
	if p.Capabilities.CurrentExtent.Width != 800 || f.CapabilityQueries != 2 {
		t.Errorf("second query did not observe the new extent")
	}

	f.FormatsResult = vk.ErrorSurfaceLost
	_, err = props()
	if res, ok := vkd.ResultOf(err); !ok || res != vk.ErrorSurfaceLost {
		t.Errorf("err = %v, want surface lost", err)
	}

	s.Destroy()
	if _, err := props(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("err = %v, want ErrDestroyed", err)
	}
}
