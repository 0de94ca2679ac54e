package swapchain

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"GPU_present_chain/vkd"
)

// Window is the windowing side of a surface. It creates the native presentation target for an instance
// and reports the current framebuffer size in pixels, which is needed whenever the surface leaves the
// extent choice to the application.
type Window interface {
	Surface(instance vk.Instance) (vk.Surface, error)
	FramebufferSize() (int, int)
}

// Surface owns the native presentation target of a window and answers the capability queries a swap
// chain is configured from. It must outlive every Chain built on it.
type Surface struct {
	instance  vk.Instance
	handle    vk.Surface
	dispatch  vkd.Dispatch
	destroyed bool
}

// NewSurface asks the window to create a surface for instance. Destroying the returned Surface releases
// the native handle.
func NewSurface(instance vk.Instance, win Window, dispatch vkd.Dispatch) (*Surface, error) {
	handle, err := win.Surface(instance)
	if err != nil {
		return nil, errors.Wrap(err, "create window surface")
	}
	if handle == nil {
		return nil, errors.New("create window surface: window returned a nil surface")
	}
	log.Println("Successfully created window surface")
	return WrapSurface(instance, handle, dispatch), nil
}

// WrapSurface adopts an existing native surface. Ownership moves to the returned Surface.
func WrapSurface(instance vk.Instance, handle vk.Surface, dispatch vkd.Dispatch) *Surface {
	return &Surface{
		instance: instance,
		handle:   handle,
		dispatch: dispatch,
	}
}

func (s *Surface) Handle() vk.Surface {
	return s.handle
}

func (s *Surface) IsDestroyed() bool {
	return s.destroyed
}

// PresentationSupported reports whether queue family of pd can present to the surface.
func (s *Surface) PresentationSupported(pd vk.PhysicalDevice, family uint32) (bool, error) {
	supported, res := s.dispatch.GetPhysicalDeviceSurfaceSupport(pd, family, s.handle)
	if err := vkd.Check(res, "vkGetPhysicalDeviceSurfaceSupportKHR"); err != nil {
		return false, err
	}
	return supported, nil
}

// Properties returns a provider for the surface properties as seen by pd. Every call of the provider
// issues the native queries again, so values are current after the window was resized.
func (s *Surface) Properties(pd vk.PhysicalDevice) PropertiesFunc {
	return func() (*Properties, error) {
		if s.destroyed {
			return nil, errors.Wrap(ErrDestroyed, "query surface properties")
		}
		return QueryProperties(s.dispatch, pd, s.handle)
	}
}

// Destroy releases the native surface. Destroying a surface twice is a programming error and panics.
func (s *Surface) Destroy() {
	if s.destroyed {
		panic(errors.AssertionFailedf("surface %p destroyed twice", s))
	}
	s.dispatch.DestroySurface(s.instance, s.handle)
	s.destroyed = true
}
