package common

import (
	"fmt"
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/veandco/go-sdl2/sdl"
)

const SDL_MAJOR, SDL_MINOR, SDL_PATCH = int(sdl.MAJOR_VERSION), int(sdl.MINOR_VERSION), int(sdl.PATCHLEVEL)

// Window uses SDL for window management and user input. It provides the vk.Surface to present on and the
// drawable size the swap chain extent is derived from whenever the surface leaves that choice open.
type Window struct {
	sdlVersion string

	Win   *sdl.Window
	state WindowState
}

var _ Platform = (*Window)(nil)

// NewWindow initializes SDL, opens a resizable Vulkan capable window and loads the Vulkan entry points
// through SDL. On tear down, the caller destroys surface and instance before calling Destroy.
func NewWindow(title string, w int32, h int32) (*Window, error) {
	window := &Window{
		sdlVersion: fmt.Sprintf("v%d.%d.%d", SDL_MAJOR, SDL_MINOR, SDL_PATCH),
	}
	if err := window.initSDLWindow(title, w, h); err != nil {
		return nil, err
	}
	if err := InitVulkan(sdl.VulkanGetVkGetInstanceProcAddr()); err != nil {
		window.Destroy()
		return nil, err
	}
	log.Printf("Generated SDL/Vulkan window - SDL: %s Vulkan Spec: v%d.%d.%d",
		window.sdlVersion, VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH)
	return window, nil
}

func (w *Window) initSDLWindow(title string, width int32, height int32) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return errors.Wrap(err, "initialize SDL")
	}
	log.Println("Initialized SDL")
	win, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		width,
		height,
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE|sdl.WINDOW_VULKAN,
	)
	if err != nil {
		sdl.Quit()
		return errors.Wrap(err, "create SDL window for use with Vulkan")
	}
	log.Printf("Created SDL window for use with Vulkan. Title: \"%s\", Width: %d, Height: %d", title, width, height)
	w.Win = win
	return nil
}

func (w *Window) Surface(instance vk.Instance) (vk.Surface, error) {
	return SdlCreateVkSurface(w.Win, instance)
}

// FramebufferSize returns the drawable size in pixels, which differs from the window size on high DPI
// displays.
func (w *Window) FramebufferSize() (int, int) {
	width, height := w.Win.VulkanGetDrawableSize()
	return int(width), int(height)
}

func (w *Window) RequiredInstanceExtensions() []string {
	return w.Win.VulkanGetInstanceExtensions()
}

func (w *Window) Poll() WindowState {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		w.handle(event)
	}
	st := w.state
	w.state.Resized = false
	return st
}

func (w *Window) WaitEvents() {
	if event := sdl.WaitEvent(); event != nil {
		w.handle(event)
	}
}

func (w *Window) handle(event sdl.Event) {
	switch ev := event.(type) {
	case *sdl.QuitEvent:
		w.state.Close = true
	case *sdl.WindowEvent:
		switch ev.Event {
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			w.state.Resized = true
		case sdl.WINDOWEVENT_MINIMIZED:
			w.state.Minimized = true
		case sdl.WINDOWEVENT_RESTORED:
			w.state.Minimized = false
		}
	case *sdl.KeyboardEvent:
		if ev.Keysym.Sym == sdl.K_ESCAPE {
			w.state.Close = true
		}
	}
}

func (w *Window) Destroy() {
	if err := w.Win.Destroy(); err != nil {
		log.Printf("Failed to destroy SDL window: %v", err)
	}
	sdl.Quit()
}
